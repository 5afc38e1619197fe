// Package loader turns paths into decoded documents and back.
//
// Ownership boundary:
// - byte decoding through textio before any LAS or DEV parsing
// - applying the mnemonic alias table to every LAS parse
// - writing documents back in their source encoding
// - batch loading with a bounded worker pool, one parser per file
package loader
