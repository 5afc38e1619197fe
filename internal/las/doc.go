// Package las is the LAS 1.2/2.0/3.0 document model, reader and writer.
//
// Ownership boundary:
// - the section state machine (Version, Well, then Parameter/Definition/Data
//   sets in any order) and definition bindings
// - dialect resolution from the Version section
// - array channel grouping, zoned parameter identity and Well requirements
// - canonical LAS text output
//
// Line classification, header line grammar and data row decoding live in
// the lex, header and ascii subpackages. Byte decoding and mnemonic aliases
// are supplied by the caller.
package las
