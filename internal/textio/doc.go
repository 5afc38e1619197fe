// Package textio turns file bytes into text and back.
//
// Ownership boundary:
// - explicit encoding hints and the ordered fallback chain
// - the maximum input size check
// - re-encoding text on write
//
// Parsers never see bytes; they receive the text and the name of the
// encoding that produced it.
package textio
