// Package ascii decodes the rows of a LAS data section into columns.
//
// Ownership boundary:
// - the non-wrapped (one line per row) and wrapped (index line plus
//   continuation lines) reading protocols
// - NULL substitution for empty and non-numeric fields
// - index channel validity and monotonicity
// - columnar accumulation of rows, independent of the protocol that fed them
package ascii
