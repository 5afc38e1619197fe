// Package header parses the MNEM.UNIT VALUE : DESCRIPTION line shared by every
// LAS header section, and the {...} format specifier grammar.
package header
