// Package compare decides whether two decoded documents are equivalent:
// identical structure and text, numeric columns equal within tolerance.
package compare
