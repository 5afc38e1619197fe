// Package lex owns line-level tokenization of LAS and DEV text.
//
// Ownership boundary:
// - physical line classification (blank, comment, section header, content)
// - section title keywords and [n] / | Name suffixes
// - data delimiters and quote-aware field splitting
// - dialect constants shared by the grammar packages
package lex
