// Package dev reads and writes DEV deviation surveys: a column-name line
// followed by whitespace-delimited numeric rows, with no sections and no
// NULL convention.
package dev
