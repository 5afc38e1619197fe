// Package mnemonic maps raw curve mnemonics to canonical names.
//
// Ownership boundary:
// - the built-in alias dictionary shipped with the binary
// - loading user alias tables from YAML
// - the merge rule for repeated aliases: the last registration wins, in
//   file order and then in load order
package mnemonic
