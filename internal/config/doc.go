// Package config loads the lasdev TOML configuration.
//
// Ownership boundary:
// - file schema, defaults and validation
// - conversion into the option values of textio, las, dev and mnemonic
// - the starter template written by `lasdev config init`
package config
