package config

import (
	"fmt"
	"os"
)

func Template() string {
	return lasdevTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite && exists(path) {
		return fmt.Errorf("config already exists: %s", path)
	}
	return os.WriteFile(path, []byte(lasdevTemplate), 0o600)
}

const lasdevTemplate = `# lasdev configuration
workers = 0

[encoding]
hint = ""
fallbacks = ["utf-8", "cp1251", "cp1252", "cp866", "latin-1"]
max_file_size = 0

[mnemonics]
builtin = true
table = ""

[dev]
default = 0.0

[output]
dialect = "keep"
delimiter = ""

[log]
level = "info"
no_color = false
`
