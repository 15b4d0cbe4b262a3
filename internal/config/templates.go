package config

import (
	"fmt"
	"os"
)

// Template returns the annotated tlgen.toml written by `tlgen init`.
func Template() string { return template }

// WriteTemplate writes the template to path, refusing to replace an
// existing file unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o644)
}

const template = `# tlgen configuration. Relative paths resolve against this file.

[api]
# TL schema files or directories of *.tl files, merged in order.
sources = ["schema"]
output = "tl"
package = "tl"
# runtime_import = "github.com/danmuck/tlgen/pkg/tlbin"
# Fail when a declared constructor id differs from its CRC32 checksum.
verify_ids = true

[errors]
# Error tables: "code NAME description" files or <code>_<CLASS>.tsv files.
sources = ["errors"]
output = "rpcerrors"
package = "rpcerrors"
# runtime_import = "github.com/danmuck/tlgen/pkg/rpcerr"

[errors.codes]
# 420 = "FLOOD"

[metrics]
# Prometheus textfile collector output, written after every run.
# textfile = "tlgen.prom"
`
