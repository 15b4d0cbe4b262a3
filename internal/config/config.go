package config

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the config file tlgen looks for in its working directory.
const FileName = "tlgen.toml"

// Config is the resolved generator configuration.
type Config struct {
	API     APIConfig
	Errors  ErrorsConfig
	Metrics MetricsConfig
	// Dir is the directory relative paths are resolved against.
	Dir string
}

// APIConfig drives the schema pipeline.
type APIConfig struct {
	Sources       []string
	Output        string
	Package       string
	RuntimeImport string
	VerifyIDs     bool
}

// ErrorsConfig drives the error-table pipeline.
type ErrorsConfig struct {
	Sources       []string
	Output        string
	Package       string
	RuntimeImport string
	// Codes overrides class names by code.
	Codes map[int]string
}

// MetricsConfig controls the textfile metrics dump.
type MetricsConfig struct {
	Textfile string
}

// tlgen.toml key mapping.
type fileConfig struct {
	API struct {
		Sources       []string `toml:"sources"`
		Output        string   `toml:"output"`
		Package       string   `toml:"package"`
		RuntimeImport string   `toml:"runtime_import"`
		VerifyIDs     bool     `toml:"verify_ids"`
	} `toml:"api"`
	Errors struct {
		Sources       []string          `toml:"sources"`
		Output        string            `toml:"output"`
		Package       string            `toml:"package"`
		RuntimeImport string            `toml:"runtime_import"`
		Codes         map[string]string `toml:"codes"`
	} `toml:"errors"`
	Metrics struct {
		Textfile string `toml:"textfile"`
	} `toml:"metrics"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		API: APIConfig{
			Sources:   []string{"schema"},
			Output:    "tl",
			Package:   "tl",
			VerifyIDs: true,
		},
		Errors: ErrorsConfig{
			Sources: []string{"errors"},
			Output:  "rpcerrors",
			Package: "rpcerrors",
			Codes:   map[int]string{},
		},
		Dir: ".",
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// relative paths resolve against the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()
	cfg.Dir = filepath.Dir(path)

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load tlgen config: %w", err)
	}

	if meta.IsDefined("api", "sources") {
		cfg.API.Sources = trimAll(raw.API.Sources)
	}
	if meta.IsDefined("api", "output") {
		cfg.API.Output = strings.TrimSpace(raw.API.Output)
	}
	if meta.IsDefined("api", "package") {
		cfg.API.Package = strings.TrimSpace(raw.API.Package)
	}
	if meta.IsDefined("api", "runtime_import") {
		cfg.API.RuntimeImport = strings.TrimSpace(raw.API.RuntimeImport)
	}
	if meta.IsDefined("api", "verify_ids") {
		cfg.API.VerifyIDs = raw.API.VerifyIDs
	}
	if meta.IsDefined("errors", "sources") {
		cfg.Errors.Sources = trimAll(raw.Errors.Sources)
	}
	if meta.IsDefined("errors", "output") {
		cfg.Errors.Output = strings.TrimSpace(raw.Errors.Output)
	}
	if meta.IsDefined("errors", "package") {
		cfg.Errors.Package = strings.TrimSpace(raw.Errors.Package)
	}
	if meta.IsDefined("errors", "runtime_import") {
		cfg.Errors.RuntimeImport = strings.TrimSpace(raw.Errors.RuntimeImport)
	}
	for key, name := range raw.Errors.Codes {
		code, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || code <= 0 {
			return Config{}, fmt.Errorf("load tlgen config: errors.codes: invalid code %q", key)
		}
		cfg.Errors.Codes[code] = strings.TrimSpace(name)
	}
	if meta.IsDefined("metrics", "textfile") {
		cfg.Metrics.Textfile = strings.TrimSpace(raw.Metrics.Textfile)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load tlgen config: unknown key %s", undecoded[0])
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks a configuration before any pipeline runs.
func Validate(cfg Config) error {
	if len(cfg.API.Sources) == 0 {
		return fmt.Errorf("api.sources is required")
	}
	if len(cfg.Errors.Sources) == 0 {
		return fmt.Errorf("errors.sources is required")
	}
	if cfg.API.Output == "" || cfg.Errors.Output == "" {
		return fmt.Errorf("api.output and errors.output are required")
	}
	if filepath.Clean(cfg.API.Output) == filepath.Clean(cfg.Errors.Output) {
		return fmt.Errorf("api.output and errors.output must differ (%s)", cfg.API.Output)
	}
	if !token.IsIdentifier(cfg.API.Package) {
		return fmt.Errorf("api.package %q is not a Go identifier", cfg.API.Package)
	}
	if !token.IsIdentifier(cfg.Errors.Package) {
		return fmt.Errorf("errors.package %q is not a Go identifier", cfg.Errors.Package)
	}
	for code, name := range cfg.Errors.Codes {
		if name == "" {
			return fmt.Errorf("errors.codes: empty class name for %d", code)
		}
	}
	return nil
}

// Path resolves p against the config directory.
func (c Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
