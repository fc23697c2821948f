package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// primops.toml key mapping. Every key is optional.
type fileConfig struct {
	Format            string `toml:"format"`
	Verbose           bool   `toml:"verbose"`
	Database          string `toml:"db"`
	Scenarios         string `toml:"scenarios"`
	Workers           int    `toml:"workers"`
	ContinueOnFailure bool   `toml:"continue_on_failure"`
}

// Config holds the settings read from a --config file.
type Config struct {
	Path string

	// Scenarios is the default directory for test and validate.
	Scenarios string

	// flags maps flag names to values for keys present in the file.
	flags map[string]string
	order []string
}

// LoadConfig reads a TOML config file. Relative db and scenarios paths are
// resolved against the file's directory.
func LoadConfig(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	cfg := Config{Path: path, flags: make(map[string]string)}
	base := filepath.Dir(path)

	if meta.IsDefined("format") {
		format := strings.TrimSpace(raw.Format)
		if !isValidFormat(format) {
			return Config{}, fmt.Errorf("load config: invalid format %q: must be one of %v", format, ValidFormats)
		}
		cfg.set("format", format)
	}
	if meta.IsDefined("verbose") {
		cfg.set("verbose", strconv.FormatBool(raw.Verbose))
	}
	if meta.IsDefined("db") {
		cfg.set("db", resolvePath(base, raw.Database))
	}
	if meta.IsDefined("workers") {
		if raw.Workers < 1 {
			return Config{}, fmt.Errorf("load config: workers must be at least 1, got %d", raw.Workers)
		}
		cfg.set("workers", strconv.Itoa(raw.Workers))
	}
	if meta.IsDefined("continue_on_failure") {
		cfg.set("keep-going", strconv.FormatBool(raw.ContinueOnFailure))
	}
	if meta.IsDefined("scenarios") {
		cfg.Scenarios = resolvePath(base, raw.Scenarios)
	}
	return cfg, nil
}

func (c *Config) set(flag, value string) {
	c.flags[flag] = value
	c.order = append(c.order, flag)
}

// Apply sets each configured flag that cmd defines and that was not given on
// the command line.
func (c Config) Apply(cmd *cobra.Command) error {
	flags := cmd.Flags()
	for _, name := range c.order {
		flag := flags.Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}
		if err := flags.Set(name, c.flags[name]); err != nil {
			return fmt.Errorf("config key for --%s: %w", name, err)
		}
	}
	return nil
}

func resolvePath(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
