package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vango-dev/navstack/internal/errors"
	"github.com/vango-dev/navstack/pkg/routegen"
)

const (
	// ConfigName is the base name of the configuration file. Both
	// navgen.json and navgen.yaml are recognised.
	ConfigName = "navgen"

	// EnvPrefix prefixes environment overrides, e.g. NAVGEN_OUTPUT.
	EnvPrefix = "NAVGEN"

	// DefaultDir is the route package scanned when none is configured.
	DefaultDir = "."

	// DefaultDebounce is how long navgen watch waits for edits to settle.
	DefaultDebounce = 200 * time.Millisecond
)

// configTypes are tried in order when looking for a configuration file.
var configTypes = []string{"json", "yaml", "yml"}

// Config is the resolved navgen configuration.
type Config struct {
	// Dir is the route package directory, relative to the config file.
	Dir string `mapstructure:"dir" json:"dir" yaml:"dir"`

	// Output is the generated file name inside Dir.
	Output string `mapstructure:"output" json:"output" yaml:"output"`

	// Func is the name of the generated constructor.
	Func string `mapstructure:"func" json:"func" yaml:"func"`

	// ImportPath overrides the import path derived from go.mod.
	ImportPath string `mapstructure:"importPath" json:"importPath,omitempty" yaml:"importPath,omitempty"`

	// Debounce is the quiet period of navgen watch.
	Debounce time.Duration `mapstructure:"debounce" json:"debounce" yaml:"debounce"`

	configPath string
	root       string
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		Dir:      DefaultDir,
		Output:   routegen.DefaultOutput,
		Func:     routegen.DefaultFunc,
		Debounce: DefaultDebounce,
	}
}

// Load reads navgen.json or navgen.yaml from root, if present, then applies
// NAVGEN_* environment overrides and finally any changed flags. flags may
// be nil; flag names match the config keys.
func Load(root string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	defaults := Defaults()
	v.SetDefault("dir", defaults.Dir)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("func", defaults.Func)
	v.SetDefault("importPath", defaults.ImportPath)
	v.SetDefault("debounce", defaults.Debounce)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{"dir", "output", "func", "debounce"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.New("E120").Wrap(err)
				}
			}
		}
		if f := flags.Lookup("import-path"); f != nil {
			if err := v.BindPFlag("importPath", f); err != nil {
				return nil, errors.New("E120").Wrap(err)
			}
		}
	}

	cfg := &Config{root: root}
	if path := findConfigFile(root); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				Wrap(err)
		}
		cfg.configPath = path
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E120").WithDetail(err.Error()).Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first navgen.<ext> in dir.
func findConfigFile(dir string) string {
	for _, ext := range configTypes {
		path := filepath.Join(dir, ConfigName+"."+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate rejects values the generator cannot use.
func (c *Config) Validate() error {
	if c.Output == "" || filepath.Base(c.Output) != c.Output || filepath.Ext(c.Output) != ".go" {
		return errors.New("E120").
			WithDetail("output must be a .go file name without directories, got " + quote(c.Output))
	}
	if strings.HasSuffix(c.Output, "_test.go") {
		return errors.New("E120").WithDetail("output must not be a test file")
	}
	if c.Func == "" {
		return errors.New("E120").WithDetail("func must not be empty")
	}
	if c.Debounce < 0 {
		return errors.New("E120").WithDetail("debounce must not be negative")
	}
	return nil
}

// Path returns the file the configuration was read from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// RoutesPath returns the absolute-or-root-relative route directory.
func (c *Config) RoutesPath() string {
	if filepath.IsAbs(c.Dir) {
		return c.Dir
	}
	return filepath.Join(c.root, c.Dir)
}

// OutputPath returns the path of the generated file.
func (c *Config) OutputPath() string {
	return filepath.Join(c.RoutesPath(), c.Output)
}

// FindProjectRoot walks up from startDir to the first directory holding a
// navgen config file or a go.mod.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if findConfigFile(dir) != "" {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E121").
				WithDetail("No navgen config or go.mod found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the configuration of the project containing the
// working directory. Outside any project the defaults apply to the working
// directory itself.
func LoadFromWorkingDir(flags *pflag.FlagSet) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		var ne *errors.NavError
		if !stderrors.As(err, &ne) {
			return nil, err
		}
		root = wd
	}
	return Load(root, flags)
}

func quote(s string) string {
	return `"` + s + `"`
}
