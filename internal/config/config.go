// Package config reads the YAML configuration file of the ntru command.
package config

import (
	"io"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var (
	// DefaultConfigFiles are the file names searched in the default directories.
	DefaultConfigFiles = []string{"config.yml", "config.yaml"}

	defaultUserConfigDirs = []string{"~/.ntru", "~/.config/ntru"}
)

// Configuration is the content of a configuration file. Command-line flags
// take precedence over its values.
type Configuration struct {
	// Params is the name of the parameter set of the catalog.
	Params string `yaml:"params"`
	// Security selects the default parameter set of a security level when Params is empty.
	Security int `yaml:"security"`

	LogLevel string `yaml:"loglevel"`
	LogFile  string `yaml:"logfile"`

	Bench BenchConfig `yaml:"bench"`

	sourceFile string
}

// BenchConfig configures the bench command.
type BenchConfig struct {
	Workers    int `yaml:"workers"`
	Iterations int `yaml:"iterations"`
	MessageLen int `yaml:"messageLen"`
}

// Default returns the configuration used without a configuration file.
func Default() *Configuration {
	return &Configuration{
		Security: 128,
		LogLevel: "info",
		Bench: BenchConfig{
			Workers:    1,
			Iterations: 100,
			MessageLen: 32,
		},
	}
}

// Source returns the path of the file the configuration was read from.
func (c *Configuration) Source() string {
	return c.sourceFile
}

// Validate checks the values that cannot be checked by the YAML decoder.
func (c *Configuration) Validate() error {
	switch {
	case c.Bench.Workers < 1:
		return errors.Errorf("bench.workers=%d must be positive", c.Bench.Workers)
	case c.Bench.Iterations < 1:
		return errors.Errorf("bench.iterations=%d must be positive", c.Bench.Iterations)
	case c.Bench.MessageLen < 0:
		return errors.Errorf("bench.messageLen=%d must not be negative", c.Bench.MessageLen)
	}
	return nil
}

// Decode reads a configuration from r. Unset values keep their default.
// Unknown keys are an error.
func Decode(r io.Reader) (*Configuration, error) {

	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "error parsing YAML configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// Encode writes cfg on w in YAML.
func (c *Configuration) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "error encoding YAML configuration")
	}
	return enc.Close()
}

// ReadConfigFile reads the configuration file at path. If path is empty,
// the first existing default file is read, and the default configuration
// is returned if there is none.
func ReadConfigFile(path string, log *zerolog.Logger) (*Configuration, error) {

	if path == "" {
		if path = FindDefaultConfigPath(); path == "" {
			log.Debug().Msg("No configuration file found, using the defaults")
			return Default(), nil
		}
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot expand configuration path %s", path)
	}
	path = expanded

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open configuration file %s", path)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "configuration file %s", path)
	}

	cfg.sourceFile = path
	log.Debug().Msgf("Read configuration from %s", path)

	return cfg, nil
}

// DefaultConfigSearchDirectories returns the directories searched for a
// configuration file, in order.
func DefaultConfigSearchDirectories() []string {
	return append([]string(nil), defaultUserConfigDirs...)
}

// FindDefaultConfigPath returns the first existing configuration file of
// [DefaultConfigSearchDirectories], or the empty string.
func FindDefaultConfigPath() string {
	for _, configDir := range DefaultConfigSearchDirectories() {
		dirPath, err := homedir.Expand(configDir)
		if err != nil {
			continue
		}
		for _, configFile := range DefaultConfigFiles {
			path := filepath.Join(dirPath, configFile)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}
