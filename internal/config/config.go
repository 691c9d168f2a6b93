package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Artifact struct {
		Path string `yaml:"path"` // jar to analyze when none is given on the command line
	} `yaml:"artifact"`
	Output struct {
		Format string `yaml:"format"`  // table | json
		DBPath string `yaml:"db_path"` // run history (SQLite)
	} `yaml:"output"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console | json
	} `yaml:"logging"`
	Pipeline struct {
		Parallel bool     `yaml:"parallel"`
		Verbose  bool     `yaml:"verbose"`
		Toppings []string `yaml:"toppings"` // empty means all
	} `yaml:"pipeline"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	cfg.Output.Format = "table"
	cfg.Output.DBPath = "burger.db"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	return &cfg
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error. Environment variables (and a .env file, if present) override the
// file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	// 3. Override with Environment Variables if present
	if jar := os.Getenv("BURGER_JAR"); jar != "" {
		cfg.Artifact.Path = jar
	}
	if level := os.Getenv("BURGER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if db := os.Getenv("BURGER_DB"); db != "" {
		cfg.Output.DBPath = db
	}
	if v := os.Getenv("BURGER_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Pipeline.Verbose = b
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("output.format: unsupported value %q", c.Output.Format)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
