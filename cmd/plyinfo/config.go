package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the plyinfo configuration file (~/.config/plyload/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Limit *int  `yaml:"limit"`
	JSON  *bool `yaml:"json"`
	Mmap  *bool `yaml:"mmap"`
}

func configPath() string {
	if p := os.Getenv("PLYINFO_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "plyload", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}
	}
	return cfg
}

func parseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyLoggingConfig applies config defaults to the global logging flags
// that were not set on the command line.
func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyOutputConfig applies config defaults to per-command output flags.
func applyOutputConfig(c *cli.Command, cfg Config, limit *int, asJSON, mmap *bool) {
	if cfg.Limit != nil && limit != nil && !c.IsSet("limit") {
		*limit = *cfg.Limit
	}
	if cfg.JSON != nil && asJSON != nil && !c.IsSet("json") {
		*asJSON = *cfg.JSON
	}
	if cfg.Mmap != nil && mmap != nil && !c.IsSet("mmap") {
		*mmap = *cfg.Mmap
	}
}
