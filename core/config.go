package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "roomcraft.config.yml"

type Config struct {
	TemplatesDir string `yaml:"templatesDir"`
	StaticDir    string `yaml:"staticDir"`
	OutputDir    string `yaml:"outputDir"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Debug        bool   `yaml:"debug"`
	DebugHeaders bool   `yaml:"debugHeaders"`
	DebugLogs    bool   `yaml:"debugLogs"`
}

func DefaultConfig() *Config {
	return &Config{
		TemplatesDir: "templates",
		StaticDir:    "static",
		OutputDir:    "./build",
		Host:         "127.0.0.1",
		Port:         5000,
		Debug:        true,
	}
}

// LoadConfig reads path as YAML on top of DefaultConfig. A missing or
// unreadable file yields the defaults; an invalid one also warns on stderr.
var LoadConfig = func(path string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Invalid config %s, using defaults: %v\n", path, err)
		return DefaultConfig()
	}

	defaults := DefaultConfig()
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = defaults.TemplatesDir
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = defaults.StaticDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}
	if cfg.Host == "" {
		cfg.Host = defaults.Host
	}
	if cfg.Port == 0 {
		cfg.Port = defaults.Port
	}

	return cfg
}
