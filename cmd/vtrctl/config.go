package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeffday/vcr4j/logger"
	"github.com/jeffday/vcr4j/rs422"
	"github.com/jeffday/vcr4j/rs422/serial"
)

// duration wraps time.Duration so YAML accepts "10ms" syntax.
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = duration(v)

	return nil
}

// fileConfig is the YAML config file schema. Every field has a working
// default; command-line flags override file values.
type fileConfig struct {
	Port         string   `yaml:"port"`
	BaudRate     int      `yaml:"baud_rate"`
	CommandDelay duration `yaml:"command_delay"`
	LogLevel     string   `yaml:"log_level"`

	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

func defaultConfig() *fileConfig {
	return &fileConfig{
		BaudRate:     serial.DefaultBaudRate,
		CommandDelay: duration(rs422.DefaultCommandDelay),
		LogLevel:     "info",
	}
}

// loadConfig reads the YAML config at path, or returns the defaults when
// path is empty.
func loadConfig(path string) (*fileConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid baud_rate %d in %s", cfg.BaudRate, path)
	}
	if d := time.Duration(cfg.CommandDelay); d < 0 || d > rs422.MaxCommandDelay {
		return nil, fmt.Errorf("invalid command_delay %v in %s", d, path)
	}

	return cfg, nil
}

func parseLevel(s string) (logger.Level, error) {
	switch s {
	case "debug":
		return logger.DebugLevel, nil
	case "", "info":
		return logger.InfoLevel, nil
	case "warn":
		return logger.WarnLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
