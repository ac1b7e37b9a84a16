// Package config provides configuration structures and defaults for kvwire.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/MikhailWahib/kvwire/internal/table"
)

const (
	// 64 bytes matches the default receive buffer of common microcontroller UARTs.
	defaultBufferBytes          = 64
	defaultLineTerminator       = "\n"
	defaultInitialCapacity      = 8
	defaultLoadFactor           = 0.7
	defaultSinkCapacity         = 128
	defaultWritePollInterval    = time.Millisecond
	defaultMaxWritePollInterval = 50 * time.Millisecond
	defaultLogLevel             = "info"
)

// Config holds the tunable parameters of the stream manager and the stores it creates.
type Config struct {
	// BufferBytes caps the length of a single line; longer lines are truncated.
	BufferBytes int `toml:"buffer_bytes" yaml:"buffer_bytes"`
	// LineTerminator is the single byte that ends a line on read.
	LineTerminator string `toml:"line_terminator" yaml:"line_terminator"`

	InitialCapacity int     `toml:"initial_capacity" yaml:"initial_capacity"`
	LoadFactor      float64 `toml:"load_factor" yaml:"load_factor"`
	// MaxCapacity bounds the bucket count of each store; 0 means unbounded.
	MaxCapacity int `toml:"max_capacity" yaml:"max_capacity"`

	SinkCapacity int `toml:"sink_capacity" yaml:"sink_capacity"`

	WritePollInterval    time.Duration `toml:"write_poll_interval" yaml:"write_poll_interval"`
	MaxWritePollInterval time.Duration `toml:"max_write_poll_interval" yaml:"max_write_poll_interval"`

	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a Config struct populated with default values.
func DefaultConfig() *Config {
	return &Config{
		BufferBytes:          defaultBufferBytes,
		LineTerminator:       defaultLineTerminator,
		InitialCapacity:      defaultInitialCapacity,
		LoadFactor:           defaultLoadFactor,
		SinkCapacity:         defaultSinkCapacity,
		WritePollInterval:    defaultWritePollInterval,
		MaxWritePollInterval: defaultMaxWritePollInterval,
		LogLevel:             defaultLogLevel,
	}
}

// FillDefaults sets any zero-value or negative fields in the Config to their
// default values.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.BufferBytes <= 0 {
		c.BufferBytes = def.BufferBytes
	}
	if c.LineTerminator == "" {
		c.LineTerminator = def.LineTerminator
	}
	if c.InitialCapacity <= 0 {
		c.InitialCapacity = def.InitialCapacity
	}
	if c.LoadFactor <= 0 {
		c.LoadFactor = def.LoadFactor
	}
	if c.SinkCapacity <= 0 {
		c.SinkCapacity = def.SinkCapacity
	}
	if c.WritePollInterval <= 0 {
		c.WritePollInterval = def.WritePollInterval
	}
	if c.MaxWritePollInterval <= 0 {
		c.MaxWritePollInterval = def.MaxWritePollInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if c.BufferBytes < 1 {
		errs = append(errs, fmt.Errorf("buffer_bytes must be positive, got %d", c.BufferBytes))
	}
	if len(c.LineTerminator) != 1 {
		errs = append(errs, fmt.Errorf("line_terminator must be a single byte, got %q", c.LineTerminator))
	}
	if c.InitialCapacity < 1 {
		errs = append(errs, fmt.Errorf("initial_capacity must be positive, got %d", c.InitialCapacity))
	}
	if c.LoadFactor <= 0 {
		errs = append(errs, fmt.Errorf("load_factor must be positive, got %g", c.LoadFactor))
	}
	if c.MaxCapacity < 0 {
		errs = append(errs, fmt.Errorf("max_capacity must not be negative, got %d", c.MaxCapacity))
	}
	if c.MaxCapacity > 0 && c.MaxCapacity < c.InitialCapacity {
		errs = append(errs, fmt.Errorf("max_capacity %d is below initial_capacity %d", c.MaxCapacity, c.InitialCapacity))
	}
	if c.SinkCapacity < 1 {
		errs = append(errs, fmt.Errorf("sink_capacity must be positive, got %d", c.SinkCapacity))
	}
	if c.WritePollInterval < 0 || c.MaxWritePollInterval < c.WritePollInterval {
		errs = append(errs, fmt.Errorf("write poll intervals invalid: %s..%s", c.WritePollInterval, c.MaxWritePollInterval))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	return nil
}

// Terminator returns the line terminator byte.
func (c *Config) Terminator() byte {
	if c.LineTerminator == "" {
		return defaultLineTerminator[0]
	}
	return c.LineTerminator[0]
}

// TableOptions returns the store options derived from c.
func (c *Config) TableOptions() table.Options {
	return table.Options{
		InitialCapacity: c.InitialCapacity,
		LoadFactor:      c.LoadFactor,
		MaxCapacity:     c.MaxCapacity,
	}
}

// LoadFile reads a TOML (.toml) or YAML (.yaml, .yml) config file, fills
// defaults for missing fields and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config load failed (%s): unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
