package rs422

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jeffday/vcr4j/logger"
	"github.com/jeffday/vcr4j/video"
)

// Default configuration values.
const (
	// DefaultCommandDelay is the inter-byte delay between the frame write
	// and each stage of the response read. Tens of milliseconds suit most
	// USB serial adapters; direct UARTs get away with less.
	DefaultCommandDelay = 10 * time.Millisecond

	// MaxCommandDelay bounds the configurable delay; anything longer makes
	// the deck unresponsive to interactive control.
	MaxCommandDelay = time.Second

	// DefaultCommandQueueSize is the capacity of the ordered command queue.
	DefaultCommandQueueSize = 16
)

// Encoder is the command-encoding table collaborator.
//
// Encode returns the full outbound frame for cmd, including the trailing
// checksum slot (which the engine stamps just before transmission). For a
// command with no wire encoding it returns nil or the undefined sentinel:
// a frame whose two command bytes are both zero. Such commands are
// silently dropped; they are unsupported, not protocol errors.
//
// The rs422/commands package provides the standard Sony 9-pin table.
type Encoder interface {
	Encode(cmd video.Command) []byte
}

// isUndefined reports whether an encoding is the undefined sentinel.
func isUndefined(frame []byte) bool {
	return len(frame) < minFrameSize || (frame[0] == 0 && frame[1] == 0)
}

// Config holds the configuration of a VideoIO engine.
type Config struct {
	encoder      Encoder
	commandDelay time.Duration
	queueSize    int
	connectionID uuid.UUID
	logger       logger.Logger
}

// NewConfig creates an engine configuration. encoder is the
// command-encoding table; opts are functional options applied in order.
func NewConfig(encoder Encoder, opts ...Option) (*Config, error) {
	if encoder == nil {
		return nil, errors.New("rs422: command encoder is nil")
	}

	cfg := &Config{
		encoder:      encoder,
		commandDelay: DefaultCommandDelay,
		queueSize:    DefaultCommandQueueSize,
		connectionID: uuid.New(),
		logger:       logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// CommandDelay returns the configured inter-byte delay.
func (cfg *Config) CommandDelay() time.Duration { return cfg.commandDelay }

// QueueSize returns the capacity of the command queue.
func (cfg *Config) QueueSize() int { return cfg.queueSize }

// ConnectionID returns the engine's connection identifier.
func (cfg *Config) ConnectionID() uuid.UUID { return cfg.connectionID }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Option is a functional option for configuring an engine.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithCommandDelay sets the inter-byte delay. This is a compatibility shim
// for serial adapters that do not block correctly on I/O, not a protocol
// requirement; zero disables the delay entirely.
func WithCommandDelay(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < 0 || d > MaxCommandDelay {
			return fmt.Errorf("rs422: command delay %v out of range [0, %v]", d, MaxCommandDelay)
		}
		cfg.commandDelay = d

		return nil
	})
}

// WithCommandQueueSize sets the capacity of the ordered command queue.
func WithCommandQueueSize(size int) Option {
	return optFunc(func(cfg *Config) error {
		if size < 1 {
			return errors.New("rs422: command queue size must be >= 1")
		}
		cfg.queueSize = size

		return nil
	})
}

// WithConnectionID sets the engine's connection identifier. A random one
// is generated when not set.
func WithConnectionID(id uuid.UUID) Option {
	return optFunc(func(cfg *Config) error {
		cfg.connectionID = id

		return nil
	})
}

// WithLogger sets the logger for the engine.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("rs422: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
