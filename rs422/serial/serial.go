// Package serial adapts a physical RS-422 serial port to the channel
// contract of the rs422 engine, using go.bug.st/serial for the platform
// port access.
//
// Sony 9-pin decks speak 38400 baud, 8 data bits, odd parity, 1 stop
// bit; those are the defaults. The underlying port has no availability
// probe, so the adapter polls with a short read timeout and stashes any
// byte that arrives for the next Read.
package serial

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/jeffday/vcr4j/rs422"
)

// Default port settings for a Sony 9-pin deck.
const (
	DefaultBaudRate = 38400

	// DefaultPollTimeout is how long Available waits for a byte before
	// reporting the line idle.
	DefaultPollTimeout = 100 * time.Millisecond
)

// ErrReadTimeout is returned by Read when the deck stops answering
// mid-frame: the read timeout expires with no byte received.
var ErrReadTimeout = errors.New("serial: read timed out")

// Port is an open deck connection implementing rs422.Channel.
//
// Like the engine that owns it, Port is not goroutine-safe: all calls
// must come from the engine's command loop.
type Port struct {
	port  serial.Port
	stash []byte
}

var _ rs422.Channel = (*Port)(nil)

type config struct {
	baudRate    int
	pollTimeout time.Duration
}

// Option is a functional option for opening a port.
type Option func(*config) error

// WithBaudRate overrides the 38400 baud default for decks configured
// for a non-standard rate.
func WithBaudRate(rate int) Option {
	return func(cfg *config) error {
		if rate <= 0 {
			return fmt.Errorf("serial: invalid baud rate %d", rate)
		}
		cfg.baudRate = rate

		return nil
	}
}

// WithPollTimeout sets how long Available and Read wait for a byte.
func WithPollTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return fmt.Errorf("serial: invalid poll timeout %v", d)
		}
		cfg.pollTimeout = d

		return nil
	}
}

// Open opens the named port (e.g. /dev/ttyUSB0, COM3) with the Sony
// 9-pin line settings.
func Open(name string, opts ...Option) (*Port, error) {
	cfg := &config{
		baudRate:    DefaultBaudRate,
		pollTimeout: DefaultPollTimeout,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	mode := &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.OddParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: failed to open %s: %w", name, err)
	}

	if err := port.SetReadTimeout(cfg.pollTimeout); err != nil {
		_ = port.Close()

		return nil, fmt.Errorf("serial: failed to set read timeout on %s: %w", name, err)
	}

	return &Port{port: port}, nil
}

// Available reports whether at least one response byte is waiting. It
// probes the line with a single timed read; a byte that arrives is
// stashed for the next Read.
func (p *Port) Available() (bool, error) {
	if len(p.stash) > 0 {
		return true, nil
	}

	var probe [1]byte
	n, err := p.port.Read(probe[:])
	if err != nil {
		return false, fmt.Errorf("serial: probe read failed: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	p.stash = append(p.stash, probe[:n]...)

	return true, nil
}

// Read drains stashed probe bytes first, then reads from the port. A
// timed-out read with no data is reported as ErrReadTimeout rather than
// a zero-byte success, so framed reads fail fast on a dead line.
func (p *Port) Read(buf []byte) (int, error) {
	if len(p.stash) > 0 {
		n := copy(buf, p.stash)
		p.stash = p.stash[n:]

		return n, nil
	}

	n, err := p.port.Read(buf)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ErrReadTimeout
	}

	return n, nil
}

// Write writes a command frame to the port.
func (p *Port) Write(buf []byte) (int, error) {
	return p.port.Write(buf)
}

// Drain discards any bytes buffered on the line, both stashed and
// pending in the driver. Useful before the first command after opening,
// when the deck may have queued stale responses.
func (p *Port) Drain() error {
	p.stash = nil

	return p.port.ResetInputBuffer()
}

// Close closes the underlying port.
func (p *Port) Close() error {
	return p.port.Close()
}
