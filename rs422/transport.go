package rs422

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeffday/vcr4j/internal/pool"
	"github.com/jeffday/vcr4j/logger"
	"github.com/jeffday/vcr4j/video"
)

// transport performs exactly one send/receive cycle per dispatched
// command: stamp the checksum, write the frame, then read the echoed
// header, data, and checksum with the configured inter-byte delay between
// stages.
//
// This type is NOT goroutine-safe. The engine's command loop is its only
// caller, consistent with the half-duplex, stateful nature of the link: no
// two cycles may ever overlap on the channel.
type transport struct {
	ch      Channel
	delay   time.Duration
	logger  logger.Logger
	parser  *responseParser
	metrics *Metrics
}

func newTransport(ch Channel, delay time.Duration, l logger.Logger, p *responseParser, m *Metrics) *transport {
	return &transport{
		ch:      ch,
		delay:   delay,
		logger:  l,
		parser:  p,
		metrics: m,
	}
}

// sendCommand runs one full cycle for frame, whose trailing byte is the
// checksum slot. Channel failures are converted into error events and
// logged; they do not propagate. The only non-nil return is a context
// error, re-signalling cancellation to the command loop.
func (t *transport) sendCommand(ctx context.Context, frame []byte, cmd video.Command) error {
	StampChecksum(frame)

	if t.logger.Level() <= logger.DebugLevel {
		t.logger.Debug("rs422: [0x"+hexString(frame)+"] >>> VTR", "command", cmd.Name())
	}

	err := t.cycle(ctx, frame, cmd)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// Aborted cycle: no partial state update, no retry. The
		// cancellation is re-signalled to the caller.
		t.parser.raiseError(KindInterrupted, err, cmd)

		return err
	}

	t.metrics.incTransportErrors()
	t.parser.raiseError(KindTransport, err, cmd)

	return nil
}

// cycle writes the frame and consumes its response.
func (t *transport) cycle(ctx context.Context, frame []byte, cmd video.Command) error {
	if err := writeAll(t.ch, frame); err != nil {
		return fmt.Errorf("rs422: failed to write command frame: %w", err)
	}
	t.metrics.incFramesSent()

	// Some serial adapters do not block correctly on I/O; give the deck
	// (and the driver) time to turn the line around.
	if err := pool.Sleep(ctx, t.delay); err != nil {
		return err
	}

	resp, err := t.readResponse(ctx)
	if err != nil {
		return err
	}
	if resp == nil {
		// No header bytes available. Absence of a response is not itself
		// an error; some commands are not answered.
		t.metrics.incEmptyResponses()

		return nil
	}

	if t.logger.Level() <= logger.DebugLevel {
		t.logger.Debug("rs422: [0x" + hexString(resp.cmd[:], resp.data, []byte{resp.checksum}) + "] <<< VTR")
	}

	t.metrics.incResponsesReceived()
	t.parser.update(cmd, resp)

	return nil
}

// readResponse reads one response frame: 2 echoed command bytes, the data
// bytes announced by the header's low nibble, and 1 checksum byte, with an
// inter-byte delay before the data and checksum stages. A (nil, nil)
// return means no response was available.
func (t *transport) readResponse(ctx context.Context) (*response, error) {
	avail, err := t.ch.Available()
	if err != nil {
		return nil, fmt.Errorf("rs422: channel availability check failed: %w", err)
	}
	if !avail {
		return nil, nil
	}

	r := &response{}
	if err := readFull(t.ch, r.cmd[:]); err != nil {
		return nil, fmt.Errorf("rs422: failed to read response header: %w", err)
	}

	if err := pool.Sleep(ctx, t.delay); err != nil {
		return nil, err
	}

	if n := DataCount(r.cmd[0]); n > 0 {
		avail, err = t.ch.Available()
		if err != nil {
			return nil, fmt.Errorf("rs422: channel availability check failed: %w", err)
		}
		if !avail {
			return nil, fmt.Errorf("%w: header=0x%s", ErrMissingData, hexString(r.cmd[:]))
		}

		r.data = make([]byte, n)
		if err := readFull(t.ch, r.data); err != nil {
			return nil, fmt.Errorf("rs422: failed to read response data: %w", err)
		}
	}

	if err := pool.Sleep(ctx, t.delay); err != nil {
		return nil, err
	}

	avail, err = t.ch.Available()
	if err != nil {
		return nil, fmt.Errorf("rs422: channel availability check failed: %w", err)
	}
	if !avail {
		return nil, fmt.Errorf("%w: header=0x%s data=0x%s",
			ErrMissingChecksum, hexString(r.cmd[:]), hexString(r.data))
	}

	var cs [1]byte
	if err := readFull(t.ch, cs[:]); err != nil {
		return nil, fmt.Errorf("rs422: failed to read response checksum: %w", err)
	}
	r.checksum = cs[0]

	return r, nil
}
