package rs422

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jeffday/vcr4j/logger"
	"github.com/jeffday/vcr4j/multicast"
	"github.com/jeffday/vcr4j/video"
)

// VideoIO is the RS-422 protocol engine for one deck.
//
// Commands are submitted with Send and processed strictly one at a time in
// arrival order by a single worker that owns the channel: a command's
// response is fully resolved before the next command's frame is written.
// Decoded results and failures are delivered on the engine's event
// streams; nothing is ever returned synchronously to the submitter.
type VideoIO struct {
	ctx       context.Context
	ctxCancel context.CancelFunc
	cfg       *Config
	logger    logger.Logger

	channel   Channel
	transport *transport
	parser    *responseParser
	encoder   Encoder

	commands       chan video.Command
	commandSubject *multicast.Subject[video.Command]
	indexSubject   *multicast.Distinct[video.Index]

	metrics   Metrics
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an engine over the given channel and starts its command
// loop. The channel is owned exclusively by the engine until Close.
func New(ctx context.Context, ch Channel, cfg *Config) (*VideoIO, error) {
	if ch == nil {
		return nil, errors.New("rs422: channel is nil")
	}
	if cfg == nil {
		return nil, errors.New("rs422: config is nil")
	}

	v := &VideoIO{
		cfg:            cfg,
		logger:         cfg.logger.With("connectionID", cfg.connectionID.String()),
		channel:        ch,
		encoder:        cfg.encoder,
		commands:       make(chan video.Command, cfg.queueSize),
		commandSubject: multicast.NewSubject[video.Command](),
		indexSubject:   multicast.NewDistinct[video.Index](),
		done:           make(chan struct{}),
	}

	v.ctx, v.ctxCancel = context.WithCancel(ctx)
	v.parser = newResponseParser(v.logger, &v.metrics)
	v.transport = newTransport(ch, cfg.commandDelay, v.logger, v.parser, &v.metrics)

	// The video index combines the latest timecode with the latest state:
	// recompute whenever either updates. These internal subscriptions run
	// on the command loop, after the parser has stored the new value.
	v.parser.timecodeSubject.Subscribe(func(video.Timecode) { v.recomputeIndex() })
	v.parser.stateSubject.Subscribe(func(State) { v.recomputeIndex() })

	go v.commandLoop()

	return v, nil
}

// ConnectionID returns the engine's connection identifier.
func (v *VideoIO) ConnectionID() uuid.UUID { return v.cfg.connectionID }

// GetLogger returns the engine's logger.
func (v *VideoIO) GetLogger() logger.Logger { return v.logger }

// GetMetrics returns the engine's metrics counters.
func (v *VideoIO) GetMetrics() *Metrics { return &v.metrics }

// Send submits a command for dispatch. Submission is fire-and-forget:
// failures surface only on the Errors stream. Commands submitted after
// Close are dropped.
func (v *VideoIO) Send(cmd video.Command) {
	if cmd == nil {
		return
	}

	select {
	case <-v.ctx.Done():
		v.logger.Debug("rs422: engine closed, command dropped", "command", cmd.Name())
	case v.commands <- cmd:
	}
}

// Close stops the command loop and releases the channel. It does not
// close the underlying port; that belongs to the serial-port collaborator
// that opened it.
func (v *VideoIO) Close() error {
	v.closeOnce.Do(func() {
		v.ctxCancel()
	})
	<-v.done

	return nil
}

// --- Event streams ---

// Commands is the stream of submitted commands, in dispatch order.
func (v *VideoIO) Commands() multicast.Observable[video.Command] { return v.commandSubject }

// Errors is the stream of communication and protocol failures.
func (v *VideoIO) Errors() multicast.Observable[Error] { return v.parser.errorSubject }

// States is the stream of decoded deck states.
func (v *VideoIO) States() multicast.Observable[State] { return v.parser.stateSubject }

// Timecodes is the stream of decoded timecodes.
func (v *VideoIO) Timecodes() multicast.Observable[video.Timecode] { return v.parser.timecodeSubject }

// Userbits is the stream of decoded userbits; a value is published
// whenever either group updates.
func (v *VideoIO) Userbits() multicast.Observable[Userbits] { return v.parser.userbitsSubject }

// Indices is the derived video-index stream. While the deck reports that
// it is recording, each index carries a wall-clock timestamp alongside the
// latest timecode; consecutive equal snapshots are suppressed.
func (v *VideoIO) Indices() multicast.Observable[video.Index] { return v.indexSubject }

// --- Current values ---

// CurrentState returns the most recently decoded deck state.
func (v *VideoIO) CurrentState() State { return v.parser.State() }

// CurrentTimecode returns the most recently decoded timecode and whether
// one has been decoded yet.
func (v *VideoIO) CurrentTimecode() (video.Timecode, bool) { return v.parser.Timecode() }

// CurrentUserbits returns the most recently decoded userbits groups.
func (v *VideoIO) CurrentUserbits() Userbits { return v.parser.Userbits() }

// --- Command loop ---

// commandLoop is the single worker owning the channel. It processes
// commands strictly one at a time in arrival order.
func (v *VideoIO) commandLoop() {
	defer close(v.done)

	for {
		select {
		case <-v.ctx.Done():
			return

		case cmd := <-v.commands:
			v.dispatch(cmd)

			if v.ctx.Err() != nil {
				return
			}
		}
	}
}

// dispatch applies the routing rules for one submitted command, in order:
// synthetic commands that never touch the wire, the userbits fan-out, and
// finally the command-encoding table.
func (v *VideoIO) dispatch(cmd video.Command) {
	v.commandSubject.Publish(cmd)

	if inject, ok := cmd.(video.InjectIndexCommand); ok {
		v.indexSubject.Publish(inject.Index)

		return
	}

	switch cmd {
	case RequestUserbits:
		// LTC and VITC user-bit access is deck-state dependent; request
		// both groups to get a reliable answer.
		v.transmit(RequestLocalUserbits)
		v.transmit(RequestVerticalUserbits)

	case video.RequestTimestamp, video.RequestElapsedTime:
		// Satisfied from the host clock; never encoded or sent.
		v.indexSubject.Publish(video.NewTimestampIndex(time.Now()))

	default:
		v.transmit(cmd)
	}
}

// transmit encodes cmd and runs its send/receive cycle. Commands the table
// does not know are dropped without an error: they are unsupported, not
// protocol failures.
func (v *VideoIO) transmit(cmd video.Command) {
	enc := v.encoder.Encode(cmd)
	if isUndefined(enc) {
		v.metrics.incCommandsDropped()
		v.logger.Debug("rs422: command has no wire encoding, dropped", "command", cmd.Name())

		return
	}

	// Copy before stamping the checksum so the encoder may return shared
	// table entries.
	frame := make([]byte, len(enc))
	copy(frame, enc)

	_ = v.transport.sendCommand(v.ctx, frame, cmd)
}

// recomputeIndex rebuilds the derived video index from the latest decoded
// values. The timestamp is populated only while the deck is recording; the
// timecode whenever one has been observed. The distinct subject suppresses
// consecutive duplicates.
func (v *VideoIO) recomputeIndex() {
	var idx video.Index

	if tc, ok := v.parser.Timecode(); ok {
		idx.Timecode = tc
		idx.HasTimecode = true
	}
	if v.parser.State().IsRecording() {
		idx.Timestamp = time.Now()
		idx.HasTimestamp = true
	}

	v.indexSubject.Publish(idx)
}
