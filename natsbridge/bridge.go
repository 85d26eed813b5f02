// Package natsbridge republishes a deck engine's event streams onto
// NATS subjects as JSON, so timecode, state, and index events can feed
// annotation and recording services without those services holding the
// serial port.
package natsbridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jeffday/vcr4j/logger"
	"github.com/jeffday/vcr4j/multicast"
	"github.com/jeffday/vcr4j/rs422"
	"github.com/jeffday/vcr4j/video"
)

// DefaultSubjectPrefix is the root of the published subject hierarchy.
// Events land on <prefix>.<stream>, e.g. vtr.timecode, vtr.state.
const DefaultSubjectPrefix = "vtr"

// Publisher is the messaging surface the bridge needs; *nats.Conn
// satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Streams is the subset of the engine surface the bridge consumes;
// *rs422.VideoIO satisfies it.
type Streams interface {
	Commands() multicast.Observable[video.Command]
	Errors() multicast.Observable[rs422.Error]
	States() multicast.Observable[rs422.State]
	Timecodes() multicast.Observable[video.Timecode]
	Userbits() multicast.Observable[rs422.Userbits]
	Indices() multicast.Observable[video.Index]
}

// Bridge forwards engine events to NATS until closed. Publish failures
// are logged and dropped; the deck does not wait for the message bus.
type Bridge struct {
	pub     Publisher
	logger  logger.Logger
	prefix  string
	cancels []func()
}

// Option is a functional option for configuring a bridge.
type Option func(*Bridge) error

// WithSubjectPrefix overrides the vtr subject prefix, e.g. to separate
// multiple decks: vtr.deck1, vtr.deck2.
func WithSubjectPrefix(prefix string) Option {
	return func(b *Bridge) error {
		if prefix == "" {
			return errors.New("natsbridge: subject prefix must not be empty")
		}
		b.prefix = prefix

		return nil
	}
}

// WithLogger sets the logger for the bridge.
func WithLogger(l logger.Logger) Option {
	return func(b *Bridge) error {
		if l == nil {
			return errors.New("natsbridge: logger must not be nil")
		}
		b.logger = l

		return nil
	}
}

// New subscribes to every stream of src and starts forwarding. The
// bridge does not own the connection; closing the bridge only cancels
// the subscriptions.
func New(pub Publisher, src Streams, opts ...Option) (*Bridge, error) {
	if pub == nil {
		return nil, errors.New("natsbridge: publisher is nil")
	}
	if src == nil {
		return nil, errors.New("natsbridge: stream source is nil")
	}

	b := &Bridge{
		pub:    pub,
		logger: logger.GetLogger(),
		prefix: DefaultSubjectPrefix,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	b.cancels = []func(){
		src.Commands().Subscribe(func(cmd video.Command) {
			b.publish("command", commandMessage{Command: cmd.Name(), Time: time.Now()})
		}),
		src.Errors().Subscribe(func(e rs422.Error) {
			b.publish("error", newErrorMessage(e))
		}),
		src.States().Subscribe(func(s rs422.State) {
			b.publish("state", newStateMessage(s))
		}),
		src.Timecodes().Subscribe(func(tc video.Timecode) {
			b.publish("timecode", timecodeMessage{Timecode: tc.String(), Time: time.Now()})
		}),
		src.Userbits().Subscribe(func(ub rs422.Userbits) {
			b.publish("userbits", newUserbitsMessage(ub))
		}),
		src.Indices().Subscribe(func(idx video.Index) {
			b.publish("index", newIndexMessage(idx))
		}),
	}

	return b, nil
}

// Close cancels all stream subscriptions. It does not close the NATS
// connection.
func (b *Bridge) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

// publish marshals msg and sends it on <prefix>.<stream>. Runs on the
// engine's loop goroutine, so it must never block.
func (b *Bridge) publish(stream string, msg any) {
	subject := b.prefix + "." + stream

	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("natsbridge: failed to marshal event", "subject", subject, "error", err)

		return
	}

	if err := b.pub.Publish(subject, data); err != nil {
		b.logger.Error("natsbridge: failed to publish event", "subject", subject, "error", err)
	}
}

// --- Wire messages ---

type commandMessage struct {
	Command string    `json:"command"`
	Time    time.Time `json:"time"`
}

type timecodeMessage struct {
	Timecode string    `json:"timecode"`
	Time     time.Time `json:"time"`
}

type stateMessage struct {
	Raw       uint32    `json:"raw"`
	Playing   bool      `json:"playing"`
	Recording bool      `json:"recording"`
	Stopped   bool      `json:"stopped"`
	Local     bool      `json:"local"`
	Time      time.Time `json:"time"`
}

func newStateMessage(s rs422.State) stateMessage {
	return stateMessage{
		Raw:       uint32(s),
		Playing:   s.IsPlaying(),
		Recording: s.IsRecording(),
		Stopped:   s.IsStopped(),
		Local:     s.IsLocal(),
		Time:      time.Now(),
	}
}

type userbitsMessage struct {
	Local    string    `json:"local"`
	Vertical string    `json:"vertical"`
	Time     time.Time `json:"time"`
}

func newUserbitsMessage(ub rs422.Userbits) userbitsMessage {
	return userbitsMessage{
		Local:    fmt.Sprintf("%02X%02X%02X%02X", ub.Local[0], ub.Local[1], ub.Local[2], ub.Local[3]),
		Vertical: fmt.Sprintf("%02X%02X%02X%02X", ub.Vertical[0], ub.Vertical[1], ub.Vertical[2], ub.Vertical[3]),
		Time:     time.Now(),
	}
}

type errorMessage struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Command string    `json:"command,omitempty"`
	Time    time.Time `json:"time"`
}

func newErrorMessage(e rs422.Error) errorMessage {
	msg := errorMessage{
		Kind: e.Kind.String(),
		Time: time.Now(),
	}
	if e.Cause != nil {
		msg.Message = e.Cause.Error()
	}
	if e.Command != nil {
		msg.Command = e.Command.Name()
	}

	return msg
}

type indexMessage struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Timecode  *string    `json:"timecode,omitempty"`
}

func newIndexMessage(idx video.Index) indexMessage {
	var msg indexMessage
	if idx.HasTimestamp {
		ts := idx.Timestamp
		msg.Timestamp = &ts
	}
	if idx.HasTimecode {
		tc := idx.Timecode.String()
		msg.Timecode = &tc
	}

	return msg
}
