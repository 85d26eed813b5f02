package rs422

import (
	"fmt"
	"sync"

	"github.com/jeffday/vcr4j/logger"
	"github.com/jeffday/vcr4j/multicast"
	"github.com/jeffday/vcr4j/video"
)

// responseParser validates completed response cycles and decodes them into
// state, timecode, and userbits events.
//
// It owns the "currently tracked" value of each decoded quantity: a single
// cell per quantity, overwritten on every matching response, safe for
// concurrent read through the accessors but written only from the engine's
// command loop. The parser never blocks: subscribers receive events on the
// loop goroutine in exactly the order responses were decoded.
type responseParser struct {
	logger  logger.Logger
	metrics *Metrics

	errorSubject    *multicast.Subject[Error]
	stateSubject    *multicast.Subject[State]
	timecodeSubject *multicast.Subject[video.Timecode]
	userbitsSubject *multicast.Subject[Userbits]

	mu          sync.RWMutex
	state       State
	timecode    video.Timecode
	hasTimecode bool
	userbits    Userbits
}

func newResponseParser(l logger.Logger, m *Metrics) *responseParser {
	return &responseParser{
		logger:          l,
		metrics:         m,
		errorSubject:    multicast.NewSubject[Error](),
		stateSubject:    multicast.NewSubject[State](),
		timecodeSubject: multicast.NewSubject[video.Timecode](),
		userbitsSubject: multicast.NewSubject[Userbits](),
	}
}

// update validates and decodes one completed response cycle. cmd is the
// command whose send/receive cycle produced the response; it is attached to
// error events for diagnostics.
func (p *responseParser) update(cmd video.Command, r *response) {
	if !r.verifyChecksum() {
		p.metrics.incChecksumErrors()
		p.raiseError(KindChecksum, fmt.Errorf("%w: frame=0x%s",
			ErrChecksumMismatch, hexString(r.cmd[:], r.data, []byte{r.checksum})), cmd)

		return
	}

	switch {
	case IsTimecodeReply(r.cmd):
		p.updateTimecode(cmd, r)

	case r.cmd == headerLocalUserbits:
		p.updateUserbits(cmd, r, true)

	case r.cmd == headerVerticalUserbits:
		p.updateUserbits(cmd, r, false)

	case isStatusReply(r.cmd):
		p.updateState(r)

	default:
		// Acknowledgment-only reply with no actionable payload.
	}
}

func (p *responseParser) updateTimecode(cmd video.Command, r *response) {
	if len(r.data) < 4 {
		p.raiseError(KindMalformed, fmt.Errorf("%w: timecode reply with %d data bytes",
			ErrMalformedResponse, len(r.data)), cmd)

		return
	}

	tc := DecodeTimecode(r.data)

	p.mu.Lock()
	p.timecode = tc
	p.hasTimecode = true
	p.mu.Unlock()

	p.timecodeSubject.Publish(tc)
}

func (p *responseParser) updateUserbits(cmd video.Command, r *response, local bool) {
	if len(r.data) < 4 {
		p.raiseError(KindMalformed, fmt.Errorf("%w: userbits reply with %d data bytes",
			ErrMalformedResponse, len(r.data)), cmd)

		return
	}

	p.mu.Lock()
	if local {
		copy(p.userbits.Local[:], r.data[:4])
	} else {
		copy(p.userbits.Vertical[:], r.data[:4])
	}
	ub := p.userbits
	p.mu.Unlock()

	p.userbitsSubject.Publish(ub)
}

func (p *responseParser) updateState(r *response) {
	s := decodeState(r.data)

	p.mu.Lock()
	p.state = s
	p.mu.Unlock()

	p.stateSubject.Publish(s)
}

// raiseError logs the failure and publishes it on the error stream.
func (p *responseParser) raiseError(kind ErrorKind, cause error, cmd video.Command) {
	e := Error{Kind: kind, Cause: cause, Command: cmd}
	p.logger.Error("rs422: "+kind.String()+" error", "error", cause)
	p.errorSubject.Publish(e)
}

// --- Current value accessors ---

// State returns the most recently decoded deck state.
func (p *responseParser) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.state
}

// Timecode returns the most recently decoded timecode, and whether any
// timecode has been decoded yet.
func (p *responseParser) Timecode() (video.Timecode, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.timecode, p.hasTimecode
}

// Userbits returns the most recently decoded userbits groups.
func (p *responseParser) Userbits() Userbits {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.userbits
}
