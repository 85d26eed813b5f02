package rs422

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffday/vcr4j/logger"
	"github.com/jeffday/vcr4j/video"
)

func newTestParser() (*responseParser, *Metrics) {
	m := &Metrics{}

	return newResponseParser(logger.GetLogger(), m), m
}

func responseFrom(wire []byte) *response {
	return &response{
		cmd:      [2]byte{wire[0], wire[1]},
		data:     wire[2 : len(wire)-1],
		checksum: wire[len(wire)-1],
	}
}

func TestParser_ChecksumMismatch(t *testing.T) {
	p, m := newTestParser()

	var events []Error
	p.errorSubject.Subscribe(func(e Error) { events = append(events, e) })

	r := responseFrom(buildResponse(0x74, 0x20, 0x00, 0x01, 0x00, 0x00))
	r.checksum ^= 0xFF

	p.update(video.RequestStatus, r)

	require.Len(t, events, 1)
	assert.Equal(t, KindChecksum, events[0].Kind)
	assert.True(t, errors.Is(events[0].Cause, ErrChecksumMismatch))
	assert.Equal(t, video.RequestStatus, events[0].Command)
	assert.Equal(t, uint64(1), m.ChecksumErrors.Load())

	// The corrupt frame must not reach the state cell.
	assert.Equal(t, State(0), p.State())
}

func TestParser_TimecodeReply(t *testing.T) {
	p, _ := newTestParser()

	var events []video.Timecode
	p.timecodeSubject.Subscribe(func(tc video.Timecode) { events = append(events, tc) })

	p.update(video.RequestTimecode, responseFrom(buildResponse(0x74, 0x04, 0x21, 0x56, 0x34, 0x12)))

	want := video.Timecode{Hour: 12, Minute: 34, Second: 56, Frame: 21}
	require.Len(t, events, 1)
	assert.Equal(t, want, events[0])

	got, ok := p.Timecode()
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestParser_TimecodeBeforeFirstReply(t *testing.T) {
	p, _ := newTestParser()

	_, ok := p.Timecode()
	assert.False(t, ok)
}

func TestParser_AllTimecodeSources(t *testing.T) {
	p, _ := newTestParser()

	var events []video.Timecode
	p.timecodeSubject.Subscribe(func(tc video.Timecode) { events = append(events, tc) })

	for _, cmd2 := range []byte{0x00, 0x01, 0x04, 0x06, 0x14} {
		p.update(video.RequestTimecode, responseFrom(buildResponse(0x74, cmd2, 0x01, 0x02, 0x03, 0x04)))
	}

	assert.Len(t, events, 5)
}

func TestParser_UserbitsReplies(t *testing.T) {
	p, _ := newTestParser()

	var events []Userbits
	p.userbitsSubject.Subscribe(func(ub Userbits) { events = append(events, ub) })

	p.update(RequestLocalUserbits, responseFrom(buildResponse(0x74, 0x05, 0x0A, 0x0B, 0x0C, 0x0D)))
	p.update(RequestVerticalUserbits, responseFrom(buildResponse(0x74, 0x07, 0x1A, 0x1B, 0x1C, 0x1D)))

	require.Len(t, events, 2)

	// The first event carries only the local group.
	assert.Equal(t, [4]byte{0x0A, 0x0B, 0x0C, 0x0D}, events[0].Local)
	assert.Equal(t, [4]byte{}, events[0].Vertical)

	// The second carries both.
	assert.Equal(t, [4]byte{0x0A, 0x0B, 0x0C, 0x0D}, events[1].Local)
	assert.Equal(t, [4]byte{0x1A, 0x1B, 0x1C, 0x1D}, events[1].Vertical)

	assert.Equal(t, events[1], p.Userbits())
}

func TestParser_StatusReply(t *testing.T) {
	p, _ := newTestParser()

	var events []State
	p.stateSubject.Subscribe(func(s State) { events = append(events, s) })

	p.update(video.RequestStatus, responseFrom(buildResponse(0x74, 0x20, 0x00, 0x02, 0x80, 0x00)))

	require.Len(t, events, 1)
	assert.True(t, events[0].IsRecording())
	assert.True(t, events[0].IsServoLocked())
	assert.Equal(t, events[0], p.State())
}

func TestParser_AckReplyIgnored(t *testing.T) {
	p, m := newTestParser()

	var errs []Error
	var states []State
	p.errorSubject.Subscribe(func(e Error) { errs = append(errs, e) })
	p.stateSubject.Subscribe(func(s State) { states = append(states, s) })

	p.update(video.Play, responseFrom(buildResponse(0x10, 0x01)))

	assert.Empty(t, errs)
	assert.Empty(t, states)
	assert.Equal(t, uint64(0), m.ChecksumErrors.Load())
}

func TestParser_ShortTimecodePayload(t *testing.T) {
	p, _ := newTestParser()

	var errs []Error
	var tcs []video.Timecode
	p.errorSubject.Subscribe(func(e Error) { errs = append(errs, e) })
	p.timecodeSubject.Subscribe(func(tc video.Timecode) { tcs = append(tcs, tc) })

	// A timecode header whose payload was truncated to two bytes.
	p.update(video.RequestTimecode, responseFrom(buildResponse(0x74, 0x04, 0x01, 0x02)))

	require.Len(t, errs, 1)
	assert.Equal(t, KindMalformed, errs[0].Kind)
	assert.True(t, errors.Is(errs[0].Cause, ErrMalformedResponse))
	assert.Empty(t, tcs)
}

func TestParser_ShortUserbitsPayload(t *testing.T) {
	p, _ := newTestParser()

	var errs []Error
	p.errorSubject.Subscribe(func(e Error) { errs = append(errs, e) })

	p.update(RequestLocalUserbits, responseFrom(buildResponse(0x74, 0x05, 0x0A, 0x0B)))

	require.Len(t, errs, 1)
	assert.Equal(t, KindMalformed, errs[0].Kind)
}
