package rs422

import (
	"sync/atomic"
)

// Metrics contains atomic counters for one engine instance.
// Counters can be used as the value of a prometheus CounterFunc.
type Metrics struct {
	// FramesSent is the number of command frames written to the channel.
	FramesSent atomic.Uint64
	// ResponsesReceived is the number of complete responses read back.
	ResponsesReceived atomic.Uint64
	// EmptyResponses is the number of cycles that yielded no response.
	EmptyResponses atomic.Uint64
	// TransportErrors is the number of channel-level failures.
	TransportErrors atomic.Uint64
	// ChecksumErrors is the number of responses discarded on checksum mismatch.
	ChecksumErrors atomic.Uint64
	// CommandsDropped is the number of commands dropped for having no wire
	// encoding.
	CommandsDropped atomic.Uint64
}

func (m *Metrics) incFramesSent() {
	m.FramesSent.Add(1)
}

func (m *Metrics) incResponsesReceived() {
	m.ResponsesReceived.Add(1)
}

func (m *Metrics) incEmptyResponses() {
	m.EmptyResponses.Add(1)
}

func (m *Metrics) incTransportErrors() {
	m.TransportErrors.Add(1)
}

func (m *Metrics) incChecksumErrors() {
	m.ChecksumErrors.Add(1)
}

func (m *Metrics) incCommandsDropped() {
	m.CommandsDropped.Add(1)
}
