package rs422

import (
	"sync"

	"github.com/jeffday/vcr4j/video"
)

// fakeChannel is an in-memory Channel standing in for the serial port.
//
// Each Write call records one outbound frame and arms the next canned
// response; Read then drains that response. Writing a new frame while
// response bytes are still pending marks an overlap, which the
// exclusivity tests assert never happens.
type fakeChannel struct {
	mu        sync.Mutex
	frames    [][]byte // one entry per Write call
	responses [][]byte // canned responses, one armed per Write
	pending   []byte   // remainder of the armed response

	writeErr error
	readErr  error
	availErr error

	overlap bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{}
}

// queueResponse arms b as the response to a subsequent frame write.
func (c *fakeChannel) queueResponse(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := make([]byte, len(b))
	copy(cp, b)
	c.responses = append(c.responses, cp)
}

func (c *fakeChannel) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return 0, c.writeErr
	}

	if len(c.pending) > 0 {
		c.overlap = true
	}

	cp := make([]byte, len(p))
	copy(cp, p)
	c.frames = append(c.frames, cp)

	if len(c.responses) > 0 {
		c.pending = c.responses[0]
		c.responses = c.responses[1:]
	}

	return len(p), nil
}

func (c *fakeChannel) Available() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.availErr != nil {
		return false, c.availErr
	}

	return len(c.pending) > 0, nil
}

func (c *fakeChannel) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.readErr != nil {
		return 0, c.readErr
	}

	if len(c.pending) == 0 {
		return 0, errNoData
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]

	return n, nil
}

// writtenFrames returns a snapshot of all frames written so far.
func (c *fakeChannel) writtenFrames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]byte, len(c.frames))
	copy(out, c.frames)

	return out
}

func (c *fakeChannel) hadOverlap() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.overlap
}

// errNoData is what the fake channel returns when read outruns the armed
// response; real cycles never hit it because Available gates every read.
var errNoData = errNoDataType{}

type errNoDataType struct{}

func (errNoDataType) Error() string { return "fake channel: no data" }

// buildResponse assembles a response frame with a valid checksum.
func buildResponse(cmd1, cmd2 byte, data ...byte) []byte {
	frame := append([]byte{cmd1, cmd2}, data...)

	return append(frame, checksumOf(frame))
}

// stubEncoder is a minimal command-encoding table for engine tests.
type stubEncoder struct {
	table map[video.Command][]byte
}

func (e stubEncoder) Encode(cmd video.Command) []byte {
	return e.table[cmd]
}

// senseEncoder returns a stub table covering the commands the engine
// routes during dispatch tests.
func senseEncoder() stubEncoder {
	return stubEncoder{table: map[video.Command][]byte{
		video.Play:                    {0x20, 0x01, 0x00},
		video.Stop:                    {0x20, 0x00, 0x00},
		video.RequestStatus:           {0x61, 0x20, 0x08, 0x00},
		video.RequestTimecode:         {0x61, 0x0C, 0x03, 0x00},
		RequestLocalUserbits:          {0x61, 0x0C, 0x10, 0x00},
		RequestVerticalUserbits:       {0x61, 0x0C, 0x20, 0x00},
		video.SimpleCommand("defuse"): {0x00, 0x00, 0x00}, // undefined sentinel
	}}
}
