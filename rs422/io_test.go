package rs422

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffday/vcr4j/multicast"
	"github.com/jeffday/vcr4j/video"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// recorder collects events delivered on the engine's loop goroutine so
// tests can assert on them from the test goroutine.
type recorder[T any] struct {
	mu     sync.Mutex
	events []T
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, v)
}

func (r *recorder[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.events)
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, len(r.events))
	copy(out, r.events)

	return out
}

func record[T any](o multicast.Observable[T]) *recorder[T] {
	r := &recorder[T]{}
	o.Subscribe(r.add)

	return r
}

func newTestEngine(t *testing.T, ch Channel) *VideoIO {
	t.Helper()

	cfg, err := NewConfig(senseEncoder(), WithCommandDelay(0))
	require.NoError(t, err)

	v, err := New(context.Background(), ch, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })

	return v
}

func TestNew_Validation(t *testing.T) {
	cfg, err := NewConfig(senseEncoder())
	require.NoError(t, err)

	_, err = New(context.Background(), nil, cfg)
	assert.Error(t, err)

	_, err = New(context.Background(), newFakeChannel(), nil)
	assert.Error(t, err)
}

func TestVideoIO_SendAndReceive(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	commands := record[video.Command](v.Commands())
	states := record[State](v.States())

	ch.queueResponse(buildResponse(0x74, 0x20, 0x00, 0x01, 0x80, 0x00))
	v.Send(video.RequestStatus)

	require.Eventually(t, func() bool { return states.len() == 1 }, waitFor, tick)

	frames := ch.writtenFrames()
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x61, 0x20, 0x08, 0x89}, frames[0])

	assert.Equal(t, []video.Command{video.RequestStatus}, commands.snapshot())
	assert.True(t, states.snapshot()[0].IsPlaying())
	assert.True(t, v.CurrentState().IsPlaying())
}

func TestVideoIO_UserbitsFanOut(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	userbits := record[Userbits](v.Userbits())

	ch.queueResponse(buildResponse(0x74, 0x05, 0x0A, 0x0B, 0x0C, 0x0D))
	ch.queueResponse(buildResponse(0x74, 0x07, 0x1A, 0x1B, 0x1C, 0x1D))
	v.Send(RequestUserbits)

	require.Eventually(t, func() bool { return userbits.len() == 2 }, waitFor, tick)

	// Exactly two frames, local group first.
	frames := ch.writtenFrames()
	require.Len(t, frames, 2)
	assert.Equal(t, byte(0x10), frames[0][2])
	assert.Equal(t, byte(0x20), frames[1][2])

	want := Userbits{
		Local:    [4]byte{0x0A, 0x0B, 0x0C, 0x0D},
		Vertical: [4]byte{0x1A, 0x1B, 0x1C, 0x1D},
	}
	assert.Equal(t, want, userbits.snapshot()[1])
	assert.Equal(t, want, v.CurrentUserbits())
}

func TestVideoIO_HostClockCommands(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	indices := record[video.Index](v.Indices())

	before := time.Now()
	v.Send(video.RequestTimestamp)
	v.Send(video.RequestElapsedTime)

	require.Eventually(t, func() bool { return indices.len() == 2 }, waitFor, tick)

	// Host-clock commands never touch the wire.
	assert.Empty(t, ch.writtenFrames())

	for _, idx := range indices.snapshot() {
		assert.True(t, idx.HasTimestamp)
		assert.False(t, idx.HasTimecode)
		assert.False(t, idx.Timestamp.Before(before))
	}
}

func TestVideoIO_InjectIndex(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	indices := record[video.Index](v.Indices())

	want := video.NewTimecodeIndex(video.Timecode{Hour: 1, Minute: 2, Second: 3, Frame: 4})
	v.Send(video.InjectIndexCommand{Index: want})

	require.Eventually(t, func() bool { return indices.len() == 1 }, waitFor, tick)

	assert.Equal(t, want, indices.snapshot()[0])
	assert.Empty(t, ch.writtenFrames())
}

func TestVideoIO_UndefinedCommandDropped(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	errs := record[Error](v.Errors())
	commands := record[video.Command](v.Commands())

	v.Send(video.SimpleCommand("defuse"))      // encodes to the undefined sentinel
	v.Send(video.SimpleCommand("toast bagel")) // not in the table at all

	require.Eventually(t, func() bool {
		return v.GetMetrics().CommandsDropped.Load() == 2
	}, waitFor, tick)

	// Dropped commands still appear on the command stream, but produce no
	// frames and no errors.
	assert.Equal(t, 2, commands.len())
	assert.Empty(t, ch.writtenFrames())
	assert.Equal(t, 0, errs.len())
}

func TestVideoIO_OrderedExclusiveDispatch(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	const n = 20
	for i := 0; i < n; i++ {
		ch.queueResponse(buildResponse(0x10, 0x01))
	}

	commands := record[video.Command](v.Commands())

	want := make([]video.Command, 0, n)
	for i := 0; i < n; i++ {
		cmd := video.Play
		if i%2 == 1 {
			cmd = video.Stop
		}
		want = append(want, cmd)
		v.Send(cmd)
	}

	require.Eventually(t, func() bool { return len(ch.writtenFrames()) == n }, waitFor, tick)

	// Dispatch order is submission order, and cycles never overlap.
	assert.Equal(t, want, commands.snapshot())
	assert.False(t, ch.hadOverlap())

	frames := ch.writtenFrames()
	for i, cmd := range want {
		wantByte := byte(0x01)
		if cmd == video.Stop {
			wantByte = 0x00
		}
		assert.Equal(t, wantByte, frames[i][1], "frame %d", i)
	}
}

func TestVideoIO_ConcurrentSend(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	const senders = 4
	const perSender = 10

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				v.Send(video.Play)
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return len(ch.writtenFrames()) == senders*perSender
	}, waitFor, tick)

	assert.False(t, ch.hadOverlap())
	assert.Equal(t, uint64(senders*perSender), v.GetMetrics().FramesSent.Load())
}

func TestVideoIO_IndexFromTimecode(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	indices := record[video.Index](v.Indices())

	ch.queueResponse(buildResponse(0x74, 0x04, 0x21, 0x56, 0x34, 0x12))
	v.Send(video.RequestTimecode)

	require.Eventually(t, func() bool { return indices.len() == 1 }, waitFor, tick)

	idx := indices.snapshot()[0]
	assert.True(t, idx.HasTimecode)
	assert.False(t, idx.HasTimestamp, "no timestamp while the deck is not recording")
	assert.Equal(t, video.Timecode{Hour: 12, Minute: 34, Second: 56, Frame: 21}, idx.Timecode)

	tc, ok := v.CurrentTimecode()
	assert.True(t, ok)
	assert.Equal(t, idx.Timecode, tc)
}

func TestVideoIO_IndexSuppressesDuplicates(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	indices := record[video.Index](v.Indices())
	timecodes := record[video.Timecode](v.Timecodes())

	// The same timecode twice while stopped: the timecode stream sees both,
	// the index stream collapses them.
	ch.queueResponse(buildResponse(0x74, 0x04, 0x05, 0x04, 0x03, 0x02))
	ch.queueResponse(buildResponse(0x74, 0x04, 0x05, 0x04, 0x03, 0x02))
	v.Send(video.RequestTimecode)
	v.Send(video.RequestTimecode)

	require.Eventually(t, func() bool { return timecodes.len() == 2 }, waitFor, tick)

	assert.Equal(t, 1, indices.len())

	// A different timecode always produces a new index, still without a
	// timestamp while not recording.
	ch.queueResponse(buildResponse(0x74, 0x04, 0x06, 0x04, 0x03, 0x02))
	v.Send(video.RequestTimecode)

	require.Eventually(t, func() bool { return indices.len() == 2 }, waitFor, tick)

	idx := indices.snapshot()[1]
	assert.False(t, idx.HasTimestamp)
	assert.Equal(t, video.Timecode{Hour: 2, Minute: 3, Second: 4, Frame: 6}, idx.Timecode)
}

func TestVideoIO_IndexWhileRecording(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	indices := record[video.Index](v.Indices())

	// Timecode first, then a recording status: the second index gains a
	// wall-clock timestamp while keeping the timecode.
	ch.queueResponse(buildResponse(0x74, 0x04, 0x10, 0x30, 0x15, 0x01))
	ch.queueResponse(buildResponse(0x74, 0x20, 0x00, 0x02, 0x80, 0x00))
	v.Send(video.RequestTimecode)
	v.Send(video.RequestStatus)

	require.Eventually(t, func() bool { return indices.len() == 2 }, waitFor, tick)

	got := indices.snapshot()
	assert.True(t, got[0].HasTimecode)
	assert.False(t, got[0].HasTimestamp)

	assert.True(t, got[1].HasTimecode)
	assert.True(t, got[1].HasTimestamp)
	assert.Equal(t, got[0].Timecode, got[1].Timecode)
	assert.False(t, got[1].Timestamp.IsZero())
}

func TestVideoIO_Close(t *testing.T) {
	ch := newFakeChannel()

	cfg, err := NewConfig(senseEncoder(), WithCommandDelay(0))
	require.NoError(t, err)

	v, err := New(context.Background(), ch, cfg)
	require.NoError(t, err)

	require.NoError(t, v.Close())
	require.NoError(t, v.Close(), "Close is idempotent")

	// Commands submitted after Close are dropped without blocking.
	done := make(chan struct{})
	go func() {
		defer close(done)
		v.Send(video.Play)
	}()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Send blocked after Close")
	}

	assert.Empty(t, ch.writtenFrames())
}

func TestVideoIO_NilCommandIgnored(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	v.Send(nil)
	v.Send(video.Play)

	require.Eventually(t, func() bool { return len(ch.writtenFrames()) == 1 }, waitFor, tick)
}

func TestVideoIO_ConnectionID(t *testing.T) {
	ch := newFakeChannel()
	v := newTestEngine(t, ch)

	assert.NotEqual(t, uuid.Nil, v.ConnectionID())
}
