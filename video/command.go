// Package video defines the device-independent model shared by all vcr4j
// device engines: named transport commands, tape timecode, and the video
// index that pairs a timecode with the wall-clock time it was observed.
package video

// Command is a request submitted to a video device engine.
//
// Commands are immutable values routed by equality: two commands are the
// same request when they compare equal. Simple transport commands are
// plain named values; parameterized commands (shuttle, jog) are small
// structs carrying their arguments.
type Command interface {
	// Name returns the human-readable command name used in logs.
	Name() string
}

// SimpleCommand is a Command with no parameters, identified by its name.
type SimpleCommand string

// Name returns the command name.
func (c SimpleCommand) Name() string { return string(c) }

// Standard transport and sense commands understood by device engines.
// Device packages may define additional commands of their own.
const (
	Play        SimpleCommand = "play"
	Stop        SimpleCommand = "stop"
	Pause       SimpleCommand = "pause"
	Record      SimpleCommand = "record"
	FastForward SimpleCommand = "fast forward"
	Rewind      SimpleCommand = "rewind"
	Eject       SimpleCommand = "eject"

	RequestDeviceType SimpleCommand = "request device type"
	RequestStatus     SimpleCommand = "request status"
	RequestTimecode   SimpleCommand = "request timecode"

	// RequestTimestamp and RequestElapsedTime are satisfied from the host's
	// clock and derived index state. Engines never put them on the wire.
	RequestTimestamp   SimpleCommand = "request timestamp"
	RequestElapsedTime SimpleCommand = "request elapsed time"
)

// ShuttleCommand shuttles the tape at the given speed.
// Negative speeds shuttle in reverse. The magnitude is device-specific;
// for RS-422 decks it is the raw speed byte, clamped to [0, 255].
type ShuttleCommand struct {
	Speed int
}

// Name returns the command name.
func (c ShuttleCommand) Name() string { return "shuttle" }

// JogCommand jogs the tape at the given speed.
// Negative speeds jog in reverse.
type JogCommand struct {
	Speed int
}

// Name returns the command name.
func (c JogCommand) Name() string { return "jog" }

// VarCommand plays the tape at the given variable speed with servo lock.
// Negative speeds play in reverse.
type VarCommand struct {
	Speed int
}

// Name returns the command name.
func (c VarCommand) Name() string { return "var" }

// InjectIndexCommand publishes the given Index onto the engine's
// video-index stream without any device interaction. It is used to seed
// or correct the index stream from an external source.
type InjectIndexCommand struct {
	Index Index
}

// Name returns the command name.
func (c InjectIndexCommand) Name() string { return "inject video index" }
