// Package commands provides the Sony 9-pin command-encoding table for the
// rs422 engine.
//
// Every encoding is a complete outbound frame: two command bytes (the low
// nibble of the first carries the data byte count), any data bytes, and a
// trailing checksum slot that the engine stamps just before transmission.
// Commands without a wire encoding map to the undefined sentinel and are
// silently dropped by the engine.
package commands

import (
	"github.com/jeffday/vcr4j/rs422"
	"github.com/jeffday/vcr4j/video"
)

// undefined is the sentinel encoding for unsupported commands: a frame
// whose two command bytes are zero.
var undefined = []byte{0x00, 0x00, 0x00}

// Undefined returns a copy of the undefined sentinel encoding.
func Undefined() []byte {
	out := make([]byte, len(undefined))
	copy(out, undefined)

	return out
}

// byteCommands maps the fixed, parameterless commands to their frames.
var byteCommands = map[video.Command][]byte{
	video.Stop:        {0x20, 0x00, 0x00},
	video.Play:        {0x20, 0x01, 0x00},
	video.Record:      {0x20, 0x02, 0x00},
	video.Pause:       {0x20, 0x05, 0x00}, // standby on: still with the drum engaged
	video.Eject:       {0x20, 0x0F, 0x00},
	video.FastForward: {0x20, 0x10, 0x00},
	video.Rewind:      {0x20, 0x20, 0x00},

	video.RequestDeviceType: {0x00, 0x11, 0x00},
	video.RequestStatus:     {0x61, 0x20, 0x08, 0x00},

	// Current time sense. The data byte selects the source: 0x01 LTC,
	// 0x02 VITC, 0x10 LTC user bits, 0x20 VITC user bits. 0x03 lets the
	// deck pick the best of LTC and VITC.
	video.RequestTimecode:         {0x61, 0x0C, 0x03, 0x00},
	rs422.RequestLocalUserbits:    {0x61, 0x0C, 0x10, 0x00},
	rs422.RequestVerticalUserbits: {0x61, 0x0C, 0x20, 0x00},
}

// PresetTimecodeCommand sets the deck's timecode generator to the given
// timecode.
type PresetTimecodeCommand struct {
	Timecode video.Timecode
}

// Name returns the command name.
func (c PresetTimecodeCommand) Name() string { return "preset timecode" }

// Table is the standard Sony 9-pin encoding table, implementing
// rs422.Encoder. The zero value is ready to use.
type Table struct{}

var _ rs422.Encoder = Table{}

// Encode returns the outbound frame for cmd, or the undefined sentinel
// when cmd has no wire encoding. Fixed commands return shared table
// entries; the engine copies before stamping the checksum.
func (Table) Encode(cmd video.Command) []byte {
	switch c := cmd.(type) {
	case video.ShuttleCommand:
		return motionFrame(0x13, 0x23, c.Speed)
	case video.JogCommand:
		return motionFrame(0x11, 0x21, c.Speed)
	case video.VarCommand:
		return motionFrame(0x12, 0x22, c.Speed)
	case PresetTimecodeCommand:
		return presetTimecodeFrame(c.Timecode)
	}

	if frame, ok := byteCommands[cmd]; ok {
		return frame
	}

	return undefined
}

// motionFrame builds a variable-speed motion frame (jog or shuttle).
// Negative speeds use the reverse command byte; the magnitude is the raw
// speed byte, clamped to [0, 255].
func motionFrame(fwd, rev byte, speed int) []byte {
	cmd2 := fwd
	if speed < 0 {
		cmd2 = rev
		speed = -speed
	}
	if speed > 0xFF {
		speed = 0xFF
	}

	return []byte{0x21, cmd2, byte(speed), 0x00}
}

// presetTimecodeFrame builds the timecode preset frame: 44.04 followed by
// the four packed-digit bytes in frames, seconds, minutes, hours order.
func presetTimecodeFrame(tc video.Timecode) []byte {
	data := rs422.EncodeTimecode(tc)

	return []byte{0x44, 0x04, data[0], data[1], data[2], data[3], 0x00}
}
