package rs422

import "strings"

// statusReplyCmd2 is the second header byte of a status data reply. The
// first byte is 0x70 plus the data count, so a status reply is recognized
// by its high nibble and this byte.
const statusReplyCmd2 = 0x20

// isStatusReply reports whether the echoed command bytes identify a status
// data reply.
func isStatusReply(cmd [2]byte) bool {
	return cmd[0]&0xF0 == 0x70 && cmd[1] == statusReplyCmd2
}

// State packs the first four status data bytes of a deck status reply into
// a single value: byte 0 in bits 31-24 down to byte 3 in bits 7-0.
// Responses carrying fewer than four data bytes leave the missing bytes
// zero. One current value is kept per engine, overwritten on each status
// reply and exposed through the state event stream.
type State uint32

// Status data bit assignments (Sony 9-pin status data, bytes 0-3).
const (
	// Byte 0: deck condition.
	stateLocal           State = 0x01 << 24
	stateHardwareError   State = 0x04 << 24
	stateServoRefMissing State = 0x10 << 24
	stateCassetteOut     State = 0x20 << 24

	// Byte 1: transport motion.
	statePlay           State = 0x01 << 16
	stateRecord         State = 0x02 << 16
	stateFastForward    State = 0x04 << 16
	stateRewind         State = 0x08 << 16
	stateEject          State = 0x10 << 16
	stateStop           State = 0x20 << 16
	stateTensionRelease State = 0x40 << 16
	stateStandby        State = 0x80 << 16

	// Byte 2: servo and variable-speed modes.
	stateCueUpComplete State = 0x01 << 8
	stateStill         State = 0x02 << 8
	stateReverse       State = 0x04 << 8
	stateVar           State = 0x08 << 8
	stateJog           State = 0x10 << 8
	stateShuttle       State = 0x20 << 8
	stateServoLock     State = 0x80 << 8

	// Byte 3: edit presets.
	stateInPreset  State = 0x01
	stateOutPreset State = 0x02
)

// decodeState packs up to the first four status data bytes into a State.
func decodeState(data []byte) State {
	var s State
	for i := 0; i < 4 && i < len(data); i++ {
		s |= State(data[i]) << (24 - 8*i)
	}

	return s
}

// IsLocal reports whether the deck is in local (front panel) control and
// will ignore transport commands from the remote interface.
func (s State) IsLocal() bool { return s&stateLocal != 0 }

// HasHardwareError reports whether the deck flags a hardware error.
func (s State) HasHardwareError() bool { return s&stateHardwareError != 0 }

// IsServoRefMissing reports whether the servo reference signal is absent.
func (s State) IsServoRefMissing() bool { return s&stateServoRefMissing != 0 }

// IsCassetteOut reports whether no cassette is loaded.
func (s State) IsCassetteOut() bool { return s&stateCassetteOut != 0 }

// IsPlaying reports whether the transport is in play.
func (s State) IsPlaying() bool { return s&statePlay != 0 }

// IsRecording reports whether the transport is recording. The derived
// video-index stream attaches a wall-clock timestamp only while this is set.
func (s State) IsRecording() bool { return s&stateRecord != 0 }

// IsFastForwarding reports whether the transport is fast-forwarding.
func (s State) IsFastForwarding() bool { return s&stateFastForward != 0 }

// IsRewinding reports whether the transport is rewinding.
func (s State) IsRewinding() bool { return s&stateRewind != 0 }

// IsEjecting reports whether the cassette is being ejected.
func (s State) IsEjecting() bool { return s&stateEject != 0 }

// IsStopped reports whether the transport is stopped.
func (s State) IsStopped() bool { return s&stateStop != 0 }

// IsTensionReleased reports whether tape tension is released.
func (s State) IsTensionReleased() bool { return s&stateTensionRelease != 0 }

// IsStandby reports whether the deck is in standby.
func (s State) IsStandby() bool { return s&stateStandby != 0 }

// IsCueUpComplete reports whether a cue-up operation has completed.
func (s State) IsCueUpComplete() bool { return s&stateCueUpComplete != 0 }

// IsStill reports whether the transport is paused on a still frame.
func (s State) IsStill() bool { return s&stateStill != 0 }

// IsReverseDirection reports whether tape motion is reverse.
func (s State) IsReverseDirection() bool { return s&stateReverse != 0 }

// IsVarMode reports whether the transport is in variable-speed play.
func (s State) IsVarMode() bool { return s&stateVar != 0 }

// IsJogging reports whether the transport is in jog mode.
func (s State) IsJogging() bool { return s&stateJog != 0 }

// IsShuttling reports whether the transport is in shuttle mode.
func (s State) IsShuttling() bool { return s&stateShuttle != 0 }

// IsServoLocked reports whether the servo is locked; playback and record
// are only frame-stable while locked.
func (s State) IsServoLocked() bool { return s&stateServoLock != 0 }

// HasInPreset reports whether an edit in-point is set.
func (s State) HasInPreset() bool { return s&stateInPreset != 0 }

// HasOutPreset reports whether an edit out-point is set.
func (s State) HasOutPreset() bool { return s&stateOutPreset != 0 }

var stateNames = []struct {
	bit  State
	name string
}{
	{stateLocal, "local"},
	{stateHardwareError, "hardware-error"},
	{stateServoRefMissing, "servo-ref-missing"},
	{stateCassetteOut, "cassette-out"},
	{statePlay, "play"},
	{stateRecord, "record"},
	{stateFastForward, "fast-forward"},
	{stateRewind, "rewind"},
	{stateEject, "eject"},
	{stateStop, "stop"},
	{stateTensionRelease, "tension-release"},
	{stateStandby, "standby"},
	{stateCueUpComplete, "cue-up"},
	{stateStill, "still"},
	{stateReverse, "reverse"},
	{stateVar, "var"},
	{stateJog, "jog"},
	{stateShuttle, "shuttle"},
	{stateServoLock, "servo-lock"},
	{stateInPreset, "in-preset"},
	{stateOutPreset, "out-preset"},
}

// String lists the set status flags, pipe-separated.
func (s State) String() string {
	var parts []string
	for _, sn := range stateNames {
		if s&sn.bit != 0 {
			parts = append(parts, sn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "|")
}
