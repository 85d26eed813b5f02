package rs422

import (
	"github.com/jeffday/vcr4j/video"
)

// Timecode reply headers. The deck answers a current-time sense request
// with one of these two-byte headers followed by four packed-digit data
// bytes. The low nibble of the first byte is the data count (4).
var (
	headerTimer1 = [2]byte{0x74, 0x00} // CTL counter (timer 1)
	headerTimer2 = [2]byte{0x74, 0x01} // CTL counter (timer 2)
	headerLTC    = [2]byte{0x74, 0x04} // LTC time
	headerVTC    = [2]byte{0x74, 0x06} // VITC time
	headerAltLTC = [2]byte{0x74, 0x14} // LTC time, interpolated hold
)

// IsTimecodeReply reports whether the two echoed command bytes identify a
// timecode-source reply (LTC, VITC, interpolated LTC, timer 1 or timer 2).
func IsTimecodeReply(cmd [2]byte) bool {
	switch cmd {
	case headerLTC, headerVTC, headerAltLTC, headerTimer1, headerTimer2:
		return true
	default:
		return false
	}
}

// ByteToTime converts one packed-digit timecode byte to its decimal value:
// the tens digit lives in bits 4-6 and the units digit in the low nibble.
// Bit 7 carries deck flags (drop-frame, field) and is ignored. Nibble
// patterns above 9 are not rejected; a units nibble of 0xF yields 15, which
// callers must tolerate on malformed responses.
func ByteToTime(b byte) int {
	return int((b&0x70)>>4)*10 + int(b&0x0F)
}

// TimeToByte is the inverse of ByteToTime for values 0-99: tens digit in
// the high nibble, units digit in the low nibble.
func TimeToByte(v int) byte {
	return byte(v/10)<<4 | byte(v%10)
}

// DecodeTimecode decodes a 4-byte timecode payload. The deck sends the
// components in frames, seconds, minutes, hours order.
func DecodeTimecode(data []byte) video.Timecode {
	var tc video.Timecode
	if len(data) < 4 {
		return tc
	}

	tc.Frame = ByteToTime(data[0])
	tc.Second = ByteToTime(data[1])
	tc.Minute = ByteToTime(data[2])
	tc.Hour = ByteToTime(data[3])

	return tc
}

// EncodeTimecode packs a timecode into the 4-byte wire order used by
// timecode preset commands: frames, seconds, minutes, hours.
func EncodeTimecode(tc video.Timecode) [4]byte {
	return [4]byte{
		TimeToByte(tc.Frame),
		TimeToByte(tc.Second),
		TimeToByte(tc.Minute),
		TimeToByte(tc.Hour),
	}
}
