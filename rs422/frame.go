package rs422

import (
	"strings"
)

// MaxDataBytes is the maximum number of data bytes in a frame, limited by
// the 4-bit data count in the low nibble of the first command byte.
const MaxDataBytes = 15

// minFrameSize is the smallest legal outbound frame: two command bytes
// plus the trailing checksum byte.
const minFrameSize = 3

// checksumOf returns the 8-bit truncated sum of every byte in parts.
// The same function is used to stamp outbound frames and to validate
// inbound responses.
func checksumOf(parts ...[]byte) byte {
	var sum byte
	for _, p := range parts {
		for _, b := range p {
			sum += b
		}
	}

	return sum
}

// StampChecksum computes the checksum over frame[:len(frame)-1] and writes
// it into the final byte. The frame must include the trailing checksum
// slot; frames shorter than the minimum are left untouched.
func StampChecksum(frame []byte) {
	if len(frame) < minFrameSize {
		return
	}
	frame[len(frame)-1] = checksumOf(frame[:len(frame)-1])
}

// DataCount returns the data byte count encoded in the low nibble of the
// first command byte.
func DataCount(cmd1 byte) int {
	return int(cmd1 & 0x0F)
}

// response is one inbound frame: the two echoed command bytes, the data
// payload, and the trailing checksum byte. Constructed fresh per response
// and discarded after decoding.
type response struct {
	cmd      [2]byte
	data     []byte
	checksum byte
}

// verifyChecksum recomputes the checksum over the echoed command bytes and
// data, and compares it with the checksum byte read from the wire.
func (r *response) verifyChecksum() bool {
	return checksumOf(r.cmd[:], r.data) == r.checksum
}

// hexString renders the given byte slices as one continuous upper-case hex
// string, the format used for frame-level debug logs.
func hexString(parts ...[]byte) string {
	var sb strings.Builder
	for _, p := range parts {
		for _, b := range p {
			const hexDigits = "0123456789ABCDEF"
			sb.WriteByte(hexDigits[b>>4])
			sb.WriteByte(hexDigits[b&0x0F])
		}
	}

	return sb.String()
}
