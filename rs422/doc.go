// Package rs422 implements the Sony RS-422 (9-pin) serial control protocol
// for professional videotape recorders, exposing transport state, timecode,
// and user-bit data as live event streams.
//
// # Protocol Overview
//
// RS-422 VTR control is a half-duplex request/response protocol. Each
// outbound frame is:
//
//	[cmd1][cmd2][data0 .. dataN-1][checksum]
//
// where the low nibble of cmd1 encodes the data byte count N (0-15) and the
// checksum is the 8-bit truncated sum of every preceding byte. Responses
// have the identical shape, with the leading two bytes echoing or
// acknowledging the command that produced them.
//
// There are no framing delimiters on the wire: the receiver derives the
// frame boundary from the embedded length nibble and validates it with the
// checksum. The engine therefore performs exactly one send/receive cycle at
// a time; a second command is never written before the first command's
// echo, data, and checksum have been fully consumed or the read has failed.
//
// # Timing
//
// Some serial adapters do not block correctly on I/O, so the engine sleeps
// a configurable inter-byte delay between the frame write and each stage of
// the response read. The delay is a compatibility shim for specific
// adapters, not a protocol requirement; see WithCommandDelay.
//
// # Event Streams
//
// A VideoIO engine exposes multicast, replay-free streams for submitted
// commands, decoded device state, timecode, userbits, communication errors,
// and a derived video-index stream combining the latest timecode with the
// wall clock while the deck is recording. Failures are never returned to
// the command submitter; they are only observable on the error stream.
package rs422
