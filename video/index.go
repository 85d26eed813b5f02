package video

import (
	"fmt"
	"time"
)

// Index is a derived snapshot pairing an optional wall-clock timestamp
// with an optional tape timecode. Engines emit one whenever either source
// value changes; the timestamp is populated only while the device reports
// that it is recording, so an Index with both fields set is a
// frame-accurate record of when footage was captured.
//
// Index is a comparable value; streams deduplicate consecutive equal
// snapshots.
type Index struct {
	Timestamp    time.Time
	Timecode     Timecode
	HasTimestamp bool
	HasTimecode  bool
}

// NewTimestampIndex creates an Index carrying only a wall-clock timestamp.
func NewTimestampIndex(ts time.Time) Index {
	return Index{Timestamp: ts, HasTimestamp: true}
}

// NewTimecodeIndex creates an Index carrying only a timecode.
func NewTimecodeIndex(tc Timecode) Index {
	return Index{Timecode: tc, HasTimecode: true}
}

// String formats the index for logs.
func (i Index) String() string {
	switch {
	case i.HasTimestamp && i.HasTimecode:
		return fmt.Sprintf("{%s %s}", i.Timestamp.Format(time.RFC3339Nano), i.Timecode)
	case i.HasTimestamp:
		return fmt.Sprintf("{%s}", i.Timestamp.Format(time.RFC3339Nano))
	case i.HasTimecode:
		return fmt.Sprintf("{%s}", i.Timecode.String())
	default:
		return "{}"
	}
}
