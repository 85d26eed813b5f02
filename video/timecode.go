package video

import "fmt"

// Timecode is a wall-clock-independent tape position.
//
// Components are plain integers; engines that decode from packed digit
// representations may produce out-of-range components for malformed
// device responses, which are carried through unmodified.
type Timecode struct {
	Hour   int
	Minute int
	Second int
	Frame  int
}

// String formats the timecode as HH:MM:SS:FF.
func (t Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", t.Hour, t.Minute, t.Second, t.Frame)
}
