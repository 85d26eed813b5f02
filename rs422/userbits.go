package rs422

import (
	"github.com/jeffday/vcr4j/video"
)

// Userbits reply headers. Each group arrives in its own 4-byte reply.
var (
	headerLocalUserbits    = [2]byte{0x74, 0x05} // LTC user bits
	headerVerticalUserbits = [2]byte{0x74, 0x07} // VITC user bits
)

// Userbits holds the two independent 4-byte user-bit groups.
//
// The deck's user-bit register is access-mode dependent: a single request
// cannot retrieve both groups reliably, so the engine requests each group
// explicitly and tracks them as separate fields. A Userbits value is
// published whenever either group updates.
type Userbits struct {
	Local    [4]byte // longitudinal (LTC) user bits
	Vertical [4]byte // vertical-interval (VITC) user bits
}

// RS-422 specific sense commands. RequestUserbits fans out into the local
// and vertical requests; the two single-group commands can also be
// submitted directly.
const (
	RequestUserbits         video.SimpleCommand = "request userbits"
	RequestLocalUserbits    video.SimpleCommand = "request local userbits"
	RequestVerticalUserbits video.SimpleCommand = "request vertical userbits"
)
