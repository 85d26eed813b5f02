package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jeffday/vcr4j/rs422"
	"github.com/jeffday/vcr4j/rs422/commands"
	"github.com/jeffday/vcr4j/video"
)

// namedCommands maps CLI names to deck commands. Parameterized commands
// (shuttle, jog, var, preset) are parsed separately.
var namedCommands = map[string]video.Command{
	"play":         video.Play,
	"stop":         video.Stop,
	"pause":        video.Pause,
	"record":       video.Record,
	"fast-forward": video.FastForward,
	"rewind":       video.Rewind,
	"eject":        video.Eject,
	"device-type":  video.RequestDeviceType,
	"status":       video.RequestStatus,
	"timecode":     video.RequestTimecode,
	"userbits":     rs422.RequestUserbits,
}

func commandNames() []string {
	names := make([]string, 0, len(namedCommands))
	for name := range namedCommands {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// parseCommand resolves one CLI argument to a deck command: a fixed name,
// shuttle=<speed>, jog=<speed>, var=<speed>, or preset=<HH:MM:SS:FF>.
func parseCommand(arg string) (video.Command, error) {
	if cmd, ok := namedCommands[arg]; ok {
		return cmd, nil
	}

	name, value, found := strings.Cut(arg, "=")
	if !found {
		return nil, fmt.Errorf("unknown command %q: run \"vtrctl list\" for the available names", arg)
	}

	switch name {
	case "shuttle":
		speed, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid shuttle speed %q", value)
		}

		return video.ShuttleCommand{Speed: speed}, nil

	case "jog":
		speed, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid jog speed %q", value)
		}

		return video.JogCommand{Speed: speed}, nil

	case "var":
		speed, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid var speed %q", value)
		}

		return video.VarCommand{Speed: speed}, nil

	case "preset":
		tc, err := parseTimecode(value)
		if err != nil {
			return nil, err
		}

		return commands.PresetTimecodeCommand{Timecode: tc}, nil

	default:
		return nil, fmt.Errorf("unknown command %q: run \"vtrctl list\" for the available names", arg)
	}
}

// parseTimecode parses HH:MM:SS:FF.
func parseTimecode(s string) (video.Timecode, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return video.Timecode{}, fmt.Errorf("invalid timecode %q: expected HH:MM:SS:FF", s)
	}

	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > 99 {
			return video.Timecode{}, fmt.Errorf("invalid timecode %q: expected HH:MM:SS:FF", s)
		}
		vals[i] = v
	}

	return video.Timecode{Hour: vals[0], Minute: vals[1], Second: vals[2], Frame: vals[3]}, nil
}
