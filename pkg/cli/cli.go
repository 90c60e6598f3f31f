// Package cli parses the midifile tool's command line.
package cli

import (
	"flag"
	"fmt"
	"os"
)

// Commands the tool understands.
const (
	CmdDump       = "dump"
	CmdFilter     = "filter"
	CmdTranspose  = "transpose"
	CmdVelocity   = "velocity"
	CmdSonorities = "sonorities"
	CmdDrums      = "drums"
)

var validCommands = map[string]bool{
	CmdDump:       true,
	CmdFilter:     true,
	CmdTranspose:  true,
	CmdVelocity:   true,
	CmdSonorities: true,
	CmdDrums:      true,
}

// Config holds the parsed command line.
type Config struct {
	Command   string // one of the Cmd constants
	Input     string // input .mid path
	Output    string // output .mid path (editing commands)
	Track     int    // content track index
	Kind      string // event kind name for filter
	Semitone  int    // transpose amount
	Velocity  int    // velocity value
	Channel   int    // channel selector, -1 for all
	DrumCSV   string // custom drum mapping CSV
	Tolerance int    // chord tolerance in ticks
	LogLevel  string // debug, info, warn, error
	ShowHelp  bool
}

// ParseArgs parses os.Args[1:]-style arguments: a command word, an input
// file, and flags. Flags may appear before or after the positional
// arguments.
func ParseArgs(args []string) (*Config, error) {
	reordered := reorderArgs(args)

	fs := flag.NewFlagSet("midifile", flag.ContinueOnError)

	config := &Config{}
	fs.StringVar(&config.Output, "o", "", "output file")
	fs.IntVar(&config.Track, "track", 0, "content track index")
	fs.StringVar(&config.Kind, "kind", "", "event kind to drop (filter)")
	fs.IntVar(&config.Semitone, "semitones", 0, "semitones to shift (transpose)")
	fs.IntVar(&config.Velocity, "velocity", -1, "velocity to set (velocity)")
	fs.IntVar(&config.Channel, "channel", -1, "restrict to one channel")
	fs.StringVar(&config.DrumCSV, "drum-map", "", "drum mapping CSV (drums)")
	fs.IntVar(&config.Tolerance, "tolerance", 0, "chord tolerance in ticks (sonorities)")
	fs.StringVar(&config.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help (short)")

	if err := fs.Parse(reordered); err != nil {
		return nil, err
	}
	if config.ShowHelp {
		return config, nil
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if fs.NArg() < 1 {
		return nil, fmt.Errorf("missing command (one of dump, filter, transpose, velocity, sonorities, drums)")
	}
	config.Command = fs.Arg(0)
	if !validCommands[config.Command] {
		return nil, fmt.Errorf("unknown command: %s", config.Command)
	}
	if fs.NArg() < 2 {
		return nil, fmt.Errorf("missing input file")
	}
	config.Input = fs.Arg(1)

	switch config.Command {
	case CmdFilter:
		if config.Kind == "" {
			return nil, fmt.Errorf("filter requires -kind")
		}
	case CmdVelocity:
		if config.Velocity < 0 || config.Velocity > 127 {
			return nil, fmt.Errorf("velocity must be 0..127, got %d", config.Velocity)
		}
	}
	if config.Track < 0 {
		return nil, fmt.Errorf("track index must be non-negative, got %d", config.Track)
	}

	return config, nil
}

// boolFlags lists flags that take no value, for argument reordering.
var boolFlags = map[string]bool{
	"-h": true, "--h": true, "-help": true, "--help": true,
}

// reorderArgs moves flags before positional arguments so the stdlib flag
// parser sees them all.
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)
			if !boolFlags[arg] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp writes the usage text.
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `midifile - read, edit and write Standard MIDI Files

Usage:
  midifile <command> <input.mid> [options]

Commands:
  dump        print every event of the file
  filter      drop events of one kind (-kind) from a track
  transpose   shift note pitches (-semitones) on a track
  velocity    set note-on velocities (-velocity) on a track
  sonorities  print the note/chord/rest sequence of a track
  drums       print percussion hits with GM drum names

Options:
  -o <file>           output file for editing commands
  -track <n>          content track index (default 0)
  -kind <name>        event kind for filter (e.g. pitch-bend, controller)
  -semitones <n>      transpose amount, may be negative
  -velocity <n>       velocity 0..127
  -channel <n>        restrict note edits to one channel
  -tolerance <ticks>  chord tolerance for sonorities (default 0)
  -drum-map <csv>     custom name,key drum mapping
  -log-level <level>  debug, info, warn, error (default info)
  -h, -help           show this help

Examples:
  midifile dump song.mid
  midifile filter song.mid -kind pitch-bend -o filtered.mid
  midifile transpose song.mid -semitones -12 -o low.mid
  midifile sonorities song.mid -track 1 -tolerance 10
`)
}
