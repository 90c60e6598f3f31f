// Command midifile reads, edits and writes Standard MIDI Files.
package main

import (
	"fmt"
	"os"

	"github.com/zurustar/midifile/pkg/cli"
	"github.com/zurustar/midifile/pkg/drummap"
	"github.com/zurustar/midifile/pkg/fileutil"
	"github.com/zurustar/midifile/pkg/logger"
	"github.com/zurustar/midifile/pkg/notes"
	"github.com/zurustar/midifile/pkg/smf"
	"github.com/zurustar/midifile/pkg/theory"
)

func main() {
	config, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "midifile: %v\n", err)
		cli.PrintHelp()
		os.Exit(2)
	}
	if config.ShowHelp {
		cli.PrintHelp()
		return
	}
	if err := logger.Init(config.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "midifile: %v\n", err)
		os.Exit(2)
	}

	if err := run(config); err != nil {
		logger.Get().Error("command failed", "command", config.Command, "error", err)
		os.Exit(1)
	}
}

func run(config *cli.Config) error {
	log := logger.Get()

	path, err := fileutil.Resolve(config.Input)
	if err != nil {
		return err
	}
	seq, err := smf.ReadFile(path)
	if err != nil {
		return err
	}
	log.Debug("file decoded",
		"path", path,
		"format", seq.Format,
		"tracks", len(seq.Tracks),
		"division", seq.Division.String())

	switch config.Command {
	case cli.CmdDump:
		return dump(seq)
	case cli.CmdFilter:
		return filter(seq, config)
	case cli.CmdTranspose:
		return transform(seq, config, notes.ShiftPitch{Semitones: config.Semitone})
	case cli.CmdVelocity:
		return transform(seq, config, notes.SetVelocity{Value: uint8(config.Velocity)})
	case cli.CmdSonorities:
		return sonorities(seq, config)
	case cli.CmdDrums:
		return drums(seq, config)
	}
	return fmt.Errorf("unknown command: %s", config.Command)
}

func dump(seq *smf.Sequence) error {
	fmt.Printf("format %d, %s, name %q, %d bpm\n",
		seq.Format, seq.Division.String(), seq.Name(), seq.BPM())
	printTrack("conductor", seq.Conductor)
	for i, t := range seq.Tracks {
		printTrack(fmt.Sprintf("track %d", i), t)
	}
	return nil
}

func printTrack(label string, t *smf.Track) {
	if t == nil {
		return
	}
	name := t.Name()
	if name != "" {
		label += " " + fmt.Sprintf("%q", name)
	}
	fmt.Printf("%s (%d events, %d ticks)\n", label, len(t.Events), t.TotalTicks())
	times := t.AbsoluteTimes()
	for i, e := range t.Events {
		fmt.Printf("  %8d  %s\n", times[i], e.String())
	}
}

func filter(seq *smf.Sequence, config *cli.Config) error {
	kind, ok := smf.KindByName(config.Kind)
	if !ok {
		return fmt.Errorf("unknown event kind: %s", config.Kind)
	}
	out, err := smf.FilterKind(seq, config.Track, kind)
	if err != nil {
		return err
	}
	return writeResult(out, config)
}

func transform(seq *smf.Sequence, config *cli.Config, op notes.Op) error {
	pred := func(n notes.Note) bool {
		return config.Channel < 0 || int(n.Channel) == config.Channel
	}
	out, err := notes.ProcessSequenceNotes(seq, config.Track, pred, op)
	if err != nil {
		return err
	}
	return writeResult(out, config)
}

func writeResult(seq *smf.Sequence, config *cli.Config) error {
	if config.Output == "" {
		return fmt.Errorf("editing commands require -o <file>")
	}
	if err := smf.WriteFile(seq, config.Output); err != nil {
		return err
	}
	logger.Get().Info("file written", "path", config.Output)
	return nil
}

func sonorities(seq *smf.Sequence, config *cli.Config) error {
	track, err := seq.Track(config.Track)
	if err != nil {
		return err
	}
	ppqn, _ := seq.Division.PPQN()
	list := notes.TrackToSonorities(track, notes.SonorityOptions{
		ChordTolerance: uint64(config.Tolerance),
		PPQN:           ppqn,
		PitchNamer:     theory.PitchName,
	})
	for _, s := range list {
		fmt.Println(s.String())
	}
	return nil
}

func drums(seq *smf.Sequence, config *cli.Config) error {
	mapping := drummap.Default()
	if config.DrumCSV != "" {
		f, err := os.Open(config.DrumCSV)
		if err != nil {
			return err
		}
		defer f.Close()
		mapping, err = drummap.Load(f)
		if err != nil {
			return err
		}
	}

	track, err := seq.Track(config.Track)
	if err != nil {
		return err
	}
	for _, n := range notes.Pair(track) {
		if n.Channel != drummap.Channel {
			continue
		}
		name, ok := mapping.Name(n.Key)
		if !ok {
			name = fmt.Sprintf("key %d", n.Key)
		}
		fmt.Printf("%8d  %-20s vel=%d dur=%d\n", n.Start, name, n.Velocity, n.Duration())
	}
	return nil
}
