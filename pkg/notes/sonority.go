package notes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zurustar/midifile/pkg/smf"
)

// Sonority is a musical unit occupying a contiguous time interval: a rest,
// a single note, or a chord. Durations are in beats when a PPQN was
// supplied to TrackToSonorities, otherwise in raw ticks.
type Sonority interface {
	Duration() float64
	String() string
}

// Rest is a span with no sounding note.
type Rest struct {
	Dur float64
}

func (r Rest) Duration() float64 { return r.Dur }
func (r Rest) String() string    { return fmt.Sprintf("rest %.4g", r.Dur) }

// SoundingNote is one pitch inside a sonority. Name and Octave are filled
// by the pitch-naming port when one is supplied; otherwise Name is empty
// and Key is the only identity.
type SoundingNote struct {
	Key      uint8
	Name     string
	Octave   int
	Velocity uint8
}

func (n SoundingNote) label() string {
	if n.Name == "" {
		return fmt.Sprintf("%d", n.Key)
	}
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// Single is a sonority with exactly one sounding note.
type Single struct {
	Note SoundingNote
	Dur  float64
}

func (s Single) Duration() float64 { return s.Dur }
func (s Single) String() string {
	return fmt.Sprintf("note %s %.4g", s.Note.label(), s.Dur)
}

// Chord is a sonority with two or more sounding notes, ordered by key. Name
// is filled by the chord-detection port when one is supplied and
// recognizes the notes.
type Chord struct {
	Notes []SoundingNote
	Name  string
	Dur   float64
}

func (c Chord) Duration() float64 { return c.Dur }
func (c Chord) String() string {
	labels := make([]string, len(c.Notes))
	for i, n := range c.Notes {
		labels[i] = n.label()
	}
	s := fmt.Sprintf("chord [%s] %.4g", strings.Join(labels, " "), c.Dur)
	if c.Name != "" {
		s += " (" + c.Name + ")"
	}
	return s
}

// SonorityOptions controls TrackToSonorities.
type SonorityOptions struct {
	// ChordTolerance, in ticks, lets notes whose starts are slightly
	// staggered still group into one chord. Zero means exact.
	ChordTolerance uint64

	// PPQN, when nonzero, converts durations from ticks to beats.
	PPQN uint16

	// PitchNamer maps a key number to a letter pitch and octave. Optional;
	// absent, sonorities carry raw key numbers.
	PitchNamer func(key uint8) (string, int)

	// ChordDetector names a chord from its key numbers. Optional; absence
	// is not an error.
	ChordDetector func(keys []uint8) (string, bool)
}

// TrackToSonorities reconstructs the chronological sonority sequence of a
// track. Notes are paired, the timeline is cut at every (tolerance-
// coalesced) note boundary, and each nonzero segment becomes a rest, a
// note, or a chord depending on how many notes sound through it. The
// segmentation is deterministic: the same notes and tolerance always yield
// the same sequence.
func TrackToSonorities(track *smf.Track, opts SonorityOptions) []Sonority {
	return notesToSonorities(Pair(track), opts)
}

func notesToSonorities(notes []Note, opts SonorityOptions) []Sonority {
	if len(notes) == 0 {
		return nil
	}

	boundaries := collectBoundaries(notes, opts.ChordTolerance)

	var out []Sonority
	for i := 1; i < len(boundaries); i++ {
		tPrev, tNext := boundaries[i-1], boundaries[i]
		if tNext <= tPrev {
			continue
		}
		var sounding []SoundingNote
		for _, n := range notes {
			if n.Start <= tPrev+opts.ChordTolerance && n.End >= tNext {
				sounding = append(sounding, makeSoundingNote(n, opts.PitchNamer))
			}
		}
		dur := tickDuration(tNext-tPrev, opts.PPQN)
		switch len(sounding) {
		case 0:
			out = append(out, Rest{Dur: dur})
		case 1:
			out = append(out, Single{Note: sounding[0], Dur: dur})
		default:
			sort.Slice(sounding, func(a, b int) bool { return sounding[a].Key < sounding[b].Key })
			chord := Chord{Notes: sounding, Dur: dur}
			if opts.ChordDetector != nil {
				keys := make([]uint8, len(sounding))
				for j, n := range sounding {
					keys[j] = n.Key
				}
				if name, ok := opts.ChordDetector(keys); ok {
					chord.Name = name
				}
			}
			out = append(out, chord)
		}
	}
	return out
}

// collectBoundaries gathers the distinct start and end ticks of all notes,
// plus tick zero, coalescing boundaries that fall within the chord
// tolerance of the previous kept one. The final tick is always kept so the
// sonority sequence covers the full span.
func collectBoundaries(notes []Note, tolerance uint64) []uint64 {
	set := map[uint64]struct{}{0: {}}
	var maxEnd uint64
	for _, n := range notes {
		set[n.Start] = struct{}{}
		set[n.End] = struct{}{}
		if n.End > maxEnd {
			maxEnd = n.End
		}
	}
	ticks := make([]uint64, 0, len(set))
	for t := range set {
		ticks = append(ticks, t)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })

	kept := make([]uint64, 1, len(ticks)+1)
	kept[0] = ticks[0]
	for _, t := range ticks[1:] {
		if t-kept[len(kept)-1] <= tolerance {
			continue
		}
		kept = append(kept, t)
	}
	if kept[len(kept)-1] != maxEnd {
		kept = append(kept, maxEnd)
	}
	return kept
}

func makeSoundingNote(n Note, namer func(uint8) (string, int)) SoundingNote {
	sn := SoundingNote{Key: n.Key, Velocity: n.Velocity}
	if namer != nil {
		sn.Name, sn.Octave = namer(n.Key)
	}
	return sn
}

func tickDuration(ticks uint64, ppqn uint16) float64 {
	if ppqn == 0 {
		return float64(ticks)
	}
	return float64(ticks) / float64(ppqn)
}
