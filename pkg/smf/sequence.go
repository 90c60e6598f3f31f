package smf

import "fmt"

// Sequence is a decoded MIDI file: a format, a time basis, a conductor
// track holding the file-level meta events, and zero or more content
// tracks. Sequences are values; every edit returns a new sequence and may
// share untouched tracks with the original.
type Sequence struct {
	Format    uint16
	Division  TimeBasis
	Conductor *Track
	Tracks    []*Track
}

// NewSequence returns a format-1 sequence with a 480 PPQN metrical basis
// and an empty conductor.
func NewSequence() *Sequence {
	basis, _ := NewMetricalBasis(480)
	return &Sequence{
		Format:    1,
		Division:  basis,
		Conductor: NewTrack(NewTrackEnd(0)),
	}
}

// shallowClone copies the sequence and its track slice; the tracks
// themselves are shared until replaced.
func (s *Sequence) shallowClone() *Sequence {
	tracks := make([]*Track, len(s.Tracks))
	copy(tracks, s.Tracks)
	return &Sequence{
		Format:    s.Format,
		Division:  s.Division,
		Conductor: s.Conductor,
		Tracks:    tracks,
	}
}

// Track returns the content track at the given index.
func (s *Sequence) Track(index int) (*Track, error) {
	if index < 0 || index >= len(s.Tracks) {
		return nil, fmt.Errorf("%w: %d of %d", ErrTrackOutOfRange, index, len(s.Tracks))
	}
	return s.Tracks[index], nil
}

// Name returns the sequence name recorded in the conductor track.
func (s *Sequence) Name() string {
	if s.Conductor == nil {
		return ""
	}
	return s.Conductor.Name()
}

// WithName returns a sequence whose conductor carries the given name,
// replacing the first sequence-name event or inserting one at tick zero.
func (s *Sequence) WithName(name string) *Sequence {
	out := s.shallowClone()
	if out.Conductor == nil {
		out.Conductor = NewTrack(NewTrackEnd(0))
	}
	conductor := out.Conductor.clone()
	for i, e := range conductor.Events {
		if e.Kind == KindSequenceName {
			conductor.Events[i] = NewSequenceName(e.Delta, name)
			out.Conductor = conductor
			return out
		}
	}
	conductor.Events = append([]Event{NewSequenceName(0, name)}, conductor.Events...)
	out.Conductor = conductor.WithTrackEnd()
	return out
}

// BPM returns the beats-per-minute of the conductor's first set-tempo
// event, or the 120 BPM default when there is none.
func (s *Sequence) BPM() int {
	if s.Conductor != nil {
		for _, e := range s.Conductor.Events {
			if e.Kind == KindSetTempo {
				return e.BPM()
			}
		}
	}
	return 60000000 / MicrosPerQuarterDefault
}

// WithBPM returns a sequence whose conductor's tempo is set to the given
// beats per minute. When the sequence has no conductor track the edit is a
// no-op and the returned diagnostic says so; the diagnostic is "" on
// success. The core never logs — surfacing the message is the caller's
// business.
func (s *Sequence) WithBPM(bpm int) (*Sequence, string) {
	if bpm <= 0 {
		return s, fmt.Sprintf("cannot set tempo to %d BPM", bpm)
	}
	if s.Conductor == nil {
		return s, "sequence has no conductor track; tempo not set"
	}
	tempo, err := NewSetTempoBPM(0, bpm)
	if err != nil {
		return s, err.Error()
	}
	out := s.shallowClone()
	conductor := out.Conductor.clone()
	for i, e := range conductor.Events {
		if e.Kind == KindSetTempo {
			tempo.Delta = e.Delta
			conductor.Events[i] = tempo
			out.Conductor = conductor
			return out, ""
		}
	}
	conductor.Events = append([]Event{tempo}, conductor.Events...)
	out.Conductor = conductor.WithTrackEnd()
	return out, ""
}

// conductorKind reports whether a meta event belongs in the conductor track
// when a format-0 file is normalized to format-1 shape.
func conductorKind(k Kind) bool {
	switch k {
	case KindSetTempo, KindTimeSignature, KindKeySignature, KindSequenceName, KindTrackEnd:
		return true
	}
	return false
}

// normalizeFormat0 splits a single format-0 track into a conductor and one
// content track. Both splits preserve every event's absolute time: routing
// is delta-time-preserving filtering, one pass per side.
func normalizeFormat0(track *Track) (conductor, content *Track) {
	conductor = &Track{Events: PreserveDeltaTimes(track.Events, func(e Event) bool {
		return conductorKind(e.Kind)
	})}
	content = &Track{Events: PreserveDeltaTimes(track.Events, func(e Event) bool {
		return !conductorKind(e.Kind) || e.Kind == KindTrackEnd
	})}
	return conductor.WithTrackEnd(), content.WithTrackEnd()
}
