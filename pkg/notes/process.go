package notes

import (
	"github.com/zurustar/midifile/pkg/smf"
)

// Op is a per-note operation applied by ProcessNotes to every note pair the
// predicate matches.
type Op interface {
	isOp()
}

// Remove excises both the note-on and the matching note-off, with the
// dropped delta-times absorbed by the surviving events.
type Remove struct{}

// ShiftPitch adds Semitones to the key of both paired events, clamping the
// result to 0..127.
type ShiftPitch struct {
	Semitones int
}

// SetVelocity rewrites the note-on velocity of matching notes. Either a
// constant Value, or a Func receiving the full paired note; exactly one is
// consulted — Func wins when set. Outputs are clamped to 0..127.
type SetVelocity struct {
	Value uint8
	Func  func(Note) uint8
}

func (Remove) isOp()      {}
func (ShiftPitch) isOp()  {}
func (SetVelocity) isOp() {}

func clampKey(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

// ProcessNotes pairs the track's notes, selects the pairs matching the
// predicate, and applies op to both members of every matching pair. Events
// that are not part of a matching pair pass through untouched, except that
// under Remove their delta-times absorb the deltas of dropped predecessors.
// A nil predicate matches every note.
func ProcessNotes(track *smf.Track, pred func(Note) bool, op Op) *smf.Track {
	pairs := pairEvents(track.Events)
	matched := make(map[int]pairedNote)
	for _, p := range pairs {
		if pred != nil && !pred(p.Note) {
			continue
		}
		matched[p.onIndex] = p
		if p.offIndex >= 0 {
			matched[p.offIndex] = p
		}
	}

	switch op := op.(type) {
	case Remove:
		i := -1
		return &smf.Track{Events: smf.PreserveDeltaTimes(track.Events, func(smf.Event) bool {
			i++
			_, drop := matched[i]
			return !drop
		})}

	case ShiftPitch:
		out := make([]smf.Event, len(track.Events))
		copy(out, track.Events)
		for i := range out {
			if _, ok := matched[i]; ok {
				out[i].Data1 = clampKey(int(out[i].Data1) + op.Semitones)
			}
		}
		return &smf.Track{Events: out}

	case SetVelocity:
		out := make([]smf.Event, len(track.Events))
		copy(out, track.Events)
		for i := range out {
			p, ok := matched[i]
			if !ok || i != p.onIndex {
				continue
			}
			v := op.Value
			if op.Func != nil {
				v = op.Func(p.Note)
			}
			if v > 127 {
				v = 127
			}
			out[i].Data2 = v
		}
		return &smf.Track{Events: out}
	}
	return track
}

// ProcessSequenceNotes applies ProcessNotes to the content track at
// trackIndex, returning a new sequence that shares every untouched track.
func ProcessSequenceNotes(seq *smf.Sequence, trackIndex int, pred func(Note) bool, op Op) (*smf.Sequence, error) {
	track, err := seq.Track(trackIndex)
	if err != nil {
		return nil, err
	}
	out := &smf.Sequence{
		Format:    seq.Format,
		Division:  seq.Division,
		Conductor: seq.Conductor,
		Tracks:    make([]*smf.Track, len(seq.Tracks)),
	}
	copy(out.Tracks, seq.Tracks)
	out.Tracks[trackIndex] = ProcessNotes(track, pred, op)
	return out, nil
}
