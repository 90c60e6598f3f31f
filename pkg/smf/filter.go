package smf

import "fmt"

// PreserveDeltaTimes removes the events rejected by keep while conserving
// every survivor's absolute time: each kept event's delta-time absorbs the
// delta-times of the dropped events immediately preceding it. The sum of
// delta-times is invariant provided the final event is kept; a dropped tail
// accumulates in no kept event, so callers that care keep track-end.
func PreserveDeltaTimes(events []Event, keep func(Event) bool) []Event {
	out := make([]Event, 0, len(events))
	var carried uint64
	for _, e := range events {
		if !keep(e) {
			carried += uint64(e.Delta)
			continue
		}
		e.Delta = uint32(uint64(e.Delta) + carried)
		carried = 0
		out = append(out, e)
	}
	return out
}

// FilterEvents returns a sequence whose content track at trackIndex keeps
// only the events accepted by keep, with delta-times preserved. Untouched
// tracks are shared with the input.
func FilterEvents(seq *Sequence, trackIndex int, keep func(Event) bool) (*Sequence, error) {
	track, err := seq.Track(trackIndex)
	if err != nil {
		return nil, err
	}
	out := seq.shallowClone()
	out.Tracks[trackIndex] = &Track{Events: PreserveDeltaTimes(track.Events, keep)}
	return out, nil
}

// FilterKind drops every event of the given kind from the content track at
// trackIndex. Track-end events are always kept, so the track's total
// duration is conserved; asking to drop track-end itself fails with
// ErrInvalidData.
func FilterKind(seq *Sequence, trackIndex int, kind Kind) (*Sequence, error) {
	if kind == KindTrackEnd {
		return nil, fmt.Errorf("%w: refusing to drop track-end events", ErrInvalidData)
	}
	return FilterEvents(seq, trackIndex, func(e Event) bool {
		return e.Kind != kind
	})
}
