package smf

// Track is an ordered sequence of events terminated by exactly one
// track-end event. Delta-times are non-negative; the sum of delta-times is
// the track's total tick duration.
type Track struct {
	Events []Event
}

// NewTrack returns a track over the given events.
func NewTrack(events ...Event) *Track {
	return &Track{Events: events}
}

// TotalTicks returns the sum of all delta-times in the track.
func (t *Track) TotalTicks() uint64 {
	var sum uint64
	for _, e := range t.Events {
		sum += uint64(e.Delta)
	}
	return sum
}

// AbsoluteTimes returns the derived absolute time of each event: the prefix
// sum of delta-times. The result has the same length as Events.
func (t *Track) AbsoluteTimes() []uint64 {
	times := make([]uint64, len(t.Events))
	var now uint64
	for i, e := range t.Events {
		now += uint64(e.Delta)
		times[i] = now
	}
	return times
}

// HasTrackEnd reports whether the track's final event is a track-end.
func (t *Track) HasTrackEnd() bool {
	n := len(t.Events)
	return n > 0 && t.Events[n-1].Kind == KindTrackEnd
}

// WithTrackEnd returns the track itself if it already ends with a track-end
// event, otherwise a copy with a synthetic zero-delta track-end appended.
func (t *Track) WithTrackEnd() *Track {
	if t.HasTrackEnd() {
		return t
	}
	events := make([]Event, len(t.Events), len(t.Events)+1)
	copy(events, t.Events)
	return &Track{Events: append(events, NewTrackEnd(0))}
}

// Name returns the text of the track's first sequence-name meta event, or
// "" when there is none.
func (t *Track) Name() string {
	for _, e := range t.Events {
		if e.Kind == KindSequenceName {
			return e.Text()
		}
	}
	return ""
}

// clone returns a copy of the track whose event slice can be mutated
// without observing the original.
func (t *Track) clone() *Track {
	events := make([]Event, len(t.Events))
	copy(events, t.Events)
	return &Track{Events: events}
}
