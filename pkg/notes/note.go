// Package notes pairs note-on/note-off events into logical notes and
// builds the two edit surfaces on top of that pairing: per-note transforms
// lowering back to event streams, and reconstruction of the chronological
// sonority sequence (notes, chords, rests).
package notes

import (
	"sort"

	"github.com/zurustar/midifile/pkg/smf"
)

// Note is a paired note-on/note-off, in absolute ticks. Velocity is the
// note-on velocity; the note-off velocity does not survive pairing.
type Note struct {
	Channel  uint8
	Key      uint8
	Start    uint64
	End      uint64
	Velocity uint8
}

// Duration returns the note length in ticks.
func (n Note) Duration() uint64 {
	if n.End < n.Start {
		return 0
	}
	return n.End - n.Start
}

// pairedNote ties a note record to the event indices it came from. offIndex
// is -1 when the note-on was left open and closed at the stream's end.
type pairedNote struct {
	Note
	onIndex  int
	offIndex int
}

type noteSlot struct {
	onIndex  int
	start    uint64
	velocity uint8
}

// pairEvents scans the stream in order, pairing each note-on (velocity > 0)
// with the next note-off on the same channel and key; a note-on with
// velocity zero counts as a note-off. Unmatched note-offs are discarded.
// Unmatched note-ons are closed at the final event's absolute time. Records
// come out in note-off order, the sentinel-closed tail sorted by start.
func pairEvents(events []smf.Event) []pairedNote {
	type slotKey struct {
		channel uint8
		key     uint8
	}
	open := make(map[slotKey]noteSlot)
	var paired []pairedNote
	var now uint64
	for i, e := range events {
		now += uint64(e.Delta)
		switch {
		case e.IsNoteOn():
			open[slotKey{e.Channel, e.Key()}] = noteSlot{onIndex: i, start: now, velocity: e.Velocity()}
		case e.IsNoteOff():
			k := slotKey{e.Channel, e.Key()}
			slot, ok := open[k]
			if !ok {
				continue
			}
			delete(open, k)
			paired = append(paired, pairedNote{
				Note: Note{
					Channel:  e.Channel,
					Key:      e.Key(),
					Start:    slot.start,
					End:      now,
					Velocity: slot.velocity,
				},
				onIndex:  slot.onIndex,
				offIndex: i,
			})
		}
	}
	if len(open) > 0 {
		tail := make([]pairedNote, 0, len(open))
		for k, slot := range open {
			tail = append(tail, pairedNote{
				Note: Note{
					Channel:  k.channel,
					Key:      k.key,
					Start:    slot.start,
					End:      now,
					Velocity: slot.velocity,
				},
				onIndex:  slot.onIndex,
				offIndex: -1,
			})
		}
		sort.Slice(tail, func(i, j int) bool { return tail[i].onIndex < tail[j].onIndex })
		paired = append(paired, tail...)
	}
	return paired
}

// Pair returns the logical notes of a track, in note-off order.
func Pair(track *smf.Track) []Note {
	pairs := pairEvents(track.Events)
	out := make([]Note, len(pairs))
	for i, p := range pairs {
		out[i] = p.Note
	}
	return out
}
