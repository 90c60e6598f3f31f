package smf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/zurustar/midifile/pkg/vlq"
)

// Write serializes a sequence to SMF bytes. The output is always format 1:
// the conductor first, then every content track. Running status is
// compressed exactly the way the reader expands it, so a decoded sequence
// round-trips event-for-event.
func Write(seq *Sequence) ([]byte, error) {
	tracks := make([]*Track, 0, len(seq.Tracks)+1)
	conductor := seq.Conductor
	if conductor == nil {
		conductor = NewTrack(NewTrackEnd(0))
	}
	tracks = append(tracks, conductor.WithTrackEnd())
	for _, t := range seq.Tracks {
		tracks = append(tracks, t.WithTrackEnd())
	}
	if len(tracks) > 0xFFFF {
		return nil, fmt.Errorf("%w: %d tracks", ErrInvalidData, len(tracks))
	}

	var buf bytes.Buffer
	buf.Write(headerCookie)
	binary.Write(&buf, binary.BigEndian, uint32(6))
	binary.Write(&buf, binary.BigEndian, uint16(1))
	binary.Write(&buf, binary.BigEndian, uint16(len(tracks)))
	binary.Write(&buf, binary.BigEndian, seq.Division.Word())

	for i, t := range tracks {
		body, err := writeTrackBody(t)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		buf.Write(trackCookie)
		binary.Write(&buf, binary.BigEndian, uint32(len(body)))
		buf.Write(body)
	}
	return buf.Bytes(), nil
}

// WriteFile serializes the sequence and writes the byte image in a single
// file write, keeping the partial-failure window as small as possible.
func WriteFile(seq *Sequence, path string) error {
	data, err := Write(seq)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeTrackBody serializes one track's event region. The running-status
// state mirrors the reader's: a status byte is omitted when kind and
// channel repeat, a meta or sysex event resets the state, and a note-off
// with velocity 64 following a note-on on the same channel is emitted as a
// running-status note-on with velocity zero — the inverse of the reader's
// normalization, required for the byte round-trip.
func writeTrackBody(t *Track) ([]byte, error) {
	var body []byte
	var runningStatus uint8
	var err error
	for i, e := range t.Events {
		body, err = vlq.Append(body, e.Delta)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		switch {
		case e.Kind.IsChannelVoice():
			body, runningStatus, err = appendChannelEvent(body, e, runningStatus)
		case e.Kind == KindSysEx:
			runningStatus = 0
			body = append(body, 0xF0)
			body, err = appendVarlenPayload(body, e.Data)
		case e.Kind.IsMeta():
			runningStatus = 0
			body = append(body, 0xFF, e.MetaType)
			body, err = appendVarlenPayload(body, e.Data)
		case e.Kind == KindUnknownStatus:
			runningStatus = 0
			body = append(body, e.Data1)
		default:
			err = fmt.Errorf("%w: cannot encode %s event", ErrInvalidData, e.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return body, nil
}

func appendVarlenPayload(body, payload []byte) ([]byte, error) {
	body, err := vlq.Append(body, uint32(len(payload)))
	if err != nil {
		return nil, err
	}
	return append(body, payload...), nil
}

// appendChannelEvent emits one channel-voice event under the running-status
// rules and returns the updated state.
func appendChannelEvent(body []byte, e Event, runningStatus uint8) ([]byte, uint8, error) {
	if e.Channel > 0x0F {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidChannel, e.Channel)
	}
	data1, data2 := e.Data1, e.Data2
	if e.Kind == KindPitchBend {
		// MSB first in memory, LSB first on the wire.
		data1, data2 = e.Data2, e.Data1
	}
	if data1 > 0x7F || data2 > 0x7F {
		return nil, 0, fmt.Errorf("%w: %s %d %d", ErrInvalidData, e.Kind, data1, data2)
	}

	status := e.Status()
	if e.Kind == KindNoteOff && e.Data2 == 64 && runningStatus == 0x90|e.Channel {
		// The reader produced this note-off from a note-on with velocity
		// zero; re-emitting it that way keeps the stream byte-identical.
		body = append(body, e.Data1, 0x00)
		return body, runningStatus, nil
	}
	if status != runningStatus {
		body = append(body, status)
	}
	body = append(body, data1)
	if channelDataLen(status) == 2 {
		body = append(body, data2)
	}
	return body, status, nil
}
