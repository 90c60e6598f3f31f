package smf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zurustar/midifile/pkg/vlq"
)

// buildFile assembles an SMF byte image from raw track bodies.
func buildFile(format uint16, division uint16, trackBodies ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte("MThd"))
	buf.Write([]byte{0x00, 0x00, 0x00, 0x06})
	buf.Write([]byte{byte(format >> 8), byte(format)})
	n := len(trackBodies)
	buf.Write([]byte{byte(n >> 8), byte(n)})
	buf.Write([]byte{byte(division >> 8), byte(division)})
	for _, body := range trackBodies {
		buf.Write([]byte("MTrk"))
		l := len(body)
		buf.Write([]byte{byte(l >> 24), byte(l >> 16), byte(l >> 8), byte(l)})
		buf.Write(body)
	}
	return buf.Bytes()
}

// trackBytes concatenates event byte fragments into one track body.
func trackBytes(fragments ...[]byte) []byte {
	var body []byte
	for _, f := range fragments {
		body = append(body, f...)
	}
	return body
}

func delta(v uint32) []byte {
	b, _ := vlq.Encode(v)
	return b
}

var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

func TestReadSimpleTrack(t *testing.T) {
	body := trackBytes(
		delta(0), []byte{0x90, 0x3C, 0x64}, // note-on C4 vel 100
		delta(480), []byte{0x80, 0x3C, 0x40}, // note-off C4 vel 64
		endOfTrack,
	)
	seq, err := Read(buildFile(1, 0x01E0, nil, body))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(seq.Tracks) != 1 {
		t.Fatalf("got %d content tracks, want 1", len(seq.Tracks))
	}
	events := seq.Tracks[0].Events
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	on := events[0]
	if on.Kind != KindNoteOn || on.Channel != 0 || on.Key() != 60 || on.Velocity() != 100 || on.Delta != 0 {
		t.Errorf("event 0 = %+v", on)
	}
	off := events[1]
	if off.Kind != KindNoteOff || off.Key() != 60 || off.Velocity() != 64 || off.Delta != 480 {
		t.Errorf("event 1 = %+v", off)
	}
	if events[2].Kind != KindTrackEnd {
		t.Errorf("event 2 = %+v, want track-end", events[2])
	}
}

func TestReadRunningStatus(t *testing.T) {
	body := trackBytes(
		delta(0), []byte{0x91, 0x3C, 0x64}, // note-on, explicit status
		delta(10), []byte{0x40, 0x50}, // running status: note-on E4
		delta(10), []byte{0x3C, 0x00}, // running status: vel 0 -> note-off
		endOfTrack,
	)
	seq, err := Read(buildFile(1, 0x01E0, nil, body))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	events := seq.Tracks[0].Events
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[1].Kind != KindNoteOn || events[1].Channel != 1 || events[1].Key() != 0x40 || events[1].Velocity() != 0x50 {
		t.Errorf("running-status event = %+v", events[1])
	}
	// Velocity-zero note-on is normalized to a note-off with velocity 64.
	if events[2].Kind != KindNoteOff || events[2].Key() != 60 || events[2].Velocity() != 64 {
		t.Errorf("normalized event = %+v", events[2])
	}
}

func TestReadRunningStatusAfterNormalizedNoteOff(t *testing.T) {
	// The wire status stays note-on after a velocity-zero normalization,
	// so a following data byte pair still parses as note-on.
	body := trackBytes(
		delta(0), []byte{0x90, 0x3C, 0x00}, // note-on vel 0 -> note-off
		delta(5), []byte{0x40, 0x64}, // must continue as note-on
		endOfTrack,
	)
	seq, err := Read(buildFile(1, 0x01E0, nil, body))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	events := seq.Tracks[0].Events
	if events[0].Kind != KindNoteOff || events[0].Velocity() != 64 {
		t.Errorf("event 0 = %+v, want normalized note-off", events[0])
	}
	if events[1].Kind != KindNoteOn || events[1].Key() != 0x40 || events[1].Velocity() != 0x64 {
		t.Errorf("event 1 = %+v, want note-on under running status", events[1])
	}
}

func TestReadMetaAndSysEx(t *testing.T) {
	body := trackBytes(
		delta(0), []byte{0xFF, 0x03, 0x07}, []byte("Unnamed"),
		delta(0), []byte{0xFF, 0x51, 0x03, 0x0B, 0x2A, 0x3B}, // 731707 us/quarter
		delta(0), []byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08},
		delta(0), []byte{0xF0, 0x03, 0x7E, 0x09, 0xF7},
		delta(0), []byte{0xFF, 0x60, 0x02, 0xAA, 0xBB}, // unrecognized meta code
		endOfTrack,
	)
	seq, err := Read(buildFile(1, 0x01E0, nil, body))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	events := seq.Tracks[0].Events
	if len(events) != 6 {
		t.Fatalf("got %d events, want 6", len(events))
	}
	if events[0].Kind != KindSequenceName || events[0].Text() != "Unnamed" {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[1].Kind != KindSetTempo || events[1].MicrosPerQuarter() != 731707 || events[1].BPM() != 82 {
		t.Errorf("event 1 = %+v, micros=%d", events[1], events[1].MicrosPerQuarter())
	}
	if events[2].Kind != KindTimeSignature || !bytes.Equal(events[2].Data, []byte{4, 2, 24, 8}) {
		t.Errorf("event 2 = %+v", events[2])
	}
	if events[3].Kind != KindSysEx || !bytes.Equal(events[3].Data, []byte{0x7E, 0x09, 0xF7}) {
		t.Errorf("event 3 = %+v", events[3])
	}
	if events[4].Kind != KindUnknownMeta || events[4].MetaType != 0x60 || !bytes.Equal(events[4].Data, []byte{0xAA, 0xBB}) {
		t.Errorf("event 4 = %+v", events[4])
	}
}

func TestReadPitchBendNormalization(t *testing.T) {
	// Wire order is LSB then MSB; memory keeps MSB in Data1.
	body := trackBytes(
		delta(0), []byte{0xE0, 0x00, 0x40}, // center: LSB 0, MSB 0x40
		endOfTrack,
	)
	seq, err := Read(buildFile(1, 0x01E0, nil, body))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	bend := seq.Tracks[0].Events[0]
	if bend.Kind != KindPitchBend || bend.PitchBend() != 0x2000 {
		t.Errorf("pitch bend = %+v, value 0x%04X", bend, bend.PitchBend())
	}
	if bend.Data1 != 0x40 || bend.Data2 != 0x00 {
		t.Errorf("pitch bend halves = (0x%02X, 0x%02X), want (0x40, 0x00)", bend.Data1, bend.Data2)
	}
}

func TestReadLeadingJunkBeforeHeader(t *testing.T) {
	file := buildFile(1, 0x01E0, nil, trackBytes(endOfTrack))
	junk := append([]byte("ID3\x03junkjunk"), file...)
	if _, err := Read(junk); err != nil {
		t.Fatalf("Read with leading junk returned error: %v", err)
	}
}

func TestReadTrackEndStopsEarly(t *testing.T) {
	// Declared length covers trailing garbage after the end-of-track
	// event; the garbage is consumed by the chunk framing and ignored.
	body := trackBytes(
		delta(0), []byte{0x90, 0x3C, 0x64},
		endOfTrack,
		[]byte{0xDE, 0xAD, 0xBE, 0xEF},
	)
	seq, err := Read(buildFile(1, 0x01E0, nil, body))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	events := seq.Tracks[0].Events
	if len(events) != 2 || events[1].Kind != KindTrackEnd {
		t.Errorf("events = %v", events)
	}
}

func TestReadUnknownStatusRecovers(t *testing.T) {
	body := trackBytes(
		delta(0), []byte{0xF4}, // undefined system common status
		delta(0), []byte{0x90, 0x3C, 0x64},
		endOfTrack,
	)
	seq, err := Read(buildFile(1, 0x01E0, nil, body))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	events := seq.Tracks[0].Events
	if events[0].Kind != KindUnknownStatus || events[0].Data1 != 0xF4 {
		t.Errorf("event 0 = %+v, want unknown-status 0xF4", events[0])
	}
	if events[1].Kind != KindNoteOn {
		t.Errorf("event 1 = %+v, parsing should continue", events[1])
	}
}

func TestReadDataByteWithoutRunningStatus(t *testing.T) {
	body := trackBytes(
		delta(0), []byte{0x3C}, // data byte with no status to inherit
		endOfTrack,
	)
	seq, err := Read(buildFile(1, 0x01E0, nil, body))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if seq.Tracks[0].Events[0].Kind != KindUnknownStatus {
		t.Errorf("event 0 = %+v, want unknown-status", seq.Tracks[0].Events[0])
	}
}

func TestReadErrors(t *testing.T) {
	t.Run("no MThd", func(t *testing.T) {
		if _, err := Read([]byte("this is not a midi file")); !errors.Is(err, ErrBadCookie) {
			t.Errorf("error = %v, want ErrBadCookie", err)
		}
	})
	t.Run("missing MTrk", func(t *testing.T) {
		file := buildFile(1, 0x01E0, trackBytes(endOfTrack))
		file = file[:len(file)-8-len(endOfTrack)] // drop the whole track chunk
		if _, err := Read(file); !errors.Is(err, ErrBadCookie) {
			t.Errorf("error = %v, want ErrBadCookie", err)
		}
	})
	t.Run("truncated track", func(t *testing.T) {
		file := buildFile(1, 0x01E0, trackBytes(endOfTrack))
		file = file[:len(file)-2]
		if _, err := Read(file); !errors.Is(err, ErrTruncatedChunk) {
			t.Errorf("error = %v, want ErrTruncatedChunk", err)
		}
	})
	t.Run("unknown smpte fps", func(t *testing.T) {
		word := uint16(0x8000) | uint16(0x50)<<8 | 40
		file := buildFile(1, word, trackBytes(endOfTrack))
		if _, err := Read(file); !errors.Is(err, ErrUnknownSMPTEFPS) {
			t.Errorf("error = %v, want ErrUnknownSMPTEFPS", err)
		}
	})
	t.Run("malformed delta varlen", func(t *testing.T) {
		body := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x2F, 0x00}
		file := buildFile(1, 0x01E0, body)
		if _, err := Read(file); !errors.Is(err, vlq.ErrMalformed) {
			t.Errorf("error = %v, want vlq.ErrMalformed", err)
		}
	})
}

func TestReadFormat0Normalization(t *testing.T) {
	body := trackBytes(
		delta(0), []byte{0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}, // 500000 us
		delta(10), []byte{0x90, 0x3C, 0x64},
		delta(20), []byte{0xFF, 0x58, 0x04, 0x03, 0x02, 0x18, 0x08},
		delta(30), []byte{0x80, 0x3C, 0x40},
		endOfTrack,
	)
	seq, err := Read(buildFile(0, 0x01E0, body))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if seq.Format != 0 {
		t.Errorf("Format = %d, want 0 preserved", seq.Format)
	}
	if len(seq.Tracks) != 1 {
		t.Fatalf("got %d content tracks, want 1", len(seq.Tracks))
	}

	// Conductor carries tempo, time signature and track-end at their
	// original absolute times.
	cond := seq.Conductor.Events
	if len(cond) != 3 {
		t.Fatalf("conductor has %d events: %v", len(cond), cond)
	}
	if cond[0].Kind != KindSetTempo || cond[0].Delta != 0 {
		t.Errorf("conductor[0] = %+v", cond[0])
	}
	if cond[1].Kind != KindTimeSignature || cond[1].Delta != 30 {
		t.Errorf("conductor[1] = %+v, want time-signature at delta 30", cond[1])
	}
	if cond[2].Kind != KindTrackEnd || cond[2].Delta != 30 {
		t.Errorf("conductor[2] = %+v, want track-end at delta 30", cond[2])
	}

	// The content track keeps the channel events, absorbing the deltas of
	// the meta events routed away.
	content := seq.Tracks[0].Events
	if len(content) != 3 {
		t.Fatalf("content has %d events: %v", len(content), content)
	}
	if content[0].Kind != KindNoteOn || content[0].Delta != 10 {
		t.Errorf("content[0] = %+v", content[0])
	}
	if content[1].Kind != KindNoteOff || content[1].Delta != 50 {
		t.Errorf("content[1] = %+v, want note-off at delta 50", content[1])
	}
	if content[2].Kind != KindTrackEnd {
		t.Errorf("content[2] = %+v", content[2])
	}

	if seq.Conductor.TotalTicks() != seq.Tracks[0].TotalTicks() {
		t.Errorf("conductor spans %d ticks, content %d",
			seq.Conductor.TotalTicks(), seq.Tracks[0].TotalTicks())
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile("/nonexistent/file.mid"); err == nil {
		t.Error("ReadFile on a missing path should fail")
	}
}
