package smf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/zurustar/midifile/pkg/vlq"
)

var (
	headerCookie = []byte("MThd")
	trackCookie  = []byte("MTrk")
)

// ReadFile reads and decodes the SMF at path. The file is read fully before
// parsing starts; the handle is released on every exit path.
func ReadFile(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	seq, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return seq, nil
}

// Read decodes an SMF byte stream into a sequence. The MThd chunk is
// located by linear scan, so leading junk (ID3 tags, mail headers) is
// tolerated. Format-0 files are normalized to format-1 shape: file-level
// meta events route to the conductor and the rest forms one content track.
func Read(data []byte) (*Sequence, error) {
	pos := bytes.Index(data, headerCookie)
	if pos < 0 {
		return nil, fmt.Errorf("%w: no MThd header", ErrBadCookie)
	}
	pos += len(headerCookie)
	if len(data)-pos < 4 {
		return nil, fmt.Errorf("%w: header length missing", ErrTruncatedChunk)
	}
	headerLen := binary.BigEndian.Uint32(data[pos:])
	pos += 4
	if headerLen < 6 || uint64(len(data)-pos) < uint64(headerLen) {
		return nil, fmt.Errorf("%w: header claims %d bytes", ErrTruncatedChunk, headerLen)
	}
	format := binary.BigEndian.Uint16(data[pos:])
	trackCount := binary.BigEndian.Uint16(data[pos+2:])
	division, err := ParseDivision(binary.BigEndian.Uint16(data[pos+4:]))
	if err != nil {
		return nil, err
	}
	// Headers longer than 6 bytes are legal; the extra bytes are ignored.
	pos += int(headerLen)

	tracks := make([]*Track, 0, trackCount)
	for i := 0; i < int(trackCount); i++ {
		next := bytes.Index(data[pos:], trackCookie)
		if next < 0 {
			return nil, fmt.Errorf("%w: track %d: no MTrk", ErrBadCookie, i)
		}
		pos += next + len(trackCookie)
		if len(data)-pos < 4 {
			return nil, fmt.Errorf("%w: track %d: length missing", ErrTruncatedChunk, i)
		}
		length := binary.BigEndian.Uint32(data[pos:])
		pos += 4
		if uint64(len(data)-pos) < uint64(length) {
			return nil, fmt.Errorf("%w: track %d claims %d bytes, %d available",
				ErrTruncatedChunk, i, length, len(data)-pos)
		}
		events, err := readTrackEvents(data[pos : pos+int(length)])
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		pos += int(length)
		tracks = append(tracks, &Track{Events: events})
	}

	return assembleSequence(format, division, tracks), nil
}

// assembleSequence routes raw tracks into the conductor/content shape.
func assembleSequence(format uint16, division TimeBasis, tracks []*Track) *Sequence {
	seq := &Sequence{Format: format, Division: division}
	switch {
	case len(tracks) == 0:
		seq.Conductor = NewTrack(NewTrackEnd(0))
	case format == 0:
		seq.Conductor, seq.Tracks = normalizeFormat0Split(tracks[0])
	default:
		seq.Conductor = tracks[0].WithTrackEnd()
		seq.Tracks = make([]*Track, len(tracks)-1)
		for i, t := range tracks[1:] {
			seq.Tracks[i] = t.WithTrackEnd()
		}
	}
	return seq
}

func normalizeFormat0Split(track *Track) (*Track, []*Track) {
	conductor, content := normalizeFormat0(track)
	return conductor, []*Track{content}
}

// readTrackEvents decodes exactly one track chunk's event region. The
// running-status state is local to the track. A track-end event terminates
// decoding even if declared bytes remain; they were consumed by the chunk
// framing and are ignored. Malformed events inside an intact chunk are
// recovered as unknown-status / unknown-meta pass-through events.
func readTrackEvents(region []byte) ([]Event, error) {
	var events []Event
	var runningStatus uint8
	pos := 0
	for pos < len(region) {
		delta, n, err := vlq.Decode(region[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		if pos >= len(region) {
			break
		}

		b := region[pos]
		switch {
		case b == 0xFF:
			pos++
			runningStatus = 0
			ev, n, err := readMetaEvent(delta, region[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			events = append(events, ev)
			if ev.Kind == KindTrackEnd {
				return events, nil
			}

		case b == 0xF0:
			pos++
			runningStatus = 0
			length, n, err := vlq.Decode(region[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			payload, n := takeBytes(region[pos:], int(length))
			pos += n
			events = append(events, Event{Kind: KindSysEx, Delta: delta, Data: payload})

		case b >= 0x80 && b <= 0xEF:
			pos++
			runningStatus = b
			ev, n := readChannelEvent(delta, b, region[pos:])
			pos += n
			events = append(events, ev)

		case b >= 0xF1: // 0xF1..0xFE: not an SMF track event
			pos++
			events = append(events, Event{Kind: KindUnknownStatus, Delta: delta, Data1: b})

		default: // data byte: running status
			if runningStatus == 0 {
				// No channel-voice state to continue; keep the byte so the
				// stream still round-trips.
				pos++
				events = append(events, Event{Kind: KindUnknownStatus, Delta: delta, Data1: b})
				continue
			}
			ev, n := readChannelEvent(delta, runningStatus, region[pos:])
			pos += n
			events = append(events, ev)
		}
	}
	return events, nil
}

// channelDataLen returns the number of data bytes for a channel-voice
// status: one for program-change and channel-pressure, two otherwise.
func channelDataLen(status uint8) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	}
	return 2
}

// readChannelEvent decodes the data bytes of a channel-voice event whose
// status byte (explicit or running) is already known. A note-on with
// velocity zero is normalized to a note-off with velocity 64; the wire
// status stays note-on in the caller's running state, which is what keeps
// running-status continuity bit-exact. Returns the event and the number of
// data bytes consumed.
func readChannelEvent(delta uint32, status uint8, data []byte) (Event, int) {
	need := channelDataLen(status)
	if len(data) < need {
		// Not enough bytes left in the chunk for the payload. The chunk
		// framing is authoritative, so recover with a pass-through event.
		n := len(data)
		ev := Event{Kind: KindUnknownStatus, Delta: delta, Data1: status}
		return ev, n
	}
	kind := kindForStatus(status)
	channel := status & 0x0F
	ev := Event{Kind: kind, Delta: delta, Channel: channel, Data1: data[0] & 0x7F}
	if need == 2 {
		ev.Data2 = data[1] & 0x7F
	}
	switch kind {
	case KindNoteOn:
		if ev.Data2 == 0 {
			ev.Kind = KindNoteOff
			ev.Data2 = 64
		}
	case KindPitchBend:
		// LSB first on the wire, MSB first in memory.
		ev.Data1, ev.Data2 = data[1]&0x7F, data[0]&0x7F
	}
	return ev, need
}

// readMetaEvent decodes a meta event body (after the 0xFF byte): type,
// varlen length, payload. Returns the event and bytes consumed.
func readMetaEvent(delta uint32, data []byte) (Event, int, error) {
	if len(data) == 0 {
		return Event{Kind: KindUnknownStatus, Delta: delta, Data1: 0xFF}, 0, nil
	}
	metaType := data[0]
	length, n, err := vlq.Decode(data[1:])
	if err != nil {
		return Event{}, 0, err
	}
	payload, taken := takeBytes(data[1+n:], int(length))
	return metaEvent(delta, metaType, payload), 1 + n + taken, nil
}

// takeBytes copies up to want bytes from data, tolerating a short region.
func takeBytes(data []byte, want int) ([]byte, int) {
	if want > len(data) {
		want = len(data)
	}
	if want == 0 {
		return nil, 0
	}
	out := make([]byte, want)
	copy(out, data[:want])
	return out, want
}
