package smf

import "fmt"

// Meta-event type codes from the SMF specification.
const (
	MetaSequenceNumber    = 0x00
	MetaText              = 0x01
	MetaCopyright         = 0x02
	MetaSequenceName      = 0x03
	MetaInstrument        = 0x04
	MetaLyric             = 0x05
	MetaMarker            = 0x06
	MetaCuePoint          = 0x07
	MetaChannelPrefix     = 0x20
	MetaTrackEnd          = 0x2F
	MetaSetTempo          = 0x51
	MetaSMPTEOffset       = 0x54
	MetaTimeSignature     = 0x58
	MetaKeySignature      = 0x59
	MetaSequencerSpecific = 0x7F
)

// MicrosPerQuarterDefault is the tempo assumed when a sequence carries no
// set-tempo event (120 BPM).
const MicrosPerQuarterDefault = 500000

var metaKinds = map[uint8]Kind{
	MetaSequenceNumber:    KindSequenceNumber,
	MetaText:              KindText,
	MetaCopyright:         KindCopyright,
	MetaSequenceName:      KindSequenceName,
	MetaInstrument:        KindInstrument,
	MetaLyric:             KindLyric,
	MetaMarker:            KindMarker,
	MetaCuePoint:          KindCuePoint,
	MetaChannelPrefix:     KindChannelPrefix,
	MetaTrackEnd:          KindTrackEnd,
	MetaSetTempo:          KindSetTempo,
	MetaSMPTEOffset:       KindSMPTEOffset,
	MetaTimeSignature:     KindTimeSignature,
	MetaKeySignature:      KindKeySignature,
	MetaSequencerSpecific: KindSequencerSpecific,
}

// metaEvent builds the typed event for a decoded meta payload. Unrecognized
// codes round-trip as unknown-meta events.
func metaEvent(delta uint32, metaType uint8, data []byte) Event {
	kind, ok := metaKinds[metaType]
	if !ok {
		kind = KindUnknownMeta
	}
	return Event{Kind: kind, Delta: delta, MetaType: metaType, Data: data}
}

func isTextKind(k Kind) bool {
	return k >= KindText && k <= KindCuePoint
}

// Text decodes the payload of a text-carrying meta event. Files in the wild
// frequently store names and lyrics in legacy encodings; decoding is
// UTF-8-first with a Shift-JIS fallback. Returns "" for non-text events.
func (e Event) Text() string {
	if !isTextKind(e.Kind) {
		return ""
	}
	return decodeText(e.Data)
}

// MicrosPerQuarter returns the decoded 24-bit tempo of a set-tempo event,
// or the 120 BPM default for any other kind.
func (e Event) MicrosPerQuarter() uint32 {
	if e.Kind != KindSetTempo || len(e.Data) != 3 {
		return MicrosPerQuarterDefault
	}
	return uint32(e.Data[0])<<16 | uint32(e.Data[1])<<8 | uint32(e.Data[2])
}

// BPM returns the beats-per-minute view of a set-tempo event.
func (e Event) BPM() int {
	micros := e.MicrosPerQuarter()
	if micros == 0 {
		return 0
	}
	return int(60000000 / micros)
}

// NewTrackEnd builds the distinguished end-of-track meta event.
func NewTrackEnd(delta uint32) Event {
	return Event{Kind: KindTrackEnd, Delta: delta, MetaType: MetaTrackEnd}
}

// NewSetTempo builds a set-tempo meta event from a microseconds-per-quarter
// value. The value must fit in 24 bits.
func NewSetTempo(delta uint32, microsPerQuarter uint32) (Event, error) {
	if microsPerQuarter > 0xFFFFFF {
		return Event{}, fmt.Errorf("%w: tempo 0x%X exceeds 24 bits", ErrInvalidData, microsPerQuarter)
	}
	return Event{
		Kind:     KindSetTempo,
		Delta:    delta,
		MetaType: MetaSetTempo,
		Data: []byte{
			byte(microsPerQuarter >> 16),
			byte(microsPerQuarter >> 8),
			byte(microsPerQuarter),
		},
	}, nil
}

// NewSetTempoBPM builds a set-tempo meta event from beats per minute.
func NewSetTempoBPM(delta uint32, bpm int) (Event, error) {
	if bpm <= 0 {
		return Event{}, fmt.Errorf("%w: bpm %d", ErrInvalidData, bpm)
	}
	return NewSetTempo(delta, uint32(60000000/bpm))
}

// NewSequenceName builds a sequence/track name meta event.
func NewSequenceName(delta uint32, name string) Event {
	return Event{Kind: KindSequenceName, Delta: delta, MetaType: MetaSequenceName, Data: []byte(name)}
}

// NewTextEvent builds a generic text meta event.
func NewTextEvent(delta uint32, text string) Event {
	return Event{Kind: KindText, Delta: delta, MetaType: MetaText, Data: []byte(text)}
}

// NewMarker builds a marker meta event.
func NewMarker(delta uint32, text string) Event {
	return Event{Kind: KindMarker, Delta: delta, MetaType: MetaMarker, Data: []byte(text)}
}

// NewTimeSignature builds a time-signature meta event. The denominator is
// given as written (4 for quarter, 8 for eighth) and must be a power of
// two.
func NewTimeSignature(delta uint32, numerator, denominator uint8) (Event, error) {
	var pow uint8
	for d := denominator; d > 1; d >>= 1 {
		if d&1 != 0 {
			return Event{}, fmt.Errorf("%w: denominator %d is not a power of two", ErrInvalidData, denominator)
		}
		pow++
	}
	if numerator == 0 || denominator == 0 {
		return Event{}, fmt.Errorf("%w: %d/%d time", ErrInvalidData, numerator, denominator)
	}
	// 24 MIDI clocks per metronome tick, 8 notated 32nds per quarter: the
	// conventional defaults.
	return Event{
		Kind:     KindTimeSignature,
		Delta:    delta,
		MetaType: MetaTimeSignature,
		Data:     []byte{numerator, pow, 24, 8},
	}, nil
}

// NewKeySignature builds a key-signature meta event. sharpsOrFlats is the
// signed count of sharps (positive) or flats (negative), -7..7.
func NewKeySignature(delta uint32, sharpsOrFlats int8, minor bool) (Event, error) {
	if sharpsOrFlats < -7 || sharpsOrFlats > 7 {
		return Event{}, fmt.Errorf("%w: %d sharps/flats", ErrInvalidData, sharpsOrFlats)
	}
	mm := byte(0)
	if minor {
		mm = 1
	}
	return Event{
		Kind:     KindKeySignature,
		Delta:    delta,
		MetaType: MetaKeySignature,
		Data:     []byte{byte(sharpsOrFlats), mm},
	}, nil
}
