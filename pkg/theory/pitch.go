// Package theory supplies the small music-theory surface the note pipeline
// consumes: mapping MIDI key numbers to letter pitches and back. Spellings
// are sharp-only; callers that need enharmonic or key-aware spelling plug
// in their own namer.
package theory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPitch is returned when a letter pitch cannot be parsed or the
// resulting key number falls outside 0..127.
var ErrUnknownPitch = errors.New("unknown pitch")

var pitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var pitchNumbers = map[string]int{
	"C": 0, "C#": 1, "DB": 1, "D": 2, "D#": 3, "EB": 3, "E": 4, "F": 5,
	"F#": 6, "GB": 6, "G": 7, "G#": 8, "AB": 8, "A": 9, "A#": 10, "BB": 10, "B": 11,
}

// PitchName maps a MIDI key number to its letter pitch and octave, middle C
// (key 60) being C4.
func PitchName(key uint8) (string, int) {
	return pitchNames[key%12], int(key)/12 - 1
}

// KeyNumber is the inverse of PitchName. Flats are accepted as input even
// though PitchName never produces them.
func KeyNumber(letter string, octave int) (uint8, error) {
	pc, ok := pitchNumbers[strings.ToUpper(strings.TrimSpace(letter))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPitch, letter)
	}
	n := (octave+1)*12 + pc
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("%w: %s%d is outside the MIDI range", ErrUnknownPitch, letter, octave)
	}
	return uint8(n), nil
}
