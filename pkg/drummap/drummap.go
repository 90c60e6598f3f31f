// Package drummap maps General MIDI percussion key numbers to drum names
// and back. Mappings load from two-column CSV (name,key), so instrument
// sets beyond the built-in GM subset can be supplied by the user.
package drummap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Channel is the General MIDI percussion channel (zero-based).
const Channel uint8 = 9

// ErrBadMapping is returned when a CSV row cannot be turned into a
// name/key pair.
var ErrBadMapping = errors.New("bad drum mapping")

// Map associates drum names with GM key numbers. Lookup is case-
// insensitive on names.
type Map struct {
	byName map[string]uint8
	byKey  map[uint8]string
}

// Default returns the GM level-1 percussion subset that sequenced drum
// tracks use most.
func Default() *Map {
	m := newMap()
	for name, key := range map[string]uint8{
		"acoustic bass drum": 35,
		"bass drum 1":        36,
		"side stick":         37,
		"acoustic snare":     38,
		"electric snare":     40,
		"low floor tom":      41,
		"closed hi-hat":      42,
		"high floor tom":     43,
		"pedal hi-hat":       44,
		"low tom":            45,
		"open hi-hat":        46,
		"low-mid tom":        47,
		"hi-mid tom":         48,
		"crash cymbal 1":     49,
		"high tom":           50,
		"ride cymbal 1":      51,
		"chinese cymbal":     52,
		"ride bell":          53,
		"tambourine":         54,
		"splash cymbal":      55,
		"cowbell":            56,
		"crash cymbal 2":     57,
		"ride cymbal 2":      59,
	} {
		m.add(name, key)
	}
	return m
}

func newMap() *Map {
	return &Map{byName: make(map[string]uint8), byKey: make(map[uint8]string)}
}

func (m *Map) add(name string, key uint8) {
	m.byName[strings.ToLower(name)] = key
	if _, taken := m.byKey[key]; !taken {
		m.byKey[key] = strings.ToLower(name)
	}
}

// Load reads a name,key CSV stream. Blank lines and lines starting with #
// are skipped.
func Load(r io.Reader) (*Map, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	m := newMap()
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadMapping, err)
		}
		name := strings.TrimSpace(record[0])
		key, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil || key < 0 || key > 127 || name == "" {
			return nil, fmt.Errorf("%w: %q,%q", ErrBadMapping, record[0], record[1])
		}
		m.add(name, uint8(key))
	}
	return m, nil
}

// Key returns the key number for a drum name.
func (m *Map) Key(name string) (uint8, bool) {
	k, ok := m.byName[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// Name returns the drum name for a key number.
func (m *Map) Name(key uint8) (string, bool) {
	n, ok := m.byKey[key]
	return n, ok
}

// Len reports how many names the map holds.
func (m *Map) Len() int { return len(m.byName) }
