package smf

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// decodeText interprets a meta text payload. Valid UTF-8 (which includes
// plain ASCII) passes through; anything else is retried as Shift-JIS, the
// dominant legacy encoding in sequenced files. Undecodable bytes fall back
// to a raw byte-for-rune conversion so no payload is ever an error.
func decodeText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err == nil && utf8.Valid(decoded) {
		return string(decoded)
	}
	return string(data)
}
