// Package text decodes the byte content of a TEXT field under a
// process/session-scoped encoding, as declared once per file by the file
// header. Grounded on original_source/src/utils.rs's read_encoded_string /
// read_utf16le_string / read_utf16be_string.
package text

import (
	"unicode/utf16"

	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
)

// Decode returns the string represented by raw under the given session
// encoding. Encodings 0 and 1 are treated as UTF-8; 2 as UTF-16LE; 3 as
// UTF-16BE. Any other value is an UnknownEncoding condition; per the error
// design this degrades to a sentinel string rather than aborting the file.
func Decode(raw []byte, enc session.Encoding) (string, error) {
	switch enc {
	case 0, session.EncodingUTF8:
		return string(raw), nil
	case session.EncodingUTF16LE:
		return decodeUTF16(raw, true), nil
	case session.EncodingUTF16BE:
		return decodeUTF16(raw, false), nil
	default:
		return "UNKNOWN STRING ENCODING VALUE", sqliteerr.ErrUnknownEncoding
	}
}

func decodeUTF16(raw []byte, little bool) string {
	n := len(raw) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		hi, lo := raw[2*i], raw[2*i+1]
		if little {
			units[i] = uint16(lo)<<8 | uint16(hi)
		} else {
			units[i] = uint16(hi)<<8 | uint16(lo)
		}
	}
	return string(utf16.Decode(units))
}
