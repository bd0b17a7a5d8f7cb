// Package varint decodes the 1-to-9-byte big-endian variable length integer
// encoding used throughout the on-disk record format.
package varint

import "github.com/p1tsi/sqliteforensics/internal/sqliteerr"

// MaxLen is the maximum number of bytes a varint occupies.
const MaxLen = 9

// Decode reads a varint from data starting at offset and returns the decoded
// value plus the number of bytes consumed. For the first eight bytes, the
// low seven bits of each byte accumulate big-endian; a clear high bit
// terminates early. If eight high-bit-set bytes precede a ninth, the ninth
// byte contributes all eight of its bits.
func Decode(data []byte, offset int) (uint64, int, error) {
	var result uint64
	for i := 0; i < MaxLen-1; i++ {
		pos := offset + i
		if pos >= len(data) {
			return 0, 0, sqliteerr.New("varint_decode", sqliteerr.ErrInsufficientData, map[string]interface{}{
				"offset": offset,
			})
		}
		b := data[pos]
		result = (result << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
	}
	// Ninth byte: contributes all 8 bits.
	pos := offset + MaxLen - 1
	if pos >= len(data) {
		return 0, 0, sqliteerr.New("varint_decode", sqliteerr.ErrInsufficientData, map[string]interface{}{
			"offset": offset,
		})
	}
	result = (result << 8) | uint64(data[pos])
	return result, MaxLen, nil
}
