// Package freelist walks the freelist trunk-page chain to compute the set
// of free pages recorded in the session. Grounded on
// original_source/src/mainfile.rs's FreeListTrunkPageHeader/
// FreeListTrunkPage. Per spec 4.E/9, the content of freelist leaf pages is
// never decoded as cells — only the trunk chain's bookkeeping fields are
// read.
package freelist

import (
	"encoding/binary"

	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
)

// TrunkHeader is the header of one freelist trunk page: a pointer to the
// next trunk page (0 terminates the chain) and the list of leaf (free)
// page numbers this trunk page carries directly.
type TrunkHeader struct {
	NextTrunkPage uint32
	LeafPages     []uint32
}

// ParseTrunkHeader reads the trunk header at offset within data.
func ParseTrunkHeader(data []byte, offset int) (TrunkHeader, error) {
	if offset+8 > len(data) {
		return TrunkHeader{}, sqliteerr.New("parse_freelist_trunk", sqliteerr.ErrInsufficientData, nil)
	}
	next := binary.BigEndian.Uint32(data[offset : offset+4])
	count := binary.BigEndian.Uint32(data[offset+4 : offset+8])

	leaves := make([]uint32, 0, count)
	arrayOffset := offset + 8
	for i := uint32(0); i < count; i++ {
		pos := arrayOffset + int(i)*4
		if pos+4 > len(data) {
			break
		}
		leaves = append(leaves, binary.BigEndian.Uint32(data[pos:pos+4]))
	}

	return TrunkHeader{NextTrunkPage: next, LeafPages: leaves}, nil
}

// Walk follows the trunk chain starting at firstTrunkPage, marking every
// trunk page and every leaf page it lists as free in sess.
func Walk(fileBytes []byte, firstTrunkPage uint32, pageSize int, sess *session.Session) error {
	n := firstTrunkPage
	for n != 0 {
		sess.MarkFree(n)

		offset := int(n-1) * pageSize
		if offset < 0 || offset+8 > len(fileBytes) {
			return sqliteerr.New("walk_freelist", sqliteerr.ErrInsufficientData, map[string]interface{}{
				"trunk_page": n,
			})
		}

		trunk, err := ParseTrunkHeader(fileBytes, offset)
		if err != nil {
			return err
		}
		for _, leaf := range trunk.LeafPages {
			sess.MarkFree(leaf)
		}
		n = trunk.NextTrunkPage
	}
	return nil
}
