// Package page decodes one B-tree page: its header, cell pointer array, and
// (for table pages) its parsed cells. Grounded on app/btree.go's
// parsePageHeader/readLeafCells and original_source/src/structs.rs's
// Page::new.
package page

import (
	"encoding/binary"

	"github.com/p1tsi/sqliteforensics/internal/cell"
	"github.com/p1tsi/sqliteforensics/internal/overflow"
	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
	"github.com/p1tsi/sqliteforensics/internal/varint"
)

// Page type tags, per the on-disk format.
const (
	TypeInteriorIndex = 2
	TypeInteriorTable = 5
	TypeLeafIndex     = 10
	TypeLeafTable     = 13
)

// Header is the common 8-byte (or 12-byte for interior pages) page header.
type Header struct {
	PageType         uint8
	FirstFreeblock   uint16
	CellCount        uint16
	ContentStart     uint16
	FragmentedBytes  uint8
	RightmostPointer uint32 // valid only when PageType is 2 or 5
}

// Page is one fully decoded B-tree page.
type Page struct {
	Number           uint32
	Offset           int
	Header           Header
	Cells            []cell.Cell // live cells, table page types only
	DeletedCellCount int
}

func IsInterior(pageType uint8) bool {
	return pageType == TypeInteriorIndex || pageType == TypeInteriorTable
}

func IsLeaf(pageType uint8) bool {
	return pageType == TypeLeafIndex || pageType == TypeLeafTable
}

func IsTable(pageType uint8) bool {
	return pageType == TypeInteriorTable || pageType == TypeLeafTable
}

func IsIndex(pageType uint8) bool {
	return pageType == TypeInteriorIndex || pageType == TypeLeafIndex
}

// ReadRaw returns the page_size bytes of page pageNum (1-based) from the
// main file buffer.
func ReadRaw(fileBytes []byte, pageNum uint32, pageSize int) ([]byte, error) {
	if pageNum == 0 {
		return nil, sqliteerr.New("read_page", sqliteerr.ErrInvalidPageType, nil)
	}
	start := int(pageNum-1) * pageSize
	end := start + pageSize
	if start < 0 || end > len(fileBytes) {
		return nil, sqliteerr.New("read_page", sqliteerr.ErrInsufficientData, map[string]interface{}{
			"page_num": pageNum,
		})
	}
	return fileBytes[start:end], nil
}

// Decode parses the page whose absolute byte offset in fileBytes is offset
// and whose 1-based number is pageNum. Page 1's header starts 100 bytes
// into its region (past the file header); every other page's header starts
// at its own offset.
func Decode(fileBytes []byte, offset int, pageNum uint32, sess *session.Session, src overflow.Source) (*Page, error) {
	headerOffset := offset
	if pageNum == 1 {
		headerOffset += 100
	}

	if headerOffset+8 > len(fileBytes) {
		return nil, sqliteerr.New("decode_page", sqliteerr.ErrInsufficientData, map[string]interface{}{
			"page_num": pageNum,
		})
	}

	h := Header{
		PageType:        fileBytes[headerOffset],
		FirstFreeblock:  binary.BigEndian.Uint16(fileBytes[headerOffset+1 : headerOffset+3]),
		CellCount:       binary.BigEndian.Uint16(fileBytes[headerOffset+3 : headerOffset+5]),
		ContentStart:    binary.BigEndian.Uint16(fileBytes[headerOffset+5 : headerOffset+7]),
		FragmentedBytes: fileBytes[headerOffset+7],
	}

	headerLen := 8
	if IsInterior(h.PageType) {
		if headerOffset+12 > len(fileBytes) {
			return nil, sqliteerr.New("decode_page", sqliteerr.ErrInsufficientData, nil)
		}
		h.RightmostPointer = binary.BigEndian.Uint32(fileBytes[headerOffset+8 : headerOffset+12])
		headerLen = 12
	}

	ptrArrayStart := headerOffset + headerLen
	var pointers []uint16
	for i := 0; ; i++ {
		pos := ptrArrayStart + i*2
		if pos+2 > len(fileBytes) {
			break
		}
		v := binary.BigEndian.Uint16(fileBytes[pos : pos+2])
		if v == 0 {
			break
		}
		pointers = append(pointers, v)
	}

	liveCount := int(h.CellCount)
	if liveCount > len(pointers) {
		liveCount = len(pointers)
	}
	deletedCount := len(pointers) - liveCount

	p := &Page{
		Number:           pageNum,
		Offset:           offset,
		Header:           h,
		DeletedCellCount: deletedCount,
	}

	if !IsTable(h.PageType) {
		// Index pages (types 2, 10) are accepted structurally; their cells
		// are not materialized into rows.
		return p, nil
	}

	cells := make([]cell.Cell, 0, liveCount)
	for i := 0; i < liveCount; i++ {
		cellAddr := offset + int(pointers[i])
		switch h.PageType {
		case TypeLeafTable:
			lc, err := overflow.DecodeLeafCell(fileBytes, cellAddr, h.PageType, sess, src)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell.NewLeaf(lc))
		case TypeInteriorTable:
			itc, err := decodeInteriorTableCell(fileBytes, cellAddr)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell.NewInteriorTable(itc))
		}
	}
	p.Cells = cells

	return p, nil
}

func decodeInteriorTableCell(data []byte, offset int) (*cell.InteriorTableCell, error) {
	if offset+4 > len(data) {
		return nil, sqliteerr.New("decode_interior_cell", sqliteerr.ErrInsufficientData, nil)
	}
	left := binary.BigEndian.Uint32(data[offset : offset+4])
	key, _, err := varint.Decode(data, offset+4)
	if err != nil {
		return nil, err
	}
	return &cell.InteriorTableCell{LeftPointer: left, Key: key}, nil
}
