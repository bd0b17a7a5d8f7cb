// Package overflow decodes a single leaf cell's record, including the
// overflow-chain continuation a cell takes when its payload exceeds the
// page's inline budget. This is the heart of the system (spec component
// 4.E/4.F). Grounded on original_source/src/structs.rs's LeafCell::new /
// LeafCell::new_wal and overflow_frame_offset_by_page_num, and on
// app/readers.go/app/values.go for the Go-idiomatic shape. The two source
// variants (base file vs WAL) differ only in how an overflow page's bytes
// are located; the field-decoding algorithm is shared.
package overflow

import (
	"encoding/binary"

	"github.com/p1tsi/sqliteforensics/internal/cell"
	"github.com/p1tsi/sqliteforensics/internal/record"
	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
	"github.com/p1tsi/sqliteforensics/internal/varint"
)

// Source locates the raw page_size bytes of an overflow-chain page by page
// number. Implementations exist for the base file (fixed offset) and for a
// WAL frame sequence (linear scan, falling back to the base file).
type Source interface {
	ReadOverflowPage(pageNum uint32) ([]byte, error)
}

// PageType constants relevant to leaf-cell decoding.
const (
	PageTypeLeafIndex = 10
	PageTypeLeafTable = 13
)

// DecodeLeafCell decodes the leaf cell located at cellOffset in data and
// returns it, reading any overflow continuation through src. sess must
// already carry PageSize/ReservedSpace/Encoding from the file header.
func DecodeLeafCell(data []byte, cellOffset int, pageType uint8, sess *session.Session, src Source) (*cell.LeafCell, error) {
	offset := cellOffset

	payloadLen, n, err := varint.Decode(data, offset)
	if err != nil {
		return nil, err
	}
	offset += n

	hasRowID := pageType == PageTypeLeafTable
	var rowID uint64
	if hasRowID {
		rowID, n, err = varint.Decode(data, offset)
		if err != nil {
			return nil, err
		}
		offset += n
	}

	recordStart := offset
	usableSize := sess.UsableSize()

	inlineBudget := int(payloadLen)
	if int(payloadLen) > usableSize-35 {
		m := ((usableSize-12)*32)/255 - 23
		k := m + int((int(payloadLen)-m)%(usableSize-4))
		if k <= usableSize-35 {
			inlineBudget = k
		} else {
			inlineBudget = m
		}
	}
	if inlineBudget > int(payloadLen) {
		inlineBudget = int(payloadLen)
	}

	hdr, afterHeader, err := record.DecodeHeader(data, recordStart)
	if err != nil {
		return nil, err
	}
	consumed := afterHeader - recordStart
	if consumed > inlineBudget {
		consumed = inlineBudget
	}

	var ovf *overflowReader
	getOverflowPointer := func() (uint32, error) {
		ptrOffset := recordStart + inlineBudget
		if ptrOffset+4 > len(data) {
			return 0, sqliteerr.New("decode_leaf_cell", sqliteerr.ErrInsufficientData, map[string]interface{}{
				"offset": ptrOffset,
			})
		}
		return binary.BigEndian.Uint32(data[ptrOffset : ptrOffset+4]), nil
	}

	readBytes := func(size int) ([]byte, error) {
		if size == 0 {
			return nil, nil
		}
		if consumed+size <= inlineBudget {
			start := recordStart + consumed
			consumed += size
			if start+size > len(data) {
				return nil, sqliteerr.New("decode_leaf_cell", sqliteerr.ErrInsufficientData, nil)
			}
			return data[start : start+size], nil
		}

		out := make([]byte, 0, size)
		inlineRemainder := inlineBudget - consumed
		if inlineRemainder > 0 {
			start := recordStart + consumed
			out = append(out, data[start:start+inlineRemainder]...)
			consumed += inlineRemainder
		}
		remaining := size - inlineRemainder

		if ovf == nil {
			firstPage, err := getOverflowPointer()
			if err != nil {
				return nil, err
			}
			ovf = newOverflowReader(src, sess, firstPage)
		}
		rest, err := ovf.Read(remaining)
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
		return out, nil
	}

	values := make([]string, 0, len(hdr.SerialTypes))
	for _, st := range hdr.SerialTypes {
		size := record.FieldSize(st)
		raw, err := readBytes(size)
		if err != nil {
			return nil, err
		}
		val, _ := record.DecodeValue(st, raw, sess.Encoding)
		values = append(values, val)
	}

	return &cell.LeafCell{HasRowID: hasRowID, RowID: rowID, Data: values}, nil
}

// overflowReader walks an overflow chain starting at firstPageNum, handing
// out bytes on demand and recording every visited page in sess's overflow
// page set. A page revisited within one chain is a
// corrupt-overflow-chain fatal error rather than an infinite loop.
type overflowReader struct {
	src     Source
	sess    *session.Session
	pageNum uint32
	buf     []byte
	pos     int
	seen    map[uint32]bool
}

func newOverflowReader(src Source, sess *session.Session, firstPageNum uint32) *overflowReader {
	return &overflowReader{src: src, sess: sess, pageNum: firstPageNum, seen: make(map[uint32]bool)}
}

func (r *overflowReader) loadPage() error {
	if r.pageNum == 0 {
		return sqliteerr.New("overflow_chain", sqliteerr.ErrCorruptOverflow, map[string]interface{}{
			"reason": "chain ended before requested bytes were gathered",
		})
	}
	if r.seen[r.pageNum] {
		return sqliteerr.New("overflow_chain", sqliteerr.ErrCorruptOverflow, map[string]interface{}{
			"reason":  "cycle detected",
			"page_num": r.pageNum,
		})
	}
	r.seen[r.pageNum] = true

	data, err := r.src.ReadOverflowPage(r.pageNum)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return sqliteerr.New("overflow_chain", sqliteerr.ErrInsufficientData, nil)
	}

	r.sess.MarkOverflow(r.pageNum)

	next := binary.BigEndian.Uint32(data[0:4])
	usable := r.sess.UsableSize()
	payloadLen := usable - 4
	if payloadLen > len(data)-4 {
		payloadLen = len(data) - 4
	}
	r.buf = data[4 : 4+payloadLen]
	r.pos = 0
	r.pageNum = next
	return nil
}

func (r *overflowReader) Read(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		if r.buf == nil || r.pos >= len(r.buf) {
			if err := r.loadPage(); err != nil {
				return nil, err
			}
		}
		avail := len(r.buf) - r.pos
		need := n - len(out)
		take := avail
		if take > need {
			take = need
		}
		out = append(out, r.buf[r.pos:r.pos+take]...)
		r.pos += take
	}
	return out, nil
}

// BaseFileSource locates overflow pages at their fixed offset within the
// main database file.
type BaseFileSource struct {
	FileBytes []byte
	PageSize  int
}

func (s BaseFileSource) ReadOverflowPage(pageNum uint32) ([]byte, error) {
	if pageNum == 0 {
		return nil, sqliteerr.New("read_overflow_page", sqliteerr.ErrInvalidPageType, nil)
	}
	start := int(pageNum-1) * s.PageSize
	end := start + s.PageSize
	if start < 0 || end > len(s.FileBytes) {
		return nil, sqliteerr.New("read_overflow_page", sqliteerr.ErrInsufficientData, map[string]interface{}{
			"page_num": pageNum,
		})
	}
	return s.FileBytes[start:end], nil
}
