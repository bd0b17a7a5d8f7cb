package wal

import (
	"github.com/p1tsi/sqliteforensics/internal/overflow"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
)

// OverflowSource locates an overflow-chain page within a WAL frame
// sequence, per spec 4.F: scan forward from the current frame, then
// backward, then fall back to the page's natural location in the main
// file (the page is unchanged by this WAL session).
type OverflowSource struct {
	WAL            *File
	FromFrameIndex int
	Fallback       overflow.Source
}

var _ overflow.Source = OverflowSource{}

func (s OverflowSource) ReadOverflowPage(pageNum uint32) ([]byte, error) {
	for i := s.FromFrameIndex; i < len(s.WAL.Frames); i++ {
		if s.WAL.Frames[i].Header.PageNum == pageNum {
			return s.WAL.Frames[i].PageBytes, nil
		}
	}
	for i := s.FromFrameIndex - 1; i >= 0; i-- {
		if s.WAL.Frames[i].Header.PageNum == pageNum {
			return s.WAL.Frames[i].PageBytes, nil
		}
	}
	if s.Fallback != nil {
		return s.Fallback.ReadOverflowPage(pageNum)
	}
	return nil, sqliteerr.New("wal_overflow_lookup", sqliteerr.ErrCorruptOverflow, map[string]interface{}{
		"page_num": pageNum,
	})
}
