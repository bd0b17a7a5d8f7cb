// Package session holds the per-parse state that the original implementation
// kept as process-wide mutable globals (OVERFLOW_PAGES, FREEPAGES, PAGE_SIZE,
// RESERVED_SPACE, a thread-local STRING_ENCODING). Re-expressing it as an
// explicit value threaded through every decoder means two files can be
// parsed concurrently by the host without colluding through shared state.
package session

// Encoding identifies the text encoding declared by the file header.
type Encoding uint32

const (
	EncodingUTF8    Encoding = 1
	EncodingUTF16LE Encoding = 2
	EncodingUTF16BE Encoding = 3
)

// Session carries the state a single file parse needs: page geometry, text
// encoding, and the running sets of free pages and overflow-continuation
// pages. The sets are reported in the diagnostic dump; no decoder consults
// them, and there is no pass that enumerates every page of the main file.
type Session struct {
	PageSize      int
	ReservedSpace int
	Encoding      Encoding

	overflowPages map[uint32]struct{}
	freePages     map[uint32]struct{}
}

// New creates an empty session. PageSize, ReservedSpace and Encoding are
// filled in by the file-header decoder once per file.
func New() *Session {
	return &Session{
		overflowPages: make(map[uint32]struct{}),
		freePages:     make(map[uint32]struct{}),
	}
}

// UsableSize is the page size minus the space reserved at the tail of every
// page for extensions (e.g. encryption); it bounds the inline payload budget.
func (s *Session) UsableSize() int {
	return s.PageSize - s.ReservedSpace
}

// MarkOverflow records pageNum as consumed by an overflow chain.
func (s *Session) MarkOverflow(pageNum uint32) {
	s.overflowPages[pageNum] = struct{}{}
}

// IsOverflow reports whether pageNum was consumed by an overflow chain.
func (s *Session) IsOverflow(pageNum uint32) bool {
	_, ok := s.overflowPages[pageNum]
	return ok
}

// MarkFree records pageNum as part of the freelist.
func (s *Session) MarkFree(pageNum uint32) {
	s.freePages[pageNum] = struct{}{}
}

// IsFree reports whether pageNum is part of the freelist.
func (s *Session) IsFree(pageNum uint32) bool {
	_, ok := s.freePages[pageNum]
	return ok
}

// FreePages returns a snapshot of the free page-number set.
func (s *Session) FreePages() []uint32 {
	out := make([]uint32, 0, len(s.freePages))
	for p := range s.freePages {
		out = append(out, p)
	}
	return out
}

// OverflowPages returns a snapshot of the overflow page-number set.
func (s *Session) OverflowPages() []uint32 {
	out := make([]uint32, 0, len(s.overflowPages))
	for p := range s.overflowPages {
		out = append(out, p)
	}
	return out
}
