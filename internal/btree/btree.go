// Package btree implements the table B-tree traversal of spec component
// 4.G: starting from a root page, walk interior pages (each child reached
// via a cell's left pointer, plus the page's rightmost pointer) to collect
// the ordered sets of leaf pages and interior pages reachable from the
// root. Grounded on app/btree.go's TraverseAll/traversePage and
// original_source/src/db.rs's init_leaf_internal_array.
package btree

import (
	"github.com/p1tsi/sqliteforensics/internal/overflow"
	"github.com/p1tsi/sqliteforensics/internal/page"
	"github.com/p1tsi/sqliteforensics/internal/session"
)

// Classification records which pages, reachable from one table's root, are
// leaves and which are interiors, along with the fully decoded Page for
// each (so callers collecting rows need not re-decode). Per spec 4.H, a
// page's classification is never demoted once assigned.
type Classification struct {
	leafSet       map[uint32]bool
	interiorSet   map[uint32]bool
	LeafOrder     []uint32
	InteriorOrder []uint32
	Pages         map[uint32]*page.Page
}

// NewClassification creates an empty classification.
func NewClassification() *Classification {
	return &Classification{
		leafSet:     make(map[uint32]bool),
		interiorSet: make(map[uint32]bool),
		Pages:       make(map[uint32]*page.Page),
	}
}

func (c *Classification) IsLeaf(pageNum uint32) bool     { return c.leafSet[pageNum] }
func (c *Classification) IsInterior(pageNum uint32) bool { return c.interiorSet[pageNum] }
func (c *Classification) IsKnown(pageNum uint32) bool {
	return c.leafSet[pageNum] || c.interiorSet[pageNum]
}

// AddLeaf marks pageNum as a leaf unless it is already classified.
func (c *Classification) AddLeaf(pageNum uint32) {
	if c.IsKnown(pageNum) {
		return
	}
	c.leafSet[pageNum] = true
	c.LeafOrder = append(c.LeafOrder, pageNum)
}

// AddInterior marks pageNum as interior unless it is already classified.
func (c *Classification) AddInterior(pageNum uint32) {
	if c.IsKnown(pageNum) {
		return
	}
	c.interiorSet[pageNum] = true
	c.InteriorOrder = append(c.InteriorOrder, pageNum)
}

// Traverse walks the table B-tree rooted at rootPage and returns its
// classification.
func Traverse(fileBytes []byte, rootPage uint32, pageSize int, sess *session.Session, src overflow.Source) (*Classification, error) {
	cls := NewClassification()
	if err := traverse(fileBytes, rootPage, pageSize, sess, src, cls); err != nil {
		return nil, err
	}
	return cls, nil
}

func traverse(fileBytes []byte, pageNum uint32, pageSize int, sess *session.Session, src overflow.Source, cls *Classification) error {
	offset := int(pageNum-1) * pageSize
	p, err := page.Decode(fileBytes, offset, pageNum, sess, src)
	if err != nil {
		return err
	}
	cls.Pages[pageNum] = p

	switch {
	case page.IsLeaf(p.Header.PageType):
		cls.AddLeaf(pageNum)
		return nil
	case page.IsInterior(p.Header.PageType):
		cls.AddInterior(pageNum)
		for _, c := range p.Cells {
			itc, err := c.AsInteriorTable()
			if err != nil {
				continue
			}
			if err := traverse(fileBytes, itc.LeftPointer, pageSize, sess, src, cls); err != nil {
				return err
			}
		}
		if p.Header.RightmostPointer != 0 {
			if err := traverse(fileBytes, p.Header.RightmostPointer, pageSize, sess, src, cls); err != nil {
				return err
			}
		}
	}
	return nil
}
