// Package diff implements the WAL delta engine (spec 4.H): replaying WAL
// frames against a table's leaf-page snapshot to classify each row change
// as an insertion, deletion, or modification sequence, while tolerating
// B-tree restructurings observed through frames whose target page was
// previously interior. Grounded on original_source/src/db.rs's diff_pages,
// Table::update_arrays and the Diff/ModsSequence structs.
package diff

import (
	"github.com/p1tsi/sqliteforensics/internal/btree"
	"github.com/p1tsi/sqliteforensics/internal/cell"
	"github.com/p1tsi/sqliteforensics/internal/overflow"
	"github.com/p1tsi/sqliteforensics/internal/page"
	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/wal"
)

// ModsSequence is the ordered history of row snapshots observed for one
// row id across successive WAL frames.
type ModsSequence struct {
	RowID    uint64
	Sequence [][]string
}

// Diff accumulates the per-row changes a WAL would apply at the next
// checkpoint.
type Diff struct {
	Insertions   []cell.LeafCell
	Deletions    []cell.LeafCell
	Modifications []ModsSequence
}

func (d *Diff) addInsertion(lc cell.LeafCell) { d.Insertions = append(d.Insertions, lc) }
func (d *Diff) addDeletion(lc cell.LeafCell)  { d.Deletions = append(d.Deletions, lc) }

func (d *Diff) modificationIndex(rowID uint64) int {
	for i := range d.Modifications {
		if d.Modifications[i].RowID == rowID {
			return i
		}
	}
	return -1
}

func (d *Diff) addModification(rowID uint64, data []string) {
	if i := d.modificationIndex(rowID); i >= 0 {
		d.Modifications[i].Sequence = append(d.Modifications[i].Sequence, data)
		return
	}
	d.Modifications = append(d.Modifications, ModsSequence{RowID: rowID, Sequence: [][]string{data}})
}

func leafCellsByRowID(p *page.Page) ([]uint64, map[uint64]cell.LeafCell) {
	if p == nil {
		return nil, nil
	}
	order := make([]uint64, 0, len(p.Cells))
	byID := make(map[uint64]cell.LeafCell, len(p.Cells))
	for _, c := range p.Cells {
		lc, err := c.AsLeaf()
		if err != nil || !lc.HasRowID {
			continue
		}
		if _, exists := byID[lc.RowID]; !exists {
			order = append(order, lc.RowID)
		}
		byID[lc.RowID] = *lc
	}
	return order, byID
}

func equalData(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DiffPages compares prev (the table's last-seen image of a leaf page, or
// nil if none exists yet) against next, appending insertions, deletions
// and modifications to diff.
func DiffPages(prev *page.Page, next *page.Page, diff *Diff) {
	nextOrder, nextByID := leafCellsByRowID(next)

	if prev == nil {
		for _, rowID := range nextOrder {
			diff.addInsertion(nextByID[rowID])
		}
		return
	}

	prevOrder, prevByID := leafCellsByRowID(prev)

	for _, rowID := range prevOrder {
		pc := prevByID[rowID]
		if nc, ok := nextByID[rowID]; ok {
			if !equalData(pc.Data, nc.Data) {
				diff.addModification(rowID, nc.Data)
			}
		} else {
			diff.addDeletion(pc)
		}
	}

	for _, rowID := range nextOrder {
		if _, existed := prevByID[rowID]; !existed {
			diff.addInsertion(nextByID[rowID])
		}
	}
}

// Run replays every frame of walFile against cls (a table's base-file
// B-tree classification), returning the accumulated Diff. cls is mutated
// in place as WAL-observed interior pages reveal new children (per spec
// 9, a page's classification is never demoted once assigned).
func Run(walFile *wal.File, cls *btree.Classification, fileBytes []byte, pageSize int, sess *session.Session) (*Diff, error) {
	diffResult := &Diff{}
	lastSeen := make(map[uint32]*page.Page)
	baseSrc := overflow.BaseFileSource{FileBytes: fileBytes, PageSize: pageSize}

	for _, frame := range walFile.Frames {
		pageNum := frame.Header.PageNum
		if pageNum == 0 {
			continue
		}

		switch {
		case cls.IsLeaf(pageNum):
			walSrc := wal.OverflowSource{WAL: walFile, FromFrameIndex: int(frame.Index), Fallback: baseSrc}
			framePage, err := page.Decode(frame.PageBytes, 0, pageNum, sess, walSrc)
			if err != nil {
				return nil, err
			}

			prev, ok := lastSeen[pageNum]
			if !ok {
				prev = cls.Pages[pageNum]
			}
			DiffPages(prev, framePage, diffResult)
			lastSeen[pageNum] = framePage

		case cls.IsInterior(pageNum):
			walSrc := wal.OverflowSource{WAL: walFile, FromFrameIndex: int(frame.Index), Fallback: baseSrc}
			framePage, err := page.Decode(frame.PageBytes, 0, pageNum, sess, walSrc)
			if err != nil {
				return nil, err
			}
			if err := updateTraversal(framePage, fileBytes, pageSize, sess, cls); err != nil {
				return nil, err
			}
		}
	}

	return diffResult, nil
}

// updateTraversal classifies the children of a WAL-observed interior page:
// each interior cell's left pointer, and the rightmost pointer, resolved
// against the base file when the child page exists there, else treated as
// a WAL-born leaf.
func updateTraversal(framePage *page.Page, fileBytes []byte, pageSize int, sess *session.Session, cls *btree.Classification) error {
	for _, c := range framePage.Cells {
		itc, err := c.AsInteriorTable()
		if err != nil {
			continue
		}
		if err := classifyFromBase(itc.LeftPointer, fileBytes, pageSize, sess, cls); err != nil {
			return err
		}
	}
	if framePage.Header.RightmostPointer != 0 {
		if err := classifyFromBase(framePage.Header.RightmostPointer, fileBytes, pageSize, sess, cls); err != nil {
			return err
		}
	}
	return nil
}

func classifyFromBase(pageNum uint32, fileBytes []byte, pageSize int, sess *session.Session, cls *btree.Classification) error {
	if pageNum == 0 || cls.IsKnown(pageNum) {
		return nil
	}

	baseSrc := overflow.BaseFileSource{FileBytes: fileBytes, PageSize: pageSize}
	offset := int(pageNum-1) * pageSize
	if offset < 0 || offset+pageSize > len(fileBytes) {
		// Page does not exist in the base file: a page born entirely in
		// this WAL session. Treat as a leaf per spec 4.H.
		cls.AddLeaf(pageNum)
		return nil
	}

	p, err := page.Decode(fileBytes, offset, pageNum, sess, baseSrc)
	if err != nil {
		return err
	}
	cls.Pages[pageNum] = p

	if page.IsInterior(p.Header.PageType) {
		cls.AddInterior(pageNum)
		for _, c := range p.Cells {
			itc, err := c.AsInteriorTable()
			if err != nil {
				continue
			}
			if err := classifyFromBase(itc.LeftPointer, fileBytes, pageSize, sess, cls); err != nil {
				return err
			}
		}
		if p.Header.RightmostPointer != 0 {
			if err := classifyFromBase(p.Header.RightmostPointer, fileBytes, pageSize, sess, cls); err != nil {
				return err
			}
		}
	} else {
		cls.AddLeaf(pageNum)
	}
	return nil
}
