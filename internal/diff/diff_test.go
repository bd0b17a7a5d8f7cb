package diff

import (
	"github.com/p1tsi/sqliteforensics/internal/cell"
	"github.com/p1tsi/sqliteforensics/internal/page"
	"testing"
)

func leafPage(cells ...cell.Cell) *page.Page {
	return &page.Page{Cells: cells}
}

func TestDiffPagesFirstSnapshotIsAllInsertions(t *testing.T) {
	next := leafPage(
		cell.NewLeaf(&cell.LeafCell{HasRowID: true, RowID: 1, Data: []string{"a"}}),
		cell.NewLeaf(&cell.LeafCell{HasRowID: true, RowID: 2, Data: []string{"b"}}),
	)

	d := &Diff{}
	DiffPages(nil, next, d)

	if len(d.Insertions) != 2 {
		t.Fatalf("expected 2 insertions, got %d", len(d.Insertions))
	}
	if len(d.Deletions) != 0 || len(d.Modifications) != 0 {
		t.Errorf("expected no deletions/modifications on first snapshot")
	}
}

func TestDiffPagesDetectsInsertDeleteModify(t *testing.T) {
	prev := leafPage(
		cell.NewLeaf(&cell.LeafCell{HasRowID: true, RowID: 1, Data: []string{"a"}}),
		cell.NewLeaf(&cell.LeafCell{HasRowID: true, RowID: 2, Data: []string{"b"}}),
	)
	next := leafPage(
		cell.NewLeaf(&cell.LeafCell{HasRowID: true, RowID: 1, Data: []string{"a"}}),
		cell.NewLeaf(&cell.LeafCell{HasRowID: true, RowID: 3, Data: []string{"c"}}),
	)

	d := &Diff{}
	DiffPages(prev, next, d)

	if len(d.Deletions) != 1 || d.Deletions[0].RowID != 2 {
		t.Fatalf("expected deletion of rowid 2, got %+v", d.Deletions)
	}
	if len(d.Insertions) != 1 || d.Insertions[0].RowID != 3 {
		t.Fatalf("expected insertion of rowid 3, got %+v", d.Insertions)
	}
	if len(d.Modifications) != 0 {
		t.Errorf("rowid 1 unchanged, expected no modification")
	}
}

func TestDiffPagesAccumulatesModificationSequence(t *testing.T) {
	prev := leafPage(cell.NewLeaf(&cell.LeafCell{HasRowID: true, RowID: 1, Data: []string{"a"}}))
	mid := leafPage(cell.NewLeaf(&cell.LeafCell{HasRowID: true, RowID: 1, Data: []string{"b"}}))
	next := leafPage(cell.NewLeaf(&cell.LeafCell{HasRowID: true, RowID: 1, Data: []string{"c"}}))

	d := &Diff{}
	DiffPages(prev, mid, d)
	DiffPages(mid, next, d)

	if len(d.Modifications) != 1 {
		t.Fatalf("expected a single rowid's modification entry, got %d", len(d.Modifications))
	}
	seq := d.Modifications[0].Sequence
	if len(seq) != 2 || seq[0][0] != "b" || seq[1][0] != "c" {
		t.Errorf("unexpected modification sequence: %+v", seq)
	}
}

func TestAddModificationIndexReuse(t *testing.T) {
	d := &Diff{}
	d.addModification(5, []string{"x"})
	d.addModification(5, []string{"y"})

	if len(d.Modifications) != 1 {
		t.Fatalf("expected modifications to merge under one rowid entry, got %d", len(d.Modifications))
	}
	if len(d.Modifications[0].Sequence) != 2 {
		t.Errorf("expected 2 entries in sequence, got %d", len(d.Modifications[0].Sequence))
	}
}
