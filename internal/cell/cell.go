// Package cell defines the tagged Cell variant used across the B-tree and
// WAL decoders: a leaf cell (key + decoded row data) or an interior-table
// cell (routing entry). Grounded on original_source/src/structs.rs's Cell
// enum (LC/ITC) and app/types.go's Cell struct, consolidated into one
// consistent type rather than the teacher's two drifted definitions
// (app/types.go's Cell vs app/btree_parsers.go's BTreeCell).
package cell

import "github.com/p1tsi/sqliteforensics/internal/sqliteerr"

// Kind distinguishes the two cell variants a B-tree page can hold.
type Kind int

const (
	KindLeaf Kind = iota
	KindInteriorTable
)

// LeafCell is a leaf-table or leaf-index cell: an optional row id (present
// for leaf-table cells, absent for leaf-index cells) and the record's
// fields already rendered to their textual representation.
type LeafCell struct {
	HasRowID bool
	RowID    uint64
	Data     []string
}

// InteriorTableCell routes to a child page for all row ids up to Key.
type InteriorTableCell struct {
	LeftPointer uint32
	Key         uint64
}

// Cell is the tagged union of the two variants above.
type Cell struct {
	Kind     Kind
	Leaf     *LeafCell
	Interior *InteriorTableCell
}

// NewLeaf wraps a LeafCell as a Cell.
func NewLeaf(lc *LeafCell) Cell {
	return Cell{Kind: KindLeaf, Leaf: lc}
}

// NewInteriorTable wraps an InteriorTableCell as a Cell.
func NewInteriorTable(itc *InteriorTableCell) Cell {
	return Cell{Kind: KindInteriorTable, Interior: itc}
}

// AsLeaf returns the leaf variant or ErrWrongCellVariant.
func (c Cell) AsLeaf() (*LeafCell, error) {
	if c.Kind != KindLeaf || c.Leaf == nil {
		return nil, sqliteerr.ErrWrongCellVariant
	}
	return c.Leaf, nil
}

// AsInteriorTable returns the interior-table variant or ErrWrongCellVariant.
func (c Cell) AsInteriorTable() (*InteriorTableCell, error) {
	if c.Kind != KindInteriorTable || c.Interior == nil {
		return nil, sqliteerr.ErrWrongCellVariant
	}
	return c.Interior, nil
}
