package btree

import (
	"encoding/binary"
	"testing"

	"github.com/p1tsi/sqliteforensics/internal/session"
)

func TestTraverseInteriorWithLeafChildAndRightmost(t *testing.T) {
	pageSize := 512
	buf := make([]byte, pageSize*4)

	root := pageSize * 1 // page 2, offset (2-1)*512
	buf[root] = 5         // interior table
	binary.BigEndian.PutUint16(buf[root+3:root+5], 1)
	binary.BigEndian.PutUint32(buf[root+8:root+12], 4) // rightmost = page 4
	binary.BigEndian.PutUint16(buf[root+12:root+14], 50)

	cellAddr := root + 50
	binary.BigEndian.PutUint32(buf[cellAddr:cellAddr+4], 3) // left pointer = page 3
	buf[cellAddr+4] = 0x05                                  // key varint

	leaf3 := pageSize * 2 // page 3
	buf[leaf3] = 13

	leaf4 := pageSize * 3 // page 4
	buf[leaf4] = 13

	sess := session.New()
	sess.PageSize = pageSize

	cls, err := Traverse(buf, 2, pageSize, sess, nil)
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	if !cls.IsInterior(2) {
		t.Errorf("page 2 should be classified interior")
	}
	if !cls.IsLeaf(3) {
		t.Errorf("page 3 should be classified leaf")
	}
	if !cls.IsLeaf(4) {
		t.Errorf("page 4 (rightmost) should be classified leaf")
	}
}
