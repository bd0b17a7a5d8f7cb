package freelist

import (
	"encoding/binary"
	"testing"

	"github.com/p1tsi/sqliteforensics/internal/session"
)

func TestWalkSingleTrunkPage(t *testing.T) {
	pageSize := 512
	buf := make([]byte, pageSize*4)

	// Trunk page is page 2 (offset pageSize), next=0, 2 leaves: 3, 4.
	trunkOffset := pageSize
	binary.BigEndian.PutUint32(buf[trunkOffset:trunkOffset+4], 0)
	binary.BigEndian.PutUint32(buf[trunkOffset+4:trunkOffset+8], 2)
	binary.BigEndian.PutUint32(buf[trunkOffset+8:trunkOffset+12], 3)
	binary.BigEndian.PutUint32(buf[trunkOffset+12:trunkOffset+16], 4)

	sess := session.New()
	if err := Walk(buf, 2, pageSize, sess); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	for _, want := range []uint32{2, 3, 4} {
		if !sess.IsFree(want) {
			t.Errorf("page %d should be marked free", want)
		}
	}
	if sess.IsFree(1) {
		t.Errorf("page 1 should not be marked free")
	}
}

func TestWalkChainedTrunkPages(t *testing.T) {
	pageSize := 512
	buf := make([]byte, pageSize*5)

	firstTrunk := pageSize * 1
	binary.BigEndian.PutUint32(buf[firstTrunk:firstTrunk+4], 3) // next trunk page 3
	binary.BigEndian.PutUint32(buf[firstTrunk+4:firstTrunk+8], 0)

	secondTrunk := pageSize * 2
	binary.BigEndian.PutUint32(buf[secondTrunk:secondTrunk+4], 0)
	binary.BigEndian.PutUint32(buf[secondTrunk+4:secondTrunk+8], 1)
	binary.BigEndian.PutUint32(buf[secondTrunk+8:secondTrunk+12], 5)

	sess := session.New()
	if err := Walk(buf, 2, pageSize, sess); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	for _, want := range []uint32{2, 3, 5} {
		if !sess.IsFree(want) {
			t.Errorf("page %d should be marked free", want)
		}
	}
}
