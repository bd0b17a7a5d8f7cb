package wal

import (
	"encoding/binary"
	"testing"
)

func buildWAL(pageSize uint32, pageNums []uint32) []byte {
	buf := make([]byte, FileHeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], 0x377f0682)
	binary.BigEndian.PutUint32(buf[4:8], 3007000)
	binary.BigEndian.PutUint32(buf[8:12], pageSize)

	for _, pn := range pageNums {
		frame := make([]byte, FrameHeaderLen+int(pageSize))
		binary.BigEndian.PutUint32(frame[0:4], pn)
		buf = append(buf, frame...)
	}
	return buf
}

func TestParseFrameCount(t *testing.T) {
	data := buildWAL(512, []uint32{1, 2, 3})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Header.FrameCount != 3 {
		t.Errorf("FrameCount = %d, want 3", f.Header.FrameCount)
	}
	if len(f.Frames) != 3 {
		t.Fatalf("len(Frames) = %d, want 3", len(f.Frames))
	}
	if f.Frames[1].Header.PageNum != 2 {
		t.Errorf("Frames[1].PageNum = %d, want 2", f.Frames[1].Header.PageNum)
	}
}

func TestParseEmptyWAL(t *testing.T) {
	_, err := Parse(nil)
	if err == nil {
		t.Fatalf("Parse() with empty input should error")
	}
}

func TestFramesForPage(t *testing.T) {
	data := buildWAL(512, []uint32{1, 2, 1})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	frames := f.FramesForPage(1)
	if len(frames) != 2 {
		t.Errorf("FramesForPage(1) len = %d, want 2", len(frames))
	}
}

func TestOverflowSourceForwardThenBackwardThenFallback(t *testing.T) {
	data := buildWAL(512, []uint32{5, 9, 5})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	src := OverflowSource{WAL: f, FromFrameIndex: 1}
	if _, err := src.ReadOverflowPage(5); err != nil {
		t.Errorf("expected forward scan to find page 5, got error: %v", err)
	}

	back := OverflowSource{WAL: f, FromFrameIndex: 2}
	if _, err := back.ReadOverflowPage(9); err != nil {
		t.Errorf("expected backward scan to find page 9, got error: %v", err)
	}

	fallbackHit := false
	src.Fallback = fallbackSource(func(uint32) ([]byte, error) {
		fallbackHit = true
		return make([]byte, 512), nil
	})
	if _, err := src.ReadOverflowPage(42); err != nil {
		t.Errorf("fallback should have succeeded, got error: %v", err)
	}
	if !fallbackHit {
		t.Errorf("expected fallback to be used for an unobserved page number")
	}
}

type fallbackSource func(uint32) ([]byte, error)

func (f fallbackSource) ReadOverflowPage(pageNum uint32) ([]byte, error) {
	return f(pageNum)
}
