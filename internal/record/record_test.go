package record

import (
	"testing"

	"github.com/p1tsi/sqliteforensics/internal/session"
)

func TestDecodeHeaderSimple(t *testing.T) {
	// header length byte = 3 (itself + 2 serial types), serial types 1 (1-byte int), 0 (NULL)
	data := []byte{0x03, 0x01, 0x00, 0x2a}
	h, offset, err := DecodeHeader(data, 0)
	if err != nil {
		t.Fatalf("DecodeHeader() error = %v", err)
	}
	if h.Length != 3 || len(h.SerialTypes) != 2 {
		t.Fatalf("DecodeHeader() = %+v", h)
	}
	if offset != 3 {
		t.Errorf("offset = %d, want 3", offset)
	}
}

func TestFieldSizeVariants(t *testing.T) {
	cases := map[uint64]int{0: 0, 1: 1, 2: 2, 3: 3, 4: 4, 5: 6, 6: 8, 7: 8, 8: 0, 9: 0, 12: 0, 14: 1, 13: 0, 15: 1}
	for st, want := range cases {
		if got := FieldSize(st); got != want {
			t.Errorf("FieldSize(%d) = %d, want %d", st, got, want)
		}
	}
}

func TestDecodeValueSignExtension(t *testing.T) {
	// serial type 2: 2-byte signed int, -1 encoded as 0xFFFF
	v, err := DecodeValue(2, []byte{0xff, 0xff}, session.EncodingUTF8)
	if err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if v != "-1" {
		t.Errorf("DecodeValue() = %q, want \"-1\"", v)
	}
}

func TestDecodeValue48BitSignExtension(t *testing.T) {
	// serial type 5: 6-byte signed int, -1 encoded as 0xFFFFFFFFFFFF
	raw := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	v, err := DecodeValue(5, raw, session.EncodingUTF8)
	if err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if v != "-1" {
		t.Errorf("DecodeValue() = %q, want \"-1\"", v)
	}
}

func TestDecodeValueFloat(t *testing.T) {
	// 42.5 as IEEE-754 double, big-endian
	raw := []byte{0x40, 0x45, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00}
	v, err := DecodeValue(7, raw, session.EncodingUTF8)
	if err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if v != "42.5" {
		t.Errorf("DecodeValue() = %q, want \"42.5\"", v)
	}
}

func TestDecodeValueConstants(t *testing.T) {
	if v, _ := DecodeValue(8, nil, session.EncodingUTF8); v != "0" {
		t.Errorf("DecodeValue(8) = %q, want \"0\"", v)
	}
	if v, _ := DecodeValue(9, nil, session.EncodingUTF8); v != "1" {
		t.Errorf("DecodeValue(9) = %q, want \"1\"", v)
	}
}

func TestDecodeValueBlobBase64(t *testing.T) {
	raw := []byte{0x41, 0x41, 0x41}
	v, err := DecodeValue(18, raw, session.EncodingUTF8) // (18-12)/2 = 3 bytes
	if err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if v != "QUFB" {
		t.Errorf("DecodeValue() = %q, want base64 of AAA", v)
	}
}
