package varint

import "testing"

func TestDecodeSingleByte(t *testing.T) {
	v, n, err := Decode([]byte{0x05}, 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v != 5 || n != 1 {
		t.Errorf("Decode() = (%d, %d), want (5, 1)", v, n)
	}
}

func TestDecodeTwoByte(t *testing.T) {
	// 0x81 0x00 -> (1<<7)|0 = 128
	v, n, err := Decode([]byte{0x81, 0x00}, 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v != 128 || n != 2 {
		t.Errorf("Decode() = (%d, %d), want (128, 2)", v, n)
	}
}

func TestDecodeNinthByteFullWidth(t *testing.T) {
	data := make([]byte, 9)
	for i := 0; i < 8; i++ {
		data[i] = 0xff
	}
	data[8] = 0xff
	v, n, err := Decode(data, 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n != 9 {
		t.Errorf("Decode() consumed %d bytes, want 9", n)
	}
	if v != 0xFFFFFFFFFFFFFFFF {
		t.Errorf("Decode() = %d, want max uint64", v)
	}
}

func TestDecodeOffsetWithinBuffer(t *testing.T) {
	data := []byte{0xff, 0xff, 0x2a}
	v, n, err := Decode(data, 2)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v != 0x2a || n != 1 {
		t.Errorf("Decode() = (%d, %d), want (42, 1)", v, n)
	}
}

func TestDecodeUnderrun(t *testing.T) {
	_, _, err := Decode([]byte{0x80}, 0)
	if err == nil {
		t.Errorf("Decode() with truncated buffer should error")
	}
}
