package header

import (
	"testing"

	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
)

func makeValidHeader(pageSizeField uint16) []byte {
	data := make([]byte, Len)
	copy(data, magic)
	data[16] = byte(pageSizeField >> 8)
	data[17] = byte(pageSizeField)
	data[20] = 0 // reserved space
	data[56] = 0
	data[57] = 0
	data[58] = 0
	data[59] = 1 // UTF-8
	return data
}

func TestParseValidHeader(t *testing.T) {
	data := makeValidHeader(4096)
	sess := session.New()
	h, err := Parse(data, sess)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if h.PageSize != 4096 {
		t.Errorf("PageSize = %d, want 4096", h.PageSize)
	}
	if sess.PageSize != 4096 {
		t.Errorf("session PageSize = %d, want 4096", sess.PageSize)
	}
}

func TestParsePageSizeOneRemapsTo65536(t *testing.T) {
	data := makeValidHeader(1)
	sess := session.New()
	h, err := Parse(data, sess)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if h.PageSize != 65536 {
		t.Errorf("PageSize = %d, want 65536", h.PageSize)
	}
}

func TestParseEmptyInput(t *testing.T) {
	sess := session.New()
	_, err := Parse(nil, sess)
	if err == nil {
		t.Fatalf("Parse() with empty input should error")
	}
	if dbErr, ok := err.(*sqliteerr.DatabaseError); !ok || dbErr.Unwrap() != sqliteerr.ErrEmptyInput {
		t.Errorf("Parse() error = %v, want ErrEmptyInput", err)
	}
}

func TestParseBadMagic(t *testing.T) {
	data := makeValidHeader(4096)
	data[0] = 'X'
	sess := session.New()
	_, err := Parse(data, sess)
	if err == nil {
		t.Fatalf("Parse() with bad magic should error")
	}
	if dbErr, ok := err.(*sqliteerr.DatabaseError); !ok || dbErr.Unwrap() != sqliteerr.ErrNotASqliteFile {
		t.Errorf("Parse() error = %v, want ErrNotASqliteFile", err)
	}
}
