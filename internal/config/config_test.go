package config

import (
	"errors"
	"testing"
)

func TestParseFormatCaseInsensitive(t *testing.T) {
	for _, s := range []string{"json", "JSON", "Json"} {
		f, err := ParseFormat(s)
		if err != nil || f != FormatJSON {
			t.Errorf("ParseFormat(%q) = %v, %v; want FormatJSON, nil", s, f, err)
		}
	}
	f, err := ParseFormat("csv")
	if err != nil || f != FormatCSV {
		t.Errorf("ParseFormat(csv) = %v, %v; want FormatCSV, nil", f, err)
	}
}

func TestParseFormatUnknown(t *testing.T) {
	if _, err := ParseFormat("XML"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestNewAppliesOptions(t *testing.T) {
	cfg := New("db.sqlite", WithWAL(true), WithMissingRowIDs(true), WithOutputDir("out2"))
	if !cfg.UseWAL || !cfg.ComputeMissingRowIDs || cfg.OutputDir != "out2" {
		t.Errorf("options not applied: %+v", cfg)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestResourceManagerClosesInLIFOOrder(t *testing.T) {
	var order []int
	rm := NewResourceManager()
	rm.Add(closerFunc(func() error { order = append(order, 1); return nil }))
	rm.Add(closerFunc(func() error { order = append(order, 2); return nil }))

	if err := rm.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("expected LIFO close order [2 1], got %v", order)
	}
}

func TestResourceManagerReturnsLastError(t *testing.T) {
	rm := NewResourceManager()
	wantErr := errors.New("boom")
	rm.Add(closerFunc(func() error { return wantErr }))

	if err := rm.Close(); err != wantErr {
		t.Errorf("Close() error = %v, want %v", err, wantErr)
	}
}
