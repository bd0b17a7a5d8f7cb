// Package config holds the run configuration and the resource cleanup
// helper shared by the CLI and the exporters. Grounded on app/config.go's
// functional-options DatabaseConfig and ResourceManager, generalized from
// database-engine tuning knobs to the forensic reader's own CLI flags
// (spec §6).
package config

import (
	"io"
	"strings"

	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
)

// Format selects the output encoding for extracted table data.
type Format int

const (
	FormatJSON Format = iota
	FormatCSV
)

// ParseFormat maps a CLI --format value to a Format, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(s) {
	case "JSON":
		return FormatJSON, nil
	case "CSV":
		return FormatCSV, nil
	default:
		return FormatJSON, sqliteerr.New("parse_format", sqliteerr.ErrUnknownFormatter, map[string]interface{}{
			"format": s,
		})
	}
}

// Config is the full set of run options for one invocation of the
// forensic reader.
type Config struct {
	FilePath             string
	OutputDir            string
	Format               Format
	UseWAL               bool
	EmitParsedDumps      bool
	HeaderOnly           bool
	ComputeMissingRowIDs bool
	ExtractTriggers      bool
	ExtractIndices       bool
	Debug                bool
}

// Option is a functional option mutating a Config during construction.
type Option func(*Config)

func WithOutputDir(dir string) Option {
	return func(c *Config) { c.OutputDir = dir }
}

func WithFormat(f Format) Option {
	return func(c *Config) { c.Format = f }
}

func WithWAL(enabled bool) Option {
	return func(c *Config) { c.UseWAL = enabled }
}

func WithParsedDumps(enabled bool) Option {
	return func(c *Config) { c.EmitParsedDumps = enabled }
}

func WithHeaderOnly(enabled bool) Option {
	return func(c *Config) { c.HeaderOnly = enabled }
}

func WithMissingRowIDs(enabled bool) Option {
	return func(c *Config) { c.ComputeMissingRowIDs = enabled }
}

func WithTriggers(enabled bool) Option {
	return func(c *Config) { c.ExtractTriggers = enabled }
}

func WithIndices(enabled bool) Option {
	return func(c *Config) { c.ExtractIndices = enabled }
}

func WithDebug(enabled bool) Option {
	return func(c *Config) { c.Debug = enabled }
}

// New builds a Config for filePath with sane defaults, then applies opts.
func New(filePath string, opts ...Option) *Config {
	cfg := &Config{
		FilePath:  filePath,
		OutputDir: "output",
		Format:    FormatJSON,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ResourceManager closes a batch of opened files (and runs custom cleanup
// callbacks) in LIFO order, so the most recently opened output file is
// the first one flushed and closed. Grounded on app/config.go's
// ResourceManager, reused here for the export package's output files
// instead of the teacher's database connections/pools.
type ResourceManager struct {
	resources []io.Closer
	cleaners  []func() error
}

// NewResourceManager creates an empty resource manager.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{}
}

// Add registers a closeable resource.
func (rm *ResourceManager) Add(resource io.Closer) {
	rm.resources = append(rm.resources, resource)
}

// AddCleaner registers a custom cleanup callback.
func (rm *ResourceManager) AddCleaner(cleaner func() error) {
	rm.cleaners = append(rm.cleaners, cleaner)
}

// Close runs every cleaner then closes every resource, both in LIFO
// order, and returns the last error encountered (if any).
func (rm *ResourceManager) Close() error {
	var lastErr error

	for i := len(rm.cleaners) - 1; i >= 0; i-- {
		if err := rm.cleaners[i](); err != nil {
			lastErr = err
		}
	}

	for i := len(rm.resources) - 1; i >= 0; i-- {
		if err := rm.resources[i].Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
