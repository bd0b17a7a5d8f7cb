// Command sqliteforensics reads a SQLite database file (and, optionally,
// its WAL sidecar) without going through the SQLite library itself,
// extracting every table's rows, flagging gaps in row id sequences, and
// emitting the WAL's pending changes as inserts/deletes/modifications.
// Grounded on original_source/src/main.rs's flag set and run sequence,
// using the stdlib flag package the way
// SimonWaldherr-tinySQL/cmd/sqltools/main.go does for its own CLI tools.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/p1tsi/sqliteforensics/internal/config"
	"github.com/p1tsi/sqliteforensics/internal/database"
	"github.com/p1tsi/sqliteforensics/internal/export"
	"github.com/p1tsi/sqliteforensics/internal/header"
	"github.com/p1tsi/sqliteforensics/internal/logging"
	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
	"github.com/p1tsi/sqliteforensics/internal/wal"
)

func main() {
	var formatStr, outputDir string
	var useWAL, parsedFiles, headerOnly, missingIDs, triggers, indices, debug bool

	flag.StringVar(&formatStr, "format", "JSON", "output format: JSON | CSV")
	flag.StringVar(&outputDir, "output-dir", "output", "output directory for generated files")
	flag.StringVar(&outputDir, "o", "output", "shorthand for -output-dir")
	flag.BoolVar(&useWAL, "wal", false, "also parse the WAL sidecar file alongside the main file")
	flag.BoolVar(&useWAL, "w", false, "shorthand for -wal")
	flag.BoolVar(&parsedFiles, "parsed-files", false, "write plain-text dumps of the parsed file(s)")
	flag.BoolVar(&parsedFiles, "p", false, "shorthand for -parsed-files")
	flag.BoolVar(&headerOnly, "fileheader", false, "only print the main file's header and exit")
	flag.BoolVar(&headerOnly, "f", false, "shorthand for -fileheader")
	flag.BoolVar(&missingIDs, "missingids", false, "look for gaps in each table's row id sequence")
	flag.BoolVar(&missingIDs, "m", false, "shorthand for -missingids")
	flag.BoolVar(&triggers, "triggers", false, "extract trigger definitions")
	flag.BoolVar(&triggers, "t", false, "shorthand for -triggers")
	flag.BoolVar(&indices, "indices", false, "reserved: only logs that index extraction is not implemented")
	flag.BoolVar(&indices, "i", false, "shorthand for -indices")
	flag.BoolVar(&debug, "debug", false, "print debug-level log output")
	flag.BoolVar(&debug, "d", false, "shorthand for -debug")
	flag.Parse()

	log := logging.New(debug)

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: sqliteforensics [flags] <database-file>")
		os.Exit(1)
	}
	dbPath := flag.Arg(0)

	if _, err := os.Stat(dbPath); err != nil {
		log.Error("%v", sqliteerr.New("open_database", sqliteerr.ErrMissingFile, map[string]interface{}{"path": dbPath}))
		os.Exit(1)
	}

	fileBytes, err := os.ReadFile(dbPath)
	if err != nil {
		log.Error("reading %s: %v", dbPath, err)
		os.Exit(1)
	}
	if len(fileBytes) == 0 {
		log.Error("given file (%s) is empty", dbPath)
		os.Exit(1)
	}

	if headerOnly {
		sess := session.New()
		hdr, err := header.Parse(fileBytes, sess)
		if err != nil {
			log.Error("%v", err)
			os.Exit(1)
		}
		fmt.Print(hdr.String())
		return
	}

	format, err := config.ParseFormat(formatStr)
	if err != nil {
		log.Warn("%s formatter not found, defaulting to JSON", formatStr)
		format = config.FormatJSON
	}

	cfg := config.New(dbPath,
		config.WithOutputDir(outputDir),
		config.WithFormat(format),
		config.WithWAL(useWAL),
		config.WithParsedDumps(parsedFiles),
		config.WithMissingRowIDs(missingIDs),
		config.WithTriggers(triggers),
		config.WithIndices(indices),
		config.WithDebug(debug),
	)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("creating output dir %s: %v", cfg.OutputDir, err)
		os.Exit(1)
	}

	baseName := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))

	var walBytes []byte
	if cfg.UseWAL {
		walPath := dbPath + "-wal"
		if _, err := os.Stat(walPath); err != nil {
			log.Warn("%v", sqliteerr.New("open_wal", sqliteerr.ErrMissingFile, map[string]interface{}{"path": walPath}))
		} else if b, err := os.ReadFile(walPath); err != nil {
			log.Warn("reading %s: %v", walPath, err)
		} else if len(b) == 0 {
			log.Warn("WAL file is empty")
		} else {
			walBytes = b
		}
	}

	db, err := database.Open(fileBytes, walBytes, cfg, log)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	rm := config.NewResourceManager()
	defer rm.Close()

	if cfg.EmitParsedDumps {
		writeParsedDumps(cfg, log, rm, fileBytes, walBytes, db, baseName)
	}

	switch cfg.Format {
	case config.FormatJSON:
		jsonPath := filepath.Join(cfg.OutputDir, baseName+".json")
		jf, err := os.Create(jsonPath)
		if err != nil {
			log.Error("creating %s: %v", jsonPath, err)
			os.Exit(1)
		}
		rm.Add(jf)
		if err := export.WriteJSON(jf, db); err != nil {
			log.Error("writing %s: %v", jsonPath, err)
			os.Exit(1)
		}
		log.Info("created JSON file: %s", jsonPath)
	case config.FormatCSV:
		if err := export.WriteCSV(cfg.OutputDir, db); err != nil {
			log.Error("writing CSV files: %v", err)
			os.Exit(1)
		}
		log.Info("created CSV files in: %s", cfg.OutputDir)
	}

	log.Info("done.")
}

func writeParsedDumps(cfg *config.Config, log *logging.Logger, rm *config.ResourceManager, fileBytes, walBytes []byte, db *database.Database, baseName string) {
	sess := session.New()
	hdr, err := header.Parse(fileBytes, sess)
	if err != nil {
		log.Warn("re-parsing header for dump: %v", err)
		return
	}

	mainDumpPath := filepath.Join(cfg.OutputDir, baseName+".txt")
	mf, err := os.Create(mainDumpPath)
	if err != nil {
		log.Warn("creating %s: %v", mainDumpPath, err)
	} else {
		rm.Add(mf)
		if err := export.WriteMainDump(mf, hdr, db, sess); err != nil {
			log.Warn("writing %s: %v", mainDumpPath, err)
		}
	}

	if cfg.UseWAL && walBytes != nil {
		walFile, err := wal.Parse(walBytes)
		if err != nil {
			log.Warn("re-parsing WAL for dump: %v", err)
			return
		}
		walDumpPath := filepath.Join(cfg.OutputDir, baseName+"-wal.txt")
		wf, err := os.Create(walDumpPath)
		if err != nil {
			log.Warn("creating %s: %v", walDumpPath, err)
			return
		}
		rm.Add(wf)
		if err := export.WriteWALDump(wf, walFile); err != nil {
			log.Warn("writing %s: %v", walDumpPath, err)
		}
	}
}
