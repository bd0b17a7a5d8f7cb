// Package database wires the header, freelist, schema, table and WAL
// packages into the top-level forensic read of one SQLite file. Grounded
// on original_source/src/db.rs's DataBase::new and
// original_source/src/mainfile.rs's MainFile::new, adapted from the
// teacher's app/database.go orchestration style (DatabaseImpl wiring
// dbRaw + schema + indexes).
package database

import (
	"github.com/p1tsi/sqliteforensics/internal/config"
	"github.com/p1tsi/sqliteforensics/internal/freelist"
	"github.com/p1tsi/sqliteforensics/internal/header"
	"github.com/p1tsi/sqliteforensics/internal/logging"
	"github.com/p1tsi/sqliteforensics/internal/overflow"
	"github.com/p1tsi/sqliteforensics/internal/schema"
	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
	"github.com/p1tsi/sqliteforensics/internal/table"
	"github.com/p1tsi/sqliteforensics/internal/wal"
)

// Database is the fully assembled forensic read of a SQLite file: its
// header, every successfully parsed table, and (if requested) triggers.
type Database struct {
	Header   *header.FileHeader
	Tables   []*table.Table
	Triggers []string
}

// Open parses fileBytes (and, if cfg.UseWAL, walBytes) into a Database.
// Per-table failures (most often a CREATE VIRTUAL TABLE whose SQL the
// column-name heuristic can't parse) are logged and skipped rather than
// aborting the whole run, matching DataBase::new's warn-and-continue loop.
func Open(fileBytes []byte, walBytes []byte, cfg *config.Config, log *logging.Logger) (*Database, error) {
	if len(fileBytes) == 0 {
		return nil, sqliteerr.New("open_database", sqliteerr.ErrEmptyInput, nil)
	}

	sess := session.New()
	hdr, err := header.Parse(fileBytes, sess)
	if err != nil {
		return nil, sqliteerr.New("parse_header", err, nil)
	}
	log.Debug("%s", hdr.String())

	if hdr.FreelistPageCount > 0 {
		if err := freelist.Walk(fileBytes, hdr.FirstFreelistTrunkPage, sess.PageSize, sess); err != nil {
			log.Warn("freelist walk failed: %v", err)
		}
	}

	baseSrc := overflow.BaseFileSource{FileBytes: fileBytes, PageSize: sess.PageSize}

	records, err := schema.Extract(fileBytes, sess.PageSize, sess, baseSrc)
	if err != nil {
		return nil, sqliteerr.New("extract_schema", err, nil)
	}

	var walFile *wal.File
	if cfg.UseWAL && len(walBytes) > 0 {
		walFile, err = wal.Parse(walBytes)
		if err != nil {
			log.Warn("WAL parse failed, continuing without WAL diff: %v", err)
			walFile = nil
		}
	}

	db := &Database{Header: hdr}

	for _, rec := range schema.TableList(records) {
		log.Info("table: %s", rec.Name)

		tbl, err := table.New(fileBytes, sess.PageSize, sess, baseSrc, rec.Name, rec)
		if err != nil {
			log.Warn("skipping table %s: %v", rec.Name, err)
			continue
		}

		if cfg.ComputeMissingRowIDs {
			tbl.FindMissingRowIDs()
		}

		if walFile != nil {
			if err := tbl.ApplyWAL(walFile, fileBytes, sess.PageSize, sess, baseSrc); err != nil {
				log.Warn("WAL diff failed for table %s: %v", rec.Name, err)
			}
		}

		db.Tables = append(db.Tables, tbl)
	}

	if cfg.ExtractIndices {
		log.Warn("index extraction not implemented yet")
	}

	if cfg.ExtractTriggers {
		db.Triggers = schema.Triggers(records)
	}

	return db, nil
}
