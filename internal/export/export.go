// Package export writes a parsed Database out as JSON or CSV, and writes
// the plain-text diagnostic dumps requested by --parsed-files. Grounded
// on original_source/src/formatters/mod.rs's csv_run/json_run and
// structs.rs's LeafCell::to_csv for the exact CSV line format. Uses
// stdlib encoding/json for JSON output — no third-party serialization
// library appears anywhere in the example pack. CSV output is written by
// hand rather than with encoding/csv, since the original format (no
// header, semicolon-delimited, trailing semicolon, no quoting) is not
// what encoding/csv produces.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/p1tsi/sqliteforensics/internal/database"
	"github.com/p1tsi/sqliteforensics/internal/table"
)

type jsonModsSequence struct {
	RowID    uint64     `json:"rowid"`
	Sequence [][]string `json:"sequence"`
}

type jsonDiff struct {
	Insertions    []jsonRow          `json:"insertions"`
	Deletions     []jsonRow          `json:"deletions"`
	Modifications []jsonModsSequence `json:"modifications"`
}

type jsonRow struct {
	RowID uint64   `json:"rowid"`
	Data  []string `json:"data"`
}

type jsonTable struct {
	Name          string    `json:"name"`
	Columns       []string  `json:"columns"`
	RowsCount     int       `json:"rows_count"`
	Rows          []jsonRow `json:"rows"`
	MissingRowIDs []uint64  `json:"missing_rowids"`
	WAL           *jsonDiff `json:"wal"`
}

type jsonDatabase struct {
	Tables   []jsonTable `json:"tables"`
	Triggers []string    `json:"triggers"`
}

func toJSONDatabase(db *database.Database) jsonDatabase {
	out := jsonDatabase{Triggers: db.Triggers}
	for _, t := range db.Tables {
		out.Tables = append(out.Tables, toJSONTable(t))
	}
	return out
}

func toJSONTable(t *table.Table) jsonTable {
	jt := jsonTable{
		Name:          t.Name,
		Columns:       t.Columns,
		RowsCount:     len(t.Rows),
		MissingRowIDs: t.MissingRowIDs,
	}
	for _, row := range t.Rows {
		jt.Rows = append(jt.Rows, jsonRow{RowID: row.RowID, Data: row.Data})
	}
	if t.Diff != nil {
		jd := &jsonDiff{}
		for _, c := range t.Diff.Insertions {
			jd.Insertions = append(jd.Insertions, jsonRow{RowID: c.RowID, Data: c.Data})
		}
		for _, c := range t.Diff.Deletions {
			jd.Deletions = append(jd.Deletions, jsonRow{RowID: c.RowID, Data: c.Data})
		}
		for _, m := range t.Diff.Modifications {
			jd.Modifications = append(jd.Modifications, jsonModsSequence{RowID: m.RowID, Sequence: m.Sequence})
		}
		jt.WAL = jd
	}
	return jt
}

// WriteJSON serializes db to w as a single JSON document.
func WriteJSON(w io.Writer, db *database.Database) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSONDatabase(db))
}

// WriteCSV writes one CSV file per table into outputDir, named
// "<table>.csv": one line per row, no header.
func WriteCSV(outputDir string, db *database.Database) error {
	for _, t := range db.Tables {
		path := filepath.Join(outputDir, t.Name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create csv for table %s: %w", t.Name, err)
		}

		writeErr := writeTableCSV(f, t)
		closeErr := f.Close()
		if writeErr != nil {
			return writeErr
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}

// writeTableCSV writes one line per row in the original tool's hand-built
// format (structs.rs's LeafCell::to_csv): "row_id;field_0;field_1;…;" —
// semicolon-separated, a trailing semicolon, no header row, no quoting.
func writeTableCSV(w io.Writer, t *table.Table) error {
	bw := bufio.NewWriter(w)

	for _, row := range t.Rows {
		var line strings.Builder
		fmt.Fprintf(&line, "%s;", strconv.FormatUint(row.RowID, 10))
		for _, field := range row.Data {
			line.WriteString(field)
			line.WriteByte(';')
		}
		line.WriteByte('\n')
		if _, err := bw.WriteString(line.String()); err != nil {
			return err
		}
	}

	return bw.Flush()
}
