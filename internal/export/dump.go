package export

import (
	"fmt"
	"io"

	"github.com/p1tsi/sqliteforensics/internal/database"
	"github.com/p1tsi/sqliteforensics/internal/header"
	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/wal"
)

// WriteMainDump writes the plain-text diagnostic dump requested by
// --parsed-files: the file header, the free/overflow page sets the
// session accumulated while parsing, and a per-table summary. Grounded
// on original_source/src/mainfile.rs's Debug impl for MainFile, adapted
// since this reader does not keep every decoded page resident after a
// run (only the header, free/overflow bookkeeping and the assembled
// tables survive to dump time).
func WriteMainDump(w io.Writer, hdr *header.FileHeader, db *database.Database, sess *session.Session) error {
	if _, err := io.WriteString(w, hdr.String()); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\tFREE PAGES:\t\t\t\t\t%v\n", sess.FreePages()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\tOVERFLOW PAGES:\t\t\t\t%v\n\n", sess.OverflowPages()); err != nil {
		return err
	}

	for _, t := range db.Tables {
		if _, err := fmt.Fprintf(w, "TABLE %s\n\tCOLUMNS: %v\n\tROWS: %d\n", t.Name, t.Columns, len(t.Rows)); err != nil {
			return err
		}
		if t.MissingRowIDs != nil {
			if _, err := fmt.Fprintf(w, "\tMISSING ROWIDS: %v\n", t.MissingRowIDs); err != nil {
				return err
			}
		}
		for i, row := range t.Rows {
			if _, err := fmt.Fprintf(w, "\tROW %d\tROWID=%d\t%v\n", i, row.RowID, row.Data); err != nil {
				return err
			}
		}
	}

	if db.Triggers != nil {
		if _, err := fmt.Fprintf(w, "\nTRIGGERS: %v\n", db.Triggers); err != nil {
			return err
		}
	}

	return nil
}

// WriteWALDump writes the plain-text diagnostic dump of a parsed WAL
// file's header and every frame, grounded on
// original_source/src/wal.rs's Debug impls for WalHeader/WalFrame.
func WriteWALDump(w io.Writer, walFile *wal.File) error {
	h := walFile.Header
	if _, err := fmt.Fprintf(w,
		"WAL HEADER\n\tPAGE SIZE:\t\t\t%d\n\tCHECKPOINT SEQ NUM:\t%d\n\tSALT:\t\t\t\t%d/%d\n\tFRAME COUNT:\t\t%d\n\n",
		h.PageSize, h.CheckpointSeqNum, h.Salt1, h.Salt2, h.FrameCount,
	); err != nil {
		return err
	}

	for _, frame := range walFile.Frames {
		if _, err := fmt.Fprintf(w,
			"FRAME %d\n\tPAGE NUM:\t\t\t%d\n\tCOMMIT PAGE COUNT:\t%d\n",
			frame.Index, frame.Header.PageNum, frame.Header.PageCountAfterCommit,
		); err != nil {
			return err
		}
	}

	return nil
}
