// Package header decodes the 100-byte prelude of the main database file.
// Grounded on original_source/src/mainfile.rs's FileHeader::new and
// app/database_raw.go's parseHeader/DatabaseHeader, adapted to return the
// session state explicitly rather than publish to process globals.
package header

import (
	"encoding/binary"
	"fmt"

	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
)

const (
	// Len is the fixed length of the file header.
	Len = 100
	magic = "SQLite format 3\x00"
)

// FileHeader is the fully decoded 100-byte prelude of the main file.
type FileHeader struct {
	Magic                   string
	PageSize                uint32
	FileFormatWrite         uint8
	FileFormatRead          uint8
	ReservedSpace           uint32
	MaxEmbeddedPayloadFrac  uint32
	MinEmbeddedPayloadFrac  uint32
	FileChangeCounter       uint32
	PageCount               uint32
	FirstFreelistTrunkPage  uint32
	FreelistPageCount       uint32
	SchemaCookie            uint32
	SchemaFormatNumber      uint32
	PageCacheSize           uint32
	LargestRootBTreePageNum uint32
	TextEncoding            uint32
	UserVersion             uint32
	IncrementalVacuumMode   uint32
	ApplicationID           uint32
	VersionValidFor         uint32
	SQLiteVersionNumber     uint32
}

// Parse validates the magic tag and decodes the fixed big-endian fields of
// the 100-byte header, publishing page size, reserved space and text
// encoding into sess. Returns ErrNotASqliteFile if the magic does not match
// and ErrEmptyInput if data is empty.
func Parse(data []byte, sess *session.Session) (*FileHeader, error) {
	if len(data) == 0 {
		return nil, sqliteerr.New("parse_file_header", sqliteerr.ErrEmptyInput, nil)
	}
	if len(data) < Len {
		return nil, sqliteerr.New("parse_file_header", sqliteerr.ErrInsufficientData, map[string]interface{}{
			"have": len(data), "need": Len,
		})
	}

	if string(data[0:16]) != magic {
		return nil, sqliteerr.New("parse_file_header", sqliteerr.ErrNotASqliteFile, map[string]interface{}{
			"magic": fmt.Sprintf("%x", data[0:16]),
		})
	}

	pageSize := uint32(binary.BigEndian.Uint16(data[16:18]))
	if pageSize == 1 {
		pageSize = 65536
	}

	h := &FileHeader{
		Magic:                   magic,
		PageSize:                pageSize,
		FileFormatWrite:         data[18],
		FileFormatRead:          data[19],
		ReservedSpace:           uint32(data[20]),
		MaxEmbeddedPayloadFrac:  uint32(data[21]),
		MinEmbeddedPayloadFrac:  uint32(data[22]),
		FileChangeCounter:       binary.BigEndian.Uint32(data[24:28]),
		PageCount:               binary.BigEndian.Uint32(data[28:32]),
		FirstFreelistTrunkPage:  binary.BigEndian.Uint32(data[32:36]),
		FreelistPageCount:       binary.BigEndian.Uint32(data[36:40]),
		SchemaCookie:            binary.BigEndian.Uint32(data[40:44]),
		SchemaFormatNumber:      binary.BigEndian.Uint32(data[44:48]),
		PageCacheSize:           binary.BigEndian.Uint32(data[48:52]),
		LargestRootBTreePageNum: binary.BigEndian.Uint32(data[52:56]),
		TextEncoding:            binary.BigEndian.Uint32(data[56:60]),
		UserVersion:             binary.BigEndian.Uint32(data[60:64]),
		IncrementalVacuumMode:   binary.BigEndian.Uint32(data[64:68]),
		ApplicationID:           binary.BigEndian.Uint32(data[68:72]),
		VersionValidFor:         binary.BigEndian.Uint32(data[92:96]),
		SQLiteVersionNumber:     binary.BigEndian.Uint32(data[96:100]),
	}

	sess.PageSize = int(h.PageSize)
	sess.ReservedSpace = int(h.ReservedSpace)
	sess.Encoding = session.Encoding(h.TextEncoding)

	return h, nil
}

// String renders the header the way the original tool's Debug impl does,
// for the --parsed-files diagnostic dump.
func (h *FileHeader) String() string {
	return fmt.Sprintf(
		"FILE HEADER\n"+
			"\tPAGE SIZE:\t\t\t\t\t%d\n"+
			"\tFORMAT WRITE:\t\t\t\t%d\t(2 = WAL)\n"+
			"\tFORMAT READ:\t\t\t\t%d\t(2 = WAL)\n"+
			"\tRESERVED SPACE:\t\t\t\t%d\n"+
			"\tFILE CHANGE COUNTER:\t\t%d\n"+
			"\tPAGE COUNT:\t\t\t\t\t%d\n"+
			"\tFIRST FREELIST TRUNK PAGE NUM:\t%d\n"+
			"\tFREELIST PAGES COUNT:\t\t%d\n"+
			"\tSCHEMA COOKIE:\t\t\t\t%d\n"+
			"\tTEXT ENCODING:\t\t\t\t%d\t(1 = UTF8, 2 = UTF16le; 3 = UTF16be)\n"+
			"\tUSER VERSION:\t\t\t\t%d\n"+
			"\tAPPLICATION ID:\t\t\t\t%d\n",
		h.PageSize, h.FileFormatWrite, h.FileFormatRead, h.ReservedSpace,
		h.FileChangeCounter, h.PageCount, h.FirstFreelistTrunkPage,
		h.FreelistPageCount, h.SchemaCookie, h.TextEncoding, h.UserVersion,
		h.ApplicationID,
	)
}
