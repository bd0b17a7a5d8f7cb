// Package wal decodes the write-ahead log sidecar file: its 32-byte header
// and the sequence of 24-byte-framed page images that follow. Grounded on
// original_source/src/wal.rs's WALFileHeader/WALFrame/WALFile.
package wal

import (
	"encoding/binary"

	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
)

const (
	FileHeaderLen  = 32
	FrameHeaderLen = 24
)

// FileHeader is the 32-byte WAL file header.
type FileHeader struct {
	Magic             uint32
	FormatVersion     uint32
	PageSize          uint32
	CheckpointSeqNum  uint32
	Salt1             uint32
	Salt2             uint32
	Checksum1         uint32
	Checksum2         uint32
	FrameCount        uint32
}

// FrameHeader is the 24-byte header preceding each page image in the WAL.
type FrameHeader struct {
	PageNum               uint32
	PageCountAfterCommit  uint32
	Salt1                 uint32
	Salt2                 uint32
	Checksum1             uint32
	Checksum2             uint32
}

// Frame is one WAL frame: its header plus the raw page_size bytes of the
// page image that follows it (the page image is decoded lazily by callers
// via Page, not eagerly here, since only some callers need the full page
// decode).
type Frame struct {
	Index      uint32
	Header     FrameHeader
	PageBytes  []byte // raw page_size bytes, header-relative offset +24
	FileOffset int    // absolute byte offset of this frame's header in the WAL file
}

// File is a fully parsed WAL sidecar.
type File struct {
	Header FileHeader
	Frames []Frame
}

// Parse decodes a WAL file's bytes. Empty input is reported via
// ErrEmptyWAL so callers can downgrade it to a warning and proceed without
// the WAL, per the error-handling design.
func Parse(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, sqliteerr.New("parse_wal", sqliteerr.ErrEmptyWAL, nil)
	}
	if len(data) < FileHeaderLen {
		return nil, sqliteerr.New("parse_wal", sqliteerr.ErrInsufficientData, map[string]interface{}{
			"have": len(data), "need": FileHeaderLen,
		})
	}

	pageSize := binary.BigEndian.Uint32(data[8:12])
	frameCount := uint32(0)
	if pageSize+FrameHeaderLen > 0 {
		frameCount = uint32((uint64(len(data)) - FileHeaderLen) / (uint64(pageSize) + FrameHeaderLen))
	}

	header := FileHeader{
		Magic:            binary.BigEndian.Uint32(data[0:4]),
		FormatVersion:    binary.BigEndian.Uint32(data[4:8]),
		PageSize:         pageSize,
		CheckpointSeqNum: binary.BigEndian.Uint32(data[12:16]),
		Salt1:            binary.BigEndian.Uint32(data[16:20]),
		Salt2:            binary.BigEndian.Uint32(data[20:24]),
		Checksum1:        binary.BigEndian.Uint32(data[24:28]),
		Checksum2:        binary.BigEndian.Uint32(data[28:32]),
		FrameCount:       frameCount,
	}

	frames := make([]Frame, 0, frameCount)
	for i := uint32(0); i < frameCount; i++ {
		frameOffset := int((pageSize+FrameHeaderLen)*i) + FileHeaderLen
		if frameOffset+FrameHeaderLen+int(pageSize) > len(data) {
			break
		}
		fh := FrameHeader{
			PageNum:              binary.BigEndian.Uint32(data[frameOffset : frameOffset+4]),
			PageCountAfterCommit: binary.BigEndian.Uint32(data[frameOffset+4 : frameOffset+8]),
			Salt1:                binary.BigEndian.Uint32(data[frameOffset+8 : frameOffset+12]),
			Salt2:                binary.BigEndian.Uint32(data[frameOffset+12 : frameOffset+16]),
			Checksum1:            binary.BigEndian.Uint32(data[frameOffset+16 : frameOffset+20]),
			Checksum2:            binary.BigEndian.Uint32(data[frameOffset+20 : frameOffset+24]),
		}
		pageStart := frameOffset + FrameHeaderLen
		frames = append(frames, Frame{
			Index:      i,
			Header:     fh,
			PageBytes:  data[pageStart : pageStart+int(pageSize)],
			FileOffset: frameOffset,
		})
	}

	return &File{Header: header, Frames: frames}, nil
}

// FramesForPage returns every frame targeting pageNum, in file order.
func (f *File) FramesForPage(pageNum uint32) []Frame {
	var out []Frame
	for _, fr := range f.Frames {
		if fr.Header.PageNum == pageNum {
			out = append(out, fr)
		}
	}
	return out
}
