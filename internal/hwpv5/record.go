package hwpv5

import (
	"encoding/binary"
	"io"
	"iter"
)

const (
	recHeaderSize   = 4
	recSizeExtended = 0xfff
)

// Record is one tag/level/size unit of a record stream.
// Payload aliases the scanned buffer.
type Record struct {
	Tag     uint16
	Level   uint16
	Size    uint32
	Payload []byte
}

// RecScanner walks a decompressed buffer record by record.
type RecScanner struct {
	buf       []byte
	off       int
	truncated bool
}

func NewRecScanner(buf []byte) *RecScanner {
	return &RecScanner{buf: buf}
}

// ScanNext returns the next record, or io.EOF once the buffer cannot hold
// another complete record. A trailing partial header or payload ends the
// stream and is reported by Truncated.
func (s *RecScanner) ScanNext() (Record, error) {
	rest := s.buf[s.off:]
	if len(rest) == 0 {
		return Record{}, io.EOF
	}
	if len(rest) < recHeaderSize {
		return s.stop()
	}

	headerRaw := binary.LittleEndian.Uint32(rest)
	rec := Record{
		Tag:   uint16(headerRaw & 0x3ff),
		Level: uint16((headerRaw >> 10) & 0x3ff),
		Size:  (headerRaw >> 20) & 0xfff,
	}
	n := recHeaderSize
	if rec.Size == recSizeExtended {
		if len(rest) < n+4 {
			return s.stop()
		}
		rec.Size = binary.LittleEndian.Uint32(rest[n:])
		n += 4
	}

	if uint64(rec.Size) > uint64(len(rest)-n) {
		return s.stop()
	}
	end := n + int(rec.Size)
	rec.Payload = rest[n:end:end]
	s.off += end
	return rec, nil
}

// Truncated reports whether scanning stopped on an incomplete record.
func (s *RecScanner) Truncated() bool {
	return s.truncated
}

// Offset returns the number of bytes consumed so far.
func (s *RecScanner) Offset() int {
	return s.off
}

func (s *RecScanner) stop() (Record, error) {
	s.truncated = true
	s.off = len(s.buf)
	return Record{}, io.EOF
}

// Records iterates the records of buf. Each call starts from the beginning.
func Records(buf []byte) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		s := NewRecScanner(buf)
		for {
			rec, err := s.ScanNext()
			if err != nil {
				return
			}
			if !yield(rec) {
				return
			}
		}
	}
}
