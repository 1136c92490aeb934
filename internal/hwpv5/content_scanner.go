package hwpv5

import (
	"io"
	"log/slog"

	"github.com/hanpama/hwptext/internal/document"
)

// ContentScanner implements document.FragmentScanner over one decompressed
// section. Records that fail to decode are counted and skipped.
type ContentScanner struct {
	scanner *RecScanner
	tags    TagTable
	logger  *slog.Logger
	stream  string

	tables  []uint16 // levels of the open tables, innermost last
	inCell  bool
	skipped int
}

// NewContentScanner scans buf with tags. stream names the section in log lines.
func NewContentScanner(buf []byte, tags TagTable, stream string, logger *slog.Logger) *ContentScanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ContentScanner{
		scanner: NewRecScanner(buf),
		tags:    tags,
		logger:  logger,
		stream:  stream,
	}
}

// Next returns the next fragment or io.EOF.
func (s *ContentScanner) Next() (document.Fragment, error) {
	for {
		rec, err := s.scanner.ScanNext()
		if err != nil {
			if err == io.EOF && s.scanner.Truncated() {
				s.logger.Debug("record stream truncated", "stream", s.stream, "offset", s.scanner.Offset())
			}
			return document.Fragment{}, err
		}

		// A record above a table's level closes it.
		for n := len(s.tables); n > 0 && rec.Level < s.tables[n-1]; n-- {
			s.tables = s.tables[:n-1]
		}
		if len(s.tables) == 0 {
			s.inCell = false
		}

		switch s.tags.Kind(rec.Tag) {
		case KindTableStart:
			s.tables = append(s.tables, rec.Level)
			continue
		case KindTableBoundary:
			if len(s.tables) == 0 || rec.Level != s.tables[len(s.tables)-1] {
				continue
			}
			s.inCell = true
			return document.Boundary(), nil
		}

		frag, ok, err := DecodeRecord(rec, s.tags)
		if err != nil {
			s.skipped++
			s.logger.Debug("skipping record", "stream", s.stream, "tag", rec.Tag, "level", rec.Level, "err", err)
			continue
		}
		if !ok {
			continue
		}
		frag.TableCell = s.inCell
		return frag, nil
	}
}

// Skipped returns the number of records dropped because of invalid text.
func (s *ContentScanner) Skipped() int {
	return s.skipped
}
