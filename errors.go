package hwptext

import (
	"errors"
	"fmt"

	"github.com/hanpama/hwptext/internal/hwpv5"
	"github.com/hanpama/hwptext/internal/hwpx"
)

// Container errors are fatal for the document.
var (
	ErrNotACompoundFile = hwpv5.ErrNotACompoundFile
	ErrStreamNotFound   = hwpv5.ErrStreamNotFound
	ErrEncrypted        = hwpv5.ErrEncrypted
	ErrNotAnArchive     = hwpx.ErrNotAnArchive
	ErrMalformedXML     = hwpx.ErrMalformedXML
)

// Stream and record errors are absorbed during extraction and only show up
// in logs and the skip counters of a Result, unless every HWPX section part
// fails with one.
var (
	ErrCorruptStream  = hwpv5.ErrCorruptStream
	ErrStreamTooLarge = hwpv5.ErrStreamTooLarge
	ErrInvalidText    = hwpv5.ErrInvalidText
)

var (
	// ErrNoText is returned when a document decodes cleanly but yields no text.
	ErrNoText = errors.New("no text extracted")
	// ErrUnknownFormat is returned when the input is neither HWP nor HWPX.
	ErrUnknownFormat = errors.New("unknown document format")
	// ErrTooLarge is returned when the input exceeds Config.MaxFileSize.
	ErrTooLarge = errors.New("document too large")
)

// ExtractionError reports a document that could not be extracted.
// Use errors.Is with the sentinel errors above to classify it.
type ExtractionError struct {
	Format         Format
	SkippedStreams int
	SkippedRecords int
	Err            error
}

func (e *ExtractionError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("extract: %v", e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
