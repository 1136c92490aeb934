package hwptext

import (
	"github.com/hanpama/hwptext/internal/hwpv5"
	"github.com/hanpama/hwptext/internal/hwpx"
)

// Format identifies a document container.
type Format string

const (
	FormatHWP  Format = "hwp"
	FormatHWPX Format = "hwpx"
)

// ParseFormat maps a user supplied name to a Format. The empty string
// means auto-detect.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatHWP, FormatHWPX:
		return Format(s), nil
	}
	return "", ErrUnknownFormat
}

// Detect identifies the container by its leading signature.
func Detect(data []byte) (Format, error) {
	switch {
	case hwpv5.IsCompoundFile(data):
		return FormatHWP, nil
	case hwpx.IsArchive(data):
		return FormatHWPX, nil
	default:
		return "", ErrUnknownFormat
	}
}
