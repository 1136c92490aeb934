package document

import "errors"

var (
	// ErrStreamNotFound is returned when a document has no body storage or parts.
	ErrStreamNotFound = errors.New("stream not found")
	// ErrStreamTooLarge is returned when a stream or part decompresses past
	// the configured limit.
	ErrStreamTooLarge = errors.New("stream exceeds size limit")
)

// Fragment is one piece of decoded text in document order.
//
// A fragment with TableCell set and an empty Text marks a cell boundary.
// A fragment with text and TableCell set was decoded inside a table cell.
type Fragment struct {
	Text      string
	TableCell bool
}

// Boundary returns a cell boundary marker.
func Boundary() Fragment {
	return Fragment{TableCell: true}
}

// IsBoundary reports whether f is a cell boundary marker.
func (f Fragment) IsBoundary() bool {
	return f.TableCell && f.Text == ""
}

// FragmentScanner yields fragments until io.EOF.
type FragmentScanner interface {
	Next() (Fragment, error)
}

// Stats describes a document and counts what was dropped while producing
// its fragments.
type Stats struct {
	Version        string
	Sections       int
	SkippedStreams int
	SkippedRecords int
}
