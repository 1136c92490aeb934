package hwpx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/hanpama/hwptext/internal/document"
)

func newDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	return d
}

// ContentScanner walks section XML token by token and emits fragments.
// It implements document.FragmentScanner.
//
// Text is taken from t elements. A p element ends a paragraph, a tc element
// starts a table cell, and lineBreak and tab become "\n" and "\t".
type ContentScanner struct {
	decoder *xml.Decoder
	closer  io.Closer

	buf       strings.Builder
	textDepth int
	cellDepth int
	pending   []document.Fragment
	done      bool
}

// NewContentScanner creates a new ContentScanner from a section XML reader
func NewContentScanner(r io.ReadCloser) *ContentScanner {
	return &ContentScanner{
		decoder: newDecoder(r),
		closer:  r,
	}
}

// Next returns the next fragment from the section, or io.EOF.
func (s *ContentScanner) Next() (document.Fragment, error) {
	for len(s.pending) == 0 {
		if s.done {
			return document.Fragment{}, io.EOF
		}
		if err := s.step(); err != nil {
			return document.Fragment{}, err
		}
	}
	frag := s.pending[0]
	s.pending = s.pending[1:]
	return frag, nil
}

func (s *ContentScanner) step() error {
	token, err := s.decoder.Token()
	if err == io.EOF {
		s.flush()
		s.done = true
		return nil
	}
	if errors.Is(err, ErrStreamTooLarge) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedXML, err)
	}

	switch elem := token.(type) {
	case xml.StartElement:
		switch elem.Name.Local {
		case "t":
			s.textDepth++
		case "p":
			s.flush()
		case "tc":
			s.flush()
			s.cellDepth++
			s.pending = append(s.pending, document.Boundary())
		case "lineBreak":
			s.buf.WriteByte('\n')
		case "tab":
			s.buf.WriteByte('\t')
		}
	case xml.EndElement:
		switch elem.Name.Local {
		case "t":
			if s.textDepth > 0 {
				s.textDepth--
			}
		case "p":
			s.flush()
		case "tc":
			s.flush()
			if s.cellDepth > 0 {
				s.cellDepth--
			}
		}
	case xml.CharData:
		if s.textDepth > 0 {
			s.buf.Write(elem)
		}
	}
	return nil
}

func (s *ContentScanner) flush() {
	text := strings.TrimRight(s.buf.String(), "\n")
	s.buf.Reset()
	if strings.TrimSpace(text) == "" {
		return
	}
	s.pending = append(s.pending, document.Fragment{Text: text, TableCell: s.cellDepth > 0})
}

// Close closes the underlying reader
func (s *ContentScanner) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
