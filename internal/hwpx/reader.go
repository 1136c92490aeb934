package hwpx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/hanpama/hwptext/internal/document"
)

const mimetypeHWPX = "application/hwp+zip"

var (
	// ErrNotAnArchive is returned when the input is not an HWPX zip archive.
	ErrNotAnArchive = errors.New("not an hwpx archive")
	// ErrMalformedXML is returned when section XML cannot be parsed.
	ErrMalformedXML = errors.New("malformed xml")
	// ErrStreamNotFound is returned when the archive has no section parts.
	ErrStreamNotFound = document.ErrStreamNotFound
	// ErrStreamTooLarge is returned when a section part inflates past the limit.
	ErrStreamTooLarge = document.ErrStreamTooLarge
)

// Options controls Format-B extraction.
type Options struct {
	// MaxPartSize caps the uncompressed size of one section part (default: 256 MB).
	MaxPartSize int64
	Logger      *slog.Logger
}

func (o *Options) defaults() {
	if o.MaxPartSize <= 0 {
		o.MaxPartSize = 256 << 20
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// IsArchive reports whether data starts with a zip local file header.
func IsArchive(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// Reader provides access to HWPX document content
type Reader struct {
	zipReader *zip.Reader
	version   Version
	sections  []*Section
}

// Version represents the HWPX format version
type Version struct {
	Major       int
	Minor       int
	Micro       int
	BuildNumber int
	XMLVersion  string
}

func (v Version) String() string {
	if v == (Version{}) {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Micro, v.BuildNumber)
}

// Section is one Contents/sectionN.xml part.
type Section struct {
	Name  string
	Index int
	file  *zip.File
}

// Open opens an HWPX file and returns a Reader
func Open(r io.ReaderAt, size int64) (*Reader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAnArchive, err)
	}

	reader := &Reader{
		zipReader: zipReader,
	}

	if err := reader.validateMimetype(); err != nil {
		return nil, err
	}

	// version.xml is informational; a missing or odd one is not fatal.
	_ = reader.parseVersion()

	if err := reader.loadSections(); err != nil {
		return nil, err
	}

	return reader, nil
}

// Version returns the HCFVersion attributes of version.xml, if any.
func (r *Reader) Version() Version {
	return r.version
}

// Sections returns the section parts in index order.
func (r *Reader) Sections() []*Section {
	return r.sections
}

func (r *Reader) validateMimetype() error {
	file, err := r.zipReader.Open("mimetype")
	if err != nil {
		return nil
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 256))
	if err != nil {
		return fmt.Errorf("failed to read mimetype: %w", err)
	}

	mimetype := strings.TrimSpace(string(data))
	if mimetype != mimetypeHWPX {
		return fmt.Errorf("%w: invalid mimetype %q", ErrNotAnArchive, mimetype)
	}

	return nil
}

func (r *Reader) parseVersion() error {
	file, err := r.zipReader.Open("version.xml")
	if err != nil {
		return fmt.Errorf("version.xml not found: %w", err)
	}
	defer file.Close()

	var versionDoc struct {
		XMLName     xml.Name `xml:"HCFVersion"`
		Major       int      `xml:"major,attr"`
		Minor       int      `xml:"minor,attr"`
		Micro       int      `xml:"micro,attr"`
		BuildNumber int      `xml:"buildNumber,attr"`
		XMLVersion  string   `xml:"xmlVersion,attr"`
	}

	decoder := newDecoder(file)
	if err := decoder.Decode(&versionDoc); err != nil {
		return fmt.Errorf("failed to parse version.xml: %w", err)
	}

	r.version = Version{
		Major:       versionDoc.Major,
		Minor:       versionDoc.Minor,
		Micro:       versionDoc.Micro,
		BuildNumber: versionDoc.BuildNumber,
		XMLVersion:  versionDoc.XMLVersion,
	}

	return nil
}

func (r *Reader) loadSections() error {
	r.sections = make([]*Section, 0)

	for _, file := range r.zipReader.File {
		rest, ok := strings.CutPrefix(file.Name, "Contents/section")
		if !ok {
			continue
		}
		num, ok := strings.CutSuffix(rest, ".xml")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(num)
		if err != nil || idx < 0 {
			continue
		}
		r.sections = append(r.sections, &Section{Name: file.Name, Index: idx, file: file})
	}

	if len(r.sections) == 0 {
		return fmt.Errorf("%w: no section files found in Contents/", ErrStreamNotFound)
	}

	sort.Slice(r.sections, func(i, j int) bool { return r.sections[i].Index < r.sections[j].Index })
	return nil
}

// NewContentScanner opens a section part for scanning. Reads fail with
// ErrStreamTooLarge once the part inflates past limit bytes.
func (r *Reader) NewContentScanner(s *Section, limit int64) (*ContentScanner, error) {
	if s.file.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%w: %s declares %d bytes", ErrStreamTooLarge, s.Name, s.file.UncompressedSize64)
	}
	file, err := s.file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open section file: %w", err)
	}
	return NewContentScanner(&limitedReadCloser{rc: file, remaining: limit}), nil
}

// readSection returns all fragments of s, or an error if any part of the
// XML is malformed or the part inflates past limit.
func (r *Reader) readSection(s *Section, limit int64) ([]document.Fragment, error) {
	scanner, err := r.NewContentScanner(s, limit)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	var frags []document.Fragment
	for {
		frag, err := scanner.Next()
		if err == io.EOF {
			return frags, nil
		}
		if err != nil {
			return nil, err
		}
		frags = append(frags, frag)
	}
}

// Extract returns the fragments of every section of the archive in data.
// A section that fails to parse or exceeds opts.MaxPartSize is skipped; if
// none survive, the error wraps ErrMalformedXML or ErrStreamTooLarge.
func Extract(ctx context.Context, data []byte, opts Options) ([]document.Fragment, document.Stats, error) {
	opts.defaults()
	logger := opts.Logger
	var stats document.Stats

	r, err := Open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, stats, err
	}
	stats.Sections = len(r.sections)
	stats.Version = r.version.String()

	var frags []document.Fragment
	var lastErr error
	for _, s := range r.sections {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		part, err := r.readSection(s, opts.MaxPartSize)
		if err != nil {
			stats.SkippedStreams++
			lastErr = err
			logger.Warn("skipping section", "part", s.Name, "err", err)
			continue
		}
		frags = append(frags, part...)
	}

	if stats.SkippedStreams == len(r.sections) {
		if !errors.Is(lastErr, ErrMalformedXML) && !errors.Is(lastErr, ErrStreamTooLarge) {
			lastErr = fmt.Errorf("%w: %w", ErrMalformedXML, lastErr)
		}
		return nil, stats, fmt.Errorf("all sections failed: %w", lastErr)
	}
	return frags, stats, nil
}

// limitedReadCloser fails with ErrStreamTooLarge once more than remaining
// bytes have been read. The zip header size is not trusted.
type limitedReadCloser struct {
	rc        io.ReadCloser
	remaining int64
}

func (l *limitedReadCloser) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrStreamTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.rc.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrStreamTooLarge
	}
	return n, err
}

func (l *limitedReadCloser) Close() error {
	return l.rc.Close()
}
