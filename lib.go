// Package hwptext extracts plain text and verification statistics from HWP
// (Hangul Word Processor) documents.
//
// Both the binary HWP v5 format (.hwp) and the XML-based HWPX format (.hwpx)
// are supported. The result carries the linear text of the document together
// with code point counts and a keyword report.
//
// # Example Usage
//
//	data, err := os.ReadFile("document.hwp")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := hwptext.Extract(data, "", []string{"계약", "번호"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Text)
//	fmt.Println(res.FoundKeywords, res.MissingKeywords)
//
// # Supported Formats
//
// HWP v5 (.hwp): Binary format with OLE Compound File container
//   - BodyText sections, raw deflate or stored
//   - AES-128 ECB decryption for distribution documents
//   - UTF-16LE text decoding with paragraph control codes
//
// HWPX (.hwpx): XML-based format with ZIP container
//   - OWPML (Open Word-processor Markup Language) section parts
//   - Paragraph, line break, tab and table cell boundaries
//
// Record and stream level damage is tolerated: broken records and streams
// are skipped and counted in the Result. Only a structurally invalid
// container or a document without any text is reported as an error.
package hwptext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hanpama/hwptext/internal/document"
	"github.com/hanpama/hwptext/internal/hwpv5"
	"github.com/hanpama/hwptext/internal/hwpx"
)

// TagTable maps HWP record tags to the kind of text they carry.
type TagTable = hwpv5.TagTable

// TagKind classifies an HWP record tag.
type TagKind = hwpv5.TagKind

const (
	KindIgnored       = hwpv5.KindIgnored
	KindPlainText     = hwpv5.KindPlainText
	KindParaText      = hwpv5.KindParaText
	KindTableStart    = hwpv5.KindTableStart
	KindTableBoundary = hwpv5.KindTableBoundary
)

// DefaultTagTable reads paragraph text plus every other record family that
// commonly carries readable text.
func DefaultTagTable() TagTable { return hwpv5.DefaultTagTable() }

// StrictTagTable reads paragraph text records only.
func StrictTagTable() TagTable { return hwpv5.StrictTagTable() }

// Config configures an Extractor.
type Config struct {
	// MaxFileSize is the largest input accepted (default: 100 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// MaxStreamSize caps the decompressed size of one HWP stream (default: 256 MB).
	MaxStreamSize int64 `json:"max_stream_size" yaml:"max_stream_size"`

	// Tags selects the HWP records that carry text (default: DefaultTagTable).
	Tags TagTable `json:"-" yaml:"-"`

	// Concurrency bounds ExtractFiles (default: GOMAXPROCS).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.MaxStreamSize <= 0 {
		c.MaxStreamSize = 256 * 1024 * 1024
	}
	if c.Tags == nil {
		c.Tags = hwpv5.DefaultTagTable()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Extractor turns document bytes into a Result. It holds no mutable state
// and is safe for concurrent use.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Extractor with the given configuration.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Extract decodes data and evaluates keywords against the text. When hint
// is empty the format is detected from the leading signature.
func (e *Extractor) Extract(ctx context.Context, data []byte, hint Format, keywords []string) (*Result, error) {
	if int64(len(data)) > e.cfg.MaxFileSize {
		return nil, &ExtractionError{Format: hint, Err: fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), e.cfg.MaxFileSize)}
	}

	format := hint
	if format == "" {
		var err error
		format, err = Detect(data)
		if err != nil {
			return nil, &ExtractionError{Err: err}
		}
	}

	start := time.Now()
	var (
		frags []document.Fragment
		stats document.Stats
		err   error
	)
	switch format {
	case FormatHWP:
		frags, stats, err = hwpv5.Extract(ctx, data, hwpv5.Options{
			Tags:          e.cfg.Tags,
			MaxStreamSize: e.cfg.MaxStreamSize,
			Logger:        e.logger,
		})
	case FormatHWPX:
		frags, stats, err = hwpx.Extract(ctx, data, hwpx.Options{
			MaxPartSize: e.cfg.MaxStreamSize,
			Logger:      e.logger,
		})
	default:
		return nil, &ExtractionError{Format: format, Err: fmt.Errorf("%w: %q", ErrUnknownFormat, format)}
	}

	if err != nil {
		return nil, &ExtractionError{
			Format:         format,
			SkippedStreams: stats.SkippedStreams,
			SkippedRecords: stats.SkippedRecords,
			Err:            err,
		}
	}

	res := Aggregate(frags, keywords)
	res.Format = format
	res.Version = stats.Version
	res.Sections = stats.Sections
	res.SkippedStreams = stats.SkippedStreams
	res.SkippedRecords = stats.SkippedRecords

	if res.Text == "" {
		return nil, &ExtractionError{
			Format:         format,
			SkippedStreams: stats.SkippedStreams,
			SkippedRecords: stats.SkippedRecords,
			Err:            ErrNoText,
		}
	}

	e.logger.Debug("extracted document",
		"format", format,
		"sections", stats.Sections,
		"chars", res.CharCount,
		"skipped_streams", stats.SkippedStreams,
		"skipped_records", stats.SkippedRecords,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// ExtractFile reads path and extracts it. The format is detected from the
// file signature, falling back to the extension.
func (e *Extractor) ExtractFile(ctx context.Context, path string, keywords []string) (*Result, error) {
	return e.ExtractFileAs(ctx, path, "", keywords)
}

// ExtractFileAs is ExtractFile with a forced format. An empty hint detects
// the format. Files over Config.MaxFileSize are rejected before reading.
func (e *Extractor) ExtractFileAs(ctx context.Context, path string, hint Format, keywords []string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > e.cfg.MaxFileSize {
		format := hint
		if format == "" {
			format = formatFromExt(path)
		}
		return nil, &ExtractionError{Format: format, Err: fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), e.cfg.MaxFileSize)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	format := hint
	if format == "" {
		if format, err = Detect(data); err != nil {
			format = formatFromExt(path)
		}
	}

	e.logger.Debug("extracting file", "path", path, "format", format)
	return e.Extract(ctx, data, format, keywords)
}

// Extract decodes data with the default configuration.
func Extract(data []byte, hint Format, keywords []string) (*Result, error) {
	return New(Config{Logger: slog.New(slog.DiscardHandler)}).Extract(context.Background(), data, hint, keywords)
}

func formatFromExt(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hwpx":
		return FormatHWPX
	case ".hwp":
		return FormatHWP
	default:
		return ""
	}
}
