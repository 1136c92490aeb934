package hwpv5

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hanpama/hwptext/internal/document"
)

// Options controls Format-A extraction.
type Options struct {
	Tags          TagTable
	MaxStreamSize int64
	Logger        *slog.Logger
}

func (o *Options) defaults() {
	if o.Tags == nil {
		o.Tags = DefaultTagTable()
	}
	if o.MaxStreamSize <= 0 {
		o.MaxStreamSize = 256 << 20
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// Extract decodes every body section of the compound file in data into
// fragments. Streams that cannot be decrypted or decompressed are skipped
// and counted.
func Extract(ctx context.Context, data []byte, opts Options) ([]document.Fragment, document.Stats, error) {
	opts.defaults()
	var stats document.Stats

	c, err := OpenContainer(data)
	if err != nil {
		return nil, stats, err
	}
	if c.HeaderErr != nil {
		opts.Logger.Warn("ignoring unreadable FileHeader", "err", c.HeaderErr)
	}
	if c.HasHeader {
		stats.Version = c.Header.Version.String()
	}

	sections, err := c.SectionStreams()
	if err != nil {
		return nil, stats, err
	}
	stats.Sections = len(sections)

	policy := DefaultPolicy()
	if !c.Compressed() {
		policy = []Strategy{Stored}
	}

	var frags []document.Fragment
	for _, name := range sections {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		buf, err := c.sectionBytes(name, opts.MaxStreamSize, policy)
		if err != nil {
			stats.SkippedStreams++
			opts.Logger.Warn("skipping stream", "stream", name, "err", err)
			continue
		}

		scanner := NewContentScanner(buf, opts.Tags, name, opts.Logger)
		for {
			frag, err := scanner.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			frags = append(frags, frag)
		}
		stats.SkippedRecords += scanner.Skipped()
	}
	return frags, stats, nil
}

func (c *Container) sectionBytes(name string, limit int64, policy []Strategy) ([]byte, error) {
	raw, _ := c.Stream(name)
	if c.IsDistributionDoc() {
		dec, err := decryptViewText(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt: %w", err)
		}
		raw = dec
	}
	return Decompress(raw, limit, policy)
}
