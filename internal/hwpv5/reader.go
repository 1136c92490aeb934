package hwpv5

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/richardlehane/mscfb"
)

// compound file magic
var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// IsCompoundFile reports whether data starts with the compound file magic.
func IsCompoundFile(data []byte) bool {
	return bytes.HasPrefix(data, cfbSignature)
}

// Container is the set of streams of an HWP 5.0 compound file.
type Container struct {
	Header    FileHeader
	HasHeader bool
	// HeaderErr is set when a FileHeader stream exists but could not be parsed.
	HeaderErr error

	streams  map[string][]byte
	storages map[string]bool
}

// OpenContainer reads every stream of the compound file in data.
func OpenContainer(data []byte) (*Container, error) {
	if !IsCompoundFile(data) {
		return nil, fmt.Errorf("%w: bad signature", ErrNotACompoundFile)
	}

	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotACompoundFile, err)
	}

	c := &Container{
		streams:  make(map[string][]byte),
		storages: make(map[string]bool),
	}
	for {
		entry, err := doc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotACompoundFile, err)
		}
		name := strings.Join(append(append([]string{}, entry.Path...), entry.Name), "/")
		if entry.FileInfo().IsDir() {
			c.storages[name] = true
			continue
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(doc); err != nil {
			return nil, fmt.Errorf("%w: failed to read stream %s: %w", ErrNotACompoundFile, name, err)
		}
		c.streams[name] = buf.Bytes()
	}

	if raw, ok := c.streams["FileHeader"]; ok {
		hdr, err := parseFileHeader(raw)
		if err != nil {
			c.HeaderErr = err
		} else {
			c.Header = hdr
			c.HasHeader = true
		}
	}
	if c.HasHeader && c.Header.Properties.Encrypted() {
		return nil, ErrEncrypted
	}
	return c, nil
}

// Stream returns the raw bytes of the named stream.
func (c *Container) Stream(name string) ([]byte, bool) {
	b, ok := c.streams[name]
	return b, ok
}

// StreamNames returns all stream paths in sorted order.
func (c *Container) StreamNames() []string {
	names := make([]string, 0, len(c.streams))
	for name := range c.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsDistributionDoc returns true if this is a distribution document (uses ViewText).
func (c *Container) IsDistributionDoc() bool {
	return c.HasHeader && c.Header.Properties.Distribution()
}

// Compressed reports whether section streams should be inflated. Without a
// readable FileHeader this is assumed.
func (c *Container) Compressed() bool {
	return !c.HasHeader || c.Header.Properties.Compressed()
}

// SectionStreams returns the body section stream names ordered by index.
func (c *Container) SectionStreams() ([]string, error) {
	storage := "BodyText"
	if c.IsDistributionDoc() {
		storage = "ViewText"
	}

	type section struct {
		name  string
		index int
	}
	var sections []section
	prefix := storage + "/Section"
	for name := range c.streams {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(rest)
		if err != nil || idx < 0 {
			continue
		}
		sections = append(sections, section{name: name, index: idx})
	}

	if len(sections) == 0 && !c.storages[storage] {
		return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, storage)
	}

	sort.Slice(sections, func(i, j int) bool { return sections[i].index < sections[j].index })
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.name
	}
	return names, nil
}
