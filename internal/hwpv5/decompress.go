package hwpv5

import (
	"bytes"
	"compress/flate"
	"errors"
	"fmt"
	"io"
)

// Strategy recovers the plain bytes of a stream. limit caps the output size.
type Strategy struct {
	Name string
	Fn   func(raw []byte, limit int64) ([]byte, error)
}

var (
	// RawDeflate inflates a headerless deflate stream.
	RawDeflate = Strategy{Name: "raw-deflate", Fn: inflateRaw}
	// Stored returns the bytes unchanged.
	Stored = Strategy{Name: "stored", Fn: stored}
)

// DefaultPolicy tries raw deflate and falls back to stored bytes.
func DefaultPolicy() []Strategy {
	return []Strategy{RawDeflate, Stored}
}

// Decompress applies policy in order and returns the first successful result.
func Decompress(raw []byte, limit int64, policy []Strategy) ([]byte, error) {
	var errs []error
	for _, s := range policy {
		out, err := s.Fn(raw, limit)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrStreamTooLarge) {
			return nil, err
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrCorruptStream, errors.Join(errs...))
}

func inflateRaw(raw []byte, limit int64) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(raw))
	defer fr.Close()

	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(fr, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate: %w", err)
	}
	if n > limit {
		return nil, fmt.Errorf("%w: inflated past %d bytes", ErrStreamTooLarge, limit)
	}
	return buf.Bytes(), nil
}

func stored(raw []byte, limit int64) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty stream")
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: %d bytes", ErrStreamTooLarge, len(raw))
	}
	return raw, nil
}
