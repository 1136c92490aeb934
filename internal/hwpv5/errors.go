package hwpv5

import (
	"errors"

	"github.com/hanpama/hwptext/internal/document"
)

var (
	// ErrNotACompoundFile is returned when the input is not an OLE compound file.
	ErrNotACompoundFile = errors.New("not a compound file")
	// ErrStreamNotFound is returned when the body text storage is absent.
	ErrStreamNotFound = document.ErrStreamNotFound
	// ErrEncrypted is returned for password protected documents.
	ErrEncrypted = errors.New("password encrypted documents are not supported")
	// ErrCorruptStream is returned when no decompression strategy accepts a stream.
	ErrCorruptStream = errors.New("corrupt stream")
	// ErrStreamTooLarge is returned when a stream inflates past the configured limit.
	ErrStreamTooLarge = document.ErrStreamTooLarge
	// ErrInvalidText is returned for a text record that is not valid UTF-16LE.
	ErrInvalidText = errors.New("invalid text record")
)
