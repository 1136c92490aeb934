package hwpv5

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	signatureText = "HWP Document File"

	// FileHeader field offsets.
	offVersion    = 32
	offProperties = 36
	offSecond     = 40
	offEncryptVer = 44
	offEnd        = 48
)

// Property bits of the FileHeader stream.
const (
	PropCompressed   uint32 = 1 << 0
	PropEncrypted    uint32 = 1 << 1
	PropDistribution uint32 = 1 << 2
	PropScript       uint32 = 1 << 3
	PropDRM          uint32 = 1 << 4
)

// Version stores the four-part HWP version number (MM.nn.PP.rr).
type Version struct {
	Major byte
	Minor byte
	Patch byte
	Rev   byte
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Rev)
}

// FileProperties is the property bit field of the FileHeader stream.
type FileProperties struct {
	Raw uint32
}

func (p FileProperties) has(bit uint32) bool { return p.Raw&bit != 0 }

func (p FileProperties) Compressed() bool   { return p.has(PropCompressed) }
func (p FileProperties) Encrypted() bool    { return p.has(PropEncrypted) }
func (p FileProperties) Distribution() bool { return p.has(PropDistribution) }

// FileHeader holds the leading fields of the 256-byte FileHeader stream.
type FileHeader struct {
	Signature      string
	Version        Version
	Properties     FileProperties
	SecondFlags    uint32
	EncryptVersion uint32
}

// parseFileHeader decodes the fixed fields of a FileHeader stream. Headers
// from old writers stop after the property field and are accepted.
func parseFileHeader(data []byte) (FileHeader, error) {
	var hdr FileHeader
	if len(data) < offSecond {
		return hdr, fmt.Errorf("file header too short: %d bytes", len(data))
	}

	hdr.Signature = string(bytes.TrimRight(data[:offVersion], "\x00"))
	if hdr.Signature != signatureText {
		return hdr, fmt.Errorf("unexpected signature %q", hdr.Signature)
	}

	ver := binary.LittleEndian.Uint32(data[offVersion:])
	hdr.Version = Version{
		Major: byte(ver >> 24),
		Minor: byte(ver >> 16),
		Patch: byte(ver >> 8),
		Rev:   byte(ver),
	}
	hdr.Properties.Raw = binary.LittleEndian.Uint32(data[offProperties:])

	if len(data) >= offEnd {
		hdr.SecondFlags = binary.LittleEndian.Uint32(data[offSecond:])
		hdr.EncryptVersion = binary.LittleEndian.Uint32(data[offEncryptVer:])
	}
	return hdr, nil
}
