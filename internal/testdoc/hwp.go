package testdoc

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"encoding/binary"
	"strconv"
	"unicode/utf16"
)

// UTF16 encodes s as UTF-16LE without a BOM.
func UTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = binary.LittleEndian.AppendUint16(out, u)
	}
	return out
}

// Record encodes one record header and payload. Payloads of 4095 bytes or
// more use the extended size field.
func Record(tag, level uint16, payload []byte) []byte {
	size := uint32(len(payload))
	header := uint32(tag&0x3ff) | uint32(level&0x3ff)<<10
	var out []byte
	if size >= 0xfff {
		out = binary.LittleEndian.AppendUint32(out, header|0xfff<<20)
		out = binary.LittleEndian.AppendUint32(out, size)
	} else {
		out = binary.LittleEndian.AppendUint32(out, header|size<<20)
	}
	return append(out, payload...)
}

// Records concatenates encoded records.
func Records(recs ...[]byte) []byte {
	return bytes.Join(recs, nil)
}

// Deflate compresses b as a raw deflate stream.
func Deflate(b []byte) []byte {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	w.Write(b)
	w.Close()
	return buf.Bytes()
}

// FileHeader builds a FileHeader stream for version 5.0.3.0 with props.
func FileHeader(props uint32) []byte {
	out := make([]byte, 256)
	copy(out, "HWP Document File")
	binary.LittleEndian.PutUint32(out[32:], 5<<24|3<<8)
	binary.LittleEndian.PutUint32(out[36:], props)
	return out
}

// HWP builds a compound file with the given body sections stored as
// BodyText/Section0..N in order, plus a FileHeader with props when
// withHeader is set.
func HWP(withHeader bool, props uint32, sections ...[]byte) []byte {
	streams := map[string][]byte{}
	if withHeader {
		streams["FileHeader"] = FileHeader(props)
	}
	for i, s := range sections {
		streams["BodyText/Section"+strconv.Itoa(i)] = s
	}
	return CompoundFile(streams)
}

// Part is one member of an HWPX archive.
type Part struct {
	Name string
	Body string
}

// HWPX writes parts into a zip archive in order. The mimetype part is
// stored uncompressed as the format requires.
func HWPX(parts ...Part) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		method := zip.Deflate
		if p.Name == "mimetype" {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: p.Name, Method: method})
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(p.Body)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Section wraps paragraph XML in an hs:sec root element.
func Section(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<hs:sec xmlns:hs="http://www.hancom.co.kr/hwpml/2011/section" xmlns:hp="http://www.hancom.co.kr/hwpml/2011/paragraph">` +
		body + `</hs:sec>`
}

// Para returns an hp:p element with one run holding text.
func Para(text string) string {
	return `<hp:p><hp:run><hp:t>` + text + `</hp:t></hp:run></hp:p>`
}
