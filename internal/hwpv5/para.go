package hwpv5

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/hanpama/hwptext/internal/document"
)

const (
	paraTextCodeUnusable      uint16 = 0
	paraTextCodeReserved1     uint16 = 1
	paraTextCodeSectionColDef uint16 = 2 // 구역 정의/단 정의
	paraTextCodeFieldStart    uint16 = 3 // 필드 시작
	paraTextCodeFieldEnd      uint16 = 4 // 필드 끝
	paraTextCodeReserved5     uint16 = 5
	paraTextCodeReserved6     uint16 = 6
	paraTextCodeReserved7     uint16 = 7
	paraTextCodeTitleMark     uint16 = 8
	paraTextCodeTab           uint16 = 9
	paraTextCodeLineBreak     uint16 = 10 // 한 줄 끝
	paraTextCodeGsoTable      uint16 = 11 // 그리기 개체/표
	paraTextCodeReserved12    uint16 = 12
	paraTextCodeParaBreak     uint16 = 13 // 문단 끝
	paraTextCodeReserved14    uint16 = 14
	paraTextCodeHiddenComment uint16 = 15 // 숨은 설명
	paraTextCodeHeaderFooter  uint16 = 16 // 머리말/꼬리말
	paraTextCodeFootnote      uint16 = 17 // 각주/미주
	paraTextCodeAutoNumber    uint16 = 18
	paraTextCodeReserved19    uint16 = 19
	paraTextCodeReserved20    uint16 = 20
	paraTextCodePageControl   uint16 = 21
	paraTextCodeBookmark      uint16 = 22 // 책갈피/찾아보기 표식
	paraTextCodeOverlap       uint16 = 23 // 덧말/글자 겹침
	paraTextCodeHyphen        uint16 = 24
	paraTextCodeBundleSpace   uint16 = 30 // 묶음 빈칸
	paraTextCodeFixedSpace    uint16 = 31 // 고정폭 빈칸

	// Extended and inline controls occupy 8 WCHARs; the code itself is the first.
	paraTextControlTail = 14
)

// DecodeRecord turns one record into a fragment according to table.
// ok is false when the record contributes nothing.
func DecodeRecord(rec Record, table TagTable) (frag document.Fragment, ok bool, err error) {
	var text string
	switch table.Kind(rec.Tag) {
	case KindPlainText:
		text, err = decodePlainText(rec.Payload)
	case KindParaText:
		text, err = decodeParaText(rec.Payload)
	case KindTableBoundary:
		return document.Boundary(), true, nil
	default:
		return document.Fragment{}, false, nil
	}
	if err != nil {
		return document.Fragment{}, false, fmt.Errorf("tag %d: %w", rec.Tag, err)
	}

	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return document.Fragment{}, false, nil
	}
	return document.Fragment{Text: text}, true, nil
}

// decodeUTF16 decodes little-endian UTF-16, rejecting odd lengths and
// unpaired surrogates.
func decodeUTF16(b []byte) ([]rune, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("%w: odd payload length %d", ErrInvalidText, len(b))
	}
	out := make([]rune, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i:])
		if !utf16.IsSurrogate(rune(u)) {
			out = append(out, rune(u))
			continue
		}
		if u >= 0xdc00 || i+4 > len(b) {
			return nil, fmt.Errorf("%w: unpaired surrogate at offset %d", ErrInvalidText, i)
		}
		lo := binary.LittleEndian.Uint16(b[i+2:])
		r := utf16.DecodeRune(rune(u), rune(lo))
		if r == unicode.ReplacementChar {
			return nil, fmt.Errorf("%w: unpaired surrogate at offset %d", ErrInvalidText, i)
		}
		out = append(out, r)
		i += 2
	}
	return out, nil
}

var plainTextCleaner = transform.Chain(
	runes.Map(func(r rune) rune {
		switch r {
		case '\r', '\v', '\f':
			return '\n'
		}
		if r < 0x20 && r != '\n' && r != '\t' && r != 0 {
			return ' '
		}
		return r
	}),
	runes.Remove(runes.Predicate(func(r rune) bool {
		if r == '\n' || r == '\t' || r == ' ' {
			return false
		}
		return !unicode.IsPrint(r) && !unicode.IsSpace(r)
	})),
)

// decodePlainText keeps newlines and tabs, turns other C0 controls into
// spaces and drops NUL and anything unprintable.
func decodePlainText(b []byte) (string, error) {
	rs, err := decodeUTF16(b)
	if err != nil {
		return "", err
	}
	s, _, err := transform.String(plainTextCleaner, string(rs))
	if err != nil {
		return "", fmt.Errorf("clean text: %w", err)
	}
	return s, nil
}

// decodeParaText decodes a PARA_TEXT payload, resolving control codes.
func decodeParaText(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("%w: odd payload length %d", ErrInvalidText, len(b))
	}

	var sb strings.Builder
	var run []byte
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		rs, err := decodeUTF16(run)
		if err != nil {
			return err
		}
		for _, r := range rs {
			if unicode.IsPrint(r) || unicode.IsSpace(r) {
				sb.WriteRune(r)
			}
		}
		run = nil
		return nil
	}

	for i := 0; i+2 <= len(b); {
		code := binary.LittleEndian.Uint16(b[i:])
		if code >= 32 {
			if run == nil {
				run = b[i : i+2]
			} else {
				run = run[:len(run)+2]
			}
			i += 2
			continue
		}

		if err := flush(); err != nil {
			return "", err
		}
		i += 2

		switch code {
		case paraTextCodeUnusable, paraTextCodeReserved1:

		case paraTextCodeTab:
			sb.WriteByte('\t')
			i += paraTextControlTail

		case paraTextCodeLineBreak, paraTextCodeParaBreak:
			sb.WriteByte('\n')

		case paraTextCodeHyphen:
			sb.WriteByte('-')

		case paraTextCodeBundleSpace, paraTextCodeFixedSpace:
			sb.WriteByte(' ')

		case paraTextCodeSectionColDef, paraTextCodeFieldStart, paraTextCodeFieldEnd,
			paraTextCodeReserved5, paraTextCodeReserved6, paraTextCodeReserved7,
			paraTextCodeTitleMark, paraTextCodeGsoTable, paraTextCodeReserved12,
			paraTextCodeReserved14, paraTextCodeHiddenComment, paraTextCodeHeaderFooter,
			paraTextCodeFootnote, paraTextCodeAutoNumber, paraTextCodeReserved19,
			paraTextCodeReserved20, paraTextCodePageControl, paraTextCodeBookmark,
			paraTextCodeOverlap:
			i += paraTextControlTail

		default:
			// 25-29 are reserved single-WCHAR char controls.
		}
	}
	if err := flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
