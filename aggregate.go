package hwptext

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hanpama/hwptext/internal/document"
)

// cellDelimiter separates table cells in the output text.
const cellDelimiter = "\t"

// Result is the text of a document and the statistics computed over it.
// FoundKeywords and MissingKeywords partition the requested keyword set.
type Result struct {
	Text            string   `json:"text"`
	CharCount       int      `json:"char_count"`
	KoreanCharCount int      `json:"korean_char_count"`
	FoundKeywords   []string `json:"found_keywords"`
	MissingKeywords []string `json:"missing_keywords"`

	Format         Format `json:"format,omitempty"`
	Version        string `json:"version,omitempty"`
	Sections       int    `json:"sections"`
	SkippedStreams int    `json:"skipped_streams"`
	SkippedRecords int    `json:"skipped_records"`
}

// ContainsKorean reports whether the text has at least one Hangul code point.
func (r *Result) ContainsKorean() bool {
	return r.KoreanCharCount > 0
}

// Passed reports whether every requested keyword was found.
func (r *Result) Passed() bool {
	return len(r.MissingKeywords) == 0
}

// Aggregate joins fragments into text and computes statistics over it.
//
// Fragments are joined with "\n". A cell boundary turns the separator before
// the next fragment into a single tab; runs of boundaries collapse and never
// produce a leading or trailing delimiter.
func Aggregate(frags []document.Fragment, keywords []string) *Result {
	var sb strings.Builder
	boundary := false
	for _, f := range frags {
		if f.IsBoundary() {
			boundary = true
			continue
		}
		if f.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			if boundary {
				sb.WriteString(cellDelimiter)
			} else {
				sb.WriteByte('\n')
			}
		}
		boundary = false
		sb.WriteString(f.Text)
	}

	text := strings.TrimSpace(sb.String())
	found, missing := MatchKeywords(text, keywords)
	return &Result{
		Text:            text,
		CharCount:       utf8.RuneCountInString(text),
		KoreanCharCount: CountKorean(text),
		FoundKeywords:   found,
		MissingKeywords: missing,
	}
}

// Hangul covers the Hangul syllable and jamo blocks.
var Hangul = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x1100, Hi: 0x11ff, Stride: 1}, // Hangul Jamo
		{Lo: 0x3130, Hi: 0x318f, Stride: 1}, // Hangul Compatibility Jamo
		{Lo: 0xa960, Hi: 0xa97f, Stride: 1}, // Hangul Jamo Extended-A
		{Lo: 0xac00, Hi: 0xd7a3, Stride: 1}, // Hangul Syllables
		{Lo: 0xd7b0, Hi: 0xd7ff, Stride: 1}, // Hangul Jamo Extended-B
	},
}

// CountKorean counts the code points of s in the Hangul blocks.
func CountKorean(s string) int {
	n := 0
	for _, r := range s {
		if unicode.Is(Hangul, r) {
			n++
		}
	}
	return n
}

// MatchKeywords partitions the distinct keywords into those that occur in
// text and those that do not. Matching is case-sensitive and exact. Both
// results are sorted and never nil.
func MatchKeywords(text string, keywords []string) (found, missing []string) {
	uniq := slices.Clone(keywords)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)

	found = []string{}
	missing = []string{}
	for _, kw := range uniq {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		} else {
			missing = append(missing, kw)
		}
	}
	return found, missing
}
