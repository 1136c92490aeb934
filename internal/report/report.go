// Package report formats extraction results for terminals and pipelines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hanpama/hwptext"
)

const (
	statusFound   = "found"
	statusMissing = "MISSING"
)

// Text writes the extracted text followed by a newline.
func Text(w io.Writer, res *hwptext.Result) error {
	_, err := fmt.Fprintln(w, res.Text)
	return err
}

// JSON writes v as indented JSON. Non-ASCII text is written verbatim.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Summary writes the statistics of res and, when keywords were requested,
// a keyword status table.
func Summary(w io.Writer, name string, res *hwptext.Result) error {
	stats := &Table{
		Rows: [][]string{
			{"file", name},
			{"format", formatLabel(res)},
			{"sections", strconv.Itoa(res.Sections)},
			{"characters", strconv.Itoa(res.CharCount)},
			{"korean", fmt.Sprintf("%d (%s)", res.KoreanCharCount, ratio(res.KoreanCharCount, res.CharCount))},
		},
	}
	if res.SkippedStreams > 0 || res.SkippedRecords > 0 {
		stats.Rows = append(stats.Rows,
			[]string{"skipped", fmt.Sprintf("%d streams, %d records", res.SkippedStreams, res.SkippedRecords)})
	}
	if _, err := io.WriteString(w, stats.Render()); err != nil {
		return err
	}

	if len(res.FoundKeywords)+len(res.MissingKeywords) == 0 {
		return nil
	}
	_, err := io.WriteString(w, Keywords(res).Render())
	return err
}

// Keywords builds the keyword status table of res, found keywords first.
func Keywords(res *hwptext.Result) *Table {
	t := &Table{Header: []string{"keyword", "status"}}
	for _, kw := range res.FoundKeywords {
		t.Rows = append(t.Rows, []string{kw, statusFound})
	}
	for _, kw := range res.MissingKeywords {
		t.Rows = append(t.Rows, []string{kw, statusMissing})
	}
	return t
}

// Batch writes one table row per file of a batch extraction.
func Batch(w io.Writer, results []hwptext.FileResult) error {
	t := &Table{Header: []string{"file", "format", "chars", "korean", "missing", "error"}}
	for _, fr := range results {
		if fr.Err != nil {
			t.Rows = append(t.Rows, []string{fr.Path, "", "", "", "", fr.Err.Error()})
			continue
		}
		res := fr.Result
		t.Rows = append(t.Rows, []string{
			fr.Path,
			string(res.Format),
			strconv.Itoa(res.CharCount),
			strconv.Itoa(res.KoreanCharCount),
			strings.Join(res.MissingKeywords, "\n"),
			"",
		})
	}
	_, err := io.WriteString(w, t.Render())
	return err
}

func formatLabel(res *hwptext.Result) string {
	if res.Version == "" {
		return string(res.Format)
	}
	return fmt.Sprintf("%s %s", res.Format, res.Version)
}

func ratio(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}
