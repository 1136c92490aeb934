package hwpx

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/hwptext/internal/document"
	"github.com/hanpama/hwptext/internal/testdoc"
)

const versionXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<hv:HCFVersion xmlns:hv="http://www.hancom.co.kr/hwpml/2011/version" tagetApplication="WORDPROCESSOR" major="5" minor="1" micro="1" buildNumber="0" os="1" xmlVersion="1.5"/>`

func mimetype() testdoc.Part {
	return testdoc.Part{Name: "mimetype", Body: "application/hwp+zip"}
}

func scanString(t *testing.T, xmlText string) []document.Fragment {
	t.Helper()
	s := NewContentScanner(io.NopCloser(bytes.NewReader([]byte(xmlText))))
	var frags []document.Fragment
	for {
		f, err := s.Next()
		if err == io.EOF {
			return frags
		}
		require.NoError(t, err)
		frags = append(frags, f)
	}
}

func TestOpen(t *testing.T) {
	t.Run("version and ordered sections", func(t *testing.T) {
		data := testdoc.HWPX(
			mimetype(),
			testdoc.Part{Name: "version.xml", Body: versionXML},
			testdoc.Part{Name: "Contents/section10.xml", Body: testdoc.Section("")},
			testdoc.Part{Name: "Contents/section2.xml", Body: testdoc.Section("")},
			testdoc.Part{Name: "Contents/section0.xml", Body: testdoc.Section("")},
			testdoc.Part{Name: "Contents/header.xml", Body: "<x/>"},
		)
		r, err := Open(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		assert.Equal(t, Version{Major: 5, Minor: 1, Micro: 1, XMLVersion: "1.5"}, r.Version())
		assert.Equal(t, "5.1.1.0", r.Version().String())

		var names []string
		for _, s := range r.Sections() {
			names = append(names, s.Name)
		}
		assert.Equal(t, []string{"Contents/section0.xml", "Contents/section2.xml", "Contents/section10.xml"}, names)
	})

	t.Run("not a zip", func(t *testing.T) {
		data := []byte("definitely not a zip archive")
		_, err := Open(bytes.NewReader(data), int64(len(data)))
		assert.ErrorIs(t, err, ErrNotAnArchive)
	})

	t.Run("wrong mimetype", func(t *testing.T) {
		data := testdoc.HWPX(
			testdoc.Part{Name: "mimetype", Body: "application/epub+zip"},
			testdoc.Part{Name: "Contents/section0.xml", Body: testdoc.Section("")},
		)
		_, err := Open(bytes.NewReader(data), int64(len(data)))
		assert.ErrorIs(t, err, ErrNotAnArchive)
	})

	t.Run("missing mimetype and version", func(t *testing.T) {
		data := testdoc.HWPX(testdoc.Part{Name: "Contents/section0.xml", Body: testdoc.Section("")})
		r, err := Open(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		assert.Equal(t, "", r.Version().String())
	})

	t.Run("no sections", func(t *testing.T) {
		data := testdoc.HWPX(mimetype(), testdoc.Part{Name: "Contents/header.xml", Body: "<x/>"})
		_, err := Open(bytes.NewReader(data), int64(len(data)))
		assert.ErrorIs(t, err, ErrStreamNotFound)
	})
}

func TestContentScanner(t *testing.T) {
	t.Run("paragraphs", func(t *testing.T) {
		frags := scanString(t, testdoc.Section(testdoc.Para("첫 문단")+testdoc.Para("둘째 문단")))
		assert.Equal(t, []document.Fragment{{Text: "첫 문단"}, {Text: "둘째 문단"}}, frags)
	})

	t.Run("runs join inside a paragraph", func(t *testing.T) {
		frags := scanString(t, testdoc.Section(
			`<hp:p><hp:run><hp:t>계약</hp:t></hp:run><hp:run><hp:t>번호</hp:t><hp:lineBreak/></hp:run><hp:run><hp:t>A<hp:tab/>B</hp:t></hp:run></hp:p>`,
		))
		assert.Equal(t, []document.Fragment{{Text: "계약번호\nA\tB"}}, frags)
	})

	t.Run("text outside t is ignored", func(t *testing.T) {
		frags := scanString(t, testdoc.Section(`<hp:p><hp:run><hp:script>x+y</hp:script><hp:t>본문</hp:t></hp:run></hp:p>`))
		assert.Equal(t, []document.Fragment{{Text: "본문"}}, frags)
	})

	t.Run("table cells", func(t *testing.T) {
		frags := scanString(t, testdoc.Section(
			`<hp:p><hp:run><hp:t>앞</hp:t><hp:tbl rowCnt="1" colCnt="2"><hp:tr>`+
				`<hp:tc><hp:subList>`+testdoc.Para("가")+`</hp:subList></hp:tc>`+
				`<hp:tc><hp:subList>`+testdoc.Para("나")+testdoc.Para("다")+`</hp:subList></hp:tc>`+
				`</hp:tr></hp:tbl></hp:run></hp:p>`+testdoc.Para("뒤"),
		))
		assert.Equal(t, []document.Fragment{
			{Text: "앞"},
			document.Boundary(),
			{Text: "가", TableCell: true},
			document.Boundary(),
			{Text: "나", TableCell: true},
			{Text: "다", TableCell: true},
			{Text: "뒤"},
		}, frags)
	})

	t.Run("bare text nodes", func(t *testing.T) {
		frags := scanString(t, `<w:doc xmlns:w="urn:x"><w:t>안녕</w:t></w:doc>`)
		assert.Equal(t, []document.Fragment{{Text: "안녕"}}, frags)
	})

	t.Run("euc-kr declaration", func(t *testing.T) {
		// "한" in EUC-KR
		body := []byte(`<?xml version="1.0" encoding="EUC-KR"?><p><t>`)
		body = append(body, 0xC7, 0xD1)
		body = append(body, []byte(`</t></p>`)...)
		frags := scanString(t, string(body))
		assert.Equal(t, []document.Fragment{{Text: "한"}}, frags)
	})

	t.Run("malformed", func(t *testing.T) {
		s := NewContentScanner(io.NopCloser(bytes.NewReader([]byte(`<p><t>열림`))))
		var err error
		for err == nil {
			_, err = s.Next()
		}
		assert.ErrorIs(t, err, ErrMalformedXML)
	})
}

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("two parts", func(t *testing.T) {
		data := testdoc.HWPX(
			mimetype(),
			testdoc.Part{Name: "Contents/section0.xml", Body: testdoc.Section(testdoc.Para("안녕"))},
			testdoc.Part{Name: "Contents/section1.xml", Body: testdoc.Section(testdoc.Para("안녕"))},
		)
		frags, stats, err := Extract(ctx, data, Options{})
		require.NoError(t, err)
		assert.Equal(t, []document.Fragment{{Text: "안녕"}, {Text: "안녕"}}, frags)
		assert.Equal(t, 2, stats.Sections)
	})

	t.Run("one malformed part is skipped", func(t *testing.T) {
		data := testdoc.HWPX(
			mimetype(),
			testdoc.Part{Name: "Contents/section0.xml", Body: testdoc.Section(testdoc.Para("깨짐")) + "<unclosed>"},
			testdoc.Part{Name: "Contents/section1.xml", Body: testdoc.Section(testdoc.Para("정상"))},
		)
		frags, stats, err := Extract(ctx, data, Options{})
		require.NoError(t, err)
		assert.Equal(t, []document.Fragment{{Text: "정상"}}, frags)
		assert.Equal(t, 1, stats.SkippedStreams)
	})

	t.Run("all parts malformed", func(t *testing.T) {
		data := testdoc.HWPX(
			mimetype(),
			testdoc.Part{Name: "Contents/section0.xml", Body: "<a><b></a>"},
		)
		_, _, err := Extract(ctx, data, Options{})
		assert.ErrorIs(t, err, ErrMalformedXML)
	})

	t.Run("oversized part is skipped", func(t *testing.T) {
		huge := testdoc.Section(testdoc.Para(strings.Repeat("가", 64<<10)))
		data := testdoc.HWPX(
			mimetype(),
			testdoc.Part{Name: "Contents/section0.xml", Body: huge},
			testdoc.Part{Name: "Contents/section1.xml", Body: testdoc.Section(testdoc.Para("작은 문단"))},
		)
		frags, stats, err := Extract(ctx, data, Options{MaxPartSize: 16 << 10})
		require.NoError(t, err)
		assert.Equal(t, []document.Fragment{{Text: "작은 문단"}}, frags)
		assert.Equal(t, 1, stats.SkippedStreams)
	})

	t.Run("all parts oversized", func(t *testing.T) {
		huge := testdoc.Section(testdoc.Para(strings.Repeat("가", 8<<20)))
		data := testdoc.HWPX(mimetype(), testdoc.Part{Name: "Contents/section0.xml", Body: huge})
		_, stats, err := Extract(ctx, data, Options{MaxPartSize: 1 << 20})
		assert.ErrorIs(t, err, ErrStreamTooLarge)
		assert.NotErrorIs(t, err, ErrMalformedXML)
		assert.Equal(t, 1, stats.SkippedStreams)
	})

	t.Run("part at the limit", func(t *testing.T) {
		body := testdoc.Section(testdoc.Para("경계"))
		data := testdoc.HWPX(mimetype(), testdoc.Part{Name: "Contents/section0.xml", Body: body})
		frags, _, err := Extract(ctx, data, Options{MaxPartSize: int64(len(body))})
		require.NoError(t, err)
		assert.Equal(t, []document.Fragment{{Text: "경계"}}, frags)
	})
}

func TestLimitedReadCloser(t *testing.T) {
	// The zip header can understate the inflated size; the read count is what
	// stops the scan.
	body := testdoc.Section(testdoc.Para(strings.Repeat("가", 4096)))
	s := NewContentScanner(&limitedReadCloser{
		rc:        io.NopCloser(strings.NewReader(body)),
		remaining: 1024,
	})
	var err error
	for err == nil {
		_, err = s.Next()
	}
	assert.ErrorIs(t, err, ErrStreamTooLarge)
	assert.NotErrorIs(t, err, ErrMalformedXML)

	l := &limitedReadCloser{rc: io.NopCloser(strings.NewReader("abcd")), remaining: 4}
	b, err := io.ReadAll(l)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(b))
	require.NoError(t, l.Close())
}
