package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/hwptext/internal/testdoc"
)

func writeDocs(t *testing.T) (hwp, hwpx string) {
	t.Helper()
	dir := t.TempDir()

	section := testdoc.Records(testdoc.Record(67, 0, testdoc.UTF16("계약번호 12345")))
	hwp = filepath.Join(dir, "contract.hwp")
	require.NoError(t, os.WriteFile(hwp, testdoc.HWP(true, 0x1, testdoc.Deflate(section)), 0o644))

	hwpx = filepath.Join(dir, "memo.hwpx")
	require.NoError(t, os.WriteFile(hwpx, testdoc.HWPX(
		testdoc.Part{Name: "mimetype", Body: "application/hwp+zip"},
		testdoc.Part{Name: "Contents/section0.xml", Body: testdoc.Section(testdoc.Para("금액 표"))},
	), 0o644))
	return hwp, hwpx
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunText(t *testing.T) {
	hwp, _ := writeDocs(t)
	code, out, _ := runCLI(t, hwp)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "계약번호 12345\n", out)
}

func TestRunJSON(t *testing.T) {
	hwp, _ := writeDocs(t)
	code, out, _ := runCLI(t, "-json", "-keywords", "계약,금액", hwp)
	assert.Equal(t, exitOK, code)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []any{"계약"}, res["found_keywords"])
	assert.Equal(t, []any{"금액"}, res["missing_keywords"])
}

func TestRunFailMissing(t *testing.T) {
	hwp, _ := writeDocs(t)
	code, out, _ := runCLI(t, "-summary", "-fail-missing", "-keywords", "계약,금액", hwp)
	assert.Equal(t, exitMissing, code)
	assert.Contains(t, out, "MISSING")

	code, _, _ = runCLI(t, "-fail-missing", "-keywords", "계약", hwp)
	assert.Equal(t, exitOK, code)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.hwp")
	require.NoError(t, os.WriteFile(junk, []byte("junk"), 0o644))

	code, _, errOut := runCLI(t, junk)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "Error reading file")

	code, _, _ = runCLI(t)
	assert.Equal(t, exitError, code)

	code, _, _ = runCLI(t, "-format", "doc", junk)
	assert.Equal(t, exitError, code)
}

func TestRunForcedFormat(t *testing.T) {
	_, hwpx := writeDocs(t)
	code, _, _ := runCLI(t, "-format", "hwp", hwpx)
	assert.Equal(t, exitError, code)

	code, out, _ := runCLI(t, "-format", "hwpx", hwpx)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "금액 표\n", out)

	code, out, _ = runCLI(t, "-format", "hwpx", "-j", "2", hwpx, hwpx)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "==> "+hwpx+" <==\n금액 표\n==> "+hwpx+" <==\n금액 표\n", out)
}

func TestRunForcedFormatSizeLimit(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.hwp")
	require.NoError(t, os.WriteFile(big, bytes.Repeat([]byte{0}, 1<<20+1), 0o644))
	cfgPath := filepath.Join(dir, "hwpcat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_file_mb: 1\n"), 0o644))

	code, _, errOut := runCLI(t, "-config", cfgPath, "-format", "hwp", big)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "too large")

	hwp, _ := writeDocs(t)
	code, _, errOut = runCLI(t, "-config", cfgPath, "-format", "hwp", "-j", "2", big, hwp)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "Error reading "+big)
	assert.Contains(t, errOut, "too large")
}

func TestRunBatch(t *testing.T) {
	hwp, hwpx := writeDocs(t)
	outPath := filepath.Join(t.TempDir(), "out.json")

	code, _, _ := runCLI(t, "-json", "-j", "2", "-o", outPath, "-keywords", "금액", "-fail-missing", hwp, hwpx)
	assert.Equal(t, exitMissing, code)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var entries []batchEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, hwp, entries[0].Path)
	assert.Equal(t, []string{"금액"}, entries[0].Result.MissingKeywords)
	assert.Equal(t, []string{"금액"}, entries[1].Result.FoundKeywords)

	code, out, _ := runCLI(t, hwp, hwpx)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "==> "+hwpx+" <==\n금액 표\n")

	code, out, _ = runCLI(t, "-summary", hwp, filepath.Join(t.TempDir(), "missing.hwp"))
	assert.Equal(t, exitError, code)
	assert.Contains(t, out, "contract.hwp")
}

func TestRunConfigFile(t *testing.T) {
	hwp, _ := writeDocs(t)
	cfgPath := filepath.Join(t.TempDir(), "hwpcat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("keywords: [없음]\nfail_missing: true\n"), 0o644))

	code, _, _ := runCLI(t, "-config", cfgPath, hwp)
	assert.Equal(t, exitMissing, code)

	// flags take precedence over the file
	code, _, _ = runCLI(t, "-config", cfgPath, "-keywords", "계약", hwp)
	assert.Equal(t, exitOK, code)
}
