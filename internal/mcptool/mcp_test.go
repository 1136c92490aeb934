package mcptool

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/hwptext"
	"github.com/hanpama/hwptext/internal/testdoc"
)

var testImpl = &mcp.Implementation{Name: "hwpmcp-test", Version: "0.1.0"}

func session(t *testing.T) *mcp.ClientSession {
	t.Helper()
	return sessionWith(t, hwptext.Config{})
}

func sessionWith(t *testing.T, cfg hwptext.Config) *mcp.ClientSession {
	t.Helper()
	cfg.Logger = slog.New(slog.DiscardHandler)
	srv := mcp.NewServer(testImpl, nil)
	Register(srv, hwptext.New(cfg))

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	s, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func callTool(t *testing.T, s *mcp.ClientSession, name string, args any) (string, error) {
	t.Helper()
	result, err := s.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return tc.Text, result.GetError()
}

func fixtures(t *testing.T) (hwp, hwpx string) {
	t.Helper()
	dir := t.TempDir()

	section := testdoc.Records(testdoc.Record(67, 0, testdoc.UTF16("계약번호 12345")))
	hwp = filepath.Join(dir, "contract.hwp")
	require.NoError(t, os.WriteFile(hwp, testdoc.HWP(true, 0x1, testdoc.Deflate(section)), 0o644))

	hwpx = filepath.Join(dir, "memo.bin")
	require.NoError(t, os.WriteFile(hwpx, testdoc.HWPX(
		testdoc.Part{Name: "Contents/section0.xml", Body: testdoc.Section(testdoc.Para("안녕"))},
	), 0o644))
	return hwp, hwpx
}

func TestExtractTool(t *testing.T) {
	s := session(t)
	hwp, hwpx := fixtures(t)

	text, err := callTool(t, s, "hwp_extract", map[string]any{
		"path":     hwp,
		"keywords": []string{"계약", "금액"},
	})
	require.NoError(t, err)

	var res hwptext.Result
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Equal(t, "계약번호 12345", res.Text)
	assert.Equal(t, 4, res.KoreanCharCount)
	assert.Equal(t, []string{"계약"}, res.FoundKeywords)
	assert.Equal(t, []string{"금액"}, res.MissingKeywords)

	text, err = callTool(t, s, "hwp_extract", map[string]any{"path": hwpx, "format": "hwpx"})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Equal(t, "안녕", res.Text)

	t.Run("errors", func(t *testing.T) {
		_, err := callTool(t, s, "hwp_extract", map[string]any{"path": hwpx, "format": "hwp"})
		assert.Error(t, err)

		_, err = callTool(t, s, "hwp_extract", map[string]any{"path": filepath.Join(t.TempDir(), "none.hwp")})
		assert.Error(t, err)
	})

	t.Run("forced format keeps size limit", func(t *testing.T) {
		small := sessionWith(t, hwptext.Config{MaxFileSize: 16})
		text, err := callTool(t, small, "hwp_extract", map[string]any{"path": hwpx, "format": "hwpx"})
		assert.Error(t, err)
		assert.Contains(t, text, "too large")
	})
}

func TestDetectTool(t *testing.T) {
	s := session(t)
	hwp, hwpx := fixtures(t)
	dir := t.TempDir()
	byName := filepath.Join(dir, "empty.hwpx")
	require.NoError(t, os.WriteFile(byName, nil, 0o644))
	unknown := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unknown, []byte("plain"), 0o644))

	tests := []struct {
		path   string
		format hwptext.Format
		method string
	}{
		{hwp, hwptext.FormatHWP, "signature"},
		{hwpx, hwptext.FormatHWPX, "signature"},
		{byName, hwptext.FormatHWPX, "extension"},
	}
	for _, tt := range tests {
		text, err := callTool(t, s, "hwp_detect", map[string]any{"path": tt.path})
		require.NoError(t, err, tt.path)

		var resp detectResp
		require.NoError(t, json.Unmarshal([]byte(text), &resp))
		assert.Equal(t, tt.format, resp.Format, tt.path)
		assert.Equal(t, tt.method, resp.Method, tt.path)
	}

	_, err := callTool(t, s, "hwp_detect", map[string]any{"path": unknown})
	assert.Error(t, err)
}
