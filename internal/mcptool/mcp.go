// Package mcptool exposes hwptext extraction as MCP tools.
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hanpama/hwptext"
)

// Register adds the hwp_extract and hwp_detect tools to srv.
func Register(srv *mcp.Server, ex *hwptext.Extractor) {
	registerExtractTool(srv, ex)
	registerDetectTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// addTool registers a tool whose arguments decode into Req and whose
// response is returned as JSON text content.
func addTool[Req any](srv *mcp.Server, tool *mcp.Tool, endpoint func(context.Context, *Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r Req
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		resp, err := endpoint(ctx, &r)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

// --- extract ---

type extractReq struct {
	Path     string   `json:"path"`
	Keywords []string `json:"keywords"`
	Format   string   `json:"format"`
}

func registerExtractTool(srv *mcp.Server, ex *hwptext.Extractor) {
	tool := &mcp.Tool{
		Name:        "hwp_extract",
		Description: "Extract plain text from an HWP or HWPX document and report character counts and which keywords occur in it.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Document file path"},
			"keywords": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Keywords to look for (case-sensitive)",
			},
			"format": map[string]any{
				"type":        "string",
				"enum":        []string{"hwp", "hwpx"},
				"description": "Force the input format instead of detecting it",
			},
		}, []string{"path"}),
	}

	addTool(srv, tool, func(ctx context.Context, r *extractReq) (any, error) {
		if r.Path == "" {
			return nil, errors.New("path is required")
		}
		format, err := hwptext.ParseFormat(r.Format)
		if err != nil {
			return nil, err
		}
		return ex.ExtractFileAs(ctx, r.Path, format, r.Keywords)
	})
}

// --- detect ---

type detectReq struct {
	Path string `json:"path"`
}

type detectResp struct {
	Format hwptext.Format `json:"format"`
	Method string         `json:"method"`
}

func registerDetectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "hwp_detect",
		Description: "Detect whether a file is an HWP (binary) or HWPX (zip) document from its signature, falling back to the extension.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to detect"},
		}, []string{"path"}),
	}

	addTool(srv, tool, func(_ context.Context, r *detectReq) (any, error) {
		return detect(r.Path)
	})
}

func detect(path string) (*detectResp, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 8)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if format, err := hwptext.Detect(head[:n]); err == nil {
		return &detectResp{Format: format, Method: "signature"}, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hwp":
		return &detectResp{Format: hwptext.FormatHWP, Method: "extension"}, nil
	case ".hwpx":
		return &detectResp{Format: hwptext.FormatHWPX, Method: "extension"}, nil
	}
	return nil, fmt.Errorf("%s: %w", path, hwptext.ErrUnknownFormat)
}
