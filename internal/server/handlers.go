package server

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ironsheep/pgm-stego/internal/config"
	"github.com/ironsheep/pgm-stego/internal/pipeline"
	"github.com/ironsheep/pgm-stego/internal/raster"
	"github.com/ironsheep/pgm-stego/internal/stego"
	"go.uber.org/zap"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "stego_embed").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Info("tool failed",
			zap.String("tool", params.Name),
			zap.String("kind", string(raster.KindOf(err))),
			zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "stego_info":
		return s.handleInfo(args)
	case "stego_embed":
		return s.handleEmbed(args)
	case "stego_extract":
		return s.handleExtract(args)
	case "stego_run":
		return s.handleRun(args)
	case "stego_compare":
		return s.handleCompare(args)
	case "stego_preview":
		return s.handlePreview(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return fmt.Errorf("missing arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func formatOrDefault(s string, def raster.Format) (raster.Format, error) {
	if s == "" {
		return def, nil
	}
	return raster.ParseFormat(s)
}

// InfoResult describes a raster file.
type InfoResult struct {
	raster.Header
	FileSizeBytes int64 `json:"file_size_bytes"`

	// MatchesServer reports whether the raster has the dimensions this server accepts.
	MatchesServer bool `json:"matches_server"`
}

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	hdr, err := raster.ReadHeaderFile(a.Path)
	if err != nil {
		return nil, err
	}
	stat, err := os.Stat(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &InfoResult{
		Header:        hdr,
		FileSizeBytes: stat.Size(),
		MatchesServer: hdr.Dims == s.dims,
	}, nil
}

type embedArgs struct {
	Cover  string `json:"cover"`
	Secret string `json:"secret"`
	Output string `json:"output"`
	Format string `json:"format"`
}

func (s *Server) handleEmbed(args json.RawMessage) (interface{}, error) {
	var a embedArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" || raster.SamePath(a.Output, a.Cover) || raster.SamePath(a.Output, a.Secret) {
		return nil, fmt.Errorf("output must be set and differ from cover and secret")
	}
	format, err := formatOrDefault(a.Format, raster.FormatBinary)
	if err != nil {
		return nil, err
	}

	cover, err := s.cache.Load(a.Cover, s.dims)
	if err != nil {
		return nil, &pipeline.StageError{Stage: pipeline.StageDecodeCover, Err: err}
	}
	secret, err := s.cache.Load(a.Secret, s.dims)
	if err != nil {
		return nil, &pipeline.StageError{Stage: pipeline.StageDecodeSecret, Err: err}
	}

	defer s.cache.Evict(a.Output)
	return pipeline.EmbedImages(cover, secret, a.Output, format)
}

type extractArgs struct {
	Stego  string `json:"stego"`
	Output string `json:"output"`
	Format string `json:"format"`
}

func (s *Server) handleExtract(args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" || raster.SamePath(a.Output, a.Stego) {
		return nil, fmt.Errorf("output must be set and differ from stego")
	}
	format, err := formatOrDefault(a.Format, raster.FormatText)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Stego, s.dims)
	if err != nil {
		return nil, &pipeline.StageError{Stage: pipeline.StageDecodeStego, Err: err}
	}

	defer s.cache.Evict(a.Output)
	return pipeline.ExtractImage(img, a.Output, format)
}

type runArgs struct {
	Cover     string `json:"cover"`
	Secret    string `json:"secret"`
	Stego     string `json:"stego"`
	Recovered string `json:"recovered"`
}

func (s *Server) handleRun(args json.RawMessage) (interface{}, error) {
	var a runArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cfg := config.Config{
		Dims:      s.dims,
		Cover:     a.Cover,
		Secret:    a.Secret,
		Stego:     a.Stego,
		Recovered: a.Recovered,
	}
	defer s.cache.Evict(a.Stego)
	defer s.cache.Evict(a.Recovered)
	return pipeline.Run(cfg, s.log)
}

type compareArgs struct {
	A string `json:"a"`
	B string `json:"b"`
}

func (s *Server) handleCompare(args json.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	imgA, err := s.cache.Load(a.A, s.dims)
	if err != nil {
		return nil, err
	}
	imgB, err := s.cache.Load(a.B, s.dims)
	if err != nil {
		return nil, err
	}
	return stego.Compare(imgA, imgB)
}

type previewArgs struct {
	Path    string  `json:"path"`
	Scale   float64 `json:"scale"`
	Extract bool    `json:"extract"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path, s.dims)
	if err != nil {
		return nil, err
	}
	if a.Extract {
		if img, err = stego.Extract(img); err != nil {
			return nil, err
		}
	}
	return raster.PreviewBase64(img, a.Scale)
}
