package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/background-remover/internal/bgremove"
	bgerrors "github.com/ironsheep/background-remover/internal/errors"
	"github.com/ironsheep/background-remover/internal/imaging"
	"github.com/ironsheep/background-remover/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_remove_background").
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
// When the error carries a code (see internal/errors) the data field is an
// object with code, message and retryable; otherwise it is the error string.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", toolErrorData(err))
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/bgremove function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Color Operations
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_dominant_colors":
		return s.handleImageDominantColors(args)

	// Background Removal
	case "image_remove_background":
		return s.handleImageRemoveBackground(ctx, args)

	// Image Tools
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_resize":
		return s.handleImageResize(args)
	case "image_rotate":
		return s.handleImageRotate(args)
	case "image_convert":
		return s.handleImageConvert(args)
	case "image_compress":
		return s.handleImageCompress(args)
	case "image_favicons":
		return s.handleImageFavicons(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// ToolError is the data of a failed tool call whose error has a code.
type ToolError struct {
	Code      bgerrors.Code `json:"code"`
	Message   string        `json:"message"`
	Retryable bool          `json:"retryable"`
}

func toolErrorData(err error) interface{} {
	code := bgerrors.GetCode(err)
	if code == "" {
		return err.Error()
	}
	return ToolError{
		Code:      code,
		Message:   bgerrors.UserMessage(err),
		Retryable: bgerrors.Retryable(err),
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Color Operation Handlers ===

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type imageDominantColorsArgs struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func (s *Server) handleImageDominantColors(args json.RawMessage) (interface{}, error) {
	var a imageDominantColorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.DominantColors(img, a.Count)
}

// === Background Removal Handler ===

type imageRemoveBackgroundArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
	Filename    string `json:"filename"`
	OutputPath  string `json:"output_path"`
	bgremove.Overrides
}

// RemoveBackgroundResult describes a processed image.
type RemoveBackgroundResult struct {
	Filename         string  `json:"filename"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	ReferenceColor   string  `json:"reference_color"`
	BackgroundPixels int     `json:"background_pixels"`
	BackgroundPct    float64 `json:"background_percent"`
	MimeType         string  `json:"mime_type"`
	SizeBytes        int     `json:"size_bytes"`
	ImageBase64      string  `json:"image_base64,omitempty"`
	OutputPath       string  `json:"output_path,omitempty"`
}

func (s *Server) handleImageRemoveBackground(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageRemoveBackgroundArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts, err := s.cfg.Removal.Apply(a.Overrides)
	if err != nil {
		return nil, err
	}
	// Report unsupported options before reading any input.
	if _, err := opts.Validate(); err != nil {
		return nil, err
	}

	var data []byte
	filename := a.Filename
	switch {
	case a.Path != "":
		data, err = pipeline.ReadFile(a.Path, s.cfg.MaxFileSize())
		if err != nil {
			return nil, err
		}
		filename = a.Path
	case a.ImageBase64 != "":
		data, err = base64.StdEncoding.DecodeString(a.ImageBase64)
		if err != nil {
			return nil, bgerrors.Wrap(bgerrors.ErrCodeDecode, err, "image_base64 is not valid base64")
		}
	default:
		return nil, bgerrors.New(bgerrors.ErrCodeInvalidInput, "either path or image_base64 is required")
	}
	if filename == "" {
		filename = "image"
	}

	out, err := pipeline.Run(ctx, data, filename, pipeline.Options{
		Removal:     opts,
		MaxFileSize: s.cfg.MaxFileSize(),
		Remover:     s.remover,
	})
	if err != nil {
		return nil, err
	}

	result := &RemoveBackgroundResult{
		Filename:         out.Filename,
		Width:            out.Width,
		Height:           out.Height,
		ReferenceColor:   out.Reference.Hex(),
		BackgroundPixels: out.BackgroundPixels,
		BackgroundPct:    float64(out.BackgroundPixels) / float64(out.Width*out.Height) * 100,
		MimeType:         "image/png",
		SizeBytes:        out.Size,
	}

	if a.OutputPath == "" {
		result.ImageBase64 = base64.StdEncoding.EncodeToString(out.Data)
		return result, nil
	}

	path := a.OutputPath
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, out.Filename)
	}
	if err := pipeline.WriteFile(path, out.Data); err != nil {
		return nil, err
	}
	result.OutputPath = path
	return result, nil
}

// === Image Tool Handlers ===

type imageCropArgs struct {
	Path   string `json:"path"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X, a.Y, a.Width, a.Height)
}

type imageResizeArgs struct {
	Path       string `json:"path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	KeepAspect *bool  `json:"keep_aspect"`
}

func (s *Server) handleImageResize(args json.RawMessage) (interface{}, error) {
	var a imageResizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	keepAspect := true
	if a.KeepAspect != nil {
		keepAspect = *a.KeepAspect
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, a.Width, a.Height, keepAspect)
}

type imageRotateArgs struct {
	Path           string  `json:"path"`
	Angle          float64 `json:"angle"`
	FlipHorizontal bool    `json:"flip_horizontal"`
	FlipVertical   bool    `json:"flip_vertical"`
}

func (s *Server) handleImageRotate(args json.RawMessage) (interface{}, error) {
	var a imageRotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Rotate(img, a.Angle, a.FlipHorizontal, a.FlipVertical)
}

type imageConvertArgs struct {
	Path    string  `json:"path"`
	Format  string  `json:"format"`
	Quality float64 `json:"quality"`
}

func (s *Server) handleImageConvert(args json.RawMessage) (interface{}, error) {
	var a imageConvertArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Convert(img, a.Format, a.Quality)
}

type imageCompressArgs struct {
	Path      string   `json:"path"`
	Quality   *float64 `json:"quality"`
	MaxWidth  int      `json:"max_width"`
	MaxHeight int      `json:"max_height"`
}

func (s *Server) handleImageCompress(args json.RawMessage) (interface{}, error) {
	var a imageCompressArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	quality := imaging.DefaultQuality
	if a.Quality != nil {
		quality = *a.Quality
	}
	img, format, err := s.cache.LoadFormat(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Compress(img, format, quality, a.MaxWidth, a.MaxHeight)
}

func (s *Server) handleImageFavicons(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	icons, err := imaging.Favicons(img)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"favicons": icons}, nil
}
