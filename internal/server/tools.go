package server

import "github.com/ironsheep/background-remover/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func intProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file (PNG, JPEG, GIF, WebP, BMP) and return its dimensions, format, alpha and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Color Operations
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a specific pixel coordinate. Sampling the background is a good way to choose a reference color for background removal.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x":    intProperty("X coordinate (0-based, from left)"),
					"y":    intProperty("Y coordinate (0-based, from top)"),
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_dominant_colors",
			Description: "Extract the most common colors in the image, quantized to steps of 16.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
				},
				"required": []string{"path"},
			},
		},

		// Background Removal
		{
			Name: "image_remove_background",
			Description: "Remove a uniform background by color keying. Pixels within color_threshold of the reference color " +
				"(the top-left pixel unless set otherwise) become transparent or the replacement color. " +
				"Returns a PNG, base64-encoded unless output_path is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Image file contents, base64-encoded. Used when path is not given",
					},
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Original file name used to name the output when image_base64 is given",
					},
					"method": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"color", "ai", "manual"},
						"description": "Removal method. Only color is available; ai and manual are coming soon",
						"default":     "color",
					},
					"color_threshold": map[string]interface{}{
						"type":        "number",
						"minimum":     0,
						"maximum":     100,
						"description": "Sensitivity 0-100. 0 removes exact matches only, 100 removes everything. Default 30",
						"default":     30,
					},
					"replace_with": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"transparent", "color", "gradient"},
						"description": "What replaces the background. gradient is coming soon",
						"default":     "transparent",
					},
					"replacement_color": map[string]interface{}{
						"type":        "string",
						"description": "CSS color (#rgb, #rrggbb, rgb(r,g,b) or a name) used when replace_with is color. Default #ffffff",
					},
					"reference": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"top-left", "corners"},
						"description": "How the background color is sampled. corners averages the four corners",
						"default":     "top-left",
					},
					"reference_color": map[string]interface{}{
						"type":        "string",
						"description": "Explicit background color; overrides reference",
					},
					"soft_edge": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian radius in pixels used to feather the edge. 0 keeps hard edges",
						"default":     0,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Write the PNG here instead of returning it inline",
					},
				},
			},
		},

		// Image Tools
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"x":      intProperty("Left edge X coordinate (0-based)"),
					"y":      intProperty("Top edge Y coordinate (0-based)"),
					"width":  intProperty("Width of the region in pixels"),
					"height": intProperty("Height of the region in pixels"),
				},
				"required": []string{"path", "x", "y", "width", "height"},
			},
		},
		{
			Name:        "image_resize",
			Description: "Resize an image. With keep_aspect, a single dimension derives the other and two dimensions fit the image inside the box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"width":  intProperty("Target width in pixels"),
					"height": intProperty("Target height in pixels"),
					"keep_aspect": map[string]interface{}{
						"type":        "boolean",
						"description": "Preserve the aspect ratio. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_rotate",
			Description: "Rotate an image clockwise by any angle and optionally flip it. The canvas grows to fit and new areas are transparent.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"angle": map[string]interface{}{
						"type":        "number",
						"description": "Clockwise rotation in degrees",
					},
					"flip_horizontal": map[string]interface{}{
						"type":        "boolean",
						"description": "Mirror left to right",
					},
					"flip_vertical": map[string]interface{}{
						"type":        "boolean",
						"description": "Mirror top to bottom",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_convert",
			Description: "Convert an image to another format (png, jpeg, gif, bmp, tiff).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "gif", "bmp", "tiff"},
						"description": "Target format",
					},
					"quality": map[string]interface{}{
						"type":        "number",
						"description": "JPEG quality 0-1. Default 0.92",
						"default":     imaging.DefaultQuality,
					},
				},
				"required": []string{"path", "format"},
			},
		},
		{
			Name:        "image_compress",
			Description: "Reduce file size. PNG stays PNG; other formats are re-encoded as JPEG at the given quality. Optionally fit within a maximum size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"quality": map[string]interface{}{
						"type":        "number",
						"description": "Quality 0-1. Default 0.92",
						"default":     imaging.DefaultQuality,
					},
					"max_width":  intProperty("Maximum width in pixels"),
					"max_height": intProperty("Maximum height in pixels"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_favicons",
			Description: "Generate square PNG favicons at 16, 32, 48, 64, 128, 180, 192 and 512 pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
