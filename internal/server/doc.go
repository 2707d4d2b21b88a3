// Package server implements the MCP (Model Context Protocol) server for the
// background remover and its companion image tools.
//
// This package provides a JSON-RPC 2.0 server that exposes background removal
// and basic image editing through the MCP protocol, so that MCP-compatible
// clients can clean up product shots and prepare web assets.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Color Operations:
//   - image_sample_color: Get color at pixel
//   - image_dominant_colors: Extract color palette
//
// Background Removal:
//   - image_remove_background: Color-key the background to transparency or a
//     solid color; returns PNG
//
// Image Tools:
//   - image_crop, image_resize, image_rotate
//   - image_convert, image_compress
//   - image_favicons: Standard favicon sizes
//
// # Image Caching
//
// Images opened by path are decoded once and cached. The cache is cleared on
// the schedule configured as cache.evict_schedule. Background removal reads
// its input fresh on every call.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: {"code", "message", "retryable"} for classified failures such as
//     UNSUPPORTED_METHOD or DECODE_FAILURE, otherwise the Go error string
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
