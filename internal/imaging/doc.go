// Package imaging provides the pixel-level building blocks for the background
// remover and the companion image tools.
//
// This package implements decoding and caching of input files, an owned 8-bit
// RGBA pixel buffer, colour parsing and sampling, output encoding, and the
// geometric tools (crop, resize, rotate, convert, compress, favicons). All
// operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x, y) is the inclusive top-left corner and width/height
//     extend right and down
//
// # Pixel Buffers
//
// Buffer always owns its memory. FromImage copies the source into a fresh
// non-premultiplied RGBA grid anchored at (0,0), so callers may hand in any
// decoded image (YCbCr JPEGs, paletted GIFs, 16-bit PNGs) and the source is
// never written to.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images. A Buffer
// must not be written concurrently with reads of the same pixel.
//
// # Color Representation
//
// Colors are returned in multiple formats for flexibility:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGB: 8-bit components (0-255)
//   - RGBA: 8-bit components with alpha (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Error Handling
//
// Decoding failures are reported with code DECODE_FAILURE and encoding
// failures with ENCODE_FAILURE (see internal/errors). Invalid geometry is
// reported with INVALID_INPUT.
package imaging
