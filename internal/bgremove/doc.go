// Package bgremove removes a uniform background from an image by colour
// keying.
//
// The engine is a pure computation over an owned pixel buffer:
//
//  1. A reference colour is taken from the image (top-left pixel by default,
//     or the mean of the four corners) or supplied by the caller.
//  2. Every pixel is classified against the reference with a Euclidean RGB
//     distance and a 0-100 threshold (see Classify).
//  3. The classifications form a Mask, optionally softened with a Gaussian
//     blur for anti-aliased edges.
//  4. The Compositor writes a new buffer in which background pixels are
//     replaced by transparency or a solid colour.
//
// Inputs are never modified and no state is shared between calls, so a
// Remover may be used concurrently for different images. Rows are processed
// in parallel; the output is bit-identical to a sequential run.
//
// The "ai" and "manual" methods and the "gradient" replacement are recognised
// but not implemented. They fail with UNSUPPORTED_METHOD and
// UNSUPPORTED_REPLACEMENT respectively and are never silently substituted.
package bgremove
