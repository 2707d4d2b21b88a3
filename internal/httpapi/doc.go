// Package httpapi serves the background remover over HTTP.
//
// # Endpoints
//
//	GET  /healthz
//	GET  /api/tools/background-remover
//	POST /api/tools/background-remover
//
// The POST endpoint takes a multipart form with the image in the "file"
// field (or "image") and the same optional fields as the web tool:
// method, colorThreshold, replaceWith, replacementColor, plus reference,
// referenceColor and softEdge. It answers with the PNG as an attachment
// named <name>-no-bg.png; X-Reference-Color and X-Background-Pixels describe
// the run.
//
// # Errors
//
// Failures are JSON {"error": message, "code": CODE} with status:
//
//	400  INVALID_INPUT, INVALID_THRESHOLD, INVALID_REPLACEMENT_COLOR
//	413  upload larger than limits.max_file_size_mb
//	422  DECODE_FAILURE
//	501  UNSUPPORTED_METHOD, UNSUPPORTED_REPLACEMENT
//	500  everything else
package httpapi
