package httpapi

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/background-remover/internal/bgremove"
	bgerrors "github.com/ironsheep/background-remover/internal/errors"
	"github.com/ironsheep/background-remover/internal/pipeline"
)

// formOverhead is the room allowed for form fields and multipart framing on
// top of the file itself.
const formOverhead = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Code      bgerrors.Code `json:"code"`
	Retryable bool          `json:"retryable"`
}

type choice struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// handleOptions describes the defaults and which choices are available, so a
// client can grey out the ones that are coming soon.
func (s *Server) handleOptions(c *gin.Context) {
	methods := []choice{}
	for _, m := range []bgremove.Method{bgremove.MethodColor, bgremove.MethodAI, bgremove.MethodManual} {
		methods = append(methods, choice{Name: string(m), Available: m.Implemented()})
	}

	c.JSON(http.StatusOK, gin.H{
		"defaults": s.cfg.Removal,
		"methods":  methods,
		"replacements": []choice{
			{Name: string(bgremove.ReplaceTransparent), Available: true},
			{Name: string(bgremove.ReplaceColor), Available: true},
			{Name: string(bgremove.ReplaceGradient), Available: false},
		},
		"maxFileSizeMB": s.cfg.Limits.MaxFileSizeMB,
		"acceptedTypes": []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/bmp"},
	})
}

func (s *Server) handleRemove(c *gin.Context) {
	maxBytes := s.cfg.MaxFileSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+formOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeTooLarge(c)
			return
		}
		s.writeError(c, bgerrors.Wrap(bgerrors.ErrCodeInvalidInput, err, "expected a multipart/form-data upload"))
		return
	}

	ov, err := overridesFromForm(form)
	if err != nil {
		s.writeError(c, err)
		return
	}
	opts, err := s.cfg.Removal.Apply(ov)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := opts.Validate(); err != nil {
		s.writeError(c, err)
		return
	}

	fh := uploadedFile(form)
	if fh == nil {
		s.writeError(c, bgerrors.New(bgerrors.ErrCodeInvalidInput, "no file uploaded; send it in the \"file\" field"))
		return
	}
	if fh.Size > maxBytes {
		s.writeTooLarge(c)
		return
	}

	data, err := readUpload(fh)
	if err != nil {
		s.writeError(c, bgerrors.Wrap(bgerrors.ErrCodeDecode, err, "failed to read upload"))
		return
	}

	out, err := pipeline.Run(c.Request.Context(), data, fh.Filename, pipeline.Options{
		Removal:     opts,
		MaxFileSize: maxBytes,
		Remover:     s.remover,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	c.Header("X-Reference-Color", out.Reference.Hex())
	c.Header("X-Background-Pixels", strconv.Itoa(out.BackgroundPixels))
	c.Data(http.StatusOK, "image/png", out.Data)
}

func uploadedFile(form *multipart.Form) *multipart.FileHeader {
	for _, field := range []string{"file", "image"} {
		if files := form.File[field]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// overridesFromForm reads the web tool's field names; snake_case spellings
// are accepted as well.
func overridesFromForm(form *multipart.Form) (bgremove.Overrides, error) {
	get := func(names ...string) string {
		for _, n := range names {
			if v := form.Value[n]; len(v) > 0 && v[0] != "" {
				return v[0]
			}
		}
		return ""
	}

	ov := bgremove.Overrides{
		Method:           get("method"),
		ReplaceWith:      get("replaceWith", "replace_with"),
		ReplacementColor: get("replacementColor", "replacement_color"),
		Reference:        get("reference"),
		ReferenceColor:   get("referenceColor", "reference_color"),
	}

	if v := get("colorThreshold", "color_threshold", "threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ov, bgerrors.Wrap(bgerrors.ErrCodeInvalidThreshold, err, "color threshold %q is not a number", v)
		}
		ov.ColorThreshold = &t
	}
	if v := get("softEdge", "soft_edge"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ov, bgerrors.Wrap(bgerrors.ErrCodeInvalidInput, err, "soft edge %q is not a number", v)
		}
		ov.SoftEdge = &r
	}

	return ov, nil
}

func (s *Server) writeTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
		Error: "file too large (max " + strconv.Itoa(s.cfg.Limits.MaxFileSizeMB) + " MB)",
		Code:  bgerrors.ErrCodeDecode,
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	code := bgerrors.GetCode(err)
	if code == "" {
		code = bgerrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", c.GetString(requestIDHeader), "err", err)
	} else {
		s.logger.Debug("request rejected", "id", c.GetString(requestIDHeader), "err", err)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     bgerrors.UserMessage(err),
		Code:      code,
		Retryable: bgerrors.Retryable(err),
	})
}

func statusFor(code bgerrors.Code) int {
	switch code {
	case bgerrors.ErrCodeInvalidInput, bgerrors.ErrCodeInvalidThreshold, bgerrors.ErrCodeInvalidReplacementColor:
		return http.StatusBadRequest
	case bgerrors.ErrCodeDecode:
		return http.StatusUnprocessableEntity
	case bgerrors.ErrCodeUnsupportedMethod, bgerrors.ErrCodeUnsupportedReplacement:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
