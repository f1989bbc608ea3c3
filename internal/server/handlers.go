package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/version"
)

// formField is the multipart field holding an uploaded image.
const formField = "image"

// errMissingImage is returned when a request carries no image.
var errMissingImage = errors.New("request has no image: send it as the body, as multipart field \"image\", or pass ?url=")

// queryAliases maps accepted query parameter names to option keys.
var queryAliases = map[string]string{
	"colorCount":     "colorCount",
	"colours":        "colorCount",
	"count":          "colorCount",
	"quality":        "quality",
	"ignoreWhite":    "ignoreWhite",
	"whiteThreshold": "whiteThreshold",
	"alphaThreshold": "alphaThreshold",
	"minSaturation":  "minSaturation",
}

// handlePalette handles POST /v1/palette.
func (s *Server) handlePalette(c *gin.Context) {
	opts := queryOptions(c)
	if !s.validate(c, opts) {
		return
	}

	src, ok := s.source(c)
	if !ok {
		return
	}

	palette, err := s.service.Palette(c.Request.Context(), src, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	if palette == nil {
		Success(c, nil, "no colour found")
		return
	}
	Success(c, palette.JSON(), "ok")
}

// handleColor handles POST /v1/color. Any colour count is ignored.
func (s *Server) handleColor(c *gin.Context) {
	opts := colour.DominantOptions(queryOptions(c))
	if !s.validate(c, opts) {
		return
	}

	src, ok := s.source(c)
	if !ok {
		return
	}

	rgb, err := s.service.Color(c.Request.Context(), src, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	if rgb == nil {
		Success(c, nil, "no colour found")
		return
	}
	Success(c, colour.ColorJSON{Hex: rgb.Hex(), RGB: *rgb}, "ok")
}

// handleVersion handles GET /v1/version.
func (s *Server) handleVersion(c *gin.Context) {
	Success(c, version.GetInfo(), "ok")
}

// validate rejects invalid options before the body is read.
func (s *Server) validate(c *gin.Context, opts colour.Options) bool {
	if _, err := colour.Normalize(opts); err != nil {
		s.fail(c, err)
		return false
	}
	return true
}

// source returns the image input of the request: a ?url= parameter, a
// multipart upload, or the raw body.
func (s *Server) source(c *gin.Context) (any, bool) {
	if u := c.Query("url"); u != "" {
		return u, true
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile(formField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				Fail(c, http.StatusBadRequest, errMissingImage.Error())
				return nil, false
			}
			s.fail(c, err)
			return nil, false
		}
		f, err := fh.Open()
		if err != nil {
			s.fail(c, err)
			return nil, false
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.fail(c, err)
			return nil, false
		}
		return data, true
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	if len(data) == 0 {
		Fail(c, http.StatusBadRequest, errMissingImage.Error())
		return nil, false
	}
	return data, true
}

// fail logs err and writes the matching error response.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	Fail(c, status, err.Error())
}

// queryOptions reads extraction options from query parameters. Numbers are
// parsed, booleans accept strconv.ParseBool forms, and anything unparseable
// is passed through to normalisation as is.
func queryOptions(c *gin.Context) colour.Options {
	m := make(map[string]any)
	for name, key := range queryAliases {
		raw, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		if _, set := m[key]; set && name != key {
			continue
		}
		m[key] = queryValue(key, raw)
	}
	return colour.ParseOptions(m)
}

func queryValue(key, raw string) any {
	raw = strings.TrimSpace(raw)
	if key == "ignoreWhite" {
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		return raw
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
