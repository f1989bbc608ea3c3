package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
)

// Response is the envelope of every API response.
type Response struct {
	Code    int    `json:"code"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// Success writes a 200 response carrying data, which may be nil.
func Success(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Data: data, Message: message})
}

// Fail writes an error response with the given status.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: message})
}

// statusFor maps pipeline and acquisition errors to HTTP statuses.
func statusFor(err error) int {
	var (
		coe *image.CrossOriginError
		ae  *image.AcquisitionError
		mbe *http.MaxBytesError
	)
	switch {
	case colour.IsValidationError(err):
		return http.StatusBadRequest
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, image.ErrUnsupportedSource):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &coe):
		return http.StatusForbidden
	case errors.As(err, &ae), errors.Is(err, image.ErrSourceNotReady):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
