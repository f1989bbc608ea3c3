package server

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// ginTestContext builds a gin context for a GET of target.
func ginTestContext(rec *httptest.ResponseRecorder, target string) (*gin.Context, *gin.Engine) {
	c, engine := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, engine
}
