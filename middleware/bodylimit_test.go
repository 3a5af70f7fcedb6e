package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupBodyRouter(maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(maxUpload))
	router.POST("/upload/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func TestBodyLimit_AllowsUploadWithHeadroom(t *testing.T) {
	router := setupBodyRouter(1024)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload/", bytes.NewReader(make([]byte, 1024+bodyHeadroom)))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodyLimit_RejectsDeclaredLength(t *testing.T) {
	router := setupBodyRouter(1024)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload/", bytes.NewReader(make([]byte, 1024+bodyHeadroom+1)))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestBodyLimit_StopsUndeclaredBodyOnRead(t *testing.T) {
	router := setupBodyRouter(1024)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload/", io.NopCloser(bytes.NewReader(make([]byte, 2*bodyHeadroom))))
	req.ContentLength = -1
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
