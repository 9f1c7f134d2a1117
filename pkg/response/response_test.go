package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, fn gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccess(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { Success(c, gin.H{"n": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, map[string]interface{}{"n": float64(1)}, body.Data)
}

func TestInternalErrorHidesDetail(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { InternalError(c, errors.New("db exploded")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, body.Message, "exploded")
}

func TestUnauthorizedAborts(t *testing.T) {
	w, body := run(t, func(c *gin.Context) {
		Unauthorized(c, "login required")
		assert.True(t, c.IsAborted())
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "login required", body.Message)
}
