package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	h := Handler(time.Second,
		SubjectPinger("ok", func(context.Context) error { return nil }),
		SubjectPinger("broken", func(context.Context) error { return errors.New("down") }),
	)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp struct {
		Version string            `json:"version"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, GetVersion(), resp.Version)
	assert.Equal(t, "down", resp.Errors["broken"])
	assert.NotContains(t, resp.Errors, "ok")
}

func TestHandler_healthy(t *testing.T) {
	h := Handler(time.Second,
		SubjectPinger("ok", func(context.Context) error { return nil }),
	)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
