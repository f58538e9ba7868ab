package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationHeader(t *testing.T) {
	assert.Equal(t, "Bearer a.b.c", AuthorizationHeader("a.b.c"))
	assert.Equal(t, "Token abc", AuthorizationHeader("abc"))
}

func TestProjectQuery(t *testing.T) {
	assert.Empty(t, ProjectQuery(nil))
	id := 12
	assert.Equal(t, map[string]string{"project": "12"}, ProjectQuery(&id))
}

func TestCheckResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{}`))
		case "/error":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "template_id is required"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second, "test")
	ctx := context.Background()

	res, err := Request(ctx, client).Get("/ok")
	require.NoError(t, err)
	assert.NoError(t, CheckResponse(res))

	res, err = Request(ctx, client).Get("/error")
	require.NoError(t, err)
	var apiErr *APIError
	require.ErrorAs(t, CheckResponse(res), &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "template_id is required", apiErr.Message)

	res, err = Request(ctx, client).Get("/html")
	require.NoError(t, err)
	require.ErrorAs(t, CheckResponse(res), &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
