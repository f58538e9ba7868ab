// Package upstream holds the resty plumbing shared by every client of the
// analytics API: base client construction, session auth, and error mapping.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"socialpulse/report-portal-backend/internal/session"
)

// APIError is returned for any non-2xx upstream response
type APIError struct {
	StatusCode int    `json:"status_code"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// NewClient creates the resty client used against the analytics API.
// Retries stay disabled: a failed call surfaces once to the caller.
func NewClient(baseURL string, timeout time.Duration, userAgent string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
}

// Request starts a request bound to ctx, authenticated with the session token in ctx
func Request(ctx context.Context, client *resty.Client) *resty.Request {
	req := client.R().SetContext(ctx)
	if token := session.TokenFromContext(ctx); token != "" {
		req.SetHeader("Authorization", AuthorizationHeader(token))
	}
	return req
}

// AuthorizationHeader picks the scheme the upstream expects for the token shape
func AuthorizationHeader(token string) string {
	if strings.Count(token, ".") == 2 {
		return "Bearer " + token
	}
	return "Token " + token
}

// ProjectQuery returns the ?project= parameter when a project is selected
func ProjectQuery(projectID *int) map[string]string {
	params := map[string]string{}
	if projectID != nil {
		params["project"] = strconv.Itoa(*projectID)
	}
	return params
}

// CheckResponse converts a non-2xx response into an *APIError
func CheckResponse(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	return &APIError{
		StatusCode: res.StatusCode(),
		Method:     res.Request.Method,
		Path:       res.Request.URL,
		Message:    errorMessage(res),
	}
}

// errorMessage pulls the human readable message out of a DRF style error body
func errorMessage(res *resty.Response) string {
	var body map[string]any
	if err := json.Unmarshal(res.Body(), &body); err == nil {
		for _, key := range []string{"error", "detail", "message"} {
			if msg, ok := body[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	if text := http.StatusText(res.StatusCode()); text != "" {
		return text
	}
	return "unexpected response"
}
