// Package api adapts resty responses from the proxy into the client error taxonomy.
package api

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/trexis-racing/roster/internal/client/errs"
	httpx "github.com/trexis-racing/roster/pkg/http"
	"github.com/trexis-racing/roster/pkg/log"
)

// DefaultBaseURL is where the proxy mounts its API.
const DefaultBaseURL = "http://localhost:8000/api"

// NewClient builds the resty client used by every client component.
func NewClient(baseURL string, timeout time.Duration) *resty.Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return httpx.NewClient(httpx.ClientConf{BaseURL: baseURL, Timeout: timeout})
}

// Check converts a resty outcome into nil or a typed error, logging the detail.
// The request must have been sent with SetError(&httpx.ResponseErr{}).
func Check(op string, resp *resty.Response, err error) error {
	if err != nil {
		log.Errorw("request failed", "op", op, "error", err)
		return errs.Transport(op, err)
	}
	if !resp.IsError() {
		return nil
	}

	msg := ""
	if body, ok := resp.Error().(*httpx.ResponseErr); ok && body != nil {
		msg = body.ErrMsg
	}
	log.Errorw("backend returned error",
		"op", op,
		"status", resp.StatusCode(),
		"body", resp.String(),
	)

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &errs.AuthError{Status: resp.StatusCode(), Msg: msg}
	default:
		return errs.Status(op, resp.StatusCode(), msg)
	}
}
