// Package upstream talks to the JSON store that owns members, teams and users.
package upstream

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/trexis-racing/roster/internal/proxy/conf"
	httpx "github.com/trexis-racing/roster/pkg/http"
	"github.com/trexis-racing/roster/pkg/log"
	"github.com/trexis-racing/roster/pkg/metrics"
)

// User is the store's user record including the bcrypt password hash.
type User struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Response is an upstream reply relayed to the caller unchanged.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

type Client struct {
	http    *resty.Client
	metrics *metrics.Registry
}

func NewClient(c conf.UpstreamConf, m *metrics.Registry) *Client {
	return &Client{
		http:    httpx.NewClient(httpx.ClientConf{BaseURL: c.BaseURL, Timeout: c.Timeout}),
		metrics: m,
	}
}

var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// routeLabel collapses numeric path segments so metric cardinality stays bounded.
func routeLabel(path string) string {
	return idSegment.ReplaceAllString(path, "/:id$1")
}

func (c *Client) do(req *resty.Request, method, path string) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, path)

	status := 0
	if err == nil {
		status = resp.StatusCode()
	}
	if c.metrics != nil {
		c.metrics.ObserveUpstream(routeLabel(path), method, status, time.Since(start))
	}
	if err != nil {
		log.Errorw("upstream request failed", "method", method, "path", path, "error", err)
		return nil, errors.Wrapf(err, "upstream %s %s", method, path)
	}
	return resp, nil
}

// Users fetches every user. Any non-2xx status is an error.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	resp, err := c.do(c.http.R().SetContext(ctx).SetResult(&users), resty.MethodGet, "/users")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("upstream GET /users returned status %d", resp.StatusCode())
	}
	return users, nil
}

// Forward sends method path to the store, form-encoding form when present,
// and returns the raw reply whatever its status.
func (c *Client) Forward(ctx context.Context, method, path string, form url.Values) (*Response, error) {
	req := c.http.R().SetContext(ctx)
	if form != nil {
		req.SetFormDataFromValues(form)
	}
	resp, err := c.do(req, method, path)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status:      resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}, nil
}
