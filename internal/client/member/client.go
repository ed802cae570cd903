// Package member is the stateless gateway to the proxy's member and team endpoints.
package member

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/trexis-racing/roster/internal/client/api"
	"github.com/trexis-racing/roster/internal/client/errs"
	"github.com/trexis-racing/roster/internal/client/model"
	httpx "github.com/trexis-racing/roster/pkg/http"
	"github.com/trexis-racing/roster/pkg/log"
	"github.com/trexis-racing/roster/pkg/retry"
)

/**
 * @file: client.go
 * @description: typed member/team requests with bearer auth and list retry
 */

const (
	DefaultListAttempts = 5

	MsgInvalidId = "member id must be a positive integer"
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() (string, bool)
}

type Client struct {
	http           *resty.Client
	tokens         TokenSource
	onUnauthorized func()
	listAttempts   int
	listBackoff    retry.Backoff
}

type Option func(*Client)

// WithOnUnauthorized runs fn whenever the proxy rejects the token.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

func WithListRetry(attempts int, backoff retry.Backoff) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.listAttempts = attempts
		}
		if backoff != nil {
			c.listBackoff = backoff
		}
	}
}

func NewClient(client *resty.Client, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		http:         client,
		tokens:       tokens,
		listAttempts: DefaultListAttempts,
		listBackoff:  retry.Immediate(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().
		SetContext(ctx).
		SetError(&httpx.ResponseErr{})
	if token, ok := c.tokens.Token(); ok {
		req.SetAuthToken(token)
	}
	return req
}

func (c *Client) check(op string, resp *resty.Response, err error) error {
	err = api.Check(op, resp, err)
	if err != nil && errs.IsAuth(err) && c.onUnauthorized != nil {
		log.Warnw("token rejected by proxy, clearing session", "op", op)
		c.onUnauthorized()
	}
	return err
}

// ListMembers retries transient failures before giving up.
func (c *Client) ListMembers(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := retry.Do(ctx, func(ctx context.Context) error {
		var out []model.Member
		resp, err := c.request(ctx).SetResult(&out).Get("/members")
		if err := c.check("list members", resp, err); err != nil {
			return err
		}
		members = out
		return nil
	},
		retry.WithMaxAttempts(c.listAttempts),
		retry.WithBackoff(c.listBackoff),
		retry.WithRetryIf(isTransient),
		retry.WithOnRetry(func(attempt int, err error) {
			log.Warnw("list members failed, retrying", "attempt", attempt, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []model.Member{}
	}
	return members, nil
}

// isTransient retries network failures and 5xx only.
func isTransient(err error) bool {
	if !retry.IsRetryableError(err) {
		return false
	}
	var t *errs.TransportError
	if !errors.As(err, &t) {
		return false
	}
	return t.Status == 0 || t.Status >= http.StatusInternalServerError
}

func (c *Client) GetMember(ctx context.Context, id int) (*model.Member, error) {
	if id <= 0 {
		return nil, errs.Validation("id", MsgInvalidId)
	}
	var out model.Member
	resp, err := c.request(ctx).
		SetResult(&out).
		SetPathParam("id", strconv.Itoa(id)).
		Get("/members/{id}")
	if err := c.check("get member", resp, err); err != nil {
		log.Errorw("get member failed", "memberId", id, "error", err)
		return nil, err
	}
	if !out.IsSaved() {
		return nil, errs.Status("get member", http.StatusNotFound, "member not found")
	}
	return &out, nil
}

// CreateMember never sends a client-side id; the upstream store assigns one.
func (c *Client) CreateMember(ctx context.Context, m model.Member) (*model.Member, error) {
	m.Id = 0
	var out model.Member
	resp, err := c.request(ctx).
		SetBody(m).
		SetResult(&out).
		Post("/addMember")
	if err := c.check("create member", resp, err); err != nil {
		return nil, err
	}
	if !out.IsSaved() {
		return &m, nil
	}
	return &out, nil
}

func (c *Client) UpdateMember(ctx context.Context, m model.Member) (*model.Member, error) {
	if m.Id <= 0 {
		return nil, errs.Validation("id", MsgInvalidId)
	}
	var out model.Member
	resp, err := c.request(ctx).
		SetBody(m).
		SetResult(&out).
		SetPathParam("id", strconv.Itoa(m.Id)).
		Put("/members/{id}")
	if err := c.check("update member", resp, err); err != nil {
		log.Errorw("update member failed", "memberId", m.Id, "error", err)
		return nil, err
	}
	if !out.IsSaved() {
		return &m, nil
	}
	return &out, nil
}

func (c *Client) DeleteMember(ctx context.Context, id int) error {
	if id <= 0 {
		return errs.Validation("id", MsgInvalidId)
	}
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.Itoa(id)).
		Delete("/members/{id}")
	if err := c.check("delete member", resp, err); err != nil {
		log.Errorw("delete member failed", "memberId", id, "error", err)
		return err
	}
	return nil
}

// ListTeams is not retried.
func (c *Client) ListTeams(ctx context.Context) ([]model.Team, error) {
	var out []model.Team
	resp, err := c.request(ctx).SetResult(&out).Get("/teams")
	if err := c.check("list teams", resp, err); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Team{}
	}
	return out, nil
}
