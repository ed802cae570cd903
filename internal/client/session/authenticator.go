package session

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/trexis-racing/roster/internal/client/api"
	"github.com/trexis-racing/roster/internal/client/errs"
	"github.com/trexis-racing/roster/internal/client/model"
	httpx "github.com/trexis-racing/roster/pkg/http"
)

// APIAuthenticator logs in against the proxy's /login endpoint.
type APIAuthenticator struct {
	client *resty.Client
}

func NewAPIAuthenticator(client *resty.Client) *APIAuthenticator {
	return &APIAuthenticator{client: client}
}

func (a *APIAuthenticator) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	var out model.LoginResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(model.LoginRequest{Username: username, Password: password}).
		SetResult(&out).
		SetError(&httpx.ResponseErr{}).
		Post("/login")
	if err := api.Check("login", resp, err); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errs.Status("login", resp.StatusCode(), "malformed login response")
	}
	return &out, nil
}
