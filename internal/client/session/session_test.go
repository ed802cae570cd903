package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trexis-racing/roster/internal/client/api"
	"github.com/trexis-racing/roster/internal/client/errs"
	"github.com/trexis-racing/roster/internal/client/model"
	"github.com/trexis-racing/roster/internal/client/store"
)

type stubAuth struct {
	calls int
	resp  *model.LoginResponse
	err   error
}

func (s *stubAuth) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

var john = model.User{Id: 1, Username: "john", Email: "j@x"}

func newFixture(auth Authenticator) (*Service, *store.CredentialStore, store.Scope, store.Scope) {
	durable, sess := store.NewMemoryScope(), store.NewMemoryScope()
	credentials := store.NewCredentialStore(durable, sess)
	return NewService(credentials, auth), credentials, durable, sess
}

func TestLogin_EmptyCredentialsNeverCallBackend(t *testing.T) {
	auth := &stubAuth{}
	svc, _, _, _ := newFixture(auth)

	for _, tc := range []struct{ user, pass string }{{"", "p"}, {"u", ""}, {"", ""}} {
		_, err := svc.Login(context.Background(), tc.user, tc.pass, true)
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
		assert.Equal(t, MsgCredentialsRequired, errs.Message(err))
	}
	assert.Zero(t, auth.calls)
	assert.Nil(t, svc.CurrentUser())
}

func TestLogin_RememberMe(t *testing.T) {
	auth := &stubAuth{resp: &model.LoginResponse{Token: "T", User: john}}
	svc, credentials, durable, sess := newFixture(auth)

	var seen []*model.User
	unsubscribe := svc.Subscribe(func(u *model.User) {
		// 广播时存储必须已经写入
		if u != nil {
			token, ok := svc.Token()
			assert.True(t, ok)
			assert.Equal(t, "T", token)
		}
		seen = append(seen, u)
	})
	defer unsubscribe()

	user, err := svc.Login(context.Background(), "john", "secret", true)
	require.NoError(t, err)
	assert.Equal(t, john, *user)

	raw, ok, _ := durable.Get(store.KeyCurrentUser)
	require.True(t, ok)
	decoded, err := store.DecodeUser(raw)
	require.NoError(t, err)
	assert.Equal(t, john, decoded)

	token, _, _ := durable.Get(store.KeyToken)
	assert.Equal(t, "T", token)
	flag, _, _ := durable.Get(store.KeyRememberMe)
	assert.Equal(t, "true", flag)

	_, ok = credentials.Load(store.Ephemeral)
	assert.False(t, ok)
	_, ok, _ = sess.Get(store.KeyToken)
	assert.False(t, ok)

	require.Len(t, seen, 2)
	assert.Nil(t, seen[0])
	assert.Equal(t, john, *seen[1])
	assert.True(t, svc.IsLoggedIn())
	assert.True(t, svc.IsRemembered())
}

func TestLogin_WithoutRememberClearsDurable(t *testing.T) {
	auth := &stubAuth{resp: &model.LoginResponse{Token: "OLD", User: john}}
	svc, credentials, durable, sess := newFixture(auth)

	_, err := svc.Login(context.Background(), "john", "secret", true)
	require.NoError(t, err)

	auth.resp = &model.LoginResponse{Token: "NEW", User: john}
	_, err = svc.Login(context.Background(), "john", "secret", false)
	require.NoError(t, err)

	_, ok := credentials.Load(store.Persistent)
	assert.False(t, ok)
	_, ok, _ = durable.Get(store.KeyRememberMe)
	assert.False(t, ok)
	assert.False(t, svc.IsRemembered())

	token, _, _ := sess.Get(store.KeyToken)
	assert.Equal(t, "NEW", token)

	token, ok = svc.Token()
	require.True(t, ok)
	assert.Equal(t, "NEW", token)
}

func TestLogin_BackendFailureLeavesStateUntouched(t *testing.T) {
	auth := &stubAuth{err: &errs.AuthError{Status: http.StatusUnauthorized, Msg: "Invalid Password"}}
	svc, _, durable, sess := newFixture(auth)

	_, err := svc.Login(context.Background(), "john", "wrong", true)
	require.Error(t, err)
	assert.True(t, errs.IsAuth(err))
	assert.Equal(t, "Invalid Password", errs.Message(err))

	assert.Nil(t, svc.CurrentUser())
	assert.False(t, svc.IsLoggedIn())
	for _, scope := range []store.Scope{durable, sess} {
		_, ok, _ := scope.Get(store.KeyToken)
		assert.False(t, ok)
	}
}

type brokenScope struct{ store.Scope }

func (brokenScope) Set(key, value string) error { return errors.New("disk full") }

func TestLogin_PersistFailureDoesNotPublish(t *testing.T) {
	auth := &stubAuth{resp: &model.LoginResponse{Token: "T", User: john}}
	credentials := store.NewCredentialStore(brokenScope{store.NewMemoryScope()}, store.NewMemoryScope())
	svc := NewService(credentials, auth)

	_, err := svc.Login(context.Background(), "john", "secret", true)
	require.Error(t, err)
	assert.Nil(t, svc.CurrentUser())
	assert.False(t, svc.IsLoggedIn())
}

func TestLogout(t *testing.T) {
	auth := &stubAuth{resp: &model.LoginResponse{Token: "T", User: john}}
	svc, credentials, _, _ := newFixture(auth)

	_, err := svc.Login(context.Background(), "john", "secret", true)
	require.NoError(t, err)
	// 会话作用域中残留的数据也要一起清除
	require.NoError(t, credentials.Save(store.Ephemeral, john, "S"))

	svc.Logout()
	svc.Logout()

	assert.Nil(t, svc.CurrentUser())
	assert.False(t, svc.IsLoggedIn())
	_, ok := svc.Token()
	assert.False(t, ok)
	_, ok = credentials.Load(store.Persistent)
	assert.False(t, ok)
	_, ok = credentials.Load(store.Ephemeral)
	assert.False(t, ok)
	assert.False(t, svc.IsRemembered())
}

func TestNewService_RestoresDurableFirst(t *testing.T) {
	durable, sess := store.NewMemoryScope(), store.NewMemoryScope()
	credentials := store.NewCredentialStore(durable, sess)
	require.NoError(t, credentials.Save(store.Ephemeral, model.User{Id: 2, Username: "amy"}, "S"))
	require.NoError(t, credentials.Save(store.Persistent, john, "D"))

	svc := NewService(credentials, &stubAuth{})
	require.NotNil(t, svc.CurrentUser())
	assert.Equal(t, "john", svc.CurrentUser().Username)
	token, _ := svc.Token()
	assert.Equal(t, "D", token)
	assert.True(t, svc.IsLoggedIn())
}

func TestNewService_RestoresSessionScope(t *testing.T) {
	durable, sess := store.NewMemoryScope(), store.NewMemoryScope()
	credentials := store.NewCredentialStore(durable, sess)
	require.NoError(t, credentials.Save(store.Ephemeral, model.User{Id: 2, Username: "amy"}, "S"))

	svc := NewService(credentials, &stubAuth{})
	require.NotNil(t, svc.CurrentUser())
	assert.Equal(t, "amy", svc.CurrentUser().Username)
	assert.False(t, svc.IsRemembered())
}

func TestNewService_CorruptUserLogsOut(t *testing.T) {
	durable, sess := store.NewMemoryScope(), store.NewMemoryScope()
	require.NoError(t, durable.Set(store.KeyCurrentUser, "{broken"))
	require.NoError(t, durable.Set(store.KeyToken, "D"))
	require.NoError(t, durable.Set(store.KeyRememberMe, "true"))
	credentials := store.NewCredentialStore(durable, sess)

	svc := NewService(credentials, &stubAuth{})
	assert.Nil(t, svc.CurrentUser())
	assert.False(t, svc.IsLoggedIn())
	_, ok, _ := durable.Get(store.KeyToken)
	assert.False(t, ok)
	assert.False(t, svc.IsRemembered())
}

func TestAPIAuthenticator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body model.LoginRequest
		assert.NoError(t, decodeJSON(r, &body))
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":40105,"errMsg":"Invalid Password","path":"/api/login"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"T","user":{"id":1,"username":"john","email":"j@x"}}`))
	}))
	defer srv.Close()

	auth := NewAPIAuthenticator(api.NewClient(srv.URL+"/api", 0))

	resp, err := auth.Login(context.Background(), "john", "secret")
	require.NoError(t, err)
	assert.Equal(t, "T", resp.Token)
	assert.Equal(t, john, resp.User)

	_, err = auth.Login(context.Background(), "john", "wrong")
	require.Error(t, err)
	assert.True(t, errs.IsAuth(err))
	assert.Equal(t, "Invalid Password", errs.Message(err))
}

func TestAPIAuthenticator_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAPIAuthenticator(api.NewClient(url, 0)).Login(context.Background(), "john", "secret")
	require.Error(t, err)
	assert.True(t, errs.IsTransport(err))
}

func decodeJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, v)
}
