package view

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trexis-racing/roster/internal/client/api"
	"github.com/trexis-racing/roster/internal/client/errs"
	"github.com/trexis-racing/roster/internal/client/member"
	"github.com/trexis-racing/roster/internal/client/model"
	"github.com/trexis-racing/roster/internal/client/nav"
	"github.com/trexis-racing/roster/internal/client/session"
	"github.com/trexis-racing/roster/internal/client/store"
	"github.com/trexis-racing/roster/pkg/event"
)

type recordingNav struct {
	views  []nav.View
	params []nav.Params
}

func (r *recordingNav) Navigate(view nav.View, params nav.Params) (bool, error) {
	r.views = append(r.views, view)
	r.params = append(r.params, params)
	return true, nil
}

type fakeSession struct {
	loggedIn   bool
	remembered bool
	user       *model.User
	loginErr   error
	calls      int
}

func (f *fakeSession) Login(ctx context.Context, username, password string, rememberMe bool) (*model.User, error) {
	f.calls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &model.User{Id: 1, Username: username}
	f.loggedIn = true
	f.remembered = rememberMe
	return f.user, nil
}

func (f *fakeSession) IsLoggedIn() bool         { return f.loggedIn }
func (f *fakeSession) IsRemembered() bool       { return f.remembered }
func (f *fakeSession) CurrentUser() *model.User { return f.user }

func TestLoginView_OpenRedirectsWhenLoggedIn(t *testing.T) {
	navigator := &recordingNav{}
	v := NewLoginView(&fakeSession{loggedIn: true, user: &model.User{Username: "john"}}, navigator)

	assert.True(t, v.Open())
	assert.Equal(t, []nav.View{nav.ViewMembers}, navigator.views)
}

func TestLoginView_OpenPrefillsRemembered(t *testing.T) {
	v := NewLoginView(&fakeSession{remembered: true, user: &model.User{Username: "john"}}, &recordingNav{})

	assert.False(t, v.Open())
	assert.Equal(t, "john", v.Username)
	assert.True(t, v.RememberMe)
}

func TestLoginView_SubmitRequiresFields(t *testing.T) {
	s := &fakeSession{}
	v := NewLoginView(s, &recordingNav{})

	err := v.Submit(context.Background(), "")
	assert.True(t, errs.IsValidation(err))
	assert.Equal(t, session.MsgCredentialsRequired, v.Message())
	assert.Zero(t, s.calls)
}

func TestLoginView_SubmitSuccess(t *testing.T) {
	navigator := &recordingNav{}
	v := NewLoginView(&fakeSession{}, navigator)
	v.Username, v.RememberMe = "john", true

	require.NoError(t, v.Submit(context.Background(), "secret"))
	assert.Empty(t, v.Message())
	assert.Equal(t, []nav.View{nav.ViewMembers}, navigator.views)
}

func TestLoginView_SubmitFailureMessages(t *testing.T) {
	navigator := &recordingNav{}
	s := &fakeSession{loginErr: &errs.AuthError{Status: http.StatusUnauthorized, Msg: "Invalid Username"}}
	v := NewLoginView(s, navigator)
	v.Username = "nobody"

	require.Error(t, v.Submit(context.Background(), "x"))
	assert.Equal(t, "Invalid Username", v.Message())

	s.loginErr = errs.Transport("login", errors.New("connection refused"))
	require.Error(t, v.Submit(context.Background(), "x"))
	assert.Equal(t, MsgLoginFailed, v.Message())
	assert.Empty(t, navigator.views)
}

type fakeRepo struct {
	members   []model.Member
	listErr   error
	deleteErr error
	deleted   []int
}

func (f *fakeRepo) ListMembers(ctx context.Context) ([]model.Member, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Member(nil), f.members...), nil
}

func (f *fakeRepo) DeleteMember(ctx context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func roster() []model.Member {
	return []model.Member{{Id: 1, FirstName: "Ann"}, {Id: 2, FirstName: "Bob"}, {Id: 3, FirstName: "Cat"}}
}

func TestMembersView_FollowsUserStream(t *testing.T) {
	users := event.NewSubject[*model.User](&model.User{Id: 1, Username: "john"})
	repo := &fakeRepo{members: roster()}
	navigator := &recordingNav{}

	v := NewMembersView(repo, navigator, users)
	v.Attach()
	defer v.Close()

	assert.Len(t, v.Members(), 3)
	assert.Equal(t, "john", v.User().Username)

	users.Next(nil)
	assert.Equal(t, []nav.View{nav.ViewLogin}, navigator.views)
	assert.Nil(t, v.User())
}

func TestMembersView_LoadFailureIsNotEmptyList(t *testing.T) {
	users := event.NewSubject[*model.User](&model.User{Id: 1})
	repo := &fakeRepo{listErr: errs.Status("list members", 502, "")}

	v := NewMembersView(repo, &recordingNav{}, users)
	v.Attach()
	defer v.Close()

	assert.Equal(t, MsgLoadMembersFailed, v.Message())
	assert.Error(t, v.Load())
}

func TestMembersView_RemovePreservesOrder(t *testing.T) {
	users := event.NewSubject[*model.User](&model.User{Id: 1})
	repo := &fakeRepo{members: roster()}
	v := NewMembersView(repo, &recordingNav{}, users)
	v.Attach()
	defer v.Close()

	require.NoError(t, v.Remove(2))

	assert.Equal(t, []int{2}, repo.deleted)
	assert.Equal(t, []model.Member{{Id: 1, FirstName: "Ann"}, {Id: 3, FirstName: "Cat"}}, v.Members())
}

func TestMembersView_RemoveFailureKeepsList(t *testing.T) {
	users := event.NewSubject[*model.User](&model.User{Id: 1})
	repo := &fakeRepo{members: roster(), deleteErr: errs.Status("delete member", 500, "")}
	v := NewMembersView(repo, &recordingNav{}, users)
	v.Attach()
	defer v.Close()

	require.Error(t, v.Remove(2))
	assert.Len(t, v.Members(), 3)
	assert.Equal(t, MsgDeleteMemberFailed, v.Message())
}

func TestMembersView_OpenAndAdd(t *testing.T) {
	navigator := &recordingNav{}
	v := NewMembersView(&fakeRepo{}, navigator, event.NewSubject[*model.User](nil))

	_, err := v.Open(4)
	require.NoError(t, err)
	_, err = v.Add()
	require.NoError(t, err)

	assert.Equal(t, []nav.View{nav.ViewMemberDetails, nav.ViewMemberDetails}, navigator.views)
	assert.Equal(t, "4", navigator.params[0][nav.ParamId])
	assert.Nil(t, navigator.params[1])
}

type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	return &model.LoginResponse{Token: "expired", User: model.User{Id: 7, Username: username}}, nil
}

func TestMembersView_RejectedTokenDuringLoginLogsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":40302,"errMsg":"Token is expired"}`))
	}))
	defer srv.Close()

	svc := session.NewService(store.NewCredentialStore(store.NewMemoryScope(), store.NewMemoryScope()), stubAuth{})
	client := member.NewClient(api.NewClient(srv.URL, time.Second), svc, member.WithOnUnauthorized(svc.Logout))
	navigator := &recordingNav{}
	v := NewMembersView(client, navigator, svc)
	v.Attach()
	defer v.Close()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Login(context.Background(), "john", "secret", true)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("login blocked while subscribers handled the new user")
	}

	assert.False(t, svc.IsLoggedIn())
	assert.Nil(t, svc.CurrentUser())
	assert.Nil(t, v.User())
	assert.True(t, errs.IsAuth(v.Err()))
	assert.Equal(t, []nav.View{nav.ViewLogin, nav.ViewLogin}, navigator.views)
}
