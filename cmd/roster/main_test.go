package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trexis-racing/roster/internal/client/model"
)

const testToken = "T0KEN"

// fakeProxy answers like roster-proxy for a single user john/secret.
type fakeProxy struct {
	mu       sync.Mutex
	members  map[int]model.Member
	requests []string
	created  []map[string]any
	updated  []map[string]any
	expired  bool
}

func newFakeProxy(t *testing.T) (*fakeProxy, string) {
	t.Helper()
	p := &fakeProxy{members: map[int]model.Member{
		1: {Id: 1, FirstName: "Ann", LastName: "Lee", JobTitle: "Driver", Team: "Red", Status: model.StatusActive},
		3: {Id: 3, FirstName: "Bob", LastName: "Ray", JobTitle: "Engineer", Team: "Blue", Status: model.StatusInactive},
	}}
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)
	return p, srv.URL + "/api"
}

func (p *fakeProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, r.Method+" "+r.URL.Path)

	if r.URL.Path == "/api/login" {
		var req model.LoginRequest
		body, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(body, &req)
		switch {
		case req.Username != "john":
			reply(w, http.StatusUnauthorized, map[string]any{"code": 40101, "errMsg": "Invalid Username"})
		case req.Password != "secret":
			reply(w, http.StatusUnauthorized, map[string]any{"code": 40102, "errMsg": "Invalid Password"})
		default:
			reply(w, http.StatusOK, model.LoginResponse{Token: testToken, User: model.User{Id: 7, Username: "john", Email: "john@example.com"}})
		}
		return
	}

	if p.expired {
		reply(w, http.StatusForbidden, map[string]any{"code": 40302, "errMsg": "Token is expired"})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		reply(w, http.StatusUnauthorized, map[string]any{"code": 40100, "errMsg": "Access token required"})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/members":
		list := make([]model.Member, 0, len(p.members))
		for _, id := range []int{1, 3} {
			if m, ok := p.members[id]; ok {
				list = append(list, m)
			}
		}
		reply(w, http.StatusOK, list)
	case r.Method == http.MethodGet && r.URL.Path == "/api/teams":
		reply(w, http.StatusOK, []model.Team{{Name: "Red"}, {Name: "Blue"}})
	case r.Method == http.MethodGet && r.URL.Path == "/api/members/3":
		reply(w, http.StatusOK, p.members[3])
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/members/"):
		reply(w, http.StatusNotFound, map[string]any{})
	case r.Method == http.MethodPost && r.URL.Path == "/api/addMember":
		p.created = append(p.created, decode(r))
		reply(w, http.StatusCreated, model.Member{Id: 9})
	case r.Method == http.MethodPut && r.URL.Path == "/api/members/3":
		p.updated = append(p.updated, decode(r))
		reply(w, http.StatusOK, p.members[3])
	case r.Method == http.MethodDelete && r.URL.Path == "/api/members/3":
		delete(p.members, 3)
		reply(w, http.StatusOK, map[string]any{})
	default:
		reply(w, http.StatusNotFound, map[string]any{})
	}
}

func (p *fakeProxy) seen(request string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.requests {
		if r == request {
			return true
		}
	}
	return false
}

func (p *fakeProxy) count(request string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range p.requests {
		if r == request {
			n++
		}
	}
	return n
}

func reply(w http.ResponseWriter, status int, body any) {
	data, _ := sonic.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func decode(r *http.Request) map[string]any {
	body, _ := io.ReadAll(r.Body)
	out := map[string]any{}
	_ = sonic.Unmarshal(body, &out)
	return out
}

type cli struct {
	api   string
	state string
}

func (c cli) run(stdin string, args ...string) (string, error) {
	a := &app{}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", c.api, "--state-dir", c.state, "--session", "memory"}, args...))
	err := cmd.Execute()
	a.close()
	return out.String(), err
}

func loggedIn(t *testing.T) (*fakeProxy, cli) {
	t.Helper()
	p, api := newFakeProxy(t)
	c := cli{api: api, state: t.TempDir()}
	out, err := c.run("", "login", "--remember", "-u", "john", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "logged in as john")
	return p, c
}

func TestLogin_RememberedAcrossRuns(t *testing.T) {
	_, c := loggedIn(t)
	assert.FileExists(t, filepath.Join(c.state, "credentials.json"))

	out, err := c.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "john <john@example.com> (remembered)")

	out, err = c.run("", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "already logged in as john")
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	p, api := newFakeProxy(t)
	c := cli{api: api, state: t.TempDir()}

	out, err := c.run("john\nsecret\n", "login", "--remember")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as john")
	assert.True(t, p.seen("POST /api/login"))
}

func TestLogin_ServerMessage(t *testing.T) {
	_, api := newFakeProxy(t)
	c := cli{api: api, state: t.TempDir()}

	_, err := c.run("", "login", "-u", "john", "--password", "wrong")
	require.EqualError(t, err, "Invalid Password")

	_, err = c.run("", "whoami")
	assert.ErrorIs(t, err, errLoginRequired)
}

func TestLogin_RequiresPassword(t *testing.T) {
	p, api := newFakeProxy(t)
	c := cli{api: api, state: t.TempDir()}

	_, err := c.run("\n", "login", "-u", "john")
	require.EqualError(t, err, "Username and password are required")
	assert.False(t, p.seen("POST /api/login"))
}

func TestMembers_GuardedWithoutLogin(t *testing.T) {
	p, api := newFakeProxy(t)
	c := cli{api: api, state: t.TempDir()}

	for _, args := range [][]string{{"members", "list"}, {"members", "get", "3"}, {"members", "delete", "3"}, {"teams"}} {
		_, err := c.run("", args...)
		assert.ErrorIs(t, err, errLoginRequired, args)
	}
	assert.Empty(t, p.requests)
}

func TestMembers_ListAndTeams(t *testing.T) {
	_, c := loggedIn(t)

	out, err := c.run("", "members", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "Engineer")
	assert.Less(t, strings.Index(out, "Ann"), strings.Index(out, "Bob"))

	out, err = c.run("", "teams")
	require.NoError(t, err)
	assert.Contains(t, out, "Red")
	assert.Contains(t, out, "Blue")
}

func TestMembers_GetShowsDetails(t *testing.T) {
	_, c := loggedIn(t)

	out, err := c.run("", "members", "get", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "Inactive")

	_, err = c.run("", "members", "get", "4")
	require.EqualError(t, err, "Failed to load member")

	_, err = c.run("", "members", "get", "x")
	require.Error(t, err)
}

func TestMembers_AddValidatesBeforeSending(t *testing.T) {
	p, c := loggedIn(t)

	_, err := c.run("", "members", "add", "--first-name", "A")
	require.EqualError(t, err, "firstName must be at least 2 characters")
	assert.False(t, p.seen("POST /api/addMember"))
}

func TestMembers_AddOmitsId(t *testing.T) {
	p, c := loggedIn(t)

	out, err := c.run("", "members", "add",
		"--first-name", "Cat", "--last-name", "Kim", "--job-title", "Mechanic", "--team", "Red")
	require.NoError(t, err)
	assert.Contains(t, out, "member added")

	require.Len(t, p.created, 1)
	assert.NotContains(t, p.created[0], "id")
	assert.Equal(t, "Cat", p.created[0]["firstName"])
	assert.Equal(t, "Inactive", p.created[0]["status"])
}

func TestMembers_EditKeepsUnsetFields(t *testing.T) {
	p, c := loggedIn(t)

	out, err := c.run("", "members", "edit", "3", "--status", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "member updated")

	require.Len(t, p.updated, 1)
	assert.Equal(t, "Bob", p.updated[0]["firstName"])
	assert.Equal(t, "Active", p.updated[0]["status"])
}

func TestMembers_Delete(t *testing.T) {
	p, c := loggedIn(t)

	out, err := c.run("", "members", "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "member 3 deleted")
	assert.True(t, p.seen("DELETE /api/members/3"))

	out, err = c.run("", "members", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Bob")
}

func TestMembers_ExpiredTokenLogsOut(t *testing.T) {
	p, c := loggedIn(t)
	p.mu.Lock()
	p.expired = true
	p.mu.Unlock()

	_, err := c.run("", "members", "list")
	require.EqualError(t, err, "Token is expired, run `roster login` again")
	assert.Equal(t, 1, p.count("GET /api/members"))

	_, err = c.run("", "whoami")
	assert.ErrorIs(t, err, errLoginRequired)

	_, err = c.run("", "members", "list")
	assert.ErrorIs(t, err, errLoginRequired)
	assert.Equal(t, 1, p.count("GET /api/members"))
}
