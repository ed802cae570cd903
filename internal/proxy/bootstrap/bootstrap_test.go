package bootstrap

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trexis-racing/roster/internal/proxy/conf"
	"github.com/trexis-racing/roster/internal/proxy/router"
	"github.com/trexis-racing/roster/pkg/pprof"
	"github.com/trexis-racing/roster/pkg/shutdown"
	"go.uber.org/zap"
)

func TestBootstrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[http.auth]\nsecretKey = \"k\"\n"), 0o600))

	var got conf.AppConfig
	app, cleanup, err := Bootstrap(path, func(appConf conf.AppConfig) (*App, func(), error) {
		got = appConf
		rt := &router.Router{Http: &appConf.Http}
		return NewApp(rt, zap.NewNop(), appConf, shutdown.NewManager(), pprof.NewServer(appConf.Pprof))
	})
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, "k", got.Http.Auth.SecretKey)
	assert.Equal(t, 2*time.Hour, got.Http.Auth.AccessExpire)

	resp, err := app.HttpApp.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[http]\nport = 8000\n"), 0o600))

	_, _, err := Bootstrap(path, func(conf.AppConfig) (*App, func(), error) {
		t.Fatal("initApp must not run with invalid config")
		return nil, nil, nil
	})
	assert.Error(t, err)
}

func TestRun_StopsOnShutdown(t *testing.T) {
	appConf := conf.AppConfig{}
	appConf.Http.Host = "127.0.0.1"
	appConf.Http.Port = 0
	appConf.Http.ShutdownTimeout = 1
	mgr := shutdown.NewManager()
	app, cleanup, err := NewApp(&router.Router{Http: &appConf.Http}, zap.NewNop(), appConf, mgr, pprof.NewServer(appConf.Pprof))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		Run(app, cleanup)
		close(done)
	}()

	mgr.Shutdown()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after shutdown")
	}
}
