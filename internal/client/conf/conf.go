// Package conf resolves client settings from flags, ROSTER_* env and defaults,
// and opens the credential scopes they select.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/trexis-racing/roster/internal/client/api"
	"github.com/trexis-racing/roster/internal/client/store"
	"github.com/trexis-racing/roster/pkg/cache"
	"github.com/trexis-racing/roster/pkg/log"
)

/**
 * @file: conf.go
 * @description: client configuration and credential backends
 */

const (
	EnvPrefix = "ROSTER"

	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	KeyAPI       = "api"
	KeyTimeout   = "timeout"
	KeyStateDir  = "stateDir"
	KeyDurable   = "durable"
	KeySession   = "session"
	KeyRedisAddr = "redis.address"
	KeyRedisPass = "redis.password"
	KeyRedisDB   = "redis.db"
	KeyRedisKey  = "redis.key"
	KeyDebug     = "debug"

	defaultRedisKey = "roster:credentials"
)

type Conf struct {
	API      string
	Timeout  time.Duration
	StateDir string
	Durable  string
	Session  string
	Redis    cache.Redis
	RedisKey string
	Debug    bool
}

// SetDefaults registers defaults and env binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAPI, api.DefaultBaseURL)
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyDurable, BackendFile)
	v.SetDefault(KeySession, BackendFile)
	v.SetDefault(KeyRedisAddr, "127.0.0.1:6379")
	v.SetDefault(KeyRedisKey, defaultRedisKey)
}

func Load(v *viper.Viper) (Conf, error) {
	c := Conf{
		API:      v.GetString(KeyAPI),
		Timeout:  v.GetDuration(KeyTimeout),
		StateDir: v.GetString(KeyStateDir),
		Durable:  strings.ToLower(v.GetString(KeyDurable)),
		Session:  strings.ToLower(v.GetString(KeySession)),
		Redis: cache.Redis{
			Mode:     "single",
			Address:  v.GetString(KeyRedisAddr),
			Password: v.GetString(KeyRedisPass),
			DB:       v.GetInt(KeyRedisDB),
		},
		RedisKey: v.GetString(KeyRedisKey),
		Debug:    v.GetBool(KeyDebug),
	}
	if c.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return c, fmt.Errorf("resolve config dir: %w", err)
		}
		c.StateDir = filepath.Join(dir, "roster")
	}
	return c, c.Validate()
}

func (c Conf) Validate() error {
	if c.API == "" {
		return fmt.Errorf("api base url is required")
	}
	switch c.Durable {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unsupported durable backend %q, want file or redis", c.Durable)
	}
	switch c.Session {
	case BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unsupported session backend %q, want file or memory", c.Session)
	}
	return nil
}

// LogConf sends client logs to stderr, WARN unless debugging.
func (c Conf) LogConf() *log.Conf {
	level := "WARN"
	if c.Debug {
		level = "DEBUG"
	}
	return &log.Conf{Output: "stderr", Level: level}
}

func (c Conf) CredentialsPath() string {
	return filepath.Join(c.StateDir, "credentials.json")
}

// SessionPath is keyed by the parent pid so a terminal session owns one file.
func (c Conf) SessionPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("roster-session-%d.json", os.Getppid()))
}

// OpenCredentialStore builds the durable and session scopes. The returned
// cleanup releases any connection they hold.
func (c Conf) OpenCredentialStore() (*store.CredentialStore, func(), error) {
	cleanup := func() {}

	var durable store.Scope
	switch c.Durable {
	case BackendRedis:
		client, err := cache.NewRedis(c.Redis)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			if err := client.Close(); err != nil {
				log.Warnw("close redis failed", "error", err)
			}
		}
		durable = store.NewRedisScope(client, c.RedisKey, 0)
	default:
		durable = store.NewFileScope(c.CredentialsPath())
	}

	var session store.Scope
	switch c.Session {
	case BackendMemory:
		session = store.NewMemoryScope()
	default:
		session = store.NewFileScope(c.SessionPath())
	}

	log.Debugw("credential store opened", "durable", c.Durable, "session", c.Session)
	return store.NewCredentialStore(durable, session), cleanup, nil
}
