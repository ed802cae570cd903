package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/trexis-racing/roster/pkg/http"
	"github.com/trexis-racing/roster/pkg/log"
	"github.com/trexis-racing/roster/pkg/pprof"
	"github.com/trexis-racing/roster/pkg/safe"
)

/**
 * @file: conf.go
 * @description: proxy configuration, toml file + .env + ROSTER_ env
 */

const EnvPrefix = "ROSTER"

type UpstreamConf struct {
	BaseURL string `mapstructure:"baseUrl"`
	Timeout time.Duration
}

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Upstream UpstreamConf
	Pprof    pprof.Conf
}

// LoadConfigFile 读取配置文件，文件不存在时仅使用默认值与环境变量
func LoadConfigFile(confFile string) (AppConfig, error) {
	var cfg AppConfig

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	v := newViper(confFile)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read configuration file: %w", err)
		}
		log.Warnw("config file not found, using defaults", "path", confFile)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Watch reloads confFile on change and hands the new config to onChange.
func Watch(confFile string, onChange func(AppConfig)) {
	v := newViper(confFile)
	if err := v.ReadInConfig(); err != nil {
		log.Warnw("config watch disabled", "path", confFile, "error", err)
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration changed, reloading", "file", e.Name)
		var cfg AppConfig
		if err := v.Unmarshal(&cfg); err != nil {
			log.Errorw("failed to unmarshal configuration file", "error", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			log.Errorw("reloaded configuration rejected", "error", err)
			return
		}
		safe.Do("config reload", func() { onChange(cfg) })
	})
	v.WatchConfig()
}

func newViper(confFile string) *viper.Viper {
	v := viper.New()
	if confFile != "" {
		v.SetConfigFile(confFile)
	} else {
		v.AddConfigPath("./conf.d")
		v.SetConfigName("config")
	}
	v.SetConfigType("toml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// setDefaults 每个键都需要默认值，环境变量才能在 Unmarshal 时生效
func setDefaults(v *viper.Viper) {
	logDefaults := log.SetDefaults()
	v.SetDefault("log.output", logDefaults.Output)
	v.SetDefault("log.path", logDefaults.Path)
	v.SetDefault("log.filename", logDefaults.Filename)
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.keepHours", logDefaults.KeepHours)
	v.SetDefault("log.rotateSize", logDefaults.RotateSize)
	v.SetDefault("log.rotateNum", logDefaults.RotateNum)

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8000)
	v.SetDefault("http.accessLog", true)
	v.SetDefault("http.exposeMetrics", true)
	v.SetDefault("http.readTimeout", 30)
	v.SetDefault("http.writeTimeout", 30)
	v.SetDefault("http.idleTimeout", 60)
	v.SetDefault("http.shutdownTimeout", 30)
	v.SetDefault("http.bodyLimit", 4*1024*1024)
	v.SetDefault("http.tls.certFile", "")
	v.SetDefault("http.tls.keyFile", "")
	v.SetDefault("http.auth.secretKey", "")
	v.SetDefault("http.auth.accessExpire", "2h")
	v.SetDefault("http.auth.issuer", "roster")

	v.SetDefault("upstream.baseUrl", "http://localhost:3000")
	v.SetDefault("upstream.timeout", "10s")

	v.SetDefault("pprof.enable", false)
	v.SetDefault("pprof.host", "127.0.0.1")
	v.SetDefault("pprof.port", 8083)
	v.SetDefault("pprof.path", "/debug/pprof")
}

func (c *AppConfig) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.Http.Port)
	}
	if c.Http.Auth.SecretKey == "" {
		return errors.New("http.auth.secretKey is required")
	}
	if c.Http.Auth.AccessExpire <= 0 {
		return fmt.Errorf("invalid http.auth.accessExpire %s", c.Http.Auth.AccessExpire)
	}
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.baseUrl is required")
	}
	return c.Log.Validate()
}
