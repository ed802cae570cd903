package http

import (
	"fmt"
	"time"
)

/**
 * @file: http.go
 * @description: http server settings
 */

type Http struct {
	Host            string
	Port            int
	AccessLog       bool
	ExposeMetrics   bool
	ReadTimeout     int
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
	BodyLimit       int
	TLS             TLS
	Auth            Auth
}

type TLS struct {
	CertFile string
	KeyFile  string
}

// Auth token signing settings. AccessExpire is a full duration, e.g. "2h".
type Auth struct {
	SecretKey    string
	AccessExpire time.Duration
	Issuer       string
}

func (h *Http) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

func (h *Http) ShutdownAfter() time.Duration {
	if h.ShutdownTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(h.ShutdownTimeout) * time.Second
}
