package http

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/trexis-racing/roster/pkg/log"
)

/**
 * @file: http_client.go
 * @description: shared resty client construction
 */

type ClientConf struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient 返回带统一超时与调试日志的 resty 客户端
func NewClient(conf ClientConf) *resty.Client {
	client := resty.New().
		SetBaseURL(conf.BaseURL).
		SetHeader("Accept", "application/json")
	if conf.Timeout > 0 {
		client.SetTimeout(conf.Timeout)
	}

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debugw("http client response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"latency", resp.Time().String(),
		)
		return nil
	})

	return client
}
