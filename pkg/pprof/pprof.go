// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pprof

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/trexis-racing/roster/pkg/log"
	"github.com/trexis-racing/roster/pkg/safe"
)

// Conf holds the debug listener settings. It is off unless Enable is set.
type Conf struct {
	Enable bool
	Host   string
	Port   int
	Path   string
}

// SetDefaults fills unset fields
func (c *Conf) SetDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8083
	}
	if c.Path == "" {
		c.Path = "/debug/pprof"
	}
}

func (c Conf) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Server serves the runtime profiles on a listener separate from the api.
type Server struct {
	conf   Conf
	server *http.Server
}

func NewServer(conf Conf) *Server {
	conf.SetDefaults()
	return &Server{conf: conf}
}

// Handler exposes the profile endpoints under the configured path.
func (s *Server) Handler() http.Handler {
	prefix := s.conf.Path
	mux := http.NewServeMux()
	mux.HandleFunc(prefix+"/", pprof.Index)
	mux.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
	mux.HandleFunc(prefix+"/profile", pprof.Profile)
	mux.HandleFunc(prefix+"/symbol", pprof.Symbol)
	mux.HandleFunc(prefix+"/trace", pprof.Trace)
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		mux.Handle(prefix+"/"+name, pprof.Handler(name))
	}
	return mux
}

// Start binds the listener and serves in the background. It is a no-op when
// disabled.
func (s *Server) Start() error {
	if !s.conf.Enable {
		log.Debug("pprof server is disabled")
		return nil
	}

	ln, err := net.Listen("tcp", s.conf.Addr())
	if err != nil {
		return fmt.Errorf("pprof listen %s: %w", s.conf.Addr(), err)
	}
	s.server = &http.Server{Handler: s.Handler()}

	safe.Go("pprof server", func() {
		log.Infow("pprof server started", "address", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("pprof server stopped", "error", err)
		}
	})
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
