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

package shutdown

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Manager manages graceful shutdown state
type Manager struct {
	shuttingDown int32 // atomic flag: 0 = running, 1 = shutting down
	shutdownChan chan struct{}
}

// NewManager creates a new shutdown manager
func NewManager() *Manager {
	return &Manager{
		shuttingDown: 0,
		shutdownChan: make(chan struct{}, 1),
	}
}

// IsShuttingDown returns true if the service is shutting down
func (m *Manager) IsShuttingDown() bool {
	return atomic.LoadInt32(&m.shuttingDown) == 1
}

// Shutdown triggers graceful shutdown
// Returns true if shutdown was triggered, false if already shutting down
func (m *Manager) Shutdown() bool {
	if !atomic.CompareAndSwapInt32(&m.shuttingDown, 0, 1) {
		return false // already shutting down
	}

	select {
	case m.shutdownChan <- struct{}{}:
	default:
		// channel already has signal
	}
	return true
}

// Wait waits for shutdown signal
func (m *Manager) Wait() <-chan struct{} {
	return m.shutdownChan
}

// NotifySignals triggers Shutdown on SIGHUP, SIGINT, SIGTERM or SIGQUIT.
// The returned function stops listening.
func (m *Manager) NotifySignals() (stop func()) {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	done := make(chan struct{})
	go func() {
		select {
		case <-sc:
			m.Shutdown()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sc)
		close(done)
	}
}
