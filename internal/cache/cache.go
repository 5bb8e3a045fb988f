package cache

import (
	"log/slog"
	"time"
)

// Cleaner is implemented by caches that can drop their expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry sweeps over registered caches.
type Manager struct {
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep. Must be called before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	go m.sweep(interval)
}

func (m *Manager) sweep(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			dropped := 0
			for _, c := range m.caches {
				dropped += c.CleanExpired()
			}
			if dropped > 0 {
				slog.Debug("Cache sweep removed expired entries", "count", dropped)
			}
		case <-m.stop:
			return
		}
	}
}

// Stop ends the sweep goroutine and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}
