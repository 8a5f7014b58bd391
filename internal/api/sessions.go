package api

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/adaptaki/trainer/internal/session"
)

// sessionRegistry maps browser session IDs to their controllers. Controllers
// are created lazily and live for the process lifetime; each one serializes
// its own operations, so the registry only guards the map.
type sessionRegistry struct {
	mu          sync.Mutex
	controllers map[string]*session.Controller
	factory     func() *session.Controller
}

func newSessionRegistry(factory func() *session.Controller) *sessionRegistry {
	return &sessionRegistry{
		controllers: make(map[string]*session.Controller),
		factory:     factory,
	}
}

// get returns the controller for id, creating it on first use.
func (r *sessionRegistry) get(id string) *session.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[id]; ok {
		return c
	}
	c := r.factory()
	r.controllers[id] = c
	return c
}

func newSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
