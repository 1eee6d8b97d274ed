package api

import (
	"sync"

	"github.com/upskilleo/learning-engine/internal/session"
)

// liveSession pairs a session with the notifier collecting its messages so
// the status endpoint can hand them back to the client.
type liveSession struct {
	sess     *session.Session
	notifier *session.MemoryNotifier
	userID   string
}

// Registry tracks live sessions by ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*liveSession)}
}

func (r *Registry) Add(ls *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[ls.sess.ID()] = ls
}

func (r *Registry) Get(id string) (*liveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ls, ok := r.sessions[id]
	return ls, ok
}

// Remove closes the session and drops it from the registry.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	ls, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		ls.sess.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*liveSession)
	r.mu.Unlock()
	for _, ls := range sessions {
		ls.sess.Close()
	}
}
