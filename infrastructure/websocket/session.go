package websocket

import (
	"sync"

	"github.com/banterhq/banter/domain/model"
)

// Session is the authentication outcome bound to a connection at handshake
// time. A nil Principal marks an anonymous connection. The binding is
// immutable for the life of the connection; there is no mid-session
// re-authentication.
type Session struct {
	ClientID  string
	Principal *model.Principal
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Principal != nil
}

func (s *Session) IdentityID() string {
	if s.Authenticated() && s.Principal.HasIdentity() {
		return *s.Principal.IdentityID
	}
	return ""
}

// SessionRegistry tracks live sessions keyed by client id. It replaces a
// process-global connection map: components receive the interface and tests
// inject their own.
type SessionRegistry interface {
	Put(session *Session)
	Get(clientID string) (*Session, bool)
	Remove(clientID string)
	Len() int
}

type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRegistry() SessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*Session)}
}

func (r *sessionRegistry) Put(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ClientID] = session
}

func (r *sessionRegistry) Get(clientID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[clientID]
	return s, ok
}

func (r *sessionRegistry) Remove(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, clientID)
}

func (r *sessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
