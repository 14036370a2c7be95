package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session represents one live client connection to a document. It is owned
// exclusively by the document's actor goroutine and is never persisted.
type Session struct {
	ID          string
	RemoteAddr  string
	ConnectedAt time.Time

	conn *websocket.Conn
}

// NewSession wraps an upgraded websocket connection.
func NewSession(conn *websocket.Conn, remoteAddr string) *Session {
	return &Session{
		ID:          uuid.NewString(),
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
		conn:        conn,
	}
}

// Send writes one JSON message to the client. Only the owning actor
// goroutine calls Send, which keeps the single-writer contract of the
// underlying connection.
func (s *Session) Send(v interface{}) error {
	return s.conn.WriteJSON(v)
}

// Close closes the underlying transport.
func (s *Session) Close() error {
	return s.conn.Close()
}

// SessionRegistry tracks the sessions of one document. It is owned by the
// actor goroutine, so a plain map suffices; there is no cross-goroutine
// access and no locking.
type SessionRegistry struct {
	sessions map[string]*Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Register adds a session.
func (r *SessionRegistry) Register(s *Session) {
	r.sessions[s.ID] = s
}

// Unregister removes a session by id. Removing an absent session is a
// no-op; the return value reports whether it was present.
func (r *SessionRegistry) Unregister(id string) bool {
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Get returns the session with the given id.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	return len(r.sessions)
}

// All returns the current sessions. The slice is a snapshot; callers may
// mutate the registry while iterating it.
func (r *SessionRegistry) All() []*Session {
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
