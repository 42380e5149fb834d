package interview

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// ConnRegistry tracks the live chat sockets of each session so they can be
// closed when the session goes away.
type ConnRegistry struct {
	mu     sync.RWMutex
	active map[string]map[*websocket.Conn]struct{}
}

// NewConnRegistry creates an empty registry.
func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		active: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Register adds conn to sessionID.
func (m *ConnRegistry) Register(sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[sessionID]; !exists {
		m.active[sessionID] = make(map[*websocket.Conn]struct{})
	}
	m.active[sessionID][conn] = struct{}{}
	slog.Debug("Chat socket registered", "session_id", sessionID)
}

// Unregister removes conn from sessionID.
func (m *ConnRegistry) Unregister(sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.active[sessionID]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(m.active, sessionID)
	}
	slog.Debug("Chat socket unregistered", "session_id", sessionID)
}

// CloseSession closes every socket of sessionID and returns how many were open.
func (m *ConnRegistry) CloseSession(sessionID string) int {
	m.mu.Lock()
	conns := m.active[sessionID]
	delete(m.active, sessionID)
	m.mu.Unlock()

	for conn := range conns {
		if err := conn.Close(websocket.StatusNormalClosure, "session closed"); err != nil {
			slog.Debug("Failed to close chat socket", "session_id", sessionID, "error", err)
		}
	}
	return len(conns)
}
