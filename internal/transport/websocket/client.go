package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
)

const writeWait = 10 * time.Second

type connection struct {
	conn *websocket.Conn
	// writeMu serializes writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex
}

// ConnectionManager tracks the open browser sockets by connection id.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*connection
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{connections: make(map[string]*connection)}
}

// Add registers conn and returns its id.
func (cm *ConnectionManager) Add(conn *websocket.Conn) string {
	id := uuid.NewString()

	cm.mu.Lock()
	cm.connections[id] = &connection{conn: conn}
	cm.mu.Unlock()
	return id
}

// Remove closes and forgets the connection. Unknown ids are ignored.
func (cm *ConnectionManager) Remove(id string) {
	cm.mu.Lock()
	c, ok := cm.connections[id]
	delete(cm.connections, id)
	cm.mu.Unlock()

	if ok {
		_ = c.conn.Close()
	}
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

func (cm *ConnectionManager) get(id string) (*connection, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	c, ok := cm.connections[id]
	return c, ok
}

// Send writes one event as JSON. A connection that is already gone is not
// an error.
func (cm *ConnectionManager) Send(id string, event domain.RelayEvent) error {
	c, ok := cm.get(id)
	if !ok {
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(event)
}

// Ping writes a ping control frame under the connection's write lock.
func (cm *ConnectionManager) Ping(id string) error {
	c, ok := cm.get(id)
	if !ok {
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// CloseAll closes every tracked connection, used on shutdown.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	conns := cm.connections
	cm.connections = make(map[string]*connection)
	cm.mu.Unlock()

	for _, c := range conns {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	}
}
