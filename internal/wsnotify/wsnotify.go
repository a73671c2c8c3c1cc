// Package wsnotify mantém os clientes websocket do console e repassa eventos para todos eles.
package wsnotify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	// eventos pendentes por cliente antes de ele ser descartado
	sendBuffer = 64
)

// Tipos de evento publicados
const (
	EventQR         = "qr"
	EventReady      = "ready"
	EventMessage    = "message"
	EventConnection = "connection"
	EventAttendance = "attendance"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// client tem uma fila própria; só a goroutine writePump escreve na conexão.
type client struct {
	conn *websocket.Conn
	send chan Event
}

func (c *client) writePump() {
	defer c.conn.Close()
	for event := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(event); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

type Manager struct {
	clients map[*websocket.Conn]*client
	lock    sync.Mutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[*websocket.Conn]*client),
	}
}

func (m *Manager) AddClient(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan Event, sendBuffer)}
	m.lock.Lock()
	m.clients[conn] = c
	m.lock.Unlock()
	go c.writePump()
}

func (m *Manager) RemoveClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.removeLocked(conn)
}

func (m *Manager) removeLocked(conn *websocket.Conn) {
	if c, ok := m.clients[conn]; ok {
		delete(m.clients, conn)
		close(c.send)
	}
}

func (m *Manager) ClientCount() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.clients)
}

// Broadcast enfileira o evento para todos os clientes conectados, sem filtro por usuário.
// Não bloqueia: cliente com a fila cheia é desconectado.
func (m *Manager) Broadcast(event Event) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for conn, c := range m.clients {
		select {
		case c.send <- event:
		default:
			m.removeLocked(conn)
		}
	}
}

// Serve faz o upgrade da requisição e mantém o cliente registrado até ele desconectar.
func (m *Manager) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	m.AddClient(conn)
	defer m.RemoveClient(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
