package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans export notifications out to every subscriber of a declaration.
type Hub struct {
	subscribers map[int64]map[*Connection]bool

	register   chan *Connection
	unregister chan *Connection

	broadcast chan *Message

	log *zap.Logger
	mu  sync.RWMutex
}

type Connection struct {
	ws            *websocket.Conn
	declarationID int64
	send          chan *Message
	hub           *Hub
}

type Message struct {
	DeclarationID int64  `json:"declaration_id,omitempty"`
	Type          string `json:"type"`
	Channel       string `json:"channel,omitempty"`
	Data          any    `json:"data"`
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[int64]map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *Message, 256),
		log:         log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// close sockets outside the lock so the pumps can unregister
			h.mu.RLock()
			var conns []*Connection
			for _, m := range h.subscribers {
				for c := range m {
					conns = append(conns, c)
				}
			}
			h.mu.RUnlock()

			for _, c := range conns {
				_ = c.ws.Close()
			}
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.subscribers[conn.declarationID] == nil {
				h.subscribers[conn.declarationID] = make(map[*Connection]bool)
			}
			h.subscribers[conn.declarationID][conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.subscribers[message.DeclarationID] {
				select {
				case conn.send <- message:
				default:
					// slow reader
					h.remove(conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(conn *Connection) {
	conns, ok := h.subscribers[conn.declarationID]
	if !ok {
		return
	}
	if _, exists := conns[conn]; !exists {
		return
	}
	delete(conns, conn)
	close(conn.send)
	if len(conns) == 0 {
		delete(h.subscribers, conn.declarationID)
	}
}

// Subscribers returns how many connections listen on a declaration.
func (h *Hub) Subscribers(declarationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[declarationID])
}

func (h *Hub) Broadcast(declarationID int64, message *Message) {
	message.DeclarationID = declarationID
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("hub broadcast channel is full, dropping message",
			zap.Int64("declaration_id", declarationID),
			zap.String("type", message.Type),
		)
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, declarationID int64) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &Connection{
		ws:            ws,
		declarationID: declarationID,
		send:          make(chan *Message, 256),
		hub:           h,
	}

	h.register <- conn

	go conn.writePump()
	go conn.readPump()
}

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10
)

func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read error", zap.Error(err))
			}
			break
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteJSON(message); err != nil {
				c.hub.log.Debug("websocket write error", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
