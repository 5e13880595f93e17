package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"videosearch-backend/internal/models"
	"videosearch-backend/internal/search"
)

// EngineChannel is the redis pub/sub channel engine events (ingest
// progress, completion) are published on. Worker processes publish,
// the hub fans out to every connected client.
const EngineChannel = "engine_updates"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client is one websocket connection plus its interactive search
// session. All writes to the conn go through send, drained by a single
// writer goroutine.
type client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session *search.Session
}

type Hub struct {
	mu           sync.RWMutex
	clients      map[*client]struct{}
	redisClient  *redis.Client // nil without redis; local events only
	orchestrator *search.Orchestrator
}

func NewHub(redisClient *redis.Client, orch *search.Orchestrator) *Hub {
	return &Hub{
		clients:      make(map[*client]struct{}),
		redisClient:  redisClient,
		orchestrator: orch,
	}
}

// Run subscribes to the engine event channel and fans messages out to
// every connected client. Returns immediately when redis is not
// configured; Broadcast still works for in-process events.
func (h *Hub) Run(ctx context.Context) {
	if h.redisClient == nil {
		return
	}

	pubsub := h.redisClient.Subscribe(ctx, EngineChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 16),
		session: search.NewSession(h.orchestrator),
	}
	h.register(c)

	go c.writeLoop()
	go c.resultLoop()
	go func() {
		defer h.unregister(c)
		c.readLoop()
	}()
}

// readLoop consumes client messages. The only client-initiated message
// is a search update; anything else is ignored.
func (c *client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "search" {
			continue
		}
		var req models.SearchRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			continue
		}
		c.session.Update(req.Query, req.Mode)
	}
}

// resultLoop forwards settled search result sets to the client. Delivery
// goes through the hub so a send can never race the channel close in
// unregister.
func (c *client) resultLoop() {
	for rs := range c.session.Results() {
		data, err := json.Marshal(models.WSMessage{Type: "search_results", Payload: rs})
		if err != nil {
			continue
		}
		c.hub.deliver(c, data)
	}
}

func (c *client) writeLoop() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	log.Printf("WebSocket connected (total: %d)", len(h.clients))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.session.Close()
	close(c.send)
	c.conn.Close()
	log.Printf("WebSocket disconnected (total: %d)", len(h.clients))
}

// deliver sends to one client's outbound channel. Membership is checked
// under the read lock: unregister removes the client and closes send
// under the write lock, so a delivery either sees the client and sends
// on an open channel, or sees it gone and drops the message.
func (h *Hub) deliver(c *client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Broadcast sends an engine event to every connected client directly,
// for deployments without redis.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	data, err := json.Marshal(models.WSMessage{Type: msgType, Payload: payload})
	if err != nil {
		return
	}
	h.broadcast(data)
}
