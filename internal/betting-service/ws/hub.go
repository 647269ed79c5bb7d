package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client serializa as escritas de uma conexão (gorilla não aceita writers concorrentes)
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// writeWait limita quanto tempo um cliente lento pode segurar um Broadcast
const writeWait = 5 * time.Second

func (c *client) write(b []byte, wait time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas por sessão
// subs: mapeia sessionID para o conjunto de clientes inscritos
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}

	WriteWait time.Duration
	OnClients func(delta int) // métricas (gauge)
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:       log,
		upgrader:  websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:      make(map[string]map[*client]struct{}),
		WriteWait: writeWait,
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe em sessões e responde a pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	h.clients(1)
	defer h.clients(-1)

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.subscribe(msg.SessionID, c)
		case "unsubscribe":
			h.unsubscribe(msg.SessionID, c)
		case "ping":
			b, _ := json.Marshal(map[string]string{"type": "pong"})
			_ = c.write(b, h.WriteWait)
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.drop(c)
}

// drop remove o cliente de todas as sessões
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

func (h *Hub) subscribe(id string, c *client) {
	if id == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[id]; !ok {
		h.subs[id] = make(map[*client]struct{})
	}
	h.subs[id][c] = struct{}{}
}

func (h *Hub) unsubscribe(id string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[id]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, id)
		}
	}
}

func (h *Hub) clients(delta int) {
	if h.OnClients != nil {
		h.OnClients(delta)
	}
}

// Subscribers retorna quantos clientes estão inscritos na sessão
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Broadcast envia msg para todos os clientes inscritos na sessão
func (h *Hub) Broadcast(sessionID string, msg any) {
	h.mu.RLock()
	conns := make([]*client, 0, len(h.subs[sessionID]))
	for c := range h.subs[sessionID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Warn("ws marshal failed", zap.Error(err))
		return
	}
	for _, c := range conns {
		if err := c.write(b, h.WriteWait); err != nil {
			// conexão lenta ou morta: sai das assinaturas e o loop de leitura encerra
			h.log.Debug("ws write failed, dropping client", zap.String("session_id", sessionID), zap.Error(err))
			h.drop(c)
			_ = c.conn.Close()
		}
	}
}
