package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	core "xiangqi/internal/game"
)

const wsIdlePingInterval = 30 * time.Second

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}

type watcher struct {
	session string
	conn    *websocket.Conn
	send    chan []byte
}

func (c *watcher) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		// 客户端太慢，丢掉这一帧；下一次更新会带上完整状态
	}
}

// Hub 按对局 id 把状态推给 websocket 观察者。实现 servergame.Publisher。
type Hub struct {
	mu        sync.Mutex
	watchers  map[string]map[*watcher]struct{}
	broadcast chan *core.Session
	log       zerolog.Logger

	pingInterval time.Duration
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		watchers:     make(map[string]map[*watcher]struct{}),
		broadcast:    make(chan *core.Session, 32),
		log:          log,
		pingInterval: wsIdlePingInterval,
	}
}

// Run 序列化推送，直到 ctx 结束。
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case s := <-h.broadcast:
			h.mu.Lock()
			set := h.watchers[s.ID]
			if len(set) == 0 {
				h.mu.Unlock()
				continue
			}
			h.mu.Unlock()

			msg := wsMessage{Type: "state", Payload: mustMarshal(stateToDTO(s))}
			h.mu.Lock()
			for c := range h.watchers[s.ID] {
				c.sendJSON(msg)
			}
			h.mu.Unlock()
		}
	}
}

// Publish 不阻塞调用方；缓冲满时丢弃。
func (h *Hub) Publish(s *core.Session) {
	select {
	case h.broadcast <- s:
	default:
		h.log.Warn().Str("session", s.ID).Msg("watcher broadcast buffer full, dropping update")
	}
}

func (h *Hub) register(c *watcher) {
	h.mu.Lock()
	set, ok := h.watchers[c.session]
	if !ok {
		set = make(map[*watcher]struct{})
		h.watchers[c.session] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *watcher) {
	h.mu.Lock()
	if set, ok := h.watchers[c.session]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.watchers, c.session)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for id, set := range h.watchers {
		for c := range set {
			close(c.send)
		}
		delete(h.watchers, id)
	}
	h.mu.Unlock()
}

// sendTo 只给仍然注册着的连接发送，避免写入已关闭的 channel。
func (h *Hub) sendTo(c *watcher, msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[c.session][c]; ok {
		c.sendJSON(msg)
	}
}

// Watchers 当前观察某局的连接数。
func (h *Hub) Watchers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[sessionID])
}

func (h *Hub) writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < h.pingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// serveWatch 升级连接后先推一次当前状态；客户端发 request_state 时再推一次。
func (h *Hub) serveWatch(w http.ResponseWriter, r *http.Request, snapshot func() (*core.Session, bool)) {
	s, ok := snapshot()
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "game not found"})
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &watcher{session: s.ID, conn: conn, send: make(chan []byte, 16)}
	h.register(c)
	h.sendTo(c, wsMessage{Type: "state", Payload: mustMarshal(stateToDTO(s))})

	go func() {
		defer conn.Close()
		if err := h.writeWithHeartbeat(conn, c.send); err != nil {
			h.log.Debug().Err(err).Str("session", c.session).Msg("websocket write failed")
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			h.unregister(c)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "request_state" {
			if cur, ok := snapshot(); ok {
				h.sendTo(c, wsMessage{Type: "state", Payload: mustMarshal(stateToDTO(cur))})
			}
		}
	}
}
