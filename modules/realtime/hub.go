package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// 메시지 타입
const (
	TypeState                  = "state"
	TypePing                   = "ping"
	TypePong                   = "pong"
	TypeRequestState           = "request_state"
	TypeCredentialSelection    = "credential_selection_requested"
	TypeCredentialSelectionEnd = "credential_selection_finished"
	TypeSessionClosed          = "session_closed"
)

const (
	sendBufferSize = 64
	writeWait      = 10 * time.Second
)

// Message - WebSocket 메시지
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	ClientID  string      `json:"clientId,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// StateProvider - 세션의 현재 상태 조회 (없는 세션이면 false)
type StateProvider func(sessionID string) (interface{}, bool)

// 연결된 클라이언트 정보
type Client struct {
	conn      *websocket.Conn
	sessionID string
	id        string
	send      chan []byte
}

// 세션(room)별 클라이언트 목록
type room struct {
	id      string
	clients map[string]*Client
	mutex   sync.Mutex
}

// Hub - 세션 단위 WebSocket 브로드캐스트
type Hub struct {
	rooms map[string]*room
	mutex sync.RWMutex

	upgrader         websocket.Upgrader
	stateProvider    StateProvider
	totalConnections int64
	nextClientID     uint64
}

// NewHub - 허브 생성
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]*room),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 개발용 - 모든 origin 허용
				return true
			},
		},
	}
}

// SetStateProvider - 접속/상태 요청 시 보낼 스냅샷 공급자 등록
func (h *Hub) SetStateProvider(provider StateProvider) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.stateProvider = provider
}

func (h *Hub) currentState(sessionID string) (interface{}, bool) {
	h.mutex.RLock()
	provider := h.stateProvider
	h.mutex.RUnlock()
	if provider == nil {
		return nil, true
	}
	return provider(sessionID)
}

// HandleWebSocket - GET /ws?session={id}
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "missing session parameter", http.StatusBadRequest)
		return
	}
	state, ok := h.currentState(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	// WebSocket 연결 업그레이드
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn:      conn,
		sessionID: sessionID,
		id:        clientID(atomic.AddUint64(&h.nextClientID, 1)),
		send:      make(chan []byte, sendBufferSize),
	}
	atomic.AddInt64(&h.totalConnections, 1)

	rm := h.getOrCreateRoom(sessionID)
	clientCount := rm.add(client)
	log.Printf("👤 [Realtime] Client %s joined session %s (Clients: %d)", client.id, sessionID, clientCount)

	go client.writePump()

	// 접속 직후 현재 상태 전송
	rm.sendTo(client.id, Message{Type: TypeState, SessionID: sessionID, ClientID: client.id, Payload: state})

	go h.readPump(client, rm)
}

// Broadcast - 세션의 모든 클라이언트에게 전송
func (h *Hub) Broadcast(sessionID string, message Message) {
	h.mutex.RLock()
	rm, exists := h.rooms[sessionID]
	h.mutex.RUnlock()
	if !exists {
		return
	}

	message.SessionID = sessionID
	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	rm.broadcast(messageBytes)
}

// ClientCount - 세션에 연결된 클라이언트 수
func (h *Hub) ClientCount(sessionID string) int {
	h.mutex.RLock()
	rm, exists := h.rooms[sessionID]
	h.mutex.RUnlock()
	if !exists {
		return 0
	}
	rm.mutex.Lock()
	defer rm.mutex.Unlock()
	return len(rm.clients)
}

// TotalConnections - 누적 연결 수
func (h *Hub) TotalConnections() int64 {
	return atomic.LoadInt64(&h.totalConnections)
}

// CloseSession - 세션 종료 알림 후 모든 클라이언트 연결 해제
func (h *Hub) CloseSession(sessionID string) {
	h.Broadcast(sessionID, Message{Type: TypeSessionClosed})

	h.mutex.Lock()
	rm, exists := h.rooms[sessionID]
	delete(h.rooms, sessionID)
	h.mutex.Unlock()
	if !exists {
		return
	}

	rm.mutex.Lock()
	for id, client := range rm.clients {
		close(client.send)
		delete(rm.clients, id)
		log.Printf("🔌 [Realtime] Disconnecting client %s from closed session %s", id, sessionID)
	}
	rm.mutex.Unlock()
}

// Shutdown - 모든 세션 연결 해제
func (h *Hub) Shutdown() {
	h.mutex.RLock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	h.mutex.RUnlock()

	for _, id := range ids {
		h.CloseSession(id)
	}
}

func (h *Hub) getOrCreateRoom(sessionID string) *room {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	rm, exists := h.rooms[sessionID]
	if !exists {
		rm = &room{id: sessionID, clients: make(map[string]*Client)}
		h.rooms[sessionID] = rm
	}
	return rm
}

// 클라이언트로부터 메시지 읽기
func (h *Hub) readPump(c *Client, rm *room) {
	defer func() {
		if remaining, removed := rm.remove(c.id); removed {
			log.Printf("👋 [Realtime] Client %s left session %s (Remaining: %d)", c.id, c.sessionID, remaining)
		}
		c.conn.Close()
	}()

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		switch message.Type {
		case TypePing:
			rm.sendTo(c.id, Message{Type: TypePong, SessionID: c.sessionID, ClientID: c.id})

		case TypeRequestState:
			state, ok := h.currentState(c.sessionID)
			if !ok {
				return
			}
			rm.sendTo(c.id, Message{Type: TypeState, SessionID: c.sessionID, ClientID: c.id, Payload: state})

		default:
			log.Printf("⚠️  [Realtime] Ignoring message type '%s' from client %s", message.Type, c.id)
		}
	}
}

// 클라이언트로 메시지 쓰기
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (r *room) add(client *Client) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.clients[client.id] = client
	return len(r.clients)
}

func (r *room) remove(clientID string) (int, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	client, exists := r.clients[clientID]
	if !exists {
		return len(r.clients), false
	}
	close(client.send)
	delete(r.clients, clientID)
	return len(r.clients), true
}

func (r *room) broadcast(messageBytes []byte) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for id, client := range r.clients {
		select {
		case client.send <- messageBytes:
		default:
			// 느린 클라이언트는 끊음
			close(client.send)
			delete(r.clients, id)
		}
	}
}

func (r *room) sendTo(clientID string, message Message) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if client, exists := r.clients[clientID]; exists {
		select {
		case client.send <- messageBytes:
		default:
		}
	}
}

func clientID(n uint64) string {
	return "client-" + strconv.FormatUint(n, 10)
}
