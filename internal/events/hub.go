package events

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is the envelope every broadcast uses on the wire.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

const (
	TypeQueueChanged    = "queue_changed"
	TypePlaySong        = "play_song"
	TypeSongFinished    = "song_finished"
	TypeConsumoCreated  = "consumo_created"
	TypeConsumoDeleted  = "consumo_deleted"
	TypeProductUpdate   = "product_update"
	TypeNotification    = "notification"
)

// Hub fans events out to every connected viewer (guest phones, the
// operator dashboard, the player screen). Broadcasting is fire and
// forget: a dead connection is dropped, never surfaced to the caller.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		_ = conn.Close()
		delete(h.conns, conn)
	}
	h.mu.Unlock()
}

func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the message to all connections, pruning the ones that
// fail mid-write.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var dead []*websocket.Conn
	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			dead = append(dead, c)
		}
	}
	if len(dead) > 0 {
		log.Printf("events: pruning %d dead websocket connections", len(dead))
		for _, c := range dead {
			h.Unregister(c)
		}
	}
}

func (h *Hub) QueueChanged(queueView any) {
	h.Broadcast(Message{Type: TypeQueueChanged, Payload: queueView})
}

func (h *Hub) PlaySong(trackID string) {
	h.Broadcast(Message{Type: TypePlaySong, Payload: map[string]string{"track_id": trackID}})
}

func (h *Hub) SongFinished(title, performer string, score int) {
	h.Broadcast(Message{Type: TypeSongFinished, Payload: map[string]any{
		"title":     title,
		"performer": performer,
		"score":     score,
	}})
}

func (h *Hub) ConsumoCreated(summary any) {
	h.Broadcast(Message{Type: TypeConsumoCreated, Payload: summary})
}

func (h *Hub) ConsumoDeleted(line any) {
	h.Broadcast(Message{Type: TypeConsumoDeleted, Payload: line})
}

func (h *Hub) ProductUpdate(product any) {
	h.Broadcast(Message{Type: TypeProductUpdate, Payload: product})
}

func (h *Hub) Notify(message string) {
	h.Broadcast(Message{Type: TypeNotification, Payload: map[string]string{"message": message}})
}
