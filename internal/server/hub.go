package server

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// hub fans view snapshots out to websocket subscribers. Every successful
// filter apply broadcasts the fresh snapshot, so clients stay in sync without
// polling.
type hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*subscriber
	log  *zap.Logger
}

type subscriber struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func newHub(log *zap.Logger) *hub {
	return &hub{subs: make(map[uuid.UUID]*subscriber), log: log}
}

// add registers a connection and starts its writer pump. The caller owns the
// read side.
func (h *hub) add(conn *websocket.Conn) *subscriber {
	sub := &subscriber{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, 8),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()

	go sub.writePump()
	return sub
}

func (h *hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub.id)
	h.mu.Unlock()
	sub.close()
}

// broadcast marshals the payload once and queues it to every subscriber.
// Slow subscribers drop messages instead of blocking the filter request.
func (h *hub) broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("marshaling broadcast payload", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			h.log.Warn("dropping broadcast to slow subscriber",
				zap.String("subscriber", sub.id.String()))
		}
	}
}

// sendTo queues a payload to a single subscriber.
func (h *hub) sendTo(sub *subscriber, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("marshaling payload", zap.Error(err))
		return
	}
	select {
	case sub.send <- data:
	case <-sub.done:
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (s *subscriber) writePump() {
	defer s.conn.Close()
	for {
		select {
		case data := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}
