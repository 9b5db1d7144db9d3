// Package live pushes forecasts to websocket subscribers.
package live

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"FinDash/internal/domain/models"
	svcmetrics "FinDash/internal/service/metrics"
	applogger "FinDash/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer     = 8
	maxMessageSize = 512
)

// Message is the envelope written to subscribers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans forecast updates out to every connected subscriber. Register,
// unregister and broadcast are serialized through Run.
type Hub struct {
	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64

	pingInterval time.Duration
	writeTimeout time.Duration
	l            *applogger.Logger
}

func NewHub(l *applogger.Logger, pingInterval, writeTimeout time.Duration) *Hub {
	if l == nil {
		l = applogger.Nop()
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	svcmetrics.Register()
	return &Hub{
		register:     make(chan *subscriber),
		unregister:   make(chan *subscriber),
		broadcast:    make(chan []byte, 16),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		l:            l,
	}
}

// Run serves the hub until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	subs := make(map[*subscriber]struct{})
	defer func() {
		close(h.done)
		for s := range subs {
			close(s.send)
		}
		h.setCount(0)
	}()

	for {
		select {
		case s := <-h.register:
			subs[s] = struct{}{}
			h.setCount(len(subs))
		case s := <-h.unregister:
			if _, ok := subs[s]; ok {
				delete(subs, s)
				close(s.send)
				h.setCount(len(subs))
			}
		case msg := <-h.broadcast:
			for s := range subs {
				select {
				case s.send <- msg:
				default:
					// Slow subscriber; drop it rather than stall the others.
					delete(subs, s)
					close(s.send)
				}
			}
			h.setCount(len(subs))
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) setCount(n int) {
	h.count.Store(int64(n))
	svcmetrics.LiveSubscribers.Set(float64(n))
}

// Subscribers reports the number of connected subscribers.
func (h *Hub) Subscribers() int { return int(h.count.Load()) }

// Broadcast queues f for every subscriber. It never blocks; when the queue
// is full the update is dropped.
func (h *Hub) Broadcast(f *models.RevenueForecast) {
	msg, err := json.Marshal(Message{Type: "forecast", Data: f})
	if err != nil {
		h.l.Error("live encode forecast failed", applogger.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.l.Warn("live broadcast queue full, update dropped")
	}
}

// Encode wraps a payload in the subscriber envelope.
func Encode(kind string, data interface{}) ([]byte, error) {
	return json.Marshal(Message{Type: kind, Data: data})
}

// Serve registers conn, sends initial (if any) and blocks until the peer
// disconnects or the hub stops.
func (h *Hub) Serve(conn *websocket.Conn, initial []byte) {
	s := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	if len(initial) > 0 {
		s.send <- initial
	}

	select {
	case h.register <- s:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go h.writePump(s)
	h.readPump(s)
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(s *subscriber) {
	defer func() {
		select {
		case h.unregister <- s:
		case <-h.done:
		}
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.l.Debug("live subscriber read error", applogger.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
