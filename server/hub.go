package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/removeone/tournament"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Spectators only send control frames
	maxMessageSize = 512

	// Results queued per spectator before it is dropped
	sendBuffer = 64
)

type spectator struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans finished games out to every connected spectator.
// It satisfies tournament.Publisher.
type Hub struct {
	mu         sync.Mutex
	spectators map[*spectator]struct{}
	log        logrus.FieldLogger
}

func NewHub(logger logrus.FieldLogger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		spectators: map[*spectator]struct{}{},
		log:        logger.WithField("component", "hub"),
	}
}

// Publish never blocks the tournament. A spectator whose queue is full is disconnected.
func (h *Hub) Publish(result tournament.GameResult) {
	msg, err := json.Marshal(result)
	if err != nil {
		h.log.WithError(err).Error("could not encode game result")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.spectators {
		select {
		case s.send <- msg:
		default:
			h.log.WithField("remote", s.conn.RemoteAddr().String()).Warn("dropping slow spectator")
			h.drop(s)
		}
	}
}

// Spectators is the number of live connections
func (h *Hub) Spectators() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.spectators)
}

// Close disconnects everyone
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.spectators {
		h.drop(s)
	}
}

func (h *Hub) register(conn *websocket.Conn) *spectator {
	s := &spectator{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.spectators[s] = struct{}{}
	h.mu.Unlock()

	h.log.WithField("remote", conn.RemoteAddr().String()).Info("spectator joined")

	go h.writePump(s)
	go h.readPump(s)

	return s
}

func (h *Hub) unregister(s *spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(s)
}

// drop must be called with mu held
func (h *Hub) drop(s *spectator) {
	if _, ok := h.spectators[s]; !ok {
		return
	}
	delete(h.spectators, s)
	close(s.send)
}

// readPump discards anything a spectator sends and notices when they leave
func (h *Hub) readPump(s *spectator) {
	defer h.unregister(s)

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Warn("spectator connection lost")
			}
			return
		}
	}
}

func (h *Hub) writePump(s *spectator) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
