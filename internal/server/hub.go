package server

import (
	"context"
	"net/http"

	"MarketExplorer/internal/model"
	"MarketExplorer/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	msgInitial = "INITIAL"
	msgUpdate  = "UPDATE"
)

// wsMessage is pushed to WebSocket clients. Snapshot is set once loading has finished.
type wsMessage struct {
	Type     string          `json:"type"`
	State    stateView       `json:"state"`
	Snapshot *model.Snapshot `json:"snapshot,omitempty"`
}

func newMessage(typ string, st store.State) wsMessage {
	m := wsMessage{Type: typ, State: viewOf(st)}
	if !st.Loading && st.Snapshot != nil {
		m.Snapshot = st.Snapshot
	}
	return m
}

// runHub owns the client set: registration, removal and fan-out of store states.
func (s *Server) runHub(ctx context.Context) {
	defer close(s.done)
	defer s.cancelSub()

	states := s.states
	for {
		select {
		case <-ctx.Done():
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			client.send <- newMessage(msgInitial, s.store.State())

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case st, ok := <-states:
			if !ok {
				states = nil
				continue
			}
			msg := newMessage(msgUpdate, st)
			for client := range s.clients {
				select {
				case client.send <- msg:
				default:
					// too slow, drop it rather than block the hub
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// newUpgrader accepts requests without an Origin header (non-browser clients)
// and otherwise applies the same allow list as CORS.
func newUpgrader(origins []string) *websocket.Upgrader {
	policy := newOriginPolicy(origins)
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || policy.allows(origin)
		},
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan wsMessage, 16),
	}
	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}
	log.Debug().Str("ip", c.ClientIP()).Msg("websocket client connected")

	go client.writePump()
	go client.readPump()
}
