package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/previewlab/forge/internal/pipeline"
)

const (
	// Time allowed to write a message to a peer before it is dropped.
	writeWait = 10 * time.Second

	// Per-client send buffer. A client that falls this far behind loses
	// messages rather than stalling the hub.
	clientSendBuffer = 64
)

func marshalEvent(event pipeline.Event) ([]byte, error) {
	return json.Marshal(event)
}

// handleWebSocket upgrades the connection and registers the client with the
// progress hub.
func (s *BuildServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if s.cfg.Server.Environment == "development" {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = s.cfg.Server.AllowedOrigins
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	send := make(chan []byte, clientSendBuffer)

	s.clientsMutex.Lock()
	s.clients[conn] = send
	s.clientsMutex.Unlock()

	go s.writePump(conn, send)
	go s.readPump(conn)
}

// runHub fans broadcast messages out to every connected client.
func (s *BuildServer) runHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.broadcast:
			s.clientsMutex.RLock()
			for _, send := range s.clients {
				select {
				case send <- msg:
				default:
					// Slow client: drop the message, not the connection.
				}
			}
			s.clientsMutex.RUnlock()
		}
	}
}

func (s *BuildServer) writePump(conn *websocket.Conn, send chan []byte) {
	for msg := range send {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := conn.Write(ctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			s.unregister(conn)
			return
		}
	}
}

// readPump exists to notice client disconnects; inbound messages are ignored.
func (s *BuildServer) readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.Read(context.Background()); err != nil {
			s.unregister(conn)
			return
		}
	}
}

func (s *BuildServer) unregister(conn *websocket.Conn) {
	s.clientsMutex.Lock()
	if send, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		close(send)
	}
	s.clientsMutex.Unlock()
	conn.Close(websocket.StatusNormalClosure, "")
}
