package observer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm-cable/survival/game"
)

// Server exposes the hub over HTTP and websocket.
type Server struct {
	hub      *Hub
	commands chan<- game.Command
	upgrader websocket.Upgrader
}

// NewServer creates a server publishing from hub. Client commands are sent on
// commands, which the run loop drains between ticks.
func NewServer(hub *Hub, commands chan<- game.Command) *Server {
	return &Server{
		hub:      hub,
		commands: commands,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler routes the observer endpoints. Metrics are served from gatherer when non-nil.
func (s *Server) Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/state", s.StateHandler())
	mux.HandleFunc("/v1/ws", s.WSHandler())
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// StateHandler returns the latest frame so a client can draw before subscribing.
func (s *Server) StateHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		last := s.hub.Last()
		if last == nil {
			http.Error(rw, "no frame yet", http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write(last)
	}
}

// WSHandler upgrades to a websocket, streams frames and forwards commands.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil || sub.Type != TypeSubscribe || sub.ProtocolVersion != ProtocolVersion {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		id, frames := s.hub.subscribe()
		defer s.hub.unsubscribe(id)
		slog.Info("observer_joined", "session", id, "remote", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-frames:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: commands.
		for {
			_ = conn.SetReadDeadline(time.Time{})
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var cm CommandMsg
			if err := json.Unmarshal(msg, &cm); err != nil || cm.Type != TypeCommand {
				continue
			}
			cmd, err := game.ParseCommand(cm.Command)
			if err != nil {
				slog.Warn("observer_bad_command", "session", id, "error", err)
				continue
			}
			select {
			case s.commands <- cmd:
			case <-ctx.Done():
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		slog.Info("observer_left", "session", id)
	}
}
