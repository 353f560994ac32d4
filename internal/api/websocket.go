package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleQuoteStream upgrades the connection and pushes equilibrium
// quotes for one stock at the configured interval. Price discovery is
// recomputed per tick; the stream is a convenience around the snapshot
// endpoint, not a subscription to book changes.
func (s *Server) handleQuoteStream(w http.ResponseWriter, r *http.Request) {
	stockID := r.URL.Query().Get("stock_id")
	if stockID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "stock_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	// Read pump: we expect no client messages, but reading surfaces
	// close frames and connection loss.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := time.Duration(s.cfg.Server.QuoteIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	pinger := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer pinger.Stop()

	// First quote immediately, then on every tick.
	if !s.pushQuote(r, conn, stockID) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case <-pinger.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			if !s.pushQuote(r, conn, stockID) {
				return
			}
		}
	}
}

func (s *Server) pushQuote(r *http.Request, conn *websocket.Conn, stockID string) bool {
	quote, err := s.pricing.Equilibrium(r.Context(), stockID)
	if err != nil {
		slog.Error("Quote computation failed", slog.String("stock_id", stockID), slog.Any("error", err))
		return false
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(quote); err != nil {
		return false
	}
	return true
}
