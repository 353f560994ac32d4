// Package api exposes the trading subsystem over HTTP: order placement,
// execution and cancellation, price discovery, portfolio reports and the
// instrument registry, plus a websocket stream of equilibrium quotes.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"stock_go/internal/infra"
	"stock_go/internal/service"
)

// Server hosts the HTTP endpoints on top of the service layer.
type Server struct {
	cfg        *infra.Config
	trading    *service.TradingService
	pricing    *service.PricingService
	portfolios *service.PortfolioService
	stocks     *service.StockService

	httpServer *http.Server
}

// NewServer creates a new Server wired to the given services.
func NewServer(cfg *infra.Config, trading *service.TradingService, pricing *service.PricingService, portfolios *service.PortfolioService, stocks *service.StockService) *Server {
	return &Server{
		cfg:        cfg,
		trading:    trading,
		pricing:    pricing,
		portfolios: portfolios,
		stocks:     stocks,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/orders", s.handlePlaceOrder)
	mux.HandleFunc("GET /api/orders", s.handleListOrders)
	mux.HandleFunc("GET /api/orders/{id}", s.handleGetOrder)
	mux.HandleFunc("POST /api/orders/{id}/execute", s.handleExecuteOrder)
	mux.HandleFunc("POST /api/orders/{id}/cancel", s.handleCancelOrder)

	mux.HandleFunc("POST /api/stocks", s.handleRegisterStock)
	mux.HandleFunc("GET /api/stocks", s.handleListStocks)
	mux.HandleFunc("GET /api/stocks/{id}", s.handleGetStock)
	mux.HandleFunc("PUT /api/stocks/{id}/availability", s.handleSetAvailability)
	mux.HandleFunc("GET /api/stocks/{id}/equilibrium", s.handleEquilibrium)

	mux.HandleFunc("GET /api/users/{id}/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)

	mux.HandleFunc("GET /ws/quotes", s.handleQuoteStream)

	return mux
}

// ListenAndServe starts the HTTP listener and blocks until the context
// is cancelled or a fatal error occurs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", slog.String("addr", s.cfg.Server.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Shutdown performs a graceful shutdown of the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
