package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"stock_go/internal/domain"
	"stock_go/internal/infra"
	"stock_go/internal/service"

	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Error     string `json:"error"`
	Retriable bool   `json:"retriable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses.
// Conflicts carry a retriable hint so clients can re-submit.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case domain.IsInvalidState(err), domain.IsConflict(err):
		status = http.StatusConflict
	default:
		infra.GlobalMetrics.RecordError()
		slog.Error("Request failed", slog.Any("error", err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Retriable: domain.IsRetriable(err)})
}

// ======================================================================================
// Orders
// ======================================================================================

// orderResponse decorates an order with its estimated total cost.
type orderResponse struct {
	*domain.Order
	EstimatedTotalCost decimal.Decimal `json:"estimated_total_cost"`
}

func newOrderResponse(order *domain.Order) orderResponse {
	return orderResponse{Order: order, EstimatedTotalCost: order.TotalCost()}
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req service.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	order, err := s.trading.PlaceOrder(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	infra.GlobalMetrics.RecordOrderPlaced()
	slog.Info("Order placed",
		slog.String("order_id", order.ID),
		slog.String("stock_id", order.StockID),
		slog.String("side", order.Side))
	writeJSON(w, http.StatusCreated, newOrderResponse(order))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		orders []*domain.Order
		err    error
	)
	switch {
	case q.Get("user_id") != "":
		orders, err = s.trading.OrdersByUser(r.Context(), q.Get("user_id"))
	case q.Get("stock_id") != "":
		orders, err = s.trading.OrdersByStock(r.Context(), q.Get("stock_id"))
	case q.Get("status") != "":
		orders, err = s.trading.OrdersByStatus(r.Context(), q.Get("status"))
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "one of user_id, stock_id or status is required"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.trading.Order(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

type executeOrderRequest struct {
	ExecutionPrice decimal.Decimal `json:"execution_price"`
}

func (s *Server) handleExecuteOrder(w http.ResponseWriter, r *http.Request) {
	var req executeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	order, err := s.trading.ExecuteOrder(r.Context(), r.PathValue("id"), req.ExecutionPrice)
	if err != nil {
		if domain.IsConflict(err) {
			infra.GlobalMetrics.RecordConflict()
		}
		writeError(w, err)
		return
	}

	infra.GlobalMetrics.RecordOrderExecuted()
	slog.Info("Order executed",
		slog.String("order_id", order.ID),
		slog.String("execution_price", req.ExecutionPrice.String()))
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.trading.CancelOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		if domain.IsConflict(err) {
			infra.GlobalMetrics.RecordConflict()
		}
		writeError(w, err)
		return
	}

	infra.GlobalMetrics.RecordOrderCancelled()
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

// ======================================================================================
// Stocks & price discovery
// ======================================================================================

type registerStockRequest struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}

func (s *Server) handleRegisterStock(w http.ResponseWriter, r *http.Request) {
	var req registerStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	stock, err := s.stocks.Register(r.Context(), req.Symbol, req.Name, req.CompanyName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stock)
}

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	var (
		stocks []*domain.Stock
		err    error
	)
	if r.URL.Query().Get("available") == "true" {
		stocks, err = s.stocks.ListAvailable(r.Context())
	} else {
		stocks, err = s.stocks.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stocks)
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	stock, err := s.stocks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

type availabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

func (s *Server) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	stock, err := s.stocks.SetAvailability(r.Context(), r.PathValue("id"), req.IsAvailable)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

func (s *Server) handleEquilibrium(w http.ResponseWriter, r *http.Request) {
	quote, err := s.pricing.Equilibrium(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordQuote()
	writeJSON(w, http.StatusOK, quote)
}

// ======================================================================================
// Portfolio & observability
// ======================================================================================

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	report, err := s.portfolios.UserHoldings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.GetSnapshot())
}
