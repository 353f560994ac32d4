package storage

import (
	"context"
	"testing"
	"time"

	"stock_go/internal/domain"

	"github.com/shopspring/decimal"
)

// runStoreSuite exercises the domain.Store contract against a backend.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) domain.Store) {
	ctx := context.Background()

	t.Run("order round trip", func(t *testing.T) {
		store := newStore(t)
		order, _ := domain.NewOrder("ord-1", "user-1", "stock-1", domain.SideBuy, 10, decimal.NewFromInt(150))
		if err := store.SaveOrder(ctx, order); err != nil {
			t.Fatalf("SaveOrder failed: %v", err)
		}

		got, err := store.FindOrderByID(ctx, "ord-1")
		if err != nil {
			t.Fatalf("FindOrderByID failed: %v", err)
		}
		if got.UserID != "user-1" || got.Quantity != 10 || !got.Price.Equal(decimal.NewFromInt(150)) {
			t.Errorf("Loaded order mismatch: %+v", got)
		}
		if got.Status != domain.OrderStatusPending {
			t.Errorf("Status = %q, want PENDING", got.Status)
		}
	})

	t.Run("missing order is not found", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.FindOrderByID(ctx, "nope"); !domain.IsNotFound(err) {
			t.Errorf("Expected not found, got %v", err)
		}
	})

	t.Run("pending orders filtered by stock and side", func(t *testing.T) {
		store := newStore(t)
		seed := []struct {
			id    string
			stock string
			side  string
			done  bool
		}{
			{"ord-1", "stock-1", domain.SideBuy, false},
			{"ord-2", "stock-1", domain.SideBuy, true},
			{"ord-3", "stock-1", domain.SideSell, false},
			{"ord-4", "stock-2", domain.SideBuy, false},
		}
		for _, s := range seed {
			order, _ := domain.NewOrder(s.id, "user-1", s.stock, s.side, 1, decimal.NewFromInt(100))
			if s.done {
				_ = order.Execute(time.Now())
			}
			if err := store.SaveOrder(ctx, order); err != nil {
				t.Fatalf("SaveOrder failed: %v", err)
			}
		}

		buys, err := store.FindPendingOrdersByStock(ctx, "stock-1", domain.SideBuy)
		if err != nil {
			t.Fatalf("FindPendingOrdersByStock failed: %v", err)
		}
		if len(buys) != 1 || buys[0].ID != "ord-1" {
			t.Errorf("Pending buys = %+v, want only ord-1", buys)
		}

		sells, err := store.FindPendingOrdersByStock(ctx, "stock-1", domain.SideSell)
		if err != nil {
			t.Fatalf("FindPendingOrdersByStock failed: %v", err)
		}
		if len(sells) != 1 || sells[0].ID != "ord-3" {
			t.Errorf("Pending sells = %+v, want only ord-3", sells)
		}
	})

	t.Run("conditional status update", func(t *testing.T) {
		store := newStore(t)
		order, _ := domain.NewOrder("ord-1", "user-1", "stock-1", domain.SideBuy, 10, decimal.NewFromInt(150))
		if err := store.SaveOrder(ctx, order); err != nil {
			t.Fatalf("SaveOrder failed: %v", err)
		}

		at := time.Now()
		if err := store.UpdateOrderStatus(ctx, "ord-1", domain.OrderStatusPending, domain.OrderStatusExecuted, &at); err != nil {
			t.Fatalf("UpdateOrderStatus failed: %v", err)
		}

		got, _ := store.FindOrderByID(ctx, "ord-1")
		if got.Status != domain.OrderStatusExecuted {
			t.Errorf("Status = %q, want EXECUTED", got.Status)
		}
		if got.ExecutedAt == nil {
			t.Error("ExecutedAt not stamped")
		}

		// Second transition loses: the order is no longer PENDING.
		err := store.UpdateOrderStatus(ctx, "ord-1", domain.OrderStatusPending, domain.OrderStatusCancelled, nil)
		if !domain.IsConflict(err) {
			t.Errorf("Expected conflict, got %v", err)
		}

		// Missing order is a not-found, not a conflict.
		err = store.UpdateOrderStatus(ctx, "nope", domain.OrderStatusPending, domain.OrderStatusExecuted, &at)
		if !domain.IsNotFound(err) {
			t.Errorf("Expected not found, got %v", err)
		}
	})

	t.Run("portfolio upsert and delete", func(t *testing.T) {
		store := newStore(t)
		p, _ := domain.NewPortfolio("user-1", "stock-1", 10, decimal.NewFromInt(15))
		if err := store.SavePortfolio(ctx, p); err != nil {
			t.Fatalf("SavePortfolio failed: %v", err)
		}

		p.Quantity = 20
		p.AvgPurchasePrice = decimal.NewFromInt(18)
		if err := store.SavePortfolio(ctx, p); err != nil {
			t.Fatalf("SavePortfolio upsert failed: %v", err)
		}

		got, err := store.FindPortfolio(ctx, "user-1", "stock-1")
		if err != nil {
			t.Fatalf("FindPortfolio failed: %v", err)
		}
		if got.Quantity != 20 || !got.AvgPurchasePrice.Equal(decimal.NewFromInt(18)) {
			t.Errorf("Upserted portfolio mismatch: %+v", got)
		}

		if err := store.DeletePortfolio(ctx, "user-1", "stock-1"); err != nil {
			t.Fatalf("DeletePortfolio failed: %v", err)
		}
		if _, err := store.FindPortfolio(ctx, "user-1", "stock-1"); !domain.IsNotFound(err) {
			t.Errorf("Expected not found after delete, got %v", err)
		}
	})

	t.Run("portfolios by user", func(t *testing.T) {
		store := newStore(t)
		for _, stockID := range []string{"stock-2", "stock-1"} {
			p, _ := domain.NewPortfolio("user-1", stockID, 5, decimal.NewFromInt(10))
			if err := store.SavePortfolio(ctx, p); err != nil {
				t.Fatalf("SavePortfolio failed: %v", err)
			}
		}
		other, _ := domain.NewPortfolio("user-2", "stock-1", 5, decimal.NewFromInt(10))
		_ = store.SavePortfolio(ctx, other)

		got, err := store.FindPortfoliosByUser(ctx, "user-1")
		if err != nil {
			t.Fatalf("FindPortfoliosByUser failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].StockID != "stock-1" || got[1].StockID != "stock-2" {
			t.Errorf("Expected stable stock_id ordering, got %s, %s", got[0].StockID, got[1].StockID)
		}
	})

	t.Run("stock round trip and filters", func(t *testing.T) {
		store := newStore(t)
		open, _ := domain.NewStock("stk-1", "ACME", "Acme", "Acme Corp", true)
		halted, _ := domain.NewStock("stk-2", "BETA", "Beta", "Beta Inc", false)
		for _, s := range []*domain.Stock{open, halted} {
			if err := store.SaveStock(ctx, s); err != nil {
				t.Fatalf("SaveStock failed: %v", err)
			}
		}

		bySymbol, err := store.FindStockBySymbol(ctx, "BETA")
		if err != nil || bySymbol.ID != "stk-2" {
			t.Fatalf("FindStockBySymbol = %+v, %v", bySymbol, err)
		}

		all, err := store.FindAllStocks(ctx)
		if err != nil || len(all) != 2 {
			t.Fatalf("FindAllStocks = %d stocks, %v", len(all), err)
		}

		avail, err := store.FindAvailableStocks(ctx)
		if err != nil || len(avail) != 1 || avail[0].ID != "stk-1" {
			t.Fatalf("FindAvailableStocks = %+v, %v", avail, err)
		}

		halted.MakeAvailable()
		if err := store.UpdateStock(ctx, halted); err != nil {
			t.Fatalf("UpdateStock failed: %v", err)
		}
		avail, _ = store.FindAvailableStocks(ctx)
		if len(avail) != 2 {
			t.Errorf("Expected 2 available stocks after toggle, got %d", len(avail))
		}
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		store := newStore(t)
		order, _ := domain.NewOrder("ord-1", "user-1", "stock-1", domain.SideBuy, 10, decimal.NewFromInt(150))
		if err := store.SaveOrder(ctx, order); err != nil {
			t.Fatalf("SaveOrder failed: %v", err)
		}

		sentinel := &domain.StateError{Op: "test", Status: "boom"}
		err := store.InTransaction(ctx, func(tx domain.Store) error {
			at := time.Now()
			if err := tx.UpdateOrderStatus(ctx, "ord-1", domain.OrderStatusPending, domain.OrderStatusExecuted, &at); err != nil {
				t.Fatalf("UpdateOrderStatus in tx failed: %v", err)
			}
			p, _ := domain.NewPortfolio("user-1", "stock-1", 10, decimal.NewFromInt(150))
			if err := tx.SavePortfolio(ctx, p); err != nil {
				t.Fatalf("SavePortfolio in tx failed: %v", err)
			}
			return sentinel
		})
		if !domain.IsInvalidState(err) {
			t.Fatalf("Expected the fn error back, got %v", err)
		}

		got, _ := store.FindOrderByID(ctx, "ord-1")
		if got.Status != domain.OrderStatusPending {
			t.Errorf("Order status = %q after rollback, want PENDING", got.Status)
		}
		if _, err := store.FindPortfolio(ctx, "user-1", "stock-1"); !domain.IsNotFound(err) {
			t.Errorf("Portfolio should not survive rollback, got %v", err)
		}
	})

	t.Run("transaction commits on success", func(t *testing.T) {
		store := newStore(t)
		order, _ := domain.NewOrder("ord-1", "user-1", "stock-1", domain.SideBuy, 10, decimal.NewFromInt(150))
		_ = store.SaveOrder(ctx, order)

		err := store.InTransaction(ctx, func(tx domain.Store) error {
			at := time.Now()
			return tx.UpdateOrderStatus(ctx, "ord-1", domain.OrderStatusPending, domain.OrderStatusExecuted, &at)
		})
		if err != nil {
			t.Fatalf("InTransaction failed: %v", err)
		}

		got, _ := store.FindOrderByID(ctx, "ord-1")
		if got.Status != domain.OrderStatusExecuted {
			t.Errorf("Order status = %q after commit, want EXECUTED", got.Status)
		}
	})
}
