package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewOrder_Validation(t *testing.T) {
	t.Run("valid order starts pending", func(t *testing.T) {
		order, err := NewOrder("ord-1", "user-1", "stock-1", SideBuy, 10, decimal.NewFromInt(150))
		if err != nil {
			t.Fatalf("NewOrder failed: %v", err)
		}
		if order.Status != OrderStatusPending {
			t.Errorf("Status = %q, want %q", order.Status, OrderStatusPending)
		}
		if order.ExecutedAt != nil {
			t.Error("ExecutedAt should be nil before execution")
		}
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		_, err := NewOrder("ord-1", "user-1", "stock-1", SideBuy, 0, decimal.NewFromInt(150))
		if !IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		_, err := NewOrder("ord-1", "user-1", "stock-1", SideSell, -5, decimal.NewFromInt(150))
		if !IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("zero price rejected", func(t *testing.T) {
		_, err := NewOrder("ord-1", "user-1", "stock-1", SideBuy, 10, decimal.Zero)
		if !IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("unknown side rejected", func(t *testing.T) {
		_, err := NewOrder("ord-1", "user-1", "stock-1", "SHORT", 10, decimal.NewFromInt(150))
		if !IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestOrder_Execute(t *testing.T) {
	t.Run("pending order executes and stamps time", func(t *testing.T) {
		order, _ := NewOrder("ord-1", "user-1", "stock-1", SideBuy, 10, decimal.NewFromInt(150))
		at := time.Now()
		if err := order.Execute(at); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if order.Status != OrderStatusExecuted {
			t.Errorf("Status = %q, want %q", order.Status, OrderStatusExecuted)
		}
		if order.ExecutedAt == nil || !order.ExecutedAt.Equal(at) {
			t.Errorf("ExecutedAt = %v, want %v", order.ExecutedAt, at)
		}
	})

	t.Run("executed order cannot execute again", func(t *testing.T) {
		order, _ := NewOrder("ord-1", "user-1", "stock-1", SideBuy, 10, decimal.NewFromInt(150))
		_ = order.Execute(time.Now())
		err := order.Execute(time.Now())
		if !IsInvalidState(err) {
			t.Errorf("Expected invalid state error, got %v", err)
		}
	})

	t.Run("cancelled order cannot execute", func(t *testing.T) {
		order, _ := NewOrder("ord-1", "user-1", "stock-1", SideBuy, 10, decimal.NewFromInt(150))
		_ = order.Cancel()
		err := order.Execute(time.Now())
		if !IsInvalidState(err) {
			t.Errorf("Expected invalid state error, got %v", err)
		}
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("pending order cancels", func(t *testing.T) {
		order, _ := NewOrder("ord-1", "user-1", "stock-1", SideSell, 3, decimal.NewFromInt(42))
		if err := order.Cancel(); err != nil {
			t.Fatalf("Cancel failed: %v", err)
		}
		if order.Status != OrderStatusCancelled {
			t.Errorf("Status = %q, want %q", order.Status, OrderStatusCancelled)
		}
	})

	t.Run("executed order cannot cancel", func(t *testing.T) {
		order, _ := NewOrder("ord-1", "user-1", "stock-1", SideSell, 3, decimal.NewFromInt(42))
		_ = order.Execute(time.Now())
		if err := order.Cancel(); !IsInvalidState(err) {
			t.Errorf("Expected invalid state error, got %v", err)
		}
	})
}

func TestOrder_TotalCost(t *testing.T) {
	order, _ := NewOrder("ord-1", "user-1", "stock-1", SideBuy, 10, decimal.NewFromInt(150))

	// 10 * 150 + 1 fee
	want := decimal.NewFromInt(1501)
	if got := order.TotalCost(); !got.Equal(want) {
		t.Errorf("TotalCost = %s, want %s", got, want)
	}
}
