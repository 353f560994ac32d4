package service

import (
	"context"
	"testing"

	"stock_go/internal/domain"
	"stock_go/internal/infra/storage"
)

func TestStockService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers an available stock", func(t *testing.T) {
		store := storage.NewMemoryStore()
		svc := NewStockService(store)

		stock, err := svc.Register(ctx, "ACME", "Acme", "Acme Corporation")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if !stock.IsAvailable {
			t.Error("New stock should start available")
		}

		if _, err := store.FindStockByID(ctx, stock.ID); err != nil {
			t.Errorf("Stock not persisted: %v", err)
		}
	})

	t.Run("rejects duplicate symbols", func(t *testing.T) {
		store := storage.NewMemoryStore()
		svc := NewStockService(store)
		if _, err := svc.Register(ctx, "ACME", "Acme", "Acme Corporation"); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if _, err := svc.Register(ctx, "ACME", "Other", "Other Corp"); !domain.IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("rejects invalid symbols", func(t *testing.T) {
		store := storage.NewMemoryStore()
		svc := NewStockService(store)
		if _, err := svc.Register(ctx, "", "Acme", "Acme Corporation"); !domain.IsValidation(err) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestStockService_SetAvailability(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewStockService(store)

	stock, err := svc.Register(ctx, "ACME", "Acme", "Acme Corporation")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("suspend", func(t *testing.T) {
		updated, err := svc.SetAvailability(ctx, stock.ID, false)
		if err != nil {
			t.Fatalf("SetAvailability failed: %v", err)
		}
		if updated.IsAvailable {
			t.Error("Expected stock suspended")
		}

		avail, _ := svc.ListAvailable(ctx)
		if len(avail) != 0 {
			t.Errorf("Available = %d, want 0", len(avail))
		}
	})

	t.Run("reopen", func(t *testing.T) {
		updated, err := svc.SetAvailability(ctx, stock.ID, true)
		if err != nil {
			t.Fatalf("SetAvailability failed: %v", err)
		}
		if !updated.IsAvailable {
			t.Error("Expected stock available")
		}
	})

	t.Run("missing stock", func(t *testing.T) {
		if _, err := svc.SetAvailability(ctx, "nope", true); !domain.IsNotFound(err) {
			t.Errorf("Expected not found, got %v", err)
		}
	})
}
