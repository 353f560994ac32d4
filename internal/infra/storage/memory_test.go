package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"stock_go/internal/domain"

	"github.com/shopspring/decimal"
)

func TestMemoryStore_Suite(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) domain.Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	order, _ := domain.NewOrder("ord-1", "user-1", "stock-1", domain.SideBuy, 10, decimal.NewFromInt(150))
	if err := store.SaveOrder(ctx, order); err != nil {
		t.Fatalf("SaveOrder failed: %v", err)
	}

	loaded, _ := store.FindOrderByID(ctx, "ord-1")
	loaded.Status = domain.OrderStatusCancelled

	again, _ := store.FindOrderByID(ctx, "ord-1")
	if again.Status != domain.OrderStatusPending {
		t.Error("Mutating a loaded order must not change stored state")
	}
}

func TestMemoryStore_ConcurrentStatusCAS(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	order, _ := domain.NewOrder("ord-1", "user-1", "stock-1", domain.SideBuy, 10, decimal.NewFromInt(150))
	if err := store.SaveOrder(ctx, order); err != nil {
		t.Fatalf("SaveOrder failed: %v", err)
	}

	const attempts = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			at := time.Now()
			if err := store.UpdateOrderStatus(ctx, "ord-1", domain.OrderStatusPending, domain.OrderStatusExecuted, &at); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Errorf("Exactly one concurrent transition must win, got %d", won)
	}
}
