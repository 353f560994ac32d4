package app

import (
	"log/slog"

	"stock_go/internal/api"
	"stock_go/internal/infra"
	"stock_go/internal/infra/storage"
	"stock_go/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Server  *api.Server
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB, services)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Stock Go...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Database.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.Database.Path))

	// 4. Wire Services & API
	pricing := service.NewPricingService(store)
	b.Server = api.NewServer(
		cfg,
		service.NewTradingService(store),
		pricing,
		service.NewPortfolioService(store, pricing),
		service.NewStockService(store),
	)
	slog.Info("✅ Services wired")

	return nil
}

// Close releases held resources.
func (b *Bootstrap) Close() {
	if b.Storage != nil {
		if err := b.Storage.Close(); err != nil {
			slog.Warn("Failed to close storage", slog.Any("error", err))
		}
	}
}
