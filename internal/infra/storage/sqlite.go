package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stock_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Storage is the SQLite-backed domain.Store. The connection handle is
// explicit: callers create it with NewStorage and release it with Close.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at path and runs
// schema migration for the trading tables.
func NewStorage(path string) (*Storage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Order{}, &domain.Portfolio{}, &domain.Stock{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Order operations
// ======================================================================================

func (s *Storage) SaveOrder(ctx context.Context, order *domain.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *Storage) FindOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Storage) FindOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&orders).Error
	return orders, err
}

func (s *Storage) FindOrdersByStock(ctx context.Context, stockID string) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := s.db.WithContext(ctx).Where("stock_id = ?", stockID).Order("created_at").Find(&orders).Error
	return orders, err
}

func (s *Storage) FindOrdersByStatus(ctx context.Context, status string) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at").Find(&orders).Error
	return orders, err
}

func (s *Storage) FindPendingOrdersByStock(ctx context.Context, stockID, side string) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := s.db.WithContext(ctx).
		Where("stock_id = ? AND side = ? AND status = ?", stockID, side, domain.OrderStatusPending).
		Find(&orders).Error
	return orders, err
}

func (s *Storage) UpdateOrder(ctx context.Context, order *domain.Order) error {
	res := s.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", order.ID).Updates(order)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Entity: "order", ID: order.ID}
	}
	return nil
}

// UpdateOrderStatus is the conditional transition: the UPDATE only
// matches while the order is still in the expected status, so the
// losing side of a concurrent race affects zero rows.
func (s *Storage) UpdateOrderStatus(ctx context.Context, id, from, to string, executedAt *time.Time) error {
	updates := map[string]any{"status": to}
	if executedAt != nil {
		updates["executed_at"] = *executedAt
	}

	res := s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing order from a lost race.
		var count int64
		if err := s.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &domain.NotFoundError{Entity: "order", ID: id}
		}
		return &domain.ConflictError{Op: "update order status", Err: domain.ErrStatusChanged}
	}
	return nil
}

func (s *Storage) DeleteOrder(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Order{}).Error
}

// ======================================================================================
// Portfolio operations
// ======================================================================================

func (s *Storage) FindPortfolio(ctx context.Context, userID, stockID string) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := s.db.WithContext(ctx).First(&p, "user_id = ? AND stock_id = ?", userID, stockID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Entity: "portfolio", ID: userID + "/" + stockID}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) FindPortfoliosByUser(ctx context.Context, userID string) ([]*domain.Portfolio, error) {
	var portfolios []*domain.Portfolio
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("stock_id").Find(&portfolios).Error
	return portfolios, err
}

// SavePortfolio upserts on the (user_id, stock_id) composite key.
func (s *Storage) SavePortfolio(ctx context.Context, p *domain.Portfolio) error {
	p.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error
}

func (s *Storage) DeletePortfolio(ctx context.Context, userID, stockID string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND stock_id = ?", userID, stockID).
		Delete(&domain.Portfolio{}).Error
}

// ======================================================================================
// Stock operations
// ======================================================================================

func (s *Storage) SaveStock(ctx context.Context, stock *domain.Stock) error {
	return s.db.WithContext(ctx).Create(stock).Error
}

func (s *Storage) FindStockByID(ctx context.Context, id string) (*domain.Stock, error) {
	var stock domain.Stock
	err := s.db.WithContext(ctx).First(&stock, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Entity: "stock", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (s *Storage) FindStockBySymbol(ctx context.Context, symbol string) (*domain.Stock, error) {
	var stock domain.Stock
	err := s.db.WithContext(ctx).First(&stock, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Entity: "stock", ID: symbol}
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (s *Storage) FindAllStocks(ctx context.Context) ([]*domain.Stock, error) {
	var stocks []*domain.Stock
	err := s.db.WithContext(ctx).Order("symbol").Find(&stocks).Error
	return stocks, err
}

func (s *Storage) FindAvailableStocks(ctx context.Context) ([]*domain.Stock, error) {
	var stocks []*domain.Stock
	err := s.db.WithContext(ctx).Where("is_available = ?", true).Order("symbol").Find(&stocks).Error
	return stocks, err
}

func (s *Storage) UpdateStock(ctx context.Context, stock *domain.Stock) error {
	res := s.db.WithContext(ctx).Model(&domain.Stock{}).Where("id = ?", stock.ID).
		Select("symbol", "name", "company_name", "is_available").Updates(stock)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Entity: "stock", ID: stock.ID}
	}
	return nil
}

func (s *Storage) DeleteStock(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Stock{}).Error
}

// InTransaction runs fn inside one database transaction; a non-nil
// error from fn rolls everything back.
func (s *Storage) InTransaction(ctx context.Context, fn func(domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{db: tx})
	})
}
