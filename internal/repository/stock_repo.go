package repository

import (
	"context"
	"time"

	"armory/internal/model"

	"gorm.io/gorm"
)

// StockRepository owns the on-hand counters. Adjust is the write path every
// mutating operation funnels through; it is atomic per (base, equipment) row.
// applied=false means the debit would have driven the quantity negative and
// nothing was changed — the caller translates that into a domain error.
type StockRepository interface {
	Adjust(ctx context.Context, baseCode, equipmentCode string, delta int) (applied bool, err error)
	AdjustTx(tx *gorm.DB, baseCode, equipmentCode string, delta int) (applied bool, err error)
	Get(ctx context.Context, baseCode, equipmentCode string) (*model.StockLevel, error)
	ListByBase(ctx context.Context, baseCode string) ([]model.StockLevel, error)
	TotalQty(ctx context.Context) (int64, error)
	TotalQtyByBase(ctx context.Context, baseCode string) (int64, error)
	CountByBase(ctx context.Context, baseCode string) (int64, error)
	CountByEquipment(ctx context.Context, equipmentCode string) (int64, error)
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) Adjust(ctx context.Context, baseCode, equipmentCode string, delta int) (bool, error) {
	return r.AdjustTx(r.db.WithContext(ctx), baseCode, equipmentCode, delta)
}

// AdjustTx applies the delta as a single conditional row update, so concurrent
// callers touching the same key serialize on the row lock and callers touching
// different keys never block each other. Credits upsert the row; debits only
// succeed when the remaining quantity stays non-negative.
func (r *stockRepo) AdjustTx(tx *gorm.DB, baseCode, equipmentCode string, delta int) (bool, error) {
	if delta >= 0 {
		err := tx.Exec(`
			INSERT INTO stock_levels (base_code, equipment_code, quantity, updated_at)
			VALUES (?, ?, ?, now())
			ON CONFLICT (base_code, equipment_code)
			DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = now()
		`, baseCode, equipmentCode, delta).Error
		return err == nil, err
	}

	res := tx.Model(&model.StockLevel{}).
		Where("base_code = ? AND equipment_code = ? AND quantity + ? >= 0", baseCode, equipmentCode, delta).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *stockRepo) Get(ctx context.Context, baseCode, equipmentCode string) (*model.StockLevel, error) {
	var s model.StockLevel
	err := r.db.WithContext(ctx).
		First(&s, "base_code = ? AND equipment_code = ?", baseCode, equipmentCode).Error
	return &s, err
}

func (r *stockRepo) ListByBase(ctx context.Context, baseCode string) ([]model.StockLevel, error) {
	var levels []model.StockLevel
	err := r.db.WithContext(ctx).
		Where("base_code = ?", baseCode).
		Order("equipment_code ASC").
		Find(&levels).Error
	return levels, err
}

func (r *stockRepo) TotalQty(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.StockLevel{}).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

func (r *stockRepo) TotalQtyByBase(ctx context.Context, baseCode string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.StockLevel{}).
		Where("base_code = ?", baseCode).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

// CountByBase counts rows still holding stock — empty rows don't block a
// base deletion on their own (the event records do).
func (r *stockRepo) CountByBase(ctx context.Context, baseCode string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.StockLevel{}).
		Where("base_code = ? AND quantity > 0", baseCode).Count(&n).Error
	return n, err
}

func (r *stockRepo) CountByEquipment(ctx context.Context, equipmentCode string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.StockLevel{}).
		Where("equipment_code = ? AND quantity > 0", equipmentCode).Count(&n).Error
	return n, err
}
