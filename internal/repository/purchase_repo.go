package repository

import (
	"context"

	"armory/internal/dto"
	"armory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	CreateTx(tx *gorm.DB, p *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, filter dto.PurchaseFilter) ([]model.Purchase, int64, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	CountByBase(ctx context.Context, baseCode string) (int64, error)
	CountByEquipment(ctx context.Context, equipmentCode string) (int64, error)
	StatsByBase(ctx context.Context, baseCode string) (count, totalQty int64, err error)

	DB() *gorm.DB
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository { return &purchaseRepo{db: db} }

func (r *purchaseRepo) CreateTx(tx *gorm.DB, p *model.Purchase) error {
	return tx.Create(p).Error
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *purchaseRepo) List(ctx context.Context, filter dto.PurchaseFilter) ([]model.Purchase, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Purchase{})

	if filter.BaseCode != "" {
		q = q.Where("base_code = ?", filter.BaseCode)
	}
	if filter.EquipmentCode != "" {
		q = q.Where("equipment_code = ?", filter.EquipmentCode)
	}
	if filter.From != "" {
		q = q.Where("purchased_at >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("purchased_at < (?::date + 1)", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []model.Purchase
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("purchased_at DESC, created_at DESC").
		Limit(filter.Limit).Offset(offset).Find(&purchases).Error
	return purchases, total, err
}

func (r *purchaseRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Purchase{}, "id = ?", id).Error
}

func (r *purchaseRepo) CountByBase(ctx context.Context, baseCode string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("base_code = ?", baseCode).Count(&n).Error
	return n, err
}

func (r *purchaseRepo) CountByEquipment(ctx context.Context, equipmentCode string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("equipment_code = ?", equipmentCode).Count(&n).Error
	return n, err
}

func (r *purchaseRepo) StatsByBase(ctx context.Context, baseCode string) (int64, int64, error) {
	var row struct {
		Count    int64
		TotalQty int64
	}
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("base_code = ?", baseCode).
		Select("COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total_qty").
		Scan(&row).Error
	return row.Count, row.TotalQty, err
}

func (r *purchaseRepo) DB() *gorm.DB { return r.db }
