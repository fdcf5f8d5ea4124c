package repository

import (
	"context"

	"armory/internal/dto"
	"armory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenditureRepository interface {
	CreateTx(tx *gorm.DB, e *model.Expenditure) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expenditure, error)
	List(ctx context.Context, filter dto.ExpenditureFilter) ([]model.Expenditure, int64, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	CountByBase(ctx context.Context, baseCode string) (int64, error)
	CountByEquipment(ctx context.Context, equipmentCode string) (int64, error)
	StatsByBase(ctx context.Context, baseCode string) (count, totalQty int64, err error)

	DB() *gorm.DB
}

type expenditureRepo struct{ db *gorm.DB }

func NewExpenditureRepository(db *gorm.DB) ExpenditureRepository { return &expenditureRepo{db: db} }

func (r *expenditureRepo) CreateTx(tx *gorm.DB, e *model.Expenditure) error {
	return tx.Create(e).Error
}

func (r *expenditureRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expenditure, error) {
	var e model.Expenditure
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *expenditureRepo) List(ctx context.Context, filter dto.ExpenditureFilter) ([]model.Expenditure, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Expenditure{})

	if filter.BaseCode != "" {
		q = q.Where("base_code = ?", filter.BaseCode)
	}
	if filter.EquipmentCode != "" {
		q = q.Where("equipment_code = ?", filter.EquipmentCode)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.From != "" {
		q = q.Where("created_at >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("created_at < (?::date + 1)", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var expenditures []model.Expenditure
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).Find(&expenditures).Error
	return expenditures, total, err
}

func (r *expenditureRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Expenditure{}, "id = ?", id).Error
}

func (r *expenditureRepo) CountByBase(ctx context.Context, baseCode string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Expenditure{}).
		Where("base_code = ?", baseCode).Count(&n).Error
	return n, err
}

func (r *expenditureRepo) CountByEquipment(ctx context.Context, equipmentCode string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Expenditure{}).
		Where("equipment_code = ?", equipmentCode).Count(&n).Error
	return n, err
}

func (r *expenditureRepo) StatsByBase(ctx context.Context, baseCode string) (int64, int64, error) {
	var row struct {
		Count    int64
		TotalQty int64
	}
	err := r.db.WithContext(ctx).Model(&model.Expenditure{}).
		Where("base_code = ?", baseCode).
		Select("COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total_qty").
		Scan(&row).Error
	return row.Count, row.TotalQty, err
}

func (r *expenditureRepo) DB() *gorm.DB { return r.db }
