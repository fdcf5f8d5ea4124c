package repository

import (
	"context"

	"armory/internal/dto"
	"armory/internal/model"

	"gorm.io/gorm"
)

type EquipmentRepository interface {
	Create(ctx context.Context, e *model.EquipmentType) error
	FindByCode(ctx context.Context, code string) (*model.EquipmentType, error)
	List(ctx context.Context, filter dto.EquipmentFilter) ([]model.EquipmentType, int64, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, e *model.EquipmentType) error
	Delete(ctx context.Context, code string) error
}

type equipmentRepo struct{ db *gorm.DB }

func NewEquipmentRepository(db *gorm.DB) EquipmentRepository { return &equipmentRepo{db: db} }

func (r *equipmentRepo) Create(ctx context.Context, e *model.EquipmentType) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *equipmentRepo) FindByCode(ctx context.Context, code string) (*model.EquipmentType, error) {
	var e model.EquipmentType
	err := r.db.WithContext(ctx).First(&e, "code = ?", code).Error
	return &e, err
}

func (r *equipmentRepo) List(ctx context.Context, filter dto.EquipmentFilter) ([]model.EquipmentType, int64, error) {
	var items []model.EquipmentType
	var total int64

	q := r.db.WithContext(ctx).Model(&model.EquipmentType{})

	switch filter.Active {
	case "true":
		q = q.Where("active = true")
	case "false":
		q = q.Where("active = false")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("code ASC").Limit(filter.Limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *equipmentRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.EquipmentType{}).Where("active = true").Count(&n).Error
	return n, err
}

func (r *equipmentRepo) Update(ctx context.Context, e *model.EquipmentType) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *equipmentRepo) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Delete(&model.EquipmentType{}, "code = ?", code).Error
}
