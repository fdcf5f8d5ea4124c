package repository

import (
	"context"

	"armory/internal/model"

	"gorm.io/gorm"
)

// BaseRepository defines the data access contract for bases.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type BaseRepository interface {
	Create(ctx context.Context, b *model.Base) error
	FindByCode(ctx context.Context, code string) (*model.Base, error)
	List(ctx context.Context) ([]model.Base, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, b *model.Base) error
	Delete(ctx context.Context, code string) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type baseRepo struct{ db *gorm.DB }

func NewBaseRepository(db *gorm.DB) BaseRepository { return &baseRepo{db: db} }

func (r *baseRepo) Create(ctx context.Context, b *model.Base) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *baseRepo) FindByCode(ctx context.Context, code string) (*model.Base, error) {
	var b model.Base
	err := r.db.WithContext(ctx).First(&b, "code = ?", code).Error
	return &b, err
}

func (r *baseRepo) List(ctx context.Context) ([]model.Base, error) {
	var bases []model.Base
	err := r.db.WithContext(ctx).Order("code ASC").Find(&bases).Error
	return bases, err
}

func (r *baseRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Base{}).Count(&n).Error
	return n, err
}

func (r *baseRepo) Update(ctx context.Context, b *model.Base) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *baseRepo) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Delete(&model.Base{}, "code = ?", code).Error
}

func (r *baseRepo) DB() *gorm.DB { return r.db }
