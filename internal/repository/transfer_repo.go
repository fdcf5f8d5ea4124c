package repository

import (
	"context"

	"armory/internal/dto"
	"armory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransferRepository interface {
	Create(ctx context.Context, t *model.Transfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transfer, error)
	List(ctx context.Context, filter dto.TransferFilter) ([]model.Transfer, int64, error)
	ListByStatus(ctx context.Context, status string) ([]model.Transfer, error)

	// CASStatusTx flips the status from → to in a single conditional update and
	// reports whether this caller won. Extra columns (transition timestamps,
	// supplier_base) ride along in updates. This is the claim hot spot: many
	// bases may race on the same open transfer and exactly one swap succeeds.
	CASStatusTx(tx *gorm.DB, id uuid.UUID, from, to string, updates map[string]interface{}) (swapped bool, err error)

	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	CountByBase(ctx context.Context, baseCode string) (int64, error)
	CountByEquipment(ctx context.Context, equipmentCode string) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// InboundStats: transfers received into the base.
	// OutboundStats: transfers the base supplied (sent or received).
	// RequestStats: every request the base has raised, any status.
	InboundStats(ctx context.Context, baseCode string) (count, totalQty int64, err error)
	OutboundStats(ctx context.Context, baseCode string) (count, totalQty int64, err error)
	RequestStats(ctx context.Context, baseCode string) (count, totalQty int64, err error)

	DB() *gorm.DB
}

type transferRepo struct{ db *gorm.DB }

func NewTransferRepository(db *gorm.DB) TransferRepository { return &transferRepo{db: db} }

func (r *transferRepo) Create(ctx context.Context, t *model.Transfer) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *transferRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transfer, error) {
	var t model.Transfer
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *transferRepo) List(ctx context.Context, filter dto.TransferFilter) ([]model.Transfer, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transfer{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.BaseCode != "" {
		q = q.Where("request_base = ? OR supplier_base = ?", filter.BaseCode, filter.BaseCode)
	}
	if filter.EquipmentCode != "" {
		q = q.Where("equipment_code = ?", filter.EquipmentCode)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transfers []model.Transfer
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("requested_at DESC").
		Limit(filter.Limit).Offset(offset).Find(&transfers).Error
	return transfers, total, err
}

func (r *transferRepo) ListByStatus(ctx context.Context, status string) ([]model.Transfer, error) {
	var transfers []model.Transfer
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("requested_at ASC").
		Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) CASStatusTx(tx *gorm.DB, id uuid.UUID, from, to string, updates map[string]interface{}) (bool, error) {
	set := map[string]interface{}{"status": to}
	for k, v := range updates {
		set[k] = v
	}
	res := tx.Model(&model.Transfer{}).
		Where("id = ? AND status = ?", id, from).
		Updates(set)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *transferRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Transfer{}, "id = ?", id).Error
}

func (r *transferRepo) CountByBase(ctx context.Context, baseCode string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Transfer{}).
		Where("request_base = ? OR supplier_base = ?", baseCode, baseCode).Count(&n).Error
	return n, err
}

func (r *transferRepo) CountByEquipment(ctx context.Context, equipmentCode string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Transfer{}).
		Where("equipment_code = ?", equipmentCode).Count(&n).Error
	return n, err
}

func (r *transferRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&model.Transfer{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

func (r *transferRepo) statsWhere(ctx context.Context, query string, args ...interface{}) (int64, int64, error) {
	var row struct {
		Count    int64
		TotalQty int64
	}
	err := r.db.WithContext(ctx).Model(&model.Transfer{}).
		Where(query, args...).
		Select("COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total_qty").
		Scan(&row).Error
	return row.Count, row.TotalQty, err
}

func (r *transferRepo) InboundStats(ctx context.Context, baseCode string) (int64, int64, error) {
	return r.statsWhere(ctx, "request_base = ? AND status = ?", baseCode, model.StatusReceived)
}

func (r *transferRepo) OutboundStats(ctx context.Context, baseCode string) (int64, int64, error) {
	return r.statsWhere(ctx, "supplier_base = ? AND status IN ?", baseCode,
		[]string{model.StatusSent, model.StatusReceived})
}

func (r *transferRepo) RequestStats(ctx context.Context, baseCode string) (int64, int64, error) {
	return r.statsWhere(ctx, "request_base = ?", baseCode)
}

func (r *transferRepo) DB() *gorm.DB { return r.db }
