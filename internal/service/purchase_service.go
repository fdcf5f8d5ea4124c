package service

import (
	"context"
	"errors"
	"time"

	"armory/internal/dto"
	"armory/internal/model"
	"armory/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseService interface {
	Record(ctx context.Context, p Principal, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error)
	List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error)
	Delete(ctx context.Context, p Principal, id uuid.UUID) error
}

type purchaseService struct {
	repo      repository.PurchaseRepository
	bases     repository.BaseRepository
	equipment repository.EquipmentRepository
	ledger    LedgerService
	dash      DashboardInvalidator
}

func NewPurchaseService(
	repo repository.PurchaseRepository,
	bases repository.BaseRepository,
	equipment repository.EquipmentRepository,
	ledger LedgerService,
	dash DashboardInvalidator,
) PurchaseService {
	return &purchaseService{repo: repo, bases: bases, equipment: equipment, ledger: ledger, dash: dash}
}

// Record credits the base's stock and persists the immutable event in one
// transaction. Validation happens entirely before the first write.
func (s *purchaseService) Record(ctx context.Context, p Principal, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if err := requireAllowed(p, ActionRecordPurchase, req.BaseCode); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, invalidField("quantity", "must be positive")
	}
	if err := s.checkRefs(ctx, req.BaseCode, req.EquipmentCode); err != nil {
		return nil, err
	}

	purchase := &model.Purchase{
		BaseCode:      req.BaseCode,
		EquipmentCode: req.EquipmentCode,
		Quantity:      req.Quantity,
		PurchasedAt:   req.PurchasedAt,
		Notes:         req.Notes,
		CreatedBy:     p.ID,
		CreatedAt:     time.Now(),
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.ledger.AdjustTx(tx, req.BaseCode, req.EquipmentCode, req.Quantity); err != nil {
			return err
		}
		return s.repo.CreateTx(tx, purchase)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.dash.InvalidateBase(ctx, req.BaseCode)
	return purchaseToResponse(purchase), nil
}

func (s *purchaseService) List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	purchases, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		items = append(items, *purchaseToResponse(&purchases[i]))
	}
	return &dto.PurchaseListResponse{
		OK: true, Items: items, Total: total, Page: filter.Page, Limit: filter.Limit,
	}, nil
}

func (s *purchaseService) Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("purchase", id.String())
	}
	if err != nil {
		return nil, err
	}
	return purchaseToResponse(purchase), nil
}

// Delete reverses the credit. If later events already consumed the purchased
// stock the debit would go negative; the reversal is rejected and the record
// kept.
func (s *purchaseService) Delete(ctx context.Context, p Principal, id uuid.UUID) error {
	purchase, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("purchase", id.String())
	}
	if err != nil {
		return err
	}
	if err := requireAllowed(p, ActionDeletePurchase, purchase.BaseCode); err != nil {
		return err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.ledger.AdjustTx(tx, purchase.BaseCode, purchase.EquipmentCode, -purchase.Quantity); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if txErr != nil {
		return txErr
	}

	s.dash.InvalidateBase(ctx, purchase.BaseCode)
	return nil
}

func (s *purchaseService) checkRefs(ctx context.Context, baseCode, equipmentCode string) error {
	if _, err := s.bases.FindByCode(ctx, baseCode); errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("base", baseCode)
	} else if err != nil {
		return err
	}
	eq, err := s.equipment.FindByCode(ctx, equipmentCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("equipment", equipmentCode)
	}
	if err != nil {
		return err
	}
	if !eq.Active {
		return invalidField("equipmentCode", "equipment type is inactive")
	}
	return nil
}

func purchaseToResponse(p *model.Purchase) *dto.PurchaseResponse {
	return &dto.PurchaseResponse{
		ID:            p.ID.String(),
		BaseCode:      p.BaseCode,
		EquipmentCode: p.EquipmentCode,
		Quantity:      p.Quantity,
		PurchasedAt:   p.PurchasedAt.Format(time.RFC3339),
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy.String(),
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}
