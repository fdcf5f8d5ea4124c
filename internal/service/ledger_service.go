package service

import (
	"context"
	"errors"

	"armory/internal/repository"

	"gorm.io/gorm"
)

// LedgerService is the single choke point for on-hand quantity changes.
// Every mutation across purchases, expenditures and transfers funnels
// through Adjust so the non-negative invariant is enforced exactly once.
type LedgerService interface {
	Adjust(ctx context.Context, baseCode, equipmentCode string, delta int) error
	// AdjustTx applies the delta inside a caller-owned transaction.
	AdjustTx(tx *gorm.DB, baseCode, equipmentCode string, delta int) error
	// OnHand reads the current quantity; a missing row is zero. Reads never
	// block a concurrent adjust.
	OnHand(ctx context.Context, baseCode, equipmentCode string) (int, error)
}

type ledgerService struct {
	stock repository.StockRepository
}

func NewLedgerService(stock repository.StockRepository) LedgerService {
	return &ledgerService{stock: stock}
}

func (s *ledgerService) Adjust(ctx context.Context, baseCode, equipmentCode string, delta int) error {
	applied, err := s.stock.Adjust(ctx, baseCode, equipmentCode, delta)
	if err != nil {
		return err
	}
	if !applied {
		return &InsufficientStockError{BaseCode: baseCode, EquipmentCode: equipmentCode, Requested: -delta}
	}
	return nil
}

func (s *ledgerService) AdjustTx(tx *gorm.DB, baseCode, equipmentCode string, delta int) error {
	applied, err := s.stock.AdjustTx(tx, baseCode, equipmentCode, delta)
	if err != nil {
		return err
	}
	if !applied {
		return &InsufficientStockError{BaseCode: baseCode, EquipmentCode: equipmentCode, Requested: -delta}
	}
	return nil
}

func (s *ledgerService) OnHand(ctx context.Context, baseCode, equipmentCode string) (int, error) {
	level, err := s.stock.Get(ctx, baseCode, equipmentCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return level.Quantity, nil
}
