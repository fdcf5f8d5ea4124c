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

type ExpenditureService interface {
	Record(ctx context.Context, p Principal, req dto.CreateExpenditureRequest) (*dto.ExpenditureResponse, error)
	List(ctx context.Context, filter dto.ExpenditureFilter) (*dto.ExpenditureListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ExpenditureResponse, error)
	Delete(ctx context.Context, p Principal, id uuid.UUID) error
}

type expenditureService struct {
	repo      repository.ExpenditureRepository
	bases     repository.BaseRepository
	equipment repository.EquipmentRepository
	ledger    LedgerService
	dash      DashboardInvalidator
}

func NewExpenditureService(
	repo repository.ExpenditureRepository,
	bases repository.BaseRepository,
	equipment repository.EquipmentRepository,
	ledger LedgerService,
	dash DashboardInvalidator,
) ExpenditureService {
	return &expenditureService{repo: repo, bases: bases, equipment: equipment, ledger: ledger, dash: dash}
}

// Record debits the base's stock; the debit fails atomically when the
// quantity exceeds current stock, and nothing is recorded.
func (s *expenditureService) Record(ctx context.Context, p Principal, req dto.CreateExpenditureRequest) (*dto.ExpenditureResponse, error) {
	if err := requireAllowed(p, ActionRecordExpenditure, req.BaseCode); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, invalidField("quantity", "must be positive")
	}
	if req.Kind != model.KindAssignment && req.Kind != model.KindConsumption {
		return nil, invalidField("kind", "must be assignment or consumption")
	}
	if err := s.checkRefs(ctx, req.BaseCode, req.EquipmentCode); err != nil {
		return nil, err
	}

	exp := &model.Expenditure{
		BaseCode:      req.BaseCode,
		EquipmentCode: req.EquipmentCode,
		Quantity:      req.Quantity,
		Kind:          req.Kind,
		Notes:         req.Notes,
		CreatedBy:     p.ID,
		CreatedAt:     time.Now(),
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.ledger.AdjustTx(tx, req.BaseCode, req.EquipmentCode, -req.Quantity); err != nil {
			return err
		}
		return s.repo.CreateTx(tx, exp)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.dash.InvalidateBase(ctx, req.BaseCode)
	return expenditureToResponse(exp), nil
}

func (s *expenditureService) List(ctx context.Context, filter dto.ExpenditureFilter) (*dto.ExpenditureListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	expenditures, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ExpenditureResponse, 0, len(expenditures))
	for i := range expenditures {
		items = append(items, *expenditureToResponse(&expenditures[i]))
	}
	return &dto.ExpenditureListResponse{
		OK: true, Items: items, Total: total, Page: filter.Page, Limit: filter.Limit,
	}, nil
}

func (s *expenditureService) Get(ctx context.Context, id uuid.UUID) (*dto.ExpenditureResponse, error) {
	exp, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("expenditure", id.String())
	}
	if err != nil {
		return nil, err
	}
	return expenditureToResponse(exp), nil
}

// Delete is an explicit reversal: restoring stock is always safe, so the
// credit is unconditional and the record removed.
func (s *expenditureService) Delete(ctx context.Context, p Principal, id uuid.UUID) error {
	exp, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("expenditure", id.String())
	}
	if err != nil {
		return err
	}
	if err := requireAllowed(p, ActionDeleteExpenditure, exp.BaseCode); err != nil {
		return err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.ledger.AdjustTx(tx, exp.BaseCode, exp.EquipmentCode, exp.Quantity); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if txErr != nil {
		return txErr
	}

	s.dash.InvalidateBase(ctx, exp.BaseCode)
	return nil
}

func (s *expenditureService) checkRefs(ctx context.Context, baseCode, equipmentCode string) error {
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

func expenditureToResponse(e *model.Expenditure) *dto.ExpenditureResponse {
	return &dto.ExpenditureResponse{
		ID:            e.ID.String(),
		BaseCode:      e.BaseCode,
		EquipmentCode: e.EquipmentCode,
		Quantity:      e.Quantity,
		Kind:          e.Kind,
		Notes:         e.Notes,
		CreatedBy:     e.CreatedBy.String(),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}
