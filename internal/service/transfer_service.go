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

// TransferService owns the transfer state machine:
//
//	pending → open → claimed → sent → received
//
// Claim is a compare-and-swap on the status column; under N concurrent
// claimants exactly one wins and the rest observe a conflict. Send and
// receive carry the only stock side effects and are idempotent against
// retries. Deletion (admin only) reverses whatever stock effects the
// reached status implies.
type TransferService interface {
	CreateRequest(ctx context.Context, p Principal, req dto.CreateTransferRequest) (*dto.TransferResponse, error)
	Approve(ctx context.Context, p Principal, id uuid.UUID) (*dto.TransferResponse, error)
	Claim(ctx context.Context, p Principal, id uuid.UUID, req dto.ClaimTransferRequest) (*dto.TransferResponse, error)
	Send(ctx context.Context, p Principal, id uuid.UUID) (*dto.TransferResponse, error)
	Receive(ctx context.Context, p Principal, id uuid.UUID) (*dto.TransferResponse, error)
	ListOpen(ctx context.Context) (*dto.TransferListResponse, error)
	List(ctx context.Context, filter dto.TransferFilter) (*dto.TransferListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error)
	Delete(ctx context.Context, p Principal, id uuid.UUID) error
}

type transferService struct {
	repo      repository.TransferRepository
	bases     repository.BaseRepository
	equipment repository.EquipmentRepository
	ledger    LedgerService
	dash      DashboardInvalidator
}

func NewTransferService(
	repo repository.TransferRepository,
	bases repository.BaseRepository,
	equipment repository.EquipmentRepository,
	ledger LedgerService,
	dash DashboardInvalidator,
) TransferService {
	return &transferService{repo: repo, bases: bases, equipment: equipment, ledger: ledger, dash: dash}
}

// ─── Transitions ─────────────────────────────────────────────────────────────

func (s *transferService) CreateRequest(ctx context.Context, p Principal, req dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if err := requireAllowed(p, ActionRequestTransfer, req.RequestBase); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, invalidField("quantity", "must be positive")
	}
	if _, err := s.bases.FindByCode(ctx, req.RequestBase); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("base", req.RequestBase)
	} else if err != nil {
		return nil, err
	}
	eq, err := s.equipment.FindByCode(ctx, req.EquipmentCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("equipment", req.EquipmentCode)
	}
	if err != nil {
		return nil, err
	}
	if !eq.Active {
		return nil, invalidField("equipmentCode", "equipment type is inactive")
	}

	transfer := &model.Transfer{
		RequestBase:   req.RequestBase,
		EquipmentCode: req.EquipmentCode,
		Quantity:      req.Quantity,
		Notes:         req.Notes,
		Status:        model.StatusPending,
		RequestedBy:   p.ID,
		RequestedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, transfer); err != nil {
		return nil, err
	}
	s.dash.InvalidateBase(ctx, req.RequestBase)
	return transferToResponse(transfer), nil
}

func (s *transferService) Approve(ctx context.Context, p Principal, id uuid.UUID) (*dto.TransferResponse, error) {
	transfer, err := s.findTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAllowed(p, ActionApproveTransfer, transfer.RequestBase); err != nil {
		return nil, err
	}

	now := time.Now()
	swapped, err := s.repo.CASStatusTx(s.repo.DB(), id, model.StatusPending, model.StatusOpen,
		map[string]interface{}{"approved_at": now})
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, s.invalidTransition(ctx, id, "approve", model.StatusPending)
	}

	transfer.Status = model.StatusOpen
	transfer.ApprovedAt = &now
	s.dash.InvalidateBase(ctx, transfer.RequestBase)
	return transferToResponse(transfer), nil
}

// Claim fixes the supplier side. supplierBase is an explicit input for
// admins (defaulting to their own base when they have one); commanders can
// only claim for their own base. Exactly one concurrent claimant wins the
// CAS; losers get a conflict and may retry against a different open request.
func (s *transferService) Claim(ctx context.Context, p Principal, id uuid.UUID, req dto.ClaimTransferRequest) (*dto.TransferResponse, error) {
	transfer, err := s.findTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	supplierBase := req.SupplierBase
	if supplierBase == "" {
		supplierBase = p.BaseCode
	}
	if supplierBase == "" {
		return nil, invalidField("supplierBase", "is required")
	}
	if err := requireAllowed(p, ActionClaimTransfer, supplierBase); err != nil {
		return nil, err
	}
	if supplierBase == transfer.RequestBase {
		return nil, invalidField("supplierBase", "cannot equal the requesting base")
	}
	if _, err := s.bases.FindByCode(ctx, supplierBase); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("base", supplierBase)
	} else if err != nil {
		return nil, err
	}

	now := time.Now()
	swapped, err := s.repo.CASStatusTx(s.repo.DB(), id, model.StatusOpen, model.StatusClaimed,
		map[string]interface{}{"supplier_base": supplierBase, "claimed_at": now})
	if err != nil {
		return nil, err
	}
	if !swapped {
		current, ferr := s.repo.FindByID(ctx, id)
		if ferr == nil && current.Status == model.StatusClaimed {
			return nil, conflictf("transfer already claimed")
		}
		return nil, s.invalidTransition(ctx, id, "claim", model.StatusOpen)
	}

	transfer.Status = model.StatusClaimed
	transfer.SupplierBase = &supplierBase
	transfer.ClaimedAt = &now
	s.dash.InvalidateBase(ctx, transfer.RequestBase)
	s.dash.InvalidateBase(ctx, supplierBase)
	return transferToResponse(transfer), nil
}

// Send debits the supplier's stock and moves claimed → sent in one
// transaction. Retrying an already-sent (or received) transfer succeeds
// without reapplying the debit.
func (s *transferService) Send(ctx context.Context, p Principal, id uuid.UUID) (*dto.TransferResponse, error) {
	transfer, err := s.findTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer.SupplierBase == nil {
		return nil, conflictf("send not allowed from status %q", transfer.Status)
	}
	supplier := *transfer.SupplierBase
	if err := requireAllowed(p, ActionSendTransfer, supplier); err != nil {
		return nil, err
	}
	if transfer.Status == model.StatusSent || transfer.Status == model.StatusReceived {
		// Idempotent retry: stock effect already applied once.
		return transferToResponse(transfer), nil
	}
	if transfer.Status != model.StatusClaimed {
		return nil, conflictf("send not allowed from status %q", transfer.Status)
	}

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.ledger.AdjustTx(tx, supplier, transfer.EquipmentCode, -transfer.Quantity); err != nil {
			return err
		}
		swapped, err := s.repo.CASStatusTx(tx, id, model.StatusClaimed, model.StatusSent,
			map[string]interface{}{"sent_at": now})
		if err != nil {
			return err
		}
		if !swapped {
			// Lost a concurrent race; roll back the debit.
			return conflictf("transfer no longer in %q", model.StatusClaimed)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	transfer.Status = model.StatusSent
	transfer.SentAt = &now
	s.dash.InvalidateBase(ctx, supplier)
	s.dash.InvalidateBase(ctx, transfer.RequestBase)
	return transferToResponse(transfer), nil
}

// Receive credits the requesting base and moves sent → received. Idempotent
// like Send; the credit cannot fail on stock grounds.
func (s *transferService) Receive(ctx context.Context, p Principal, id uuid.UUID) (*dto.TransferResponse, error) {
	transfer, err := s.findTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAllowed(p, ActionReceiveTransfer, transfer.RequestBase); err != nil {
		return nil, err
	}
	if transfer.Status == model.StatusReceived {
		return transferToResponse(transfer), nil
	}
	if transfer.Status != model.StatusSent {
		return nil, conflictf("receive not allowed from status %q", transfer.Status)
	}

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		swapped, err := s.repo.CASStatusTx(tx, id, model.StatusSent, model.StatusReceived,
			map[string]interface{}{"received_at": now})
		if err != nil {
			return err
		}
		if !swapped {
			return conflictf("transfer no longer in %q", model.StatusSent)
		}
		return s.ledger.AdjustTx(tx, transfer.RequestBase, transfer.EquipmentCode, transfer.Quantity)
	})
	if txErr != nil {
		var conflict *ConflictError
		if errors.As(txErr, &conflict) {
			// A concurrent receive may have beaten us; report success if so.
			if current, ferr := s.repo.FindByID(ctx, id); ferr == nil && current.Status == model.StatusReceived {
				return transferToResponse(current), nil
			}
		}
		return nil, txErr
	}

	transfer.Status = model.StatusReceived
	transfer.ReceivedAt = &now
	s.dash.InvalidateBase(ctx, transfer.RequestBase)
	if transfer.SupplierBase != nil {
		s.dash.InvalidateBase(ctx, *transfer.SupplierBase)
	}
	return transferToResponse(transfer), nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// ListOpen is the "approved requests" view: every transfer a supplying base
// could claim right now.
func (s *transferService) ListOpen(ctx context.Context) (*dto.TransferListResponse, error) {
	transfers, err := s.repo.ListByStatus(ctx, model.StatusOpen)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(transfers))
	for i := range transfers {
		items = append(items, *transferToResponse(&transfers[i]))
	}
	return &dto.TransferListResponse{OK: true, Items: items, Total: int64(len(items)), Page: 1, Limit: len(items)}, nil
}

func (s *transferService) List(ctx context.Context, filter dto.TransferFilter) (*dto.TransferListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	transfers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(transfers))
	for i := range transfers {
		items = append(items, *transferToResponse(&transfers[i]))
	}
	return &dto.TransferListResponse{
		OK: true, Items: items, Total: total, Page: filter.Page, Limit: filter.Limit,
	}, nil
}

func (s *transferService) Get(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error) {
	transfer, err := s.findTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	return transferToResponse(transfer), nil
}

// ─── Deletion ────────────────────────────────────────────────────────────────

// Delete removes the transfer from any state, reversing applied stock
// effects first: debit back the requester if received, credit back the
// supplier if sent or received. The requester debit can hit insufficient
// stock (already consumed), which blocks the deletion entirely.
func (s *transferService) Delete(ctx context.Context, p Principal, id uuid.UUID) error {
	transfer, err := s.findTransfer(ctx, id)
	if err != nil {
		return err
	}
	if err := requireAllowed(p, ActionDeleteTransfer, transfer.RequestBase); err != nil {
		return err
	}

	debited, credited := transfer.StockApplied()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if credited {
			if err := s.ledger.AdjustTx(tx, transfer.RequestBase, transfer.EquipmentCode, -transfer.Quantity); err != nil {
				return err
			}
		}
		if debited {
			if err := s.ledger.AdjustTx(tx, *transfer.SupplierBase, transfer.EquipmentCode, transfer.Quantity); err != nil {
				return err
			}
		}
		return s.repo.DeleteTx(tx, id)
	})
	if txErr != nil {
		return txErr
	}

	s.dash.InvalidateBase(ctx, transfer.RequestBase)
	if transfer.SupplierBase != nil {
		s.dash.InvalidateBase(ctx, *transfer.SupplierBase)
	}
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *transferService) findTransfer(ctx context.Context, id uuid.UUID) (*model.Transfer, error) {
	transfer, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("transfer", id.String())
	}
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// invalidTransition builds the conflict for a transition attempted from the
// wrong source state, naming the actual status when it can be read back.
func (s *transferService) invalidTransition(ctx context.Context, id uuid.UUID, event, wanted string) error {
	if current, err := s.repo.FindByID(ctx, id); err == nil {
		return conflictf("%s requires status %q, transfer is %q", event, wanted, current.Status)
	}
	return conflictf("%s requires status %q", event, wanted)
}

func transferToResponse(t *model.Transfer) *dto.TransferResponse {
	fmtTime := func(ts *time.Time) *string {
		if ts == nil {
			return nil
		}
		v := ts.Format(time.RFC3339)
		return &v
	}
	return &dto.TransferResponse{
		ID:            t.ID.String(),
		RequestBase:   t.RequestBase,
		SupplierBase:  t.SupplierBase,
		EquipmentCode: t.EquipmentCode,
		Quantity:      t.Quantity,
		Notes:         t.Notes,
		Status:        t.Status,
		RequestedBy:   t.RequestedBy.String(),
		RequestedAt:   t.RequestedAt.Format(time.RFC3339),
		ApprovedAt:    fmtTime(t.ApprovedAt),
		ClaimedAt:     fmtTime(t.ClaimedAt),
		SentAt:        fmtTime(t.SentAt),
		ReceivedAt:    fmtTime(t.ReceivedAt),
	}
}
