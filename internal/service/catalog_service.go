package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"armory/internal/dto"
	"armory/internal/model"
	"armory/internal/repository"

	"gorm.io/gorm"
)

// codePattern applies to base and equipment codes alike; length limits differ.
var codePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

const (
	maxBaseCodeLen      = 20
	maxEquipmentCodeLen = 30
)

// CatalogService owns the base and equipment-type registries. Writes are
// admin-only; deletes are blocked while the ledger still references the code.
type CatalogService interface {
	ListBases(ctx context.Context) (*dto.BaseListResponse, error)
	GetBase(ctx context.Context, code string) (*dto.BaseResponse, error)
	CreateBase(ctx context.Context, p Principal, req dto.CreateBaseRequest) (*dto.BaseResponse, error)
	UpdateBase(ctx context.Context, p Principal, code string, req dto.UpdateBaseRequest) (*dto.BaseResponse, error)
	DeleteBase(ctx context.Context, p Principal, code string) error

	ListEquipment(ctx context.Context, filter dto.EquipmentFilter) (*dto.EquipmentListResponse, error)
	GetEquipment(ctx context.Context, code string) (*dto.EquipmentResponse, error)
	CreateEquipment(ctx context.Context, p Principal, req dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error)
	UpdateEquipment(ctx context.Context, p Principal, code string, req dto.UpdateEquipmentRequest) (*dto.EquipmentResponse, error)
	DeleteEquipment(ctx context.Context, p Principal, code string) error
}

type catalogService struct {
	bases        repository.BaseRepository
	equipment    repository.EquipmentRepository
	stock        repository.StockRepository
	purchases    repository.PurchaseRepository
	expenditures repository.ExpenditureRepository
	transfers    repository.TransferRepository
}

func NewCatalogService(
	bases repository.BaseRepository,
	equipment repository.EquipmentRepository,
	stock repository.StockRepository,
	purchases repository.PurchaseRepository,
	expenditures repository.ExpenditureRepository,
	transfers repository.TransferRepository,
) CatalogService {
	return &catalogService{
		bases:        bases,
		equipment:    equipment,
		stock:        stock,
		purchases:    purchases,
		expenditures: expenditures,
		transfers:    transfers,
	}
}

// ─── Bases ───────────────────────────────────────────────────────────────────

func (s *catalogService) ListBases(ctx context.Context) (*dto.BaseListResponse, error) {
	bases, err := s.bases.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BaseResponse, 0, len(bases))
	for i := range bases {
		items = append(items, *baseToResponse(&bases[i]))
	}
	return &dto.BaseListResponse{OK: true, Items: items, Total: len(items)}, nil
}

func (s *catalogService) GetBase(ctx context.Context, code string) (*dto.BaseResponse, error) {
	base, err := s.bases.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("base", code)
	}
	if err != nil {
		return nil, err
	}
	return baseToResponse(base), nil
}

func (s *catalogService) CreateBase(ctx context.Context, p Principal, req dto.CreateBaseRequest) (*dto.BaseResponse, error) {
	if err := requireAllowed(p, ActionManageCatalog, req.BaseCode); err != nil {
		return nil, err
	}
	if err := validateCode("baseCode", req.BaseCode, maxBaseCodeLen); err != nil {
		return nil, err
	}
	if _, err := s.bases.FindByCode(ctx, req.BaseCode); err == nil {
		return nil, conflictf("base %q already exists", req.BaseCode)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	base := &model.Base{Code: req.BaseCode, CreatedAt: time.Now()}
	if req.Location != nil {
		lat, lng := req.Location.Lat, req.Location.Lng
		base.Lat, base.Lng = &lat, &lng
	}
	if err := s.bases.Create(ctx, base); err != nil {
		return nil, err
	}
	return baseToResponse(base), nil
}

// UpdateBase only touches coordinates: the code is the base's identity and
// the ledger references it, so it never changes.
func (s *catalogService) UpdateBase(ctx context.Context, p Principal, code string, req dto.UpdateBaseRequest) (*dto.BaseResponse, error) {
	if err := requireAllowed(p, ActionManageCatalog, code); err != nil {
		return nil, err
	}
	base, err := s.bases.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("base", code)
	}
	if err != nil {
		return nil, err
	}

	if req.Location != nil {
		lat, lng := req.Location.Lat, req.Location.Lng
		base.Lat, base.Lng = &lat, &lng
	} else {
		base.Lat, base.Lng = nil, nil
	}
	if err := s.bases.Update(ctx, base); err != nil {
		return nil, err
	}
	return baseToResponse(base), nil
}

func (s *catalogService) DeleteBase(ctx context.Context, p Principal, code string) error {
	if err := requireAllowed(p, ActionManageCatalog, code); err != nil {
		return err
	}
	if _, err := s.bases.FindByCode(ctx, code); errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("base", code)
	} else if err != nil {
		return err
	}

	checks := []struct {
		what  string
		count func() (int64, error)
	}{
		{"stock", func() (int64, error) { return s.stock.CountByBase(ctx, code) }},
		{"purchases", func() (int64, error) { return s.purchases.CountByBase(ctx, code) }},
		{"expenditures", func() (int64, error) { return s.expenditures.CountByBase(ctx, code) }},
		{"transfers", func() (int64, error) { return s.transfers.CountByBase(ctx, code) }},
	}
	for _, check := range checks {
		n, err := check.count()
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("base %q is still referenced by %s", code, check.what)
		}
	}
	return s.bases.Delete(ctx, code)
}

// ─── Equipment ───────────────────────────────────────────────────────────────

func (s *catalogService) ListEquipment(ctx context.Context, filter dto.EquipmentFilter) (*dto.EquipmentListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	items, total, err := s.equipment.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.EquipmentResponse, 0, len(items))
	for i := range items {
		resp = append(resp, *equipmentToResponse(&items[i]))
	}
	return &dto.EquipmentListResponse{
		OK: true, Items: resp, Total: total, Page: filter.Page, Limit: filter.Limit,
	}, nil
}

func (s *catalogService) GetEquipment(ctx context.Context, code string) (*dto.EquipmentResponse, error) {
	eq, err := s.equipment.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("equipment", code)
	}
	if err != nil {
		return nil, err
	}
	return equipmentToResponse(eq), nil
}

func (s *catalogService) CreateEquipment(ctx context.Context, p Principal, req dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error) {
	if err := requireAllowed(p, ActionManageCatalog, ""); err != nil {
		return nil, err
	}
	if err := validateCode("code", req.Code, maxEquipmentCodeLen); err != nil {
		return nil, err
	}
	if _, err := s.equipment.FindByCode(ctx, req.Code); err == nil {
		return nil, conflictf("equipment %q already exists", req.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	eq := &model.EquipmentType{
		Code:     req.Code,
		Name:     req.Name,
		Category: req.Category,
		Unit:     req.Unit,
		Active:   true,
	}
	if eq.Unit == "" {
		eq.Unit = "unit"
	}
	if req.Active != nil {
		eq.Active = *req.Active
	}
	if err := s.equipment.Create(ctx, eq); err != nil {
		return nil, err
	}
	return equipmentToResponse(eq), nil
}

func (s *catalogService) UpdateEquipment(ctx context.Context, p Principal, code string, req dto.UpdateEquipmentRequest) (*dto.EquipmentResponse, error) {
	if err := requireAllowed(p, ActionManageCatalog, ""); err != nil {
		return nil, err
	}
	eq, err := s.equipment.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("equipment", code)
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		eq.Name = *req.Name
	}
	if req.Category != nil {
		eq.Category = *req.Category
	}
	if req.Unit != nil && *req.Unit != "" {
		eq.Unit = *req.Unit
	}
	if req.Active != nil {
		eq.Active = *req.Active
	}
	if err := s.equipment.Update(ctx, eq); err != nil {
		return nil, err
	}
	return equipmentToResponse(eq), nil
}

func (s *catalogService) DeleteEquipment(ctx context.Context, p Principal, code string) error {
	if err := requireAllowed(p, ActionManageCatalog, ""); err != nil {
		return err
	}
	if _, err := s.equipment.FindByCode(ctx, code); errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("equipment", code)
	} else if err != nil {
		return err
	}

	checks := []struct {
		what  string
		count func() (int64, error)
	}{
		{"stock", func() (int64, error) { return s.stock.CountByEquipment(ctx, code) }},
		{"purchases", func() (int64, error) { return s.purchases.CountByEquipment(ctx, code) }},
		{"expenditures", func() (int64, error) { return s.expenditures.CountByEquipment(ctx, code) }},
		{"transfers", func() (int64, error) { return s.transfers.CountByEquipment(ctx, code) }},
	}
	for _, check := range checks {
		n, err := check.count()
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("equipment %q is still referenced by %s", code, check.what)
		}
	}
	return s.equipment.Delete(ctx, code)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func validateCode(field, code string, maxLen int) error {
	if code == "" {
		return invalidField(field, "is required")
	}
	if len(code) > maxLen {
		return invalidField(field, "exceeds maximum length")
	}
	if !codePattern.MatchString(code) {
		return invalidField(field, "must match [A-Z0-9_]+")
	}
	return nil
}

func baseToResponse(b *model.Base) *dto.BaseResponse {
	resp := &dto.BaseResponse{
		BaseCode:  b.Code,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
	if b.Lat != nil && b.Lng != nil {
		resp.Location = &dto.Location{Lat: *b.Lat, Lng: *b.Lng}
	}
	return resp
}

func equipmentToResponse(e *model.EquipmentType) *dto.EquipmentResponse {
	return &dto.EquipmentResponse{
		Code:      e.Code,
		Name:      e.Name,
		Category:  e.Category,
		Unit:      e.Unit,
		Active:    e.Active,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
