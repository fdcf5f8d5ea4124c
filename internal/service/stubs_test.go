package service_test

// In-memory repository stubs. They honor the same contracts as the GORM
// implementations: Adjust refuses debits that would go negative, CASStatusTx
// swaps atomically under a lock, FindByX return gorm.ErrRecordNotFound.
// Tx-suffixed methods ignore the tx handle; services call them with a nil
// db, which makes runTx invoke the closure directly.

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"armory/internal/dto"
	"armory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Bases ────────────────────────────────────────────────────────────────────

type stubBaseRepo struct {
	mu    sync.Mutex
	bases map[string]*model.Base
}

func newStubBaseRepo() *stubBaseRepo {
	return &stubBaseRepo{bases: make(map[string]*model.Base)}
}

func (r *stubBaseRepo) Create(_ context.Context, b *model.Base) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	cloned := *b
	r.bases[b.Code] = &cloned
	return nil
}

func (r *stubBaseRepo) FindByCode(_ context.Context, code string) (*model.Base, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bases[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *b
	return &cloned, nil
}

func (r *stubBaseRepo) List(_ context.Context) ([]model.Base, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Base, 0, len(r.bases))
	for _, b := range r.bases {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *stubBaseRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.bases)), nil
}

func (r *stubBaseRepo) Update(_ context.Context, b *model.Base) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *b
	r.bases[b.Code] = &cloned
	return nil
}

func (r *stubBaseRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bases, code)
	return nil
}

func (r *stubBaseRepo) DB() *gorm.DB { return nil }

// ── Equipment ────────────────────────────────────────────────────────────────

type stubEquipmentRepo struct {
	mu    sync.Mutex
	types map[string]*model.EquipmentType
}

func newStubEquipmentRepo() *stubEquipmentRepo {
	return &stubEquipmentRepo{types: make(map[string]*model.EquipmentType)}
}

func (r *stubEquipmentRepo) Create(_ context.Context, e *model.EquipmentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cloned := *e
	r.types[e.Code] = &cloned
	return nil
}

func (r *stubEquipmentRepo) FindByCode(_ context.Context, code string) (*model.EquipmentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.types[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *e
	return &cloned, nil
}

func (r *stubEquipmentRepo) List(_ context.Context, filter dto.EquipmentFilter) ([]model.EquipmentType, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EquipmentType, 0, len(r.types))
	for _, e := range r.types {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		switch filter.Active {
		case "true":
			if !e.Active {
				continue
			}
		case "false":
			if e.Active {
				continue
			}
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, int64(len(out)), nil
}

func (r *stubEquipmentRepo) CountActive(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.types {
		if e.Active {
			n++
		}
	}
	return n, nil
}

func (r *stubEquipmentRepo) Update(_ context.Context, e *model.EquipmentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *e
	r.types[e.Code] = &cloned
	return nil
}

func (r *stubEquipmentRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, code)
	return nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

type stockKey struct{ base, equipment string }

type stubStockRepo struct {
	mu     sync.Mutex
	levels map[stockKey]int
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{levels: make(map[stockKey]int)}
}

func (r *stubStockRepo) Adjust(_ context.Context, baseCode, equipmentCode string, delta int) (bool, error) {
	return r.AdjustTx(nil, baseCode, equipmentCode, delta)
}

func (r *stubStockRepo) AdjustTx(_ *gorm.DB, baseCode, equipmentCode string, delta int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := stockKey{baseCode, equipmentCode}
	next := r.levels[key] + delta
	if next < 0 {
		return false, nil
	}
	r.levels[key] = next
	return true, nil
}

func (r *stubStockRepo) Get(_ context.Context, baseCode, equipmentCode string) (*model.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	qty, ok := r.levels[stockKey{baseCode, equipmentCode}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.StockLevel{BaseCode: baseCode, EquipmentCode: equipmentCode, Quantity: qty}, nil
}

func (r *stubStockRepo) ListByBase(_ context.Context, baseCode string) ([]model.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockLevel
	for key, qty := range r.levels {
		if key.base == baseCode {
			out = append(out, model.StockLevel{BaseCode: key.base, EquipmentCode: key.equipment, Quantity: qty})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EquipmentCode < out[j].EquipmentCode })
	return out, nil
}

func (r *stubStockRepo) TotalQty(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, qty := range r.levels {
		total += int64(qty)
	}
	return total, nil
}

func (r *stubStockRepo) TotalQtyByBase(_ context.Context, baseCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for key, qty := range r.levels {
		if key.base == baseCode {
			total += int64(qty)
		}
	}
	return total, nil
}

func (r *stubStockRepo) CountByBase(_ context.Context, baseCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, qty := range r.levels {
		if key.base == baseCode && qty > 0 {
			n++
		}
	}
	return n, nil
}

func (r *stubStockRepo) CountByEquipment(_ context.Context, equipmentCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, qty := range r.levels {
		if key.equipment == equipmentCode && qty > 0 {
			n++
		}
	}
	return n, nil
}

// quantity reads the raw counter without going through the service.
func (r *stubStockRepo) quantity(baseCode, equipmentCode string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levels[stockKey{baseCode, equipmentCode}]
}

// ── Purchases ────────────────────────────────────────────────────────────────

type stubPurchaseRepo struct {
	mu        sync.Mutex
	purchases map[uuid.UUID]*model.Purchase
}

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{purchases: make(map[uuid.UUID]*model.Purchase)}
}

func (r *stubPurchaseRepo) CreateTx(_ *gorm.DB, p *model.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cloned := *p
	r.purchases[p.ID] = &cloned
	return nil
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubPurchaseRepo) List(_ context.Context, filter dto.PurchaseFilter) ([]model.Purchase, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Purchase
	for _, p := range r.purchases {
		if filter.BaseCode != "" && p.BaseCode != filter.BaseCode {
			continue
		}
		if filter.EquipmentCode != "" && p.EquipmentCode != filter.EquipmentCode {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.After(out[j].PurchasedAt) })
	return out, int64(len(out)), nil
}

func (r *stubPurchaseRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.purchases, id)
	return nil
}

func (r *stubPurchaseRepo) CountByBase(_ context.Context, baseCode string) (int64, error) {
	count, _, _ := r.statsByBase(baseCode)
	return count, nil
}

func (r *stubPurchaseRepo) CountByEquipment(_ context.Context, equipmentCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.purchases {
		if p.EquipmentCode == equipmentCode {
			n++
		}
	}
	return n, nil
}

func (r *stubPurchaseRepo) StatsByBase(_ context.Context, baseCode string) (int64, int64, error) {
	count, qty, _ := r.statsByBase(baseCode)
	return count, qty, nil
}

func (r *stubPurchaseRepo) statsByBase(baseCode string) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count, qty int64
	for _, p := range r.purchases {
		if p.BaseCode == baseCode {
			count++
			qty += int64(p.Quantity)
		}
	}
	return count, qty, nil
}

func (r *stubPurchaseRepo) DB() *gorm.DB { return nil }

// ── Expenditures ─────────────────────────────────────────────────────────────

type stubExpenditureRepo struct {
	mu           sync.Mutex
	expenditures map[uuid.UUID]*model.Expenditure
}

func newStubExpenditureRepo() *stubExpenditureRepo {
	return &stubExpenditureRepo{expenditures: make(map[uuid.UUID]*model.Expenditure)}
}

func (r *stubExpenditureRepo) CreateTx(_ *gorm.DB, e *model.Expenditure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cloned := *e
	r.expenditures[e.ID] = &cloned
	return nil
}

func (r *stubExpenditureRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expenditure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenditures[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *e
	return &cloned, nil
}

func (r *stubExpenditureRepo) List(_ context.Context, filter dto.ExpenditureFilter) ([]model.Expenditure, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Expenditure
	for _, e := range r.expenditures {
		if filter.BaseCode != "" && e.BaseCode != filter.BaseCode {
			continue
		}
		if filter.EquipmentCode != "" && e.EquipmentCode != filter.EquipmentCode {
			continue
		}
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *stubExpenditureRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.expenditures, id)
	return nil
}

func (r *stubExpenditureRepo) CountByBase(_ context.Context, baseCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.expenditures {
		if e.BaseCode == baseCode {
			n++
		}
	}
	return n, nil
}

func (r *stubExpenditureRepo) CountByEquipment(_ context.Context, equipmentCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.expenditures {
		if e.EquipmentCode == equipmentCode {
			n++
		}
	}
	return n, nil
}

func (r *stubExpenditureRepo) StatsByBase(_ context.Context, baseCode string) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count, qty int64
	for _, e := range r.expenditures {
		if e.BaseCode == baseCode {
			count++
			qty += int64(e.Quantity)
		}
	}
	return count, qty, nil
}

func (r *stubExpenditureRepo) DB() *gorm.DB { return nil }

// ── Transfers ────────────────────────────────────────────────────────────────

type stubTransferRepo struct {
	mu        sync.Mutex
	transfers map[uuid.UUID]*model.Transfer
}

func newStubTransferRepo() *stubTransferRepo {
	return &stubTransferRepo{transfers: make(map[uuid.UUID]*model.Transfer)}
}

func (r *stubTransferRepo) Create(_ context.Context, t *model.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cloned := *t
	r.transfers[t.ID] = &cloned
	return nil
}

func (r *stubTransferRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transfers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *t
	return &cloned, nil
}

func (r *stubTransferRepo) List(_ context.Context, filter dto.TransferFilter) ([]model.Transfer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Transfer
	for _, t := range r.transfers {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.BaseCode != "" {
			supplier := ""
			if t.SupplierBase != nil {
				supplier = *t.SupplierBase
			}
			if t.RequestBase != filter.BaseCode && supplier != filter.BaseCode {
				continue
			}
		}
		if filter.EquipmentCode != "" && t.EquipmentCode != filter.EquipmentCode {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, int64(len(out)), nil
}

func (r *stubTransferRepo) ListByStatus(ctx context.Context, status string) ([]model.Transfer, error) {
	out, _, err := r.List(ctx, dto.TransferFilter{Status: status})
	return out, err
}

func (r *stubTransferRepo) CASStatusTx(_ *gorm.DB, id uuid.UUID, from, to string, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transfers[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	for col, val := range updates {
		switch col {
		case "supplier_base":
			s := val.(string)
			t.SupplierBase = &s
		case "approved_at":
			ts := val.(time.Time)
			t.ApprovedAt = &ts
		case "claimed_at":
			ts := val.(time.Time)
			t.ClaimedAt = &ts
		case "sent_at":
			ts := val.(time.Time)
			t.SentAt = &ts
		case "received_at":
			ts := val.(time.Time)
			t.ReceivedAt = &ts
		}
	}
	return true, nil
}

func (r *stubTransferRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.transfers, id)
	return nil
}

func (r *stubTransferRepo) CountByBase(_ context.Context, baseCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.transfers {
		if t.RequestBase == baseCode || (t.SupplierBase != nil && *t.SupplierBase == baseCode) {
			n++
		}
	}
	return n, nil
}

func (r *stubTransferRepo) CountByEquipment(_ context.Context, equipmentCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.transfers {
		if t.EquipmentCode == equipmentCode {
			n++
		}
	}
	return n, nil
}

func (r *stubTransferRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64)
	for _, t := range r.transfers {
		out[t.Status]++
	}
	return out, nil
}

func (r *stubTransferRepo) InboundStats(_ context.Context, baseCode string) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count, qty int64
	for _, t := range r.transfers {
		if t.RequestBase == baseCode && t.Status == model.StatusReceived {
			count++
			qty += int64(t.Quantity)
		}
	}
	return count, qty, nil
}

func (r *stubTransferRepo) OutboundStats(_ context.Context, baseCode string) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count, qty int64
	for _, t := range r.transfers {
		if t.SupplierBase != nil && *t.SupplierBase == baseCode &&
			(t.Status == model.StatusSent || t.Status == model.StatusReceived) {
			count++
			qty += int64(t.Quantity)
		}
	}
	return count, qty, nil
}

func (r *stubTransferRepo) RequestStats(_ context.Context, baseCode string) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count, qty int64
	for _, t := range r.transfers {
		if t.RequestBase == baseCode {
			count++
			qty += int64(t.Quantity)
		}
	}
	return count, qty, nil
}

func (r *stubTransferRepo) DB() *gorm.DB { return nil }

// ── Users ────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) add(u *model.User) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cloned := *u
	r.users[u.ID] = &cloned
	return &cloned
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) && u.Active {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *u
	return &cloned, nil
}
