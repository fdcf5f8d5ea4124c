package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"armory/internal/dto"
	"armory/internal/model"
	"armory/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DashboardInvalidator drops cached dashboard aggregates for a base after a
// write touches its ledger. Write-path services depend on this narrow
// interface rather than the full dashboard service.
type DashboardInvalidator interface {
	InvalidateBase(ctx context.Context, baseCode string)
}

type DashboardService interface {
	DashboardInvalidator
	Admin(ctx context.Context) (*dto.AdminDashboardResponse, error)
	Base(ctx context.Context, p Principal, baseCode string) (*dto.BaseDashboardResponse, error)
}

type dashboardService struct {
	bases        repository.BaseRepository
	equipment    repository.EquipmentRepository
	stock        repository.StockRepository
	purchases    repository.PurchaseRepository
	expenditures repository.ExpenditureRepository
	transfers    repository.TransferRepository
	rdb          *redis.Client
	cacheTTL     time.Duration
}

func NewDashboardService(
	bases repository.BaseRepository,
	equipment repository.EquipmentRepository,
	stock repository.StockRepository,
	purchases repository.PurchaseRepository,
	expenditures repository.ExpenditureRepository,
	transfers repository.TransferRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) DashboardService {
	return &dashboardService{
		bases:        bases,
		equipment:    equipment,
		stock:        stock,
		purchases:    purchases,
		expenditures: expenditures,
		transfers:    transfers,
		rdb:          rdb,
		cacheTTL:     cacheTTL,
	}
}

const (
	adminDashboardKey  = "dashboard:admin"
	baseDashboardKeyFn = "dashboard:base:%s"
)

// Admin returns the global rollup: catalog counts, total on-hand quantity
// and the transfer pipeline broken down by status (all five statuses always
// present, zero-filled).
func (s *dashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	if cached, ok := cacheGet[dto.AdminDashboardResponse](ctx, s.rdb, adminDashboardKey); ok {
		return cached, nil
	}

	baseCount, err := s.bases.Count(ctx)
	if err != nil {
		return nil, err
	}
	equipmentActive, err := s.equipment.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	onHand, err := s.stock.TotalQty(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.transfers.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]int64, len(model.TransferStatuses))
	for _, status := range model.TransferStatuses {
		statuses[status] = byStatus[status]
	}

	resp := &dto.AdminDashboardResponse{
		OK: true,
		Global: dto.GlobalStats{
			BaseCount:            baseCount,
			EquipmentActiveCount: equipmentActive,
			OnHandTotalQty:       onHand,
			TransfersByStatus:    statuses,
		},
	}
	cacheSet(ctx, s.rdb, adminDashboardKey, resp, s.cacheTTL)
	return resp, nil
}

// Base returns per-base KPIs plus the on-hand breakdown by equipment type.
// Non-admin principals may only view their own base; an empty baseCode
// defaults to the principal's base.
func (s *dashboardService) Base(ctx context.Context, p Principal, baseCode string) (*dto.BaseDashboardResponse, error) {
	if baseCode == "" {
		baseCode = p.BaseCode
	}
	if baseCode == "" {
		return nil, invalidField("base", "is required")
	}
	if err := requireAllowed(p, ActionViewBaseDashboard, baseCode); err != nil {
		return nil, err
	}

	key := fmt.Sprintf(baseDashboardKeyFn, baseCode)
	if cached, ok := cacheGet[dto.BaseDashboardResponse](ctx, s.rdb, key); ok {
		return cached, nil
	}

	if _, err := s.bases.FindByCode(ctx, baseCode); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("base", baseCode)
	} else if err != nil {
		return nil, err
	}

	onHandTotal, err := s.stock.TotalQtyByBase(ctx, baseCode)
	if err != nil {
		return nil, err
	}
	purchaseCount, purchaseQty, err := s.purchases.StatsByBase(ctx, baseCode)
	if err != nil {
		return nil, err
	}
	expCount, expQty, err := s.expenditures.StatsByBase(ctx, baseCode)
	if err != nil {
		return nil, err
	}
	inCount, inQty, err := s.transfers.InboundStats(ctx, baseCode)
	if err != nil {
		return nil, err
	}
	outCount, outQty, err := s.transfers.OutboundStats(ctx, baseCode)
	if err != nil {
		return nil, err
	}
	reqCount, reqQty, err := s.transfers.RequestStats(ctx, baseCode)
	if err != nil {
		return nil, err
	}
	levels, err := s.stock.ListByBase(ctx, baseCode)
	if err != nil {
		return nil, err
	}

	onHandByEquipment := make([]dto.EquipmentOnHand, 0, len(levels))
	for _, level := range levels {
		if level.Quantity == 0 {
			continue
		}
		onHandByEquipment = append(onHandByEquipment, dto.EquipmentOnHand{
			EquipmentCode: level.EquipmentCode,
			OnHand:        level.Quantity,
		})
	}

	resp := &dto.BaseDashboardResponse{
		OK:   true,
		Base: baseCode,
		KPIs: dto.BaseKPIs{
			OnHandTotalQty: onHandTotal,
			Purchases:      dto.CountQty{Count: purchaseCount, TotalQty: purchaseQty},
			Expenditures:   dto.CountQty{Count: expCount, TotalQty: expQty},
			TransfersIn:    dto.CountQty{Count: inCount, TotalQty: inQty},
			TransfersOut:   dto.CountQty{Count: outCount, TotalQty: outQty},
			Requests:       dto.CountQty{Count: reqCount, TotalQty: reqQty},
		},
		OnHandByEquipment: onHandByEquipment,
	}
	cacheSet(ctx, s.rdb, key, resp, s.cacheTTL)
	return resp, nil
}

// InvalidateBase drops the base's cached dashboard and the admin rollup.
// Cache misses after a write are cheap; stale aggregates are not.
func (s *dashboardService) InvalidateBase(ctx context.Context, baseCode string) {
	if s.rdb == nil {
		return
	}
	keys := []string{adminDashboardKey}
	if baseCode != "" {
		keys = append(keys, fmt.Sprintf(baseDashboardKeyFn, baseCode))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Str("base", baseCode).Msg("dashboard cache invalidation failed")
	}
}

// ─── Cache helpers ───────────────────────────────────────────────────────────

func cacheGet[T any](ctx context.Context, rdb *redis.Client, key string) (*T, bool) {
	if rdb == nil {
		return nil, false
	}
	raw, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
		}
		return nil, false
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dashboard cache entry corrupt")
		return nil, false
	}
	return &out, true
}

func cacheSet(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) {
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
	}
}
