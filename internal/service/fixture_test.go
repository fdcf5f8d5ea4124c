package service_test

import (
	"time"

	"armory/internal/model"
	"armory/internal/service"

	"github.com/google/uuid"
)

// fixture wires every service against the in-memory stubs with a small
// seeded catalog: bases ALPHA / BRAVO / CHARLIE, equipment RIFLE_556 and
// MEDKIT active, FLARE_GUN retired.
type fixture struct {
	bases        *stubBaseRepo
	equipment    *stubEquipmentRepo
	stock        *stubStockRepo
	purchases    *stubPurchaseRepo
	expenditures *stubExpenditureRepo
	transfers    *stubTransferRepo
	users        *stubUserRepo

	ledger      service.LedgerService
	catalog     service.CatalogService
	purchaseSvc service.PurchaseService
	expSvc      service.ExpenditureService
	transferSvc service.TransferService
	dashSvc     service.DashboardService

	admin     service.Principal
	cmdrAlpha service.Principal
	cmdrBravo service.Principal
	logAlpha  service.Principal
}

func newFixture() *fixture {
	f := &fixture{
		bases:        newStubBaseRepo(),
		equipment:    newStubEquipmentRepo(),
		stock:        newStubStockRepo(),
		purchases:    newStubPurchaseRepo(),
		expenditures: newStubExpenditureRepo(),
		transfers:    newStubTransferRepo(),
		users:        newStubUserRepo(),
	}

	f.ledger = service.NewLedgerService(f.stock)
	f.dashSvc = service.NewDashboardService(
		f.bases, f.equipment, f.stock, f.purchases, f.expenditures, f.transfers,
		nil, time.Minute,
	)
	f.catalog = service.NewCatalogService(f.bases, f.equipment, f.stock, f.purchases, f.expenditures, f.transfers)
	f.purchaseSvc = service.NewPurchaseService(f.purchases, f.bases, f.equipment, f.ledger, f.dashSvc)
	f.expSvc = service.NewExpenditureService(f.expenditures, f.bases, f.equipment, f.ledger, f.dashSvc)
	f.transferSvc = service.NewTransferService(f.transfers, f.bases, f.equipment, f.ledger, f.dashSvc)

	for _, code := range []string{"ALPHA", "BRAVO", "CHARLIE"} {
		f.bases.bases[code] = &model.Base{Code: code, CreatedAt: time.Now()}
	}
	f.equipment.types["RIFLE_556"] = &model.EquipmentType{
		Code: "RIFLE_556", Name: "5.56mm Rifle", Category: "weapon", Unit: "unit", Active: true,
	}
	f.equipment.types["MEDKIT"] = &model.EquipmentType{
		Code: "MEDKIT", Name: "Field Medical Kit", Category: "medical", Unit: "kit", Active: true,
	}
	f.equipment.types["FLARE_GUN"] = &model.EquipmentType{
		Code: "FLARE_GUN", Name: "Flare Gun", Category: "signaling", Unit: "unit", Active: false,
	}

	f.admin = service.Principal{ID: uuid.New(), Role: model.RoleAdmin}
	f.cmdrAlpha = service.Principal{ID: uuid.New(), Role: model.RoleBaseCommander, BaseCode: "ALPHA"}
	f.cmdrBravo = service.Principal{ID: uuid.New(), Role: model.RoleBaseCommander, BaseCode: "BRAVO"}
	f.logAlpha = service.Principal{ID: uuid.New(), Role: model.RoleLogisticsOfficer, BaseCode: "ALPHA"}

	return f
}

// seedStock bypasses the services to set an exact starting quantity.
func (f *fixture) seedStock(baseCode, equipmentCode string, qty int) {
	f.stock.mu.Lock()
	defer f.stock.mu.Unlock()
	f.stock.levels[stockKey{baseCode, equipmentCode}] = qty
}
