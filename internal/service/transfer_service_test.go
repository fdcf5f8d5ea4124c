package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"armory/internal/dto"
	"armory/internal/model"
	"armory/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferReq(requestBase, equipment string, qty int) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		RequestBase:   requestBase,
		EquipmentCode: equipment,
		Quantity:      qty,
	}
}

// Full lifecycle: BRAVO requests 5 rifles, ALPHA supplies them. Purchases
// and expenditures at ALPHA set the stage; stock moves only on send and
// receive.
func TestTransferFullLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.purchaseSvc.Record(ctx, f.cmdrAlpha, dto.CreatePurchaseRequest{
		BaseCode: "ALPHA", EquipmentCode: "RIFLE_556", Quantity: 10, PurchasedAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = f.expSvc.Record(ctx, f.cmdrAlpha, expenditureReq("ALPHA", "RIFLE_556", 3, "assignment"))
	require.NoError(t, err)
	require.Equal(t, 7, f.stock.quantity("ALPHA", "RIFLE_556"))

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 5))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Nil(t, created.SupplierBase)
	id := uuid.MustParse(created.ID)

	approved, err := f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, approved.Status)
	assert.NotNil(t, approved.ApprovedAt)

	// Open requests are visible to potential suppliers.
	open, err := f.transferSvc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open.Items, 1)
	assert.Equal(t, created.ID, open.Items[0].ID)

	claimed, err := f.transferSvc.Claim(ctx, f.cmdrAlpha, id, dto.ClaimTransferRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusClaimed, claimed.Status)
	require.NotNil(t, claimed.SupplierBase)
	assert.Equal(t, "ALPHA", *claimed.SupplierBase)
	// Claiming reserves nothing; stock is untouched until send.
	assert.Equal(t, 7, f.stock.quantity("ALPHA", "RIFLE_556"))

	sent, err := f.transferSvc.Send(ctx, f.cmdrAlpha, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, sent.Status)
	assert.Equal(t, 2, f.stock.quantity("ALPHA", "RIFLE_556"))
	assert.Equal(t, 0, f.stock.quantity("BRAVO", "RIFLE_556"))

	received, err := f.transferSvc.Receive(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceived, received.Status)
	assert.Equal(t, 2, f.stock.quantity("ALPHA", "RIFLE_556"))
	assert.Equal(t, 5, f.stock.quantity("BRAVO", "RIFLE_556"))
}

func TestTransferInvalidTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedStock("ALPHA", "RIFLE_556", 10)

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 5))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	var conflict *service.ConflictError

	// Claim before approval.
	_, err = f.transferSvc.Claim(ctx, f.cmdrAlpha, id, dto.ClaimTransferRequest{})
	require.ErrorAs(t, err, &conflict)

	// Send before a supplier exists.
	_, err = f.transferSvc.Send(ctx, f.admin, id)
	require.ErrorAs(t, err, &conflict)

	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.NoError(t, err)

	// Receive from open.
	_, err = f.transferSvc.Receive(ctx, f.cmdrBravo, id)
	require.ErrorAs(t, err, &conflict)

	// Double approve.
	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.ErrorAs(t, err, &conflict)

	// No stock has moved through any of this.
	assert.Equal(t, 10, f.stock.quantity("ALPHA", "RIFLE_556"))
	assert.Equal(t, 0, f.stock.quantity("BRAVO", "RIFLE_556"))
}

func TestTransferClaimValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 5))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.NoError(t, err)

	// Supplier cannot be the requesting base.
	_, err = f.transferSvc.Claim(ctx, f.admin, id, dto.ClaimTransferRequest{SupplierBase: "BRAVO"})
	var validation *service.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "supplierBase")

	// Supplier base must exist.
	_, err = f.transferSvc.Claim(ctx, f.admin, id, dto.ClaimTransferRequest{SupplierBase: "DELTA"})
	var nf *service.NotFoundError
	require.ErrorAs(t, err, &nf)

	// Admin without a base must name one.
	_, err = f.transferSvc.Claim(ctx, f.admin, id, dto.ClaimTransferRequest{})
	require.ErrorAs(t, err, &validation)

	// Commander of another base cannot claim for ALPHA.
	_, err = f.transferSvc.Claim(ctx, f.cmdrBravo, id, dto.ClaimTransferRequest{SupplierBase: "ALPHA"})
	var forbidden *service.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	// Admin naming a valid third base succeeds.
	claimed, err := f.transferSvc.Claim(ctx, f.admin, id, dto.ClaimTransferRequest{SupplierBase: "CHARLIE"})
	require.NoError(t, err)
	assert.Equal(t, "CHARLIE", *claimed.SupplierBase)
}

// Exactly one of N concurrent claimants wins; losers observe a conflict.
func TestTransferConcurrentClaimSingleWinner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 5))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.NoError(t, err)

	const claimants = 20
	var wg sync.WaitGroup
	errs := make(chan error, claimants)
	for i := 0; i < claimants; i++ {
		supplier := "ALPHA"
		if i%2 == 1 {
			supplier = "CHARLIE"
		}
		wg.Add(1)
		go func(supplier string) {
			defer wg.Done()
			_, err := f.transferSvc.Claim(ctx, f.admin, id, dto.ClaimTransferRequest{SupplierBase: supplier})
			errs <- err
		}(supplier)
	}
	wg.Wait()
	close(errs)

	winners := 0
	for err := range errs {
		if err == nil {
			winners++
		} else {
			var conflict *service.ConflictError
			require.ErrorAs(t, err, &conflict)
		}
	}
	assert.Equal(t, 1, winners)

	got, err := f.transferSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClaimed, got.Status)
	assert.NotNil(t, got.SupplierBase)
}

func TestTransferSendReceiveIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedStock("ALPHA", "RIFLE_556", 10)

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 4))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	_, err = f.transferSvc.Claim(ctx, f.cmdrAlpha, id, dto.ClaimTransferRequest{})
	require.NoError(t, err)

	_, err = f.transferSvc.Send(ctx, f.cmdrAlpha, id)
	require.NoError(t, err)
	// Retry: same outcome, no second debit.
	resp, err := f.transferSvc.Send(ctx, f.cmdrAlpha, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, resp.Status)
	assert.Equal(t, 6, f.stock.quantity("ALPHA", "RIFLE_556"))

	_, err = f.transferSvc.Receive(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	resp, err = f.transferSvc.Receive(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceived, resp.Status)
	assert.Equal(t, 4, f.stock.quantity("BRAVO", "RIFLE_556"))

	// Send after receive also reports success without touching stock.
	resp, err = f.transferSvc.Send(ctx, f.cmdrAlpha, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceived, resp.Status)
	assert.Equal(t, 6, f.stock.quantity("ALPHA", "RIFLE_556"))
}

func TestTransferSendInsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedStock("ALPHA", "RIFLE_556", 2)

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 5))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	_, err = f.transferSvc.Claim(ctx, f.cmdrAlpha, id, dto.ClaimTransferRequest{})
	require.NoError(t, err)

	_, err = f.transferSvc.Send(ctx, f.cmdrAlpha, id)
	var insufficient *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	// Transfer stays claimed so the supplier can retry after restocking.
	got, err := f.transferSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClaimed, got.Status)
	assert.Equal(t, 2, f.stock.quantity("ALPHA", "RIFLE_556"))
}

func TestTransferRoleGates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedStock("ALPHA", "RIFLE_556", 10)

	created, err := f.transferSvc.CreateRequest(ctx, f.logAlpha, transferReq("ALPHA", "RIFLE_556", 2))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	var forbidden *service.ForbiddenError

	// Logistics officers cannot approve.
	_, err = f.transferSvc.Approve(ctx, f.logAlpha, id)
	require.ErrorAs(t, err, &forbidden)

	_, err = f.transferSvc.Approve(ctx, f.cmdrAlpha, id)
	require.NoError(t, err)
	_, err = f.transferSvc.Claim(ctx, f.cmdrBravo, id, dto.ClaimTransferRequest{})
	require.NoError(t, err)

	// Requester's side cannot send the supplier's shipment.
	_, err = f.transferSvc.Send(ctx, f.cmdrAlpha, id)
	require.ErrorAs(t, err, &forbidden)

	// Supplier's side cannot receive for the requester.
	f.seedStock("BRAVO", "RIFLE_556", 5)
	_, err = f.transferSvc.Send(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	_, err = f.transferSvc.Receive(ctx, f.cmdrBravo, id)
	require.ErrorAs(t, err, &forbidden)

	// Logistics officer on the requesting base may receive.
	_, err = f.transferSvc.Receive(ctx, f.logAlpha, id)
	require.NoError(t, err)
}

func TestTransferDeletePendingNoStockEffect(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 5))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	// Only admins delete transfers.
	err = f.transferSvc.Delete(ctx, f.cmdrBravo, id)
	var forbidden *service.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	require.NoError(t, f.transferSvc.Delete(ctx, f.admin, id))
	_, err = f.transferSvc.Get(ctx, id)
	var nf *service.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestTransferDeleteSentCreditsSupplierBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedStock("ALPHA", "RIFLE_556", 10)

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 4))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	_, err = f.transferSvc.Claim(ctx, f.cmdrAlpha, id, dto.ClaimTransferRequest{})
	require.NoError(t, err)
	_, err = f.transferSvc.Send(ctx, f.cmdrAlpha, id)
	require.NoError(t, err)
	require.Equal(t, 6, f.stock.quantity("ALPHA", "RIFLE_556"))

	require.NoError(t, f.transferSvc.Delete(ctx, f.admin, id))
	assert.Equal(t, 10, f.stock.quantity("ALPHA", "RIFLE_556"))
	assert.Equal(t, 0, f.stock.quantity("BRAVO", "RIFLE_556"))
}

func TestTransferDeleteReceivedReversesBothSides(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedStock("ALPHA", "RIFLE_556", 10)

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 4))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	_, err = f.transferSvc.Claim(ctx, f.cmdrAlpha, id, dto.ClaimTransferRequest{})
	require.NoError(t, err)
	_, err = f.transferSvc.Send(ctx, f.cmdrAlpha, id)
	require.NoError(t, err)
	_, err = f.transferSvc.Receive(ctx, f.cmdrBravo, id)
	require.NoError(t, err)

	require.NoError(t, f.transferSvc.Delete(ctx, f.admin, id))
	assert.Equal(t, 10, f.stock.quantity("ALPHA", "RIFLE_556"))
	assert.Equal(t, 0, f.stock.quantity("BRAVO", "RIFLE_556"))
}

func TestTransferDeleteReceivedBlockedWhenStockConsumed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedStock("ALPHA", "RIFLE_556", 10)

	created, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 4))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, id)
	require.NoError(t, err)
	_, err = f.transferSvc.Claim(ctx, f.cmdrAlpha, id, dto.ClaimTransferRequest{})
	require.NoError(t, err)
	_, err = f.transferSvc.Send(ctx, f.cmdrAlpha, id)
	require.NoError(t, err)
	_, err = f.transferSvc.Receive(ctx, f.cmdrBravo, id)
	require.NoError(t, err)

	// BRAVO spends 2 of the 4 it received; the reversal debit of 4 must fail.
	_, err = f.expSvc.Record(ctx, f.cmdrBravo, expenditureReq("BRAVO", "RIFLE_556", 2, "consumption"))
	require.NoError(t, err)

	err = f.transferSvc.Delete(ctx, f.admin, id)
	var insufficient *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	// Transfer and both ledgers untouched by the blocked delete.
	got, err := f.transferSvc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceived, got.Status)
	assert.Equal(t, 6, f.stock.quantity("ALPHA", "RIFLE_556"))
	assert.Equal(t, 2, f.stock.quantity("BRAVO", "RIFLE_556"))
}

func TestTransferListFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t1, err := f.transferSvc.CreateRequest(ctx, f.cmdrBravo, transferReq("BRAVO", "RIFLE_556", 1))
	require.NoError(t, err)
	_, err = f.transferSvc.CreateRequest(ctx, f.cmdrAlpha, transferReq("ALPHA", "MEDKIT", 2))
	require.NoError(t, err)
	_, err = f.transferSvc.Approve(ctx, f.cmdrBravo, uuid.MustParse(t1.ID))
	require.NoError(t, err)

	byStatus, err := f.transferSvc.List(ctx, dto.TransferFilter{Status: model.StatusPending})
	require.NoError(t, err)
	require.Len(t, byStatus.Items, 1)
	assert.Equal(t, "ALPHA", byStatus.Items[0].RequestBase)

	byBase, err := f.transferSvc.List(ctx, dto.TransferFilter{BaseCode: "BRAVO"})
	require.NoError(t, err)
	require.Len(t, byBase.Items, 1)
	assert.Equal(t, model.StatusOpen, byBase.Items[0].Status)
}
