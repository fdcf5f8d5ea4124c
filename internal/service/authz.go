package service

import (
	"armory/internal/model"

	"github.com/google/uuid"
)

// Principal is the externally-authenticated identity a call acts under.
// BaseCode is empty for base-less admins.
type Principal struct {
	ID       uuid.UUID
	Role     string
	BaseCode string
}

// Action names every gated mutation.
type Action string

const (
	ActionManageCatalog     Action = "catalog.manage"
	ActionRecordPurchase    Action = "purchase.record"
	ActionDeletePurchase    Action = "purchase.delete"
	ActionRecordExpenditure Action = "expenditure.record"
	ActionDeleteExpenditure Action = "expenditure.delete"
	ActionRequestTransfer   Action = "transfer.request"
	ActionApproveTransfer   Action = "transfer.approve"
	ActionClaimTransfer     Action = "transfer.claim"
	ActionSendTransfer      Action = "transfer.send"
	ActionReceiveTransfer   Action = "transfer.receive"
	ActionDeleteTransfer    Action = "transfer.delete"
	ActionViewBaseDashboard Action = "dashboard.base"
)

// Allowed is the single capability matrix consulted before every mutation.
// Pure function of its inputs. Unknown roles are denied outright — the
// conservative reading of roles the matrix does not define.
func Allowed(role, principalBase string, action Action, targetBase string) bool {
	if role == model.RoleAdmin {
		return true
	}

	own := principalBase != "" && principalBase == targetBase

	switch role {
	case model.RoleBaseCommander:
		switch action {
		case ActionRequestTransfer, ActionApproveTransfer, ActionClaimTransfer,
			ActionSendTransfer, ActionReceiveTransfer,
			ActionRecordPurchase, ActionDeletePurchase,
			ActionRecordExpenditure, ActionDeleteExpenditure,
			ActionViewBaseDashboard:
			return own
		}
	case model.RoleLogisticsOfficer:
		switch action {
		case ActionRequestTransfer, ActionReceiveTransfer,
			ActionRecordPurchase, ActionDeletePurchase,
			ActionRecordExpenditure, ActionDeleteExpenditure,
			ActionViewBaseDashboard:
			return own
		}
	}
	return false
}

// requireAllowed wraps Allowed in the domain error the handlers map to 403.
func requireAllowed(p Principal, action Action, targetBase string) error {
	if !Allowed(p.Role, p.BaseCode, action, targetBase) {
		return &ForbiddenError{Reason: "not permitted for this base or role"}
	}
	return nil
}
