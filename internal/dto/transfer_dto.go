package dto

type CreateTransferRequest struct {
	RequestBase   string `json:"requestBase"   validate:"required,max=20"`
	EquipmentCode string `json:"equipmentCode" validate:"required,max=30"`
	Quantity      int    `json:"quantity"      validate:"required,gt=0"`
	Notes         string `json:"notes"         validate:"max=500"`
}

// ClaimTransferRequest names the supplying base. Empty means "the caller's
// own base" — the only option for a base commander anyway.
type ClaimTransferRequest struct {
	SupplierBase string `json:"supplierBase" validate:"max=20"`
}

type TransferFilter struct {
	Status        string `form:"status"`
	BaseCode      string `form:"baseCode"` // matches either side of the transfer
	EquipmentCode string `form:"equipmentCode"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransferResponse struct {
	ID            string  `json:"id"`
	RequestBase   string  `json:"requestBase"`
	SupplierBase  *string `json:"supplierBase"`
	EquipmentCode string  `json:"equipmentCode"`
	Quantity      int     `json:"quantity"`
	Notes         string  `json:"notes"`
	Status        string  `json:"status"`
	RequestedBy   string  `json:"requestedBy"`
	RequestedAt   string  `json:"requestedAt"`
	ApprovedAt    *string `json:"approvedAt"`
	ClaimedAt     *string `json:"claimedAt"`
	SentAt        *string `json:"sentAt"`
	ReceivedAt    *string `json:"receivedAt"`
}

type TransferListResponse struct {
	OK    bool               `json:"ok"`
	Items []TransferResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
