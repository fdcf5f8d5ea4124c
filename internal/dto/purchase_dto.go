package dto

import "time"

type CreatePurchaseRequest struct {
	BaseCode      string    `json:"baseCode"      validate:"required,max=20"`
	EquipmentCode string    `json:"equipmentCode" validate:"required,max=30"`
	Quantity      int       `json:"quantity"      validate:"required,gt=0"`
	PurchasedAt   time.Time `json:"purchasedAt"   validate:"required"`
	Notes         string    `json:"notes"         validate:"max=500"`
}

type PurchaseFilter struct {
	BaseCode      string `form:"baseCode"`
	EquipmentCode string `form:"equipmentCode"`
	From          string `form:"from"` // inclusive, YYYY-MM-DD
	To            string `form:"to"`   // inclusive, YYYY-MM-DD
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type PurchaseResponse struct {
	ID            string `json:"id"`
	BaseCode      string `json:"baseCode"`
	EquipmentCode string `json:"equipmentCode"`
	Quantity      int    `json:"quantity"`
	PurchasedAt   string `json:"purchasedAt"`
	Notes         string `json:"notes"`
	CreatedBy     string `json:"createdBy"`
	CreatedAt     string `json:"createdAt"`
}

type PurchaseListResponse struct {
	OK    bool               `json:"ok"`
	Items []PurchaseResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
