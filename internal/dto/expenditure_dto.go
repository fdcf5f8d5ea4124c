package dto

type CreateExpenditureRequest struct {
	BaseCode      string `json:"baseCode"      validate:"required,max=20"`
	EquipmentCode string `json:"equipmentCode" validate:"required,max=30"`
	Quantity      int    `json:"quantity"      validate:"required,gt=0"`
	Kind          string `json:"kind"          validate:"required,oneof=assignment consumption"`
	Notes         string `json:"notes"         validate:"max=500"`
}

type ExpenditureFilter struct {
	BaseCode      string `form:"baseCode"`
	EquipmentCode string `form:"equipmentCode"`
	Kind          string `form:"kind"`
	From          string `form:"from"`
	To            string `form:"to"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ExpenditureResponse struct {
	ID            string `json:"id"`
	BaseCode      string `json:"baseCode"`
	EquipmentCode string `json:"equipmentCode"`
	Quantity      int    `json:"quantity"`
	Kind          string `json:"kind"`
	Notes         string `json:"notes"`
	CreatedBy     string `json:"createdBy"`
	CreatedAt     string `json:"createdAt"`
}

type ExpenditureListResponse struct {
	OK    bool                  `json:"ok"`
	Items []ExpenditureResponse `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
