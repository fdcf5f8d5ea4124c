package dto

// ─── Bases ───────────────────────────────────────────────────────────────────

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CreateBaseRequest struct {
	BaseCode string    `json:"baseCode" validate:"required,max=20"`
	Location *Location `json:"location"`
}

type UpdateBaseRequest struct {
	Location *Location `json:"location"`
}

type BaseResponse struct {
	BaseCode  string    `json:"baseCode"`
	Location  *Location `json:"location"`
	CreatedAt string    `json:"createdAt"`
}

type BaseListResponse struct {
	OK    bool           `json:"ok"`
	Items []BaseResponse `json:"items"`
	Total int            `json:"total"`
}

// ─── Equipment ───────────────────────────────────────────────────────────────

type CreateEquipmentRequest struct {
	Code     string `json:"code"     validate:"required,max=30"`
	Name     string `json:"name"     validate:"required,min=2,max=120"`
	Category string `json:"category" validate:"required"`
	Unit     string `json:"unit"`
	Active   *bool  `json:"active"`
}

type UpdateEquipmentRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=2,max=120"`
	Category *string `json:"category"`
	Unit     *string `json:"unit"`
	Active   *bool   `json:"active"`
}

type EquipmentFilter struct {
	Category string `form:"category"`
	Active   string `form:"active"` // "true" | "false" | "all" (default "all")
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type EquipmentResponse struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Unit      string `json:"unit"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}

type EquipmentListResponse struct {
	OK    bool                `json:"ok"`
	Items []EquipmentResponse `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
