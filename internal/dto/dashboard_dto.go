package dto

// CountQty pairs an event count with the summed quantity it moved.
type CountQty struct {
	Count    int64 `json:"count"`
	TotalQty int64 `json:"totalQty"`
}

type GlobalStats struct {
	BaseCount            int64            `json:"baseCount"`
	EquipmentActiveCount int64            `json:"equipmentActiveCount"`
	OnHandTotalQty       int64            `json:"onHandTotalQty"`
	TransfersByStatus    map[string]int64 `json:"transfersByStatus"`
}

type AdminDashboardResponse struct {
	OK     bool        `json:"ok"`
	Global GlobalStats `json:"global"`
}

type BaseKPIs struct {
	OnHandTotalQty int64    `json:"onHandTotalQty"`
	Purchases      CountQty `json:"purchases"`
	Expenditures   CountQty `json:"expenditures"`
	TransfersIn    CountQty `json:"transfersIn"`
	TransfersOut   CountQty `json:"transfersOut"`
	Requests       CountQty `json:"requests"`
}

type EquipmentOnHand struct {
	EquipmentCode string `json:"equipmentCode"`
	OnHand        int    `json:"onHand"`
}

type BaseDashboardResponse struct {
	OK                bool              `json:"ok"`
	Base              string            `json:"base"`
	KPIs              BaseKPIs          `json:"kpis"`
	OnHandByEquipment []EquipmentOnHand `json:"onHandByEquipment"`
}
