package dto

type PlanResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Popular  bool     `json:"popular"`
	Features []string `json:"features"`
}

type PlansResponse struct {
	Plans []PlanResponse `json:"plans"`
}

type SubscribeResponse struct {
	OK   bool         `json:"ok"`
	Plan PlanResponse `json:"plan"`
}
