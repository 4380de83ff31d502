package model

import "github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"

type Plan struct {
	ID       enums.SubscriptionTier `json:"id"`
	Name     string                 `json:"name"`
	Price    float64                `json:"price"`
	Popular  bool                   `json:"popular,omitempty"`
	Features []string               `json:"features"`
}
