package model

import (
	"time"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
)

type Swipe struct {
	UserID      string          `json:"user_id"`
	CandidateID string          `json:"candidate_id"`
	Direction   enums.Direction `json:"direction"`
	CreatedAt   time.Time       `json:"created_at"`
}
