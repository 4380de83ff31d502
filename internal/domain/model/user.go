package model

import (
	"time"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
)

type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email,omitempty"`
	PasswordHash string                 `json:"-"`
	Name         string                 `json:"name"`
	TelegramID   int64                  `json:"telegram_id,omitempty"`
	Subscription enums.SubscriptionTier `json:"subscription"`
	CreatedAt    time.Time              `json:"created_at"`
}
