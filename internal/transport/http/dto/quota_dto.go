package dto

import "time"

type QuotaResponse struct {
	LikesLeft int       `json:"likes_left"`
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Unlimited bool      `json:"unlimited"`
	ResetAt   time.Time `json:"reset_at"`
	Tier      string    `json:"tier"`
}

type QuotaDecision struct {
	Allowed   bool      `json:"allowed"`
	Used      int       `json:"used"`
	LikesLeft int       `json:"likes_left"`
	ResetAt   time.Time `json:"reset_at"`
}
