package model

// QuotaRecord is the persisted per-day like counter. Date is a local calendar date (YYYY-MM-DD).
type QuotaRecord struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	UserID string `json:"user_id,omitempty"`
}
