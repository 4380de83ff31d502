package model

import "time"

type MatchOutcome struct {
	Matched   bool
	Candidate Candidate
}

type MatchRecord struct {
	UserID      string    `json:"user_id"`
	CandidateID string    `json:"candidate_id"`
	Name        string    `json:"name"`
	Photo       string    `json:"photo"`
	CreatedAt   time.Time `json:"created_at"`
}
