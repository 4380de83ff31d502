package dto

import "time"

type MatchResponse struct {
	CandidateID string    `json:"candidate_id"`
	Name        string    `json:"name"`
	Photo       string    `json:"photo"`
	CreatedAt   time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchResponse `json:"items"`
}
