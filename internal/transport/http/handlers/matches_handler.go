package handlers

import (
	"net/http"
	"strconv"
	"strings"

	authsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/auth"
	matchessvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/matches"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/dto"
	httperrors "github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.service.List(r.Context(), identity.UserID, limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list matches")
		return
	}

	items := make([]dto.MatchResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, dto.MatchResponse{
			CandidateID: rec.CandidateID,
			Name:        rec.Name,
			Photo:       rec.Photo,
			CreatedAt:   rec.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: items})
}
