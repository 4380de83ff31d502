package handlers

import (
	"net/http"

	authsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/auth"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
	httperrors "github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/errors"
)

type QuotaHandler struct {
	gate  *quota.Gate
	tiers discovery.TierSource
}

func NewQuotaHandler(gate *quota.Gate, tiers discovery.TierSource) *QuotaHandler {
	return &QuotaHandler{gate: gate, tiers: tiers}
}

func (h *QuotaHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.gate == nil {
		writeInternal(w, "QUOTA_SERVICE_UNAVAILABLE", "quota service is unavailable")
		return
	}

	snap, err := quotaSnapshot(r.Context(), h.gate, h.tiers, identity.UserID, timezoneFromRequest(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load quota")
		return
	}
	httperrors.Write(w, http.StatusOK, snap)
}
