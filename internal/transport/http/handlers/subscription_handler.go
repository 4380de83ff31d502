package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/auth"
	entsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/entitlements"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/dto"
	httperrors "github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/errors"
)

type SubscriptionHandler struct {
	service *entsvc.Service
}

func NewSubscriptionHandler(service *entsvc.Service) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

func (h *SubscriptionHandler) Plans(w http.ResponseWriter, _ *http.Request) {
	if h.service == nil {
		writeInternal(w, "ENTITLEMENT_SERVICE_UNAVAILABLE", "entitlement service is unavailable")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PlansResponse{Plans: mapPlans(h.service.Plans())})
}

func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "ENTITLEMENT_SERVICE_UNAVAILABLE", "entitlement service is unavailable")
		return
	}

	plan, err := h.service.Subscribe(r.Context(), identity.UserID, chi.URLParam(r, "planID"))
	if err != nil {
		switch {
		case errors.Is(err, entsvc.ErrUnknownPlan):
			writeNotFound(w, "UNKNOWN_PLAN", "unknown subscription plan")
		case errors.Is(err, entsvc.ErrNotFound):
			writeUnauthorized(w, "UNAUTHORIZED", "user no longer exists")
		case errors.Is(err, entsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid subscribe request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to subscribe")
		}
		return
	}
	httperrors.Write(w, http.StatusOK, dto.SubscribeResponse{OK: true, Plan: mapPlan(plan)})
}
