package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/auth"
	httperrors "github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/errors"
)

type MeHandler struct {
	service *authsvc.Service
}

func NewMeHandler(service *authsvc.Service) *MeHandler {
	return &MeHandler{service: service}
}

func (h *MeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	user, err := h.service.Me(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, authsvc.ErrUnauthorized) {
			writeUnauthorized(w, "UNAUTHORIZED", "user no longer exists")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load user")
		return
	}
	httperrors.Write(w, http.StatusOK, mapUser(user))
}
