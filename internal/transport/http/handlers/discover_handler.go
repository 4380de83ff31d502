package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/engine/gesture"
	authsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/auth"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
	ratesvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/rate"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/dto"
	httperrors "github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/errors"
)

const maxPointerBatch = 256

type PlanLister interface {
	Plans() []model.Plan
}

type DiscoverDependencies struct {
	Registry       *discovery.Registry
	Gate           *quota.Gate
	Tiers          discovery.TierSource
	Plans          PlanLister
	SwipeLimiter   *ratesvc.Limiter
	PointerLimiter *ratesvc.Limiter
	Logger         *zap.Logger
}

type DiscoverHandler struct {
	deps DiscoverDependencies
}

func NewDiscoverHandler(deps DiscoverDependencies) *DiscoverHandler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &DiscoverHandler{deps: deps}
}

func (h *DiscoverHandler) Start(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	session, err := h.deps.Registry.Start(r.Context(), identity.UserID, timezoneFromRequest(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, h.sessionResponse(r, identity.UserID, session.View()))
}

func (h *DiscoverHandler) State(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	session, err := h.deps.Registry.Get(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.sessionResponse(r, identity.UserID, session.View()))
}

func (h *DiscoverHandler) Close(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.deps.Registry.Close(identity.UserID); err != nil {
		h.writeError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *DiscoverHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, h.deps.PointerLimiter, identity.UserID) {
		return
	}

	var req dto.PointerBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if len(req.Events) == 0 || len(req.Events) > maxPointerBatch {
		writeBadRequest(w, "VALIDATION_ERROR", "events must hold 1..256 samples")
		return
	}
	events := make([]gesture.PointerEvent, 0, len(req.Events))
	for _, raw := range req.Events {
		ev, err := pointerEventFromDTO(raw)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
			return
		}
		events = append(events, ev)
	}

	session, err := h.deps.Registry.Get(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := dto.PointerBatchResponse{Results: make([]dto.ActionResponse, 0, len(events))}
	for _, ev := range events {
		res, err := session.Pointer(r.Context(), ev)
		if err != nil {
			h.writeError(w, err)
			return
		}
		resp.Results = append(resp.Results, mapResult(res))
		if res.Kind == discovery.ResultDenied && resp.Upgrade == nil {
			upgrade := h.upgradePrompt(res)
			resp.Upgrade = &upgrade
		}
	}
	resp.Session = h.sessionResponse(r, identity.UserID, session.View())
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *DiscoverHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, h.deps.SwipeLimiter, identity.UserID) {
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	dir, ok := enums.ParseDirection(req.Direction)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "direction must be left or right")
		return
	}

	session, err := h.deps.Registry.Get(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	res, err := session.Swipe(r.Context(), dir)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if res.Kind == discovery.ResultDenied {
		httperrors.Write(w, http.StatusPaymentRequired, h.upgradePrompt(res))
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		ActionResponse: mapResult(res),
		Session:        h.sessionResponse(r, identity.UserID, session.View()),
	})
}

func (h *DiscoverHandler) DismissCelebration(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	session, err := h.deps.Registry.Get(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !session.DismissCelebration() {
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "NO_CELEBRATION",
			Message: "no match celebration is showing",
		})
		return
	}
	httperrors.Write(w, http.StatusOK, h.sessionResponse(r, identity.UserID, session.View()))
}

func (h *DiscoverHandler) Refill(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	added, err := h.deps.Registry.Refill(r.Context(), identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	session, err := h.deps.Registry.Get(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.RefillResponse{
		Added:   added,
		Session: h.sessionResponse(r, identity.UserID, session.View()),
	})
}

func (h *DiscoverHandler) identity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if h.deps.Registry == nil {
		writeInternal(w, "DISCOVERY_UNAVAILABLE", "discovery service is unavailable")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func (h *DiscoverHandler) allow(w http.ResponseWriter, r *http.Request, limiter *ratesvc.Limiter, userID string) bool {
	if limiter == nil {
		return true
	}
	err := limiter.Allow(r.Context(), userID)
	if err == nil {
		return true
	}
	if tf, ok := ratesvc.IsTooFast(err); ok {
		writeTooFast(w, tf)
		return false
	}
	// rate windows are best effort
	h.deps.Logger.Warn("rate limiter unavailable", zap.String("user_id", userID), zap.Error(err))
	return true
}

func (h *DiscoverHandler) sessionResponse(r *http.Request, userID string, view discovery.View) dto.SessionResponse {
	resp := mapView(view)
	if snap, err := quotaSnapshot(r.Context(), h.deps.Gate, h.deps.Tiers, userID, timezoneFromRequest(r)); err == nil {
		resp.Quota = &snap
	} else {
		h.deps.Logger.Debug("quota snapshot unavailable", zap.String("user_id", userID), zap.Error(err))
	}
	return resp
}

func (h *DiscoverHandler) upgradePrompt(res discovery.Result) dto.UpgradeRequiredResponse {
	var plans []dto.PlanResponse
	if h.deps.Plans != nil {
		plans = mapPlans(h.deps.Plans.Plans())
	}
	return dto.UpgradeRequiredResponse{
		Code:    "UPGRADE_REQUIRED",
		Message: "daily likes limit reached, upgrade for unlimited likes",
		Quota:   mapDecision(res.Quota),
		Plans:   plans,
	}
}

func (h *DiscoverHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, discovery.ErrNoSession), errors.Is(err, discovery.ErrClosed):
		writeNotFound(w, "NO_SESSION", "no active discovery session")
	case errors.Is(err, discovery.ErrBusy):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "SESSION_BUSY",
			Message: "previous swipe is still in progress",
		})
	case errors.Is(err, discovery.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid discovery request")
	default:
		h.deps.Logger.Error("discovery request failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to process discovery request")
	}
}

func pointerEventFromDTO(raw dto.PointerEventRequest) (gesture.PointerEvent, error) {
	phase, err := gesture.ParsePhase(strings.ToLower(strings.TrimSpace(raw.Phase)))
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(raw.Source)) {
	case "", "mouse":
		return gesture.MouseEvent{Kind: phase, X: raw.X, Y: raw.Y}, nil
	case "touch":
		touches := make([]gesture.Point, 0, len(raw.Touches))
		for _, t := range raw.Touches {
			touches = append(touches, gesture.Point{X: t.X, Y: t.Y})
		}
		return gesture.TouchEvent{Kind: phase, Touches: touches}, nil
	default:
		return nil, errors.New("source must be mouse or touch")
	}
}

func quotaSnapshot(ctx context.Context, gate *quota.Gate, tiers discovery.TierSource, userID, tz string) (dto.QuotaResponse, error) {
	if gate == nil {
		return dto.QuotaResponse{}, quota.ErrDependenciesNil
	}
	tier := enums.TierFree
	if tiers != nil {
		resolved, err := tiers.Tier(ctx, userID)
		if err != nil {
			return dto.QuotaResponse{}, err
		}
		tier = resolved
	}

	snap, err := gate.In(tz).Snapshot(ctx, userID, tier)
	if err != nil {
		return dto.QuotaResponse{}, err
	}
	return dto.QuotaResponse{
		LikesLeft: snap.LikesLeft,
		Used:      snap.Used,
		Limit:     snap.Limit,
		Unlimited: snap.Unlimited,
		ResetAt:   snap.ResetAt,
		Tier:      string(tier),
	}, nil
}
