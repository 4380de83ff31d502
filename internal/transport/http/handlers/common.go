package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
	ratesvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/rate"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/dto"
	httperrors "github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeTooFast(w http.ResponseWriter, tf *ratesvc.TooFastError) {
	httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
		Code:          "TOO_FAST",
		Message:       "too many actions, slow down",
		RetryAfterSec: tf.RetryAfter(),
	})
}

func timezoneFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if v := strings.TrimSpace(r.Header.Get("X-Timezone")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("tz")); v != "" {
		return v
	}
	return ""
}

func mapCandidate(c *model.Candidate) *dto.CandidateResponse {
	if c == nil {
		return nil
	}
	return &dto.CandidateResponse{
		ID:         c.ID,
		Name:       c.Name,
		Age:        c.Age,
		Photos:     append([]string(nil), c.Photos...),
		Bio:        c.Bio,
		DistanceKM: c.DistanceKM,
		Location:   c.Location,
		Reason:     c.Reason,
		Interests:  append([]string(nil), c.Interests...),
	}
}

func mapView(v discovery.View) dto.SessionResponse {
	return dto.SessionResponse{
		SessionID:   v.SessionID,
		State:       string(v.State),
		Cursor:      v.Cursor,
		QueueLen:    v.QueueLen,
		Exhausted:   v.Exhausted(),
		Dragging:    v.Dragging,
		OffsetX:     v.Offset.X,
		OffsetY:     v.Offset.Y,
		Current:     mapCandidate(v.Current),
		Celebrating: mapCandidate(v.Celebrating),
	}
}

func mapDecision(d *quota.Decision) *dto.QuotaDecision {
	if d == nil {
		return nil
	}
	return &dto.QuotaDecision{
		Allowed:   d.Allowed,
		Used:      d.Used,
		LikesLeft: d.LikesLeft,
		ResetAt:   d.ResetAt,
	}
}

func mapResult(res discovery.Result) dto.ActionResponse {
	out := dto.ActionResponse{
		Result:  string(res.Kind),
		Matched: res.Matched,
		Pending: res.Pending,
		Cursor:  res.Cursor,
		Quota:   mapDecision(res.Quota),
	}
	if res.Direction != "" {
		out.Direction = string(res.Direction)
	}
	if res.Candidate.ID != "" {
		c := res.Candidate
		out.Candidate = mapCandidate(&c)
	}
	return out
}

func mapPlans(plans []model.Plan) []dto.PlanResponse {
	out := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, mapPlan(p))
	}
	return out
}

func mapPlan(p model.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:       string(p.ID),
		Name:     p.Name,
		Price:    p.Price,
		Popular:  p.Popular,
		Features: append([]string(nil), p.Features...),
	}
}

func mapUser(u model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Subscription: string(u.Subscription),
		CreatedAt:    u.CreatedAt,
	}
}
