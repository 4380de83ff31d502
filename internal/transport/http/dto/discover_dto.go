package dto

type PointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerEventRequest is one mouse or touch sample. Touch samples carry the
// active touch list; mouse samples carry x/y.
type PointerEventRequest struct {
	Source  string     `json:"source"`
	Phase   string     `json:"phase"`
	X       float64    `json:"x"`
	Y       float64    `json:"y"`
	Touches []PointDTO `json:"touches,omitempty"`
}

type PointerBatchRequest struct {
	Events []PointerEventRequest `json:"events"`
}

type SwipeRequest struct {
	Direction string `json:"direction"`
}

type CandidateResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Photos     []string `json:"photos"`
	Bio        string   `json:"bio,omitempty"`
	DistanceKM float64  `json:"distance_km"`
	Location   string   `json:"location,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Interests  []string `json:"interests,omitempty"`
}

type SessionResponse struct {
	SessionID   string             `json:"session_id"`
	State       string             `json:"state"`
	Cursor      int                `json:"cursor"`
	QueueLen    int                `json:"queue_len"`
	Exhausted   bool               `json:"exhausted"`
	Dragging    bool               `json:"dragging"`
	OffsetX     float64            `json:"offset_x"`
	OffsetY     float64            `json:"offset_y"`
	Current     *CandidateResponse `json:"current,omitempty"`
	Celebrating *CandidateResponse `json:"celebrating,omitempty"`
	Quota       *QuotaResponse     `json:"quota,omitempty"`
}

type ActionResponse struct {
	Result    string             `json:"result"`
	Direction string             `json:"direction,omitempty"`
	Candidate *CandidateResponse `json:"candidate,omitempty"`
	Matched   bool               `json:"matched"`
	Pending   bool               `json:"pending"`
	Cursor    int                `json:"cursor"`
	Quota     *QuotaDecision     `json:"quota,omitempty"`
}

type PointerBatchResponse struct {
	Results []ActionResponse `json:"results"`
	Session SessionResponse  `json:"session"`
	// Upgrade is set when a drag release was denied by the like quota.
	Upgrade *UpgradeRequiredResponse `json:"upgrade,omitempty"`
}

type SwipeResponse struct {
	ActionResponse
	Session SessionResponse `json:"session"`
}

type RefillResponse struct {
	Added   int             `json:"added"`
	Session SessionResponse `json:"session"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// UpgradeRequiredResponse is the denied-like body: the error plus the prompt
// a client shows instead of the card exit.
type UpgradeRequiredResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Quota   *QuotaDecision `json:"quota,omitempty"`
	Plans   []PlanResponse `json:"plans"`
}
