package rightnow

import "hotmess/internal/domain"

// Endpoint paths, relative to the configured API base.
const (
	DraftPath  = "/hotmess-right-now-draft"
	CreatePath = "/right-now-create"
)

// DraftRequest is the body sent to the draft-assist endpoint.
// Tier keys are camelCase on the wire, unlike the post payload.
type DraftRequest struct {
	City       string                `json:"city,omitempty"`
	Intent     domain.Intent         `json:"intent"`
	Vibe       string                `json:"vibe"`
	Boundaries string                `json:"boundaries"`
	XpTier     domain.XpTier         `json:"xpTier"`
	Membership domain.MembershipTier `json:"membership"`
}

// DraftResponse is the draft-assist answer. Absent fields are nil.
type DraftResponse struct {
	Title      *string `json:"title,omitempty"`
	Text       *string `json:"text,omitempty"`
	SafetyNote *string `json:"safety_note,omitempty"`
}

// DraftPayload is the post body submitted to the create endpoint.
type DraftPayload struct {
	Intent            domain.Intent   `json:"intent"`
	Title             string          `json:"title"`
	Text              string          `json:"text"`
	City              string          `json:"city,omitempty"`
	Country           string          `json:"country,omitempty"`
	Lat               *float64        `json:"lat,omitempty"`
	Lng               *float64        `json:"lng,omitempty"`
	RoomMode          domain.RoomMode `json:"room_mode"`
	CrowdCount        *int            `json:"crowd_count"`
	VisibilityRadiusM *float64        `json:"visibility_radius_m"`
	Boundaries        string          `json:"boundaries"`
	MediaURL          string          `json:"media_url,omitempty"`
}

// Location is the host-supplied place a post is made from.
type Location struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}
