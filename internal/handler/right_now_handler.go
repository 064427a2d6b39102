package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"hotmess/internal/composer"
	"hotmess/internal/domain"
	"hotmess/internal/entitlement"
	"hotmess/internal/middleware"
	"hotmess/internal/rightnow"
	"hotmess/internal/session"

	"github.com/gin-gonic/gin"
)

// RightNowHandler exposes the composer session of the signed-in user.
type RightNowHandler struct {
	sessions *session.Manager
}

func NewRightNowHandler(sessions *session.Manager) *RightNowHandler {
	return &RightNowHandler{sessions: sessions}
}

// entitlementsFor resolves the caller's entitlements from token claims.
func entitlementsFor(c *gin.Context) entitlement.Entitlements {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return entitlement.Resolve(domain.MembershipFree, domain.XpFresh)
	}
	return entitlement.Resolve(claims.Membership, claims.XpTier)
}

func (h *RightNowHandler) GetEntitlements(c *gin.Context) {
	c.JSON(http.StatusOK, entitlementsFor(c))
}

// ListTiers returns the limits of every membership tier for the upgrade sheet.
func (h *RightNowHandler) ListTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tiers": entitlement.Profiles()})
}

func (h *RightNowHandler) OpenSession(c *gin.Context) {
	var req struct {
		City       string   `json:"city"`
		Country    string   `json:"country"`
		Lat        *float64 `json:"lat"`
		Lng        *float64 `json:"lng"`
		Boundaries string   `json:"boundaries"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	loc := rightnow.Location{City: req.City, Country: req.Country, Lat: req.Lat, Lng: req.Lng}
	comp := h.sessions.Open(middleware.GetUserID(c), entitlementsFor(c), loc, req.Boundaries)
	c.JSON(http.StatusCreated, comp.Snapshot())
}

// current loads the caller's session or answers 404.
func (h *RightNowHandler) current(c *gin.Context) (*composer.Composer, bool) {
	comp, ok := h.sessions.Get(middleware.GetUserID(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open draft"})
		return nil, false
	}
	return comp, true
}

func (h *RightNowHandler) GetSession(c *gin.Context) {
	comp, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, comp.Snapshot())
}

type patchRequest struct {
	Title      *string            `json:"title"`
	Text       *string            `json:"text"`
	Vibe       *string            `json:"vibe"`
	Boundaries *string            `json:"boundaries"`
	Intent     *domain.Intent     `json:"intent"`
	RoomMode   *domain.RoomMode   `json:"room_mode"`
	CrowdCount json.RawMessage    `json:"crowd_count"`
	RadiusKm   json.RawMessage    `json:"radius_km"` // number or slider string; null unsets
	Location   *rightnow.Location `json:"location"`
}

// UpdateSession applies field edits. Fields absent from the body are left alone.
func (h *RightNowHandler) UpdateSession(c *gin.Context) {
	comp, ok := h.current(c)
	if !ok {
		return
	}
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var edits []func() error
	if req.Title != nil {
		edits = append(edits, func() error { return comp.SetTitle(*req.Title) })
	}
	if req.Text != nil {
		edits = append(edits, func() error { return comp.SetText(*req.Text) })
	}
	if req.Vibe != nil {
		edits = append(edits, func() error { return comp.SetVibe(*req.Vibe) })
	}
	if req.Boundaries != nil {
		edits = append(edits, func() error { return comp.SetBoundaries(*req.Boundaries) })
	}
	if req.Intent != nil {
		edits = append(edits, func() error { return comp.SetIntent(*req.Intent) })
	}
	if req.RoomMode != nil {
		edits = append(edits, func() error { return comp.SetRoomMode(*req.RoomMode) })
	}
	if req.CrowdCount != nil {
		var n *int
		if err := json.Unmarshal(req.CrowdCount, &n); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "crowd_count must be a whole number"})
			return
		}
		edits = append(edits, func() error { return comp.SetCrowdCount(n) })
	}
	if req.RadiusKm != nil {
		edits = append(edits, radiusEdit(comp, req.RadiusKm))
	}
	if req.Location != nil {
		edits = append(edits, func() error { return comp.SetLocation(*req.Location) })
	}
	for _, edit := range edits {
		if err := edit(); err != nil {
			writeComposerError(c, comp, err)
			return
		}
	}
	c.JSON(http.StatusOK, comp.Snapshot())
}

// radiusEdit applies radius_km: numbers go through SetRadiusKm, slider text
// through SetRadius. null and non-scalar values unset the radius.
func radiusEdit(comp *composer.Composer, raw json.RawMessage) func() error {
	var km float64
	if err := json.Unmarshal(raw, &km); err == nil && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return func() error { return comp.SetRadiusKm(km) }
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = ""
	}
	return func() error { return comp.SetRadius(s) }
}

// SwitchTiers swaps the session's entitlements mid-draft (demo/admin tool).
func (h *RightNowHandler) SwitchTiers(c *gin.Context) {
	comp, ok := h.current(c)
	if !ok {
		return
	}
	var req struct {
		Membership domain.MembershipTier `json:"membership" binding:"required"`
		XpTier     domain.XpTier         `json:"xp_tier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.XpTier == "" {
		req.XpTier = comp.Entitlements().XpTier
	}
	if !req.Membership.Valid() || !req.XpTier.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tier"})
		return
	}
	if err := comp.SetEntitlements(entitlement.Resolve(req.Membership, req.XpTier)); err != nil {
		writeComposerError(c, comp, err)
		return
	}
	c.JSON(http.StatusOK, comp.Snapshot())
}

func (h *RightNowHandler) Assist(c *gin.Context) {
	comp, ok := h.current(c)
	if !ok {
		return
	}
	ctx := rightnow.WithAccessToken(c.Request.Context(), middleware.GetAccessToken(c))
	if err := comp.RequestDraft(ctx); err != nil {
		writeComposerError(c, comp, err)
		return
	}
	c.JSON(http.StatusOK, comp.Snapshot())
}

func (h *RightNowHandler) Submit(c *gin.Context) {
	comp, ok := h.current(c)
	if !ok {
		return
	}
	ctx := rightnow.WithAccessToken(c.Request.Context(), middleware.GetAccessToken(c))
	if err := comp.Submit(ctx); err != nil {
		writeComposerError(c, comp, err)
		return
	}
	c.JSON(http.StatusCreated, comp.Snapshot())
}

func (h *RightNowHandler) CloseSession(c *gin.Context) {
	if !h.sessions.Close(middleware.GetUserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open draft"})
		return
	}
	c.Status(http.StatusNoContent)
}

// writeComposerError maps composer failures to a status. The body carries the
// message shown to the user plus the session so the client can re-render.
func writeComposerError(c *gin.Context, comp *composer.Composer, err error) {
	var verr *composer.ValidationError
	status := http.StatusBadGateway
	msg := ""
	switch {
	case errors.As(err, &verr):
		status, msg = http.StatusUnprocessableEntity, verr.Message
	case errors.Is(err, composer.ErrClosed):
		c.JSON(http.StatusNotFound, gin.H{"error": "no open draft"})
		return
	case errors.Is(err, composer.ErrVibeRequired):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, composer.ErrMediaNotAllowed):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, composer.ErrAssistUnavailable):
		status, msg = http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, composer.ErrAssistInFlight),
		errors.Is(err, composer.ErrSubmitInFlight),
		errors.Is(err, composer.ErrNotDrafting):
		status, msg = http.StatusConflict, err.Error()
	}
	snap := comp.Snapshot()
	if msg == "" {
		msg = snap.Error
	}
	c.JSON(status, gin.H{"error": msg, "session": snap})
}
