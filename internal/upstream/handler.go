package upstream

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"hotmess/internal/composer"
	"hotmess/internal/domain"
	"hotmess/internal/entitlement"
	"hotmess/internal/middleware"
	"hotmess/internal/models"
	"hotmess/internal/repository"
	"hotmess/internal/rightnow"

	"github.com/gin-gonic/gin"
)

// PostStore persists posts. CreateWithinLimit must check the count and insert
// atomically and return repository.ErrDailyLimitReached when the user is at limit.
type PostStore interface {
	CreateWithinLimit(p *models.RightNowPost, since time.Time, limit int) error
}

const dailyWindow = 24 * time.Hour

// Handler implements the draft-assist and create endpoints.
type Handler struct {
	store PostStore
	ttl   time.Duration
	now   func() time.Time
}

func NewHandler(store PostStore, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Handler{store: store, ttl: ttl, now: time.Now}
}

// callerEntitlements trusts the token, not the membership echoed in the body.
func callerEntitlements(c *gin.Context) entitlement.Entitlements {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return entitlement.Resolve(domain.MembershipFree, domain.XpFresh)
	}
	return entitlement.Resolve(claims.Membership, claims.XpTier)
}

func (h *Handler) Draft(c *gin.Context) {
	var req rightnow.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Intent == "" {
		req.Intent = domain.IntentHookup
	}
	if !req.Intent.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown intent"})
		return
	}
	if strings.TrimSpace(req.Vibe) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vibe required"})
		return
	}
	c.JSON(http.StatusOK, Draft(req, callerEntitlements(c)))
}

func (h *Handler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ents := callerEntitlements(c)
	var p rightnow.DraftPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if status, msg := checkPayload(p, ents); status != 0 {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	now := h.now()
	post := &models.RightNowPost{
		UserID:            userID,
		Membership:        string(ents.Membership),
		XpTier:            string(ents.XpTier),
		Intent:            string(p.Intent),
		Title:             strings.TrimSpace(p.Title),
		Text:              strings.TrimSpace(p.Text),
		City:              p.City,
		Country:           p.Country,
		Lat:               p.Lat,
		Lng:               p.Lng,
		RoomMode:          string(p.RoomMode),
		CrowdCount:        p.CrowdCount,
		VisibilityRadiusM: p.VisibilityRadiusM,
		Boundaries:        p.Boundaries,
		MediaURL:          p.MediaURL,
		ExpiresAt:         now.Add(h.ttl),
		CreatedAt:         now,
	}
	if post.Title == "" {
		post.Title = domain.TruncateChars(post.Text, domain.MaxTitleLength)
	}
	err := h.store.CreateWithinLimit(post, now.Add(-dailyWindow), ents.DailyPostLimit)
	if errors.Is(err, repository.ErrDailyLimitReached) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily post limit reached"})
		return
	}
	if err != nil {
		log.Printf("[Upstream] create post user=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": post.ID, "expires_at": post.ExpiresAt})
}

// checkPayload re-applies the composer's rules server-side. It returns a zero
// status when the payload is acceptable.
func checkPayload(p rightnow.DraftPayload, ents entitlement.Entitlements) (int, string) {
	if err := composer.Validate(p.Text, ents); err != nil {
		return http.StatusUnprocessableEntity, err.Error()
	}
	if domain.CharCount(strings.TrimSpace(p.Title)) > domain.MaxTitleLength {
		return http.StatusUnprocessableEntity, "title too long"
	}
	if !p.Intent.Valid() {
		return http.StatusUnprocessableEntity, "unknown intent"
	}
	if !p.RoomMode.Valid() {
		return http.StatusUnprocessableEntity, "unknown room mode"
	}
	if p.CrowdCount != nil && *p.CrowdCount < 0 {
		return http.StatusUnprocessableEntity, "crowd count can't be negative"
	}
	if r := p.VisibilityRadiusM; r != nil && (*r < domain.MinRadiusKm*1000 || *r > ents.MaxRadiusM()) {
		return http.StatusUnprocessableEntity, "radius outside your range"
	}
	if p.MediaURL != "" && !ents.CanAttachMedia {
		return http.StatusForbidden, "your membership can't attach media"
	}
	return 0, ""
}
