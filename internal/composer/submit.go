package composer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hotmess/internal/domain"
	"hotmess/internal/rightnow"
)

// Submit validates the draft against the current entitlements and hands the
// payload to the submitter. A second call while one is in flight is refused.
//
// On success vibe, title, text, crowd count and media are cleared; radius,
// intent, room mode and boundaries stay so the next post from the same spot
// is quick. On failure every field is kept.
func (c *Composer) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.posting:
		return c.refuseLocked(ErrSubmitInFlight)
	case c.aiLoading:
		return c.refuseLocked(ErrAssistInFlight)
	}
	// A refused submit lands in drafting with the reason attached, even from idle.
	c.state = StateValidating
	if err := Validate(c.draft.Text, c.ents); err != nil {
		c.state = StateDrafting
		return c.refuseLocked(err)
	}
	if c.submitter == nil {
		c.state = StateDrafting
		c.errMsg = submitFailedMessage
		c.unlockAndNotify()
		return fmt.Errorf("submit: no submitter configured")
	}
	payload := c.payloadLocked()
	c.posting = true
	c.state = StatePosting
	c.errMsg = ""
	opCtx, done := c.opContext(ctx)
	c.unlockAndNotify()

	err := c.submitter.Submit(opCtx, payload)
	done()

	c.mu.Lock()
	if c.closed {
		c.posting = false
		c.mu.Unlock()
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		return nil
	}
	if err != nil {
		log.Printf("[Composer] submit failed membership=%s intent=%s: %v", c.ents.Membership, payload.Intent, err)
		c.posting = false
		c.state = StateDrafting
		c.errMsg = submitFailedMessage
		c.unlockAndNotify()
		return fmt.Errorf("submit: %w", err)
	}
	// posting stays set until the reset so no edit lands in between.
	c.state = StatePosted
	c.unlockAndNotify()

	c.mu.Lock()
	c.posting = false
	c.draft.Vibe = ""
	c.draft.Title = ""
	c.draft.Text = ""
	c.draft.CrowdCount = nil
	c.draft.MediaURL = ""
	c.errMsg = ""
	c.state = StateIdle
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.unlockAndNotify()
	return nil
}

// payloadLocked builds the create body from the working draft.
func (c *Composer) payloadLocked() rightnow.DraftPayload {
	d := c.draft.clone()
	text := strings.TrimSpace(d.Text)
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = domain.TruncateChars(text, domain.MaxTitleLength)
	}
	radius := d.VisibilityRadiusM
	if radius != nil && *radius > c.ents.MaxRadiusM() {
		// Tier went down since the slider was set.
		m := c.ents.MaxRadiusM()
		radius = &m
	}
	return rightnow.DraftPayload{
		Intent:            d.Intent,
		Title:             title,
		Text:              text,
		City:              c.loc.City,
		Country:           c.loc.Country,
		Lat:               c.loc.Lat,
		Lng:               c.loc.Lng,
		RoomMode:          d.RoomMode,
		CrowdCount:        d.CrowdCount,
		VisibilityRadiusM: radius,
		Boundaries:        d.Boundaries,
		MediaURL:          d.MediaURL,
	}
}
