package composer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hotmess/internal/domain"
	"hotmess/internal/rightnow"
)

// RequestDraft asks the assistant for a title and text based on the vibe.
// Only one request runs at a time. On failure the draft is left untouched.
func (c *Composer) RequestDraft(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.aiLoading:
		return c.refuseLocked(ErrAssistInFlight)
	case c.posting:
		return c.refuseLocked(ErrSubmitInFlight)
	case c.state != StateDrafting:
		return c.refuseLocked(ErrNotDrafting)
	case strings.TrimSpace(c.draft.Vibe) == "":
		return c.refuseLocked(ErrVibeRequired)
	case c.assistant == nil:
		return c.refuseLocked(ErrAssistUnavailable)
	}
	req := rightnow.DraftRequest{
		City:       c.loc.City,
		Intent:     c.draft.Intent,
		Vibe:       c.draft.Vibe,
		Boundaries: c.draft.Boundaries,
		XpTier:     c.ents.XpTier,
		Membership: c.ents.Membership,
	}
	c.aiLoading = true
	c.state = StateAILoading
	c.errMsg = ""
	opCtx, done := c.opContext(ctx)
	c.unlockAndNotify()

	resp, err := c.assistant.Draft(opCtx, req)
	done()

	c.mu.Lock()
	c.aiLoading = false
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == StateAILoading {
		c.state = StateDrafting
	}
	if err == nil && resp == nil {
		err = fmt.Errorf("empty response")
	}
	if err != nil {
		log.Printf("[Composer] draft assist failed membership=%s: %v", req.Membership, err)
		c.errMsg = assistFailedMessage
		c.unlockAndNotify()
		return fmt.Errorf("draft assist: %w", err)
	}
	if resp.Title != nil {
		c.draft.Title = domain.TruncateChars(*resp.Title, domain.MaxTitleLength)
	}
	if resp.Text != nil {
		// The ceiling is re-read here: the service may ignore it and the tier may have changed.
		c.draft.Text = domain.TruncateChars(*resp.Text, c.ents.MaxPostLength)
	}
	if resp.SafetyNote != nil && strings.TrimSpace(*resp.SafetyNote) != "" {
		c.draft.Boundaries = *resp.SafetyNote
	}
	c.errMsg = ""
	c.unlockAndNotify()
	return nil
}
