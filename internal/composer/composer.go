package composer

import (
	"context"
	"strings"
	"sync"

	"hotmess/internal/domain"
	"hotmess/internal/entitlement"
	"hotmess/internal/rightnow"
)

// State is the composer's position in the posting flow.
type State string

const (
	StateIdle       State = "idle"
	StateDrafting   State = "drafting"
	StateAILoading  State = "ai-loading"
	StateValidating State = "validating"
	StatePosting    State = "posting"
	StatePosted     State = "posted"
)

// DraftAssistant produces an AI-assisted title and text.
type DraftAssistant interface {
	Draft(ctx context.Context, req rightnow.DraftRequest) (*rightnow.DraftResponse, error)
}

// Submitter performs the create call for a validated payload.
type Submitter interface {
	Submit(ctx context.Context, p rightnow.DraftPayload) error
}

// SubmitFunc adapts a plain function to Submitter.
type SubmitFunc func(ctx context.Context, p rightnow.DraftPayload) error

func (f SubmitFunc) Submit(ctx context.Context, p rightnow.DraftPayload) error {
	return f(ctx, p)
}

// Options wires a composer to its collaborators.
type Options struct {
	Assistant  DraftAssistant
	Submitter  Submitter
	Location   rightnow.Location
	Boundaries string
	// OnChange receives a snapshot after every transition. It runs outside the lock.
	OnChange func(Snapshot)
}

// Draft is the working state of a post under composition.
type Draft struct {
	Intent            domain.Intent   `json:"intent"`
	Title             string          `json:"title"`
	Text              string          `json:"text"`
	Vibe              string          `json:"vibe"`
	RoomMode          domain.RoomMode `json:"room_mode"`
	CrowdCount        *int            `json:"crowd_count"`
	VisibilityRadiusM *float64        `json:"visibility_radius_m"`
	Boundaries        string          `json:"boundaries"`
	MediaURL          string          `json:"media_url,omitempty"`
}

func (d Draft) clone() Draft {
	if d.CrowdCount != nil {
		n := *d.CrowdCount
		d.CrowdCount = &n
	}
	if d.VisibilityRadiusM != nil {
		m := *d.VisibilityRadiusM
		d.VisibilityRadiusM = &m
	}
	return d
}

// Snapshot is a read-only copy of a composer for rendering.
type Snapshot struct {
	State        State                    `json:"state"`
	Draft        Draft                    `json:"draft"`
	TextLength   int                      `json:"text_length"`
	Entitlements entitlement.Entitlements `json:"entitlements"`
	Location     rightnow.Location        `json:"location"`
	AILoading    bool                     `json:"ai_loading"`
	Posting      bool                     `json:"posting"`
	Error        string                   `json:"error,omitempty"`
}

// Composer is the state machine of one composition session.
// All methods are safe for concurrent use.
type Composer struct {
	mu        sync.Mutex
	ents      entitlement.Entitlements
	draft     Draft
	loc       rightnow.Location
	state     State
	errMsg    string
	aiLoading bool
	posting   bool
	closed    bool

	assistant DraftAssistant
	submitter Submitter
	onChange  func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc
}

func New(ents entitlement.Entitlements, opts Options) *Composer {
	boundaries := opts.Boundaries
	if strings.TrimSpace(boundaries) == "" {
		boundaries = domain.DefaultBoundaries
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Composer{
		ents: ents,
		draft: Draft{
			Intent:     domain.IntentHookup,
			RoomMode:   domain.RoomSolo,
			Boundaries: boundaries,
		},
		loc:       opts.Location,
		state:     StateIdle,
		assistant: opts.Assistant,
		submitter: opts.Submitter,
		onChange:  opts.OnChange,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Snapshot returns the current state.
func (c *Composer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Composer) snapshotLocked() Snapshot {
	return Snapshot{
		State:        c.state,
		Draft:        c.draft.clone(),
		TextLength:   domain.CharCount(c.draft.Text),
		Entitlements: c.ents,
		Location:     c.loc,
		AILoading:    c.aiLoading,
		Posting:      c.posting,
		Error:        c.errMsg,
	}
}

// Entitlements returns the entitlement snapshot currently bounding the draft.
func (c *Composer) Entitlements() entitlement.Entitlements {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ents
}

// Close ends the session. In-flight requests are canceled and their results dropped.
func (c *Composer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
}

// Done is closed when the session ends.
func (c *Composer) Done() <-chan struct{} {
	return c.ctx.Done()
}

// unlockAndNotify releases the lock and publishes a snapshot taken under it.
func (c *Composer) unlockAndNotify() {
	snap := c.snapshotLocked()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// opContext derives a request context that is also canceled when the session closes.
func (c *Composer) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

// refuseLocked puts err in the error slot, replacing whatever was there,
// publishes the change and returns err. c.mu must be held.
func (c *Composer) refuseLocked(err error) error {
	c.errMsg = err.Error()
	c.unlockAndNotify()
	return err
}

// edit applies a synchronous field write. Edits are refused while a post is in flight
// so the post-submit reset cannot clobber newer input.
func (c *Composer) edit(apply func() error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.posting {
		return c.refuseLocked(ErrSubmitInFlight)
	}
	if err := apply(); err != nil {
		return c.refuseLocked(err)
	}
	if c.state == StateIdle {
		c.state = StateDrafting
	}
	c.unlockAndNotify()
	return nil
}

func (c *Composer) SetTitle(title string) error {
	return c.edit(func() error {
		c.draft.Title = domain.TruncateChars(title, domain.MaxTitleLength)
		return nil
	})
}

// SetText stores text capped at the current MaxPostLength.
func (c *Composer) SetText(text string) error {
	return c.edit(func() error {
		c.draft.Text = domain.TruncateChars(text, c.ents.MaxPostLength)
		return nil
	})
}

func (c *Composer) SetVibe(vibe string) error {
	return c.edit(func() error {
		c.draft.Vibe = vibe
		return nil
	})
}

func (c *Composer) SetBoundaries(boundaries string) error {
	return c.edit(func() error {
		c.draft.Boundaries = boundaries
		return nil
	})
}

func (c *Composer) SetIntent(intent domain.Intent) error {
	return c.edit(func() error {
		if !intent.Valid() {
			return newValidationError("intent", "Unknown intent %q.", intent)
		}
		c.draft.Intent = intent
		return nil
	})
}

func (c *Composer) SetRoomMode(mode domain.RoomMode) error {
	return c.edit(func() error {
		if !mode.Valid() {
			return newValidationError("room_mode", "Unknown room mode %q.", mode)
		}
		c.draft.RoomMode = mode
		return nil
	})
}

// SetCrowdCount sets the head count; nil clears it and negatives become 0.
func (c *Composer) SetCrowdCount(n *int) error {
	return c.edit(func() error {
		if n == nil {
			c.draft.CrowdCount = nil
			return nil
		}
		v := *n
		if v < 0 {
			v = 0
		}
		c.draft.CrowdCount = &v
		return nil
	})
}

// SetRadius takes raw slider input in kilometers. Non-numeric input unsets the radius.
func (c *Composer) SetRadius(input string) error {
	return c.edit(func() error {
		c.draft.VisibilityRadiusM = ParseRadiusKm(input, c.ents.MaxRadiusKm)
		return nil
	})
}

// SetRadiusKm sets the radius from a numeric value. NaN and infinities unset it.
func (c *Composer) SetRadiusKm(km float64) error {
	return c.edit(func() error {
		c.draft.VisibilityRadiusM = radiusMeters(km, c.ents.MaxRadiusKm)
		return nil
	})
}

// SetMediaURL attaches uploaded media. An empty url detaches it.
func (c *Composer) SetMediaURL(url string) error {
	return c.edit(func() error {
		if url != "" && !c.ents.CanAttachMedia {
			return ErrMediaNotAllowed
		}
		c.draft.MediaURL = url
		return nil
	})
}

// SetLocation replaces the host-supplied location context.
func (c *Composer) SetLocation(loc rightnow.Location) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.loc = loc
	c.unlockAndNotify()
	return nil
}

// SetEntitlements swaps the entitlement snapshot. The draft is left as is;
// Submit checks it against the new values.
func (c *Composer) SetEntitlements(ents entitlement.Entitlements) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.ents = ents
	c.unlockAndNotify()
	return nil
}
