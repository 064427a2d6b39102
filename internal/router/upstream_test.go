package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hotmess/config"
	"hotmess/internal/auth"
	"hotmess/internal/composer"
	"hotmess/internal/domain"
	"hotmess/internal/entitlement"
	"hotmess/internal/models"
	"hotmess/internal/repository"
	"hotmess/internal/rightnow"
)

type memPosts struct {
	mu    sync.Mutex
	posts []models.RightNowPost
}

func (s *memPosts) CreateWithinLimit(p *models.RightNowPost, since time.Time, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.posts {
		if q.UserID == p.UserID && !q.CreatedAt.Before(since) {
			n++
		}
	}
	if n >= limit {
		return repository.ErrDailyLimitReached
	}
	p.ID = uint(len(s.posts) + 1)
	s.posts = append(s.posts, *p)
	return nil
}

// The composer, the HTTP client and the reference service agree on the wire format.
func TestComposerAgainstReferenceService(t *testing.T) {
	cfg := &config.Config{
		JWT:      config.JWTConfig{AccessSecret: "s", AccessExpiry: time.Hour},
		Upstream: config.UpstreamConfig{PostTTL: time.Hour},
	}
	store := &memPosts{}
	srv := httptest.NewServer(SetupUpstream(cfg, store))
	defer srv.Close()

	tok, err := auth.GenerateAccessToken(&cfg.JWT, 21, domain.MembershipFree, domain.XpSinner)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	ctx := rightnow.WithAccessToken(context.Background(), tok)
	client := rightnow.NewClient(srv.URL, 5*time.Second)

	comp := composer.New(entitlement.Resolve(domain.MembershipFree, domain.XpSinner), composer.Options{
		Assistant: client,
		Submitter: composer.SubmitFunc(client.Create),
		Location:  rightnow.Location{City: "Leeds", Country: "UK"},
	})
	defer comp.Close()

	comp.SetVibe("after party at mine")
	if err := comp.RequestDraft(ctx); err != nil {
		t.Fatalf("draft: %v", err)
	}
	snap := comp.Snapshot()
	if snap.Draft.Title != "Looking for company in Leeds" || snap.Draft.Text == "" {
		t.Fatalf("draft = %+v", snap.Draft)
	}
	if err := comp.SetRadius("3"); err != nil {
		t.Fatalf("radius: %v", err)
	}
	for i := 0; i < 3; i++ {
		comp.SetText("round " + string(rune('1'+i)))
		if err := comp.Submit(ctx); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if len(store.posts) != 3 || store.posts[0].City != "Leeds" || *store.posts[0].VisibilityRadiusM != 3000 {
		t.Fatalf("posts = %+v", store.posts)
	}

	comp.SetText("one more")
	err = comp.Submit(ctx)
	var apiErr *rightnow.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("fourth submit err = %v", err)
	}
	if got := comp.Snapshot(); got.Draft.Text != "one more" || got.Error == "" {
		t.Fatalf("snapshot after limit = %+v", got)
	}
}
