package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"hotmess/config"
	"hotmess/internal/auth"
	"hotmess/internal/composer"
	"hotmess/internal/domain"
	"hotmess/internal/rightnow"
	"hotmess/internal/session"
	"hotmess/internal/ws"

	"github.com/gin-gonic/gin"
)

type stubRightNow struct {
	mu       sync.Mutex
	tokens   []string
	payloads []rightnow.DraftPayload
	draft    *rightnow.DraftResponse
	draftErr error
}

func (s *stubRightNow) Draft(ctx context.Context, req rightnow.DraftRequest) (*rightnow.DraftResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, rightnow.AccessToken(ctx))
	return s.draft, s.draftErr
}

func (s *stubRightNow) Create(ctx context.Context, p rightnow.DraftPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, rightnow.AccessToken(ctx))
	s.payloads = append(s.payloads, p)
	return nil
}

type testServer struct {
	engine *gin.Engine
	cfg    *config.Config
	stub   *stubRightNow
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWT:        config.JWTConfig{AccessSecret: "s", AccessExpiry: time.Hour, Issuer: "hotmess"},
		Composer:   config.ComposerConfig{AssistPerMinute: 50, TierSwitching: true},
		Cloudinary: config.CloudinaryConfig{Folder: "test"},
	}
	stub := &stubRightNow{}
	sessions := session.NewManager(session.Options{
		Assistant: stub,
		Submitter: composer.SubmitFunc(stub.Create),
		Publisher: ws.NewHub(),
	})
	t.Cleanup(sessions.CloseAll)
	return &testServer{engine: Setup(cfg, sessions, ws.NewHub(), nil), cfg: cfg, stub: stub}
}

func (s *testServer) token(t *testing.T, userID uint, m domain.MembershipTier) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(&s.cfg.JWT, userID, m, domain.XpRegular)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

const sessionPath = "/api/v1/me/right-now/session"

func draftField(t *testing.T, snap map[string]interface{}, key string) interface{} {
	t.Helper()
	d, ok := snap["draft"].(map[string]interface{})
	if !ok {
		t.Fatalf("no draft in %v", snap)
	}
	return d[key]
}

func TestEntitlementsFromClaims(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/v1/me/entitlements", s.token(t, 1, domain.MembershipIcon), nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["maxPostLength"] != 600.0 || body["canBoost"] != true || body["xpTier"] != "regular" {
		t.Fatalf("body = %v", body)
	}
}

func TestListTiers(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/v1/me/entitlements/tiers", s.token(t, 1, domain.MembershipFree), nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	tiers, ok := body["tiers"].(map[string]interface{})
	if !ok || len(tiers) != len(domain.MembershipTiers) {
		t.Fatalf("body = %v", body)
	}
	hnh := tiers["hnh"].(map[string]interface{})
	if hnh["maxPostLength"] != 400.0 || hnh["canAttachMedia"] != true {
		t.Fatalf("hnh = %v", hnh)
	}
}

func TestComposeAndSubmit(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 2, domain.MembershipFree)

	code, _ := s.do(t, http.MethodGet, sessionPath, tok, nil)
	if code != http.StatusNotFound {
		t.Fatalf("get before open = %d", code)
	}
	code, snap := s.do(t, http.MethodPost, sessionPath, tok, map[string]interface{}{"city": "Manchester", "country": "UK"})
	if code != http.StatusCreated || snap["state"] != "idle" {
		t.Fatalf("open = %d %v", code, snap)
	}

	code, snap = s.do(t, http.MethodPatch, sessionPath, tok, map[string]interface{}{
		"text": "Canal Street, who's out?", "radius_km": "9", "crowd_count": 4, "intent": "crowd",
	})
	if code != http.StatusOK {
		t.Fatalf("patch = %d %v", code, snap)
	}
	if draftField(t, snap, "visibility_radius_m") != 5000.0 || snap["state"] != "drafting" {
		t.Fatalf("snapshot = %v", snap)
	}

	code, snap = s.do(t, http.MethodPatch, sessionPath, tok, map[string]interface{}{"intent": "party"})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("bad intent = %d %v", code, snap)
	}

	code, snap = s.do(t, http.MethodPost, sessionPath+"/submit", tok, nil)
	if code != http.StatusCreated {
		t.Fatalf("submit = %d %v", code, snap)
	}
	if draftField(t, snap, "text") != "" || draftField(t, snap, "visibility_radius_m") != 5000.0 {
		t.Fatalf("post-submit snapshot = %v", snap)
	}
	if len(s.stub.payloads) != 1 || s.stub.payloads[0].City != "Manchester" || s.stub.payloads[0].Intent != domain.IntentCrowd {
		t.Fatalf("payloads = %+v", s.stub.payloads)
	}
	if s.stub.tokens[0] != tok {
		t.Fatal("access token not forwarded to the right-now client")
	}

	code, snap = s.do(t, http.MethodPost, sessionPath+"/submit", tok, nil)
	if code != http.StatusUnprocessableEntity || !strings.Contains(snap["error"].(string), "at least one line") {
		t.Fatalf("empty submit = %d %v", code, snap)
	}
}

func TestRadiusNullUnsets(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 3, domain.MembershipHnH)
	s.do(t, http.MethodPost, sessionPath, tok, nil)
	s.do(t, http.MethodPatch, sessionPath, tok, map[string]interface{}{"radius_km": 12})
	code, snap := s.do(t, http.MethodPatch, sessionPath, tok, map[string]interface{}{"radius_km": nil})
	if code != http.StatusOK || draftField(t, snap, "visibility_radius_m") != nil {
		t.Fatalf("radius null = %d %v", code, snap)
	}
}

func TestTierSwitchRevalidates(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 4, domain.MembershipIcon)
	s.do(t, http.MethodPost, sessionPath, tok, nil)
	s.do(t, http.MethodPatch, sessionPath, tok, map[string]interface{}{"text": strings.Repeat("x", 300)})

	code, snap := s.do(t, http.MethodPut, sessionPath+"/tiers", tok, map[string]interface{}{"membership": "free"})
	if code != http.StatusOK {
		t.Fatalf("switch = %d %v", code, snap)
	}
	code, snap = s.do(t, http.MethodPost, sessionPath+"/submit", tok, nil)
	if code != http.StatusUnprocessableEntity || snap["error"] != "Keep it under 200 characters." {
		t.Fatalf("submit after downgrade = %d %v", code, snap)
	}
	code, _ = s.do(t, http.MethodPut, sessionPath+"/tiers", tok, map[string]interface{}{"membership": "gold"})
	if code != http.StatusBadRequest {
		t.Fatalf("unknown tier = %d", code)
	}
}

func TestAssist(t *testing.T) {
	s := newTestServer(t)
	title, text := "Warehouse", "Bass heavy, come through"
	s.stub.draft = &rightnow.DraftResponse{Title: &title, Text: &text}
	tok := s.token(t, 5, domain.MembershipHnH)
	s.do(t, http.MethodPost, sessionPath, tok, map[string]interface{}{"city": "Bristol"})

	code, _ := s.do(t, http.MethodPost, sessionPath+"/assist", tok, nil)
	if code != http.StatusConflict {
		t.Fatalf("assist from idle = %d", code)
	}
	s.do(t, http.MethodPatch, sessionPath, tok, map[string]interface{}{"title": "mine"})
	code, _ = s.do(t, http.MethodPost, sessionPath+"/assist", tok, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("assist without vibe = %d", code)
	}
	s.do(t, http.MethodPatch, sessionPath, tok, map[string]interface{}{"vibe": "dnb"})
	code, snap := s.do(t, http.MethodPost, sessionPath+"/assist", tok, nil)
	if code != http.StatusOK || draftField(t, snap, "text") != text {
		t.Fatalf("assist = %d %v", code, snap)
	}

	s.stub.draftErr = errors.New("upstream down")
	code, snap = s.do(t, http.MethodPost, sessionPath+"/assist", tok, nil)
	if code != http.StatusBadGateway || draftField(t, snap["session"].(map[string]interface{}), "text") != text {
		t.Fatalf("failed assist = %d %v", code, snap)
	}
}

func TestMediaRequiresEntitlement(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 6, domain.MembershipFree)
	s.do(t, http.MethodPost, sessionPath, tok, nil)
	code, _ := s.do(t, http.MethodPost, sessionPath+"/media", tok, nil)
	if code != http.StatusForbidden {
		t.Fatalf("free media = %d", code)
	}

	hnh := s.token(t, 7, domain.MembershipHnH)
	s.do(t, http.MethodPost, sessionPath, hnh, nil)
	code, _ = s.do(t, http.MethodPost, sessionPath+"/media", hnh, nil)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("media without cloudinary = %d", code)
	}
}

func TestCloseSession(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, 8, domain.MembershipFree)
	s.do(t, http.MethodPost, sessionPath, tok, nil)
	if code, _ := s.do(t, http.MethodDelete, sessionPath, tok, nil); code != http.StatusNoContent {
		t.Fatalf("delete = %d", code)
	}
	if code, _ := s.do(t, http.MethodGet, sessionPath, tok, nil); code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", code)
	}
	if code, _ := s.do(t, http.MethodDelete, sessionPath, tok, nil); code != http.StatusNotFound {
		t.Fatalf("second delete = %d", code)
	}
}
