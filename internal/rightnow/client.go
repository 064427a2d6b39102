package rightnow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// APIError is a non-2xx answer from the right-now service. Body is kept opaque.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("right-now service: status %d", e.StatusCode)
	}
	return fmt.Sprintf("right-now service: status %d: %s", e.StatusCode, e.Body)
}

type tokenKey struct{}

// WithAccessToken attaches the caller's bearer token; the client forwards it upstream.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// AccessToken returns the token set by WithAccessToken, if any.
func AccessToken(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// Client calls the draft-assist and create endpoints.
type Client struct {
	BaseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Draft asks the service for an AI-assisted title and text.
func (c *Client) Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	var out DraftResponse
	if err := c.post(ctx, DraftPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a post. Any 2xx is success; the body is ignored.
func (c *Client) Create(ctx context.Context, p DraftPayload) error {
	return c.post(ctx, CreatePath, p, nil)
}

func (c *Client) httpClient(ctx context.Context) *http.Client {
	tok := AccessToken(ctx)
	if tok == "" {
		return c.client
	}
	return &http.Client{
		Timeout: c.client.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
			Base:   c.client.Transport,
		},
	}
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient(ctx).Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[RightNow] POST %s status=%d", path, resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
