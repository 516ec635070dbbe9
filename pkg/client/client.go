package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/internal/session"
	"github.com/shopflows/shopflows-api/internal/storage"
	"github.com/shopflows/shopflows-api/pkg/dto"
)

// DefaultTimeout bounds every exchange the client makes, including reading
// the response body. Auth and flag lookups sit on interactive paths; a hung
// backend must surface as a failure, not a frozen screen.
const DefaultTimeout = 10 * time.Second

// Client is the session manager: it owns the session store, talks to the
// auth endpoints, and caches feature flags per org. All methods are safe
// for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *session.Store

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	flagsMu    sync.Mutex
	flagsEpoch uint64
	flagsOrgID string
	flags      *models.FeatureFlags
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithStorage replaces the default in-memory store with a persistent one.
func WithStorage(kv storage.KV) Option {
	return func(c *Client) {
		c.store = session.NewStore(kv)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      session.NewStore(storage.NewMemoryStore()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the current session.
func (c *Client) Session() models.Session {
	return c.store.Current()
}

// Subscribe registers a listener for session changes.
func (c *Client) Subscribe(fn func(models.Session)) func() {
	return c.store.Subscribe(fn)
}

// Restore loads the persisted session into memory without touching the
// network. Call Reconcile afterwards to validate it against the backend.
func (c *Client) Restore() models.Session {
	return c.store.Restore()
}

// Reconcile checks the restored session against the backend. A 401 means
// the tokens no longer stand and the session is cleared; transient errors
// leave the restored session in place.
func (c *Client) Reconcile(ctx context.Context) (models.Session, error) {
	current := c.store.Current()
	if !current.IsAuthenticated {
		return current, nil
	}

	resp, err := c.do(ctx, http.MethodGet, "/api/v1/session", nil, true)
	if err != nil {
		return current, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.store.Clear()
		c.setTokens("", "")
		return models.Session{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return current, fmt.Errorf("session check failed: status %d", resp.StatusCode)
	}

	var body dto.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return current, fmt.Errorf("failed to decode session: %w", err)
	}

	c.store.Commit(body.Session)
	return body.Session, nil
}

// Logout revokes the refresh token best-effort and clears the session
// unconditionally. Sign-out never fails from the caller's point of view.
func (c *Client) Logout(ctx context.Context) {
	c.mu.Lock()
	refreshToken := c.refreshToken
	c.mu.Unlock()

	if refreshToken != "" {
		payload := dto.RefreshTokenRequest{RefreshToken: refreshToken}
		if resp, err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", payload, false); err == nil {
			resp.Body.Close()
		}
	}

	c.setTokens("", "")
	c.store.Clear()
	c.invalidateFlags()
}

// ManageOrg switches the session's org context. Platform admins only; the
// backend enforces the role and the client commits whatever it returns.
func (c *Client) ManageOrg(ctx context.Context, orgID string) (models.Session, error) {
	payload := dto.ManageOrgRequest{OrgID: orgID}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/session/org", payload, true)
	if err != nil {
		return c.store.Current(), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.store.Current(), fmt.Errorf("org switch failed: %s", readError(resp))
	}

	var body dto.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return c.store.Current(), fmt.Errorf("failed to decode response: %w", err)
	}

	c.setTokens(body.AccessToken, body.RefreshToken)
	c.store.Commit(body.Session)
	c.invalidateFlags()

	return body.Session, nil
}

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, payload any, authed bool) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	// The timeout lives on the http.Client, which covers the whole exchange
	// through the body read. A per-call WithTimeout here would cancel the
	// request context on return, while callers still hold the body.
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		c.mu.Lock()
		token := c.accessToken
		c.mu.Unlock()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return c.httpClient.Do(req)
}

// readError pulls the error message out of a failed response, falling back
// to the status text when the body is not the expected shape.
func readError(resp *http.Response) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return http.StatusText(resp.StatusCode)
}
