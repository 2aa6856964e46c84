package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// Client talks to the sync backend over HTTP. It implements both the
// table-oriented remote store and the email/password auth API, holding
// the bearer token of the current session.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger

	mu        sync.Mutex
	session   *ports.Session
	listeners []func(state ports.AuthState, session *ports.Session)
}

// NewClient creates a new backend client
func NewClient(baseURL string, timeout time.Duration, logger *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Auth API

func (c *Client) SignUp(ctx context.Context, email, password string) (*ports.Session, error) {
	return c.authenticate(ctx, "/api/v1/auth/signup", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	return c.authenticate(ctx, "/api/v1/auth/signin", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*ports.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var resp ports.AuthResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	session := &ports.Session{
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		AccessToken: resp.AccessToken,
	}

	c.mu.Lock()
	c.session = session
	listeners := append([]func(ports.AuthState, *ports.Session){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(ports.AuthStateSignedIn, session)
	}

	return session, nil
}

// SignOut revokes the session server-side and drops it locally. The
// signed-out event fires even when the remote call fails; the local
// session is gone either way.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/signout", nil, nil)

	c.mu.Lock()
	c.session = nil
	listeners := append([]func(ports.AuthState, *ports.Session){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(ports.AuthStateSignedOut, nil)
	}

	return err
}

// UpdatePassword changes the password, verifying the current one.
func (c *Client) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := ports.UpdatePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPut, "/api/v1/auth/password", body, nil)
}

// Session returns the current session as the backend sees it, or the
// locally held one when no network round-trip is needed.
func (c *Client) Session(ctx context.Context) (*ports.Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil, nil
	}

	var claims ports.Claims
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/session", nil, &claims); err != nil {
		return nil, err
	}

	return session, nil
}

// OnAuthStateChange registers a callback for sign-in/sign-out events.
func (c *Client) OnAuthStateChange(fn func(state ports.AuthState, session *ports.Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Remote store API

func (c *Client) PullAll(ctx context.Context, userID string) (*ports.RemoteSnapshot, error) {
	var resp ports.SyncSnapshotResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/sync/all", nil, &resp); err != nil {
		return nil, err
	}

	snap := &ports.RemoteSnapshot{
		Tasks:    resp.Tasks,
		Projects: resp.Projects,
		Profile:  resp.Profile,
	}
	if snap.Tasks == nil {
		snap.Tasks = []entities.Task{}
	}
	if snap.Projects == nil {
		snap.Projects = []entities.Project{}
	}
	return snap, nil
}

func (c *Client) PushTasks(ctx context.Context, userID string, tasks []entities.Task) error {
	return c.do(ctx, http.MethodPut, "/api/v1/sync/tasks", ports.PushTasksRequest{Tasks: tasks}, nil)
}

func (c *Client) PushProjects(ctx context.Context, userID string, projects []entities.Project) error {
	return c.do(ctx, http.MethodPut, "/api/v1/sync/projects", ports.PushProjectsRequest{Projects: projects}, nil)
}

func (c *Client) PushProfile(ctx context.Context, userID string, profile entities.Profile) error {
	return c.do(ctx, http.MethodPut, "/api/v1/sync/profile", profile, nil)
}

func (c *Client) UpdateTaskFields(ctx context.Context, taskID string, patch ports.TaskFieldPatch) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/sync/tasks/"+taskID, patch, nil)
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sync/tasks/"+taskID, nil, nil)
}

func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sync/projects/"+projectID, nil, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sync/account", nil, nil)
}

// do performs one JSON round-trip against the backend.
func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
