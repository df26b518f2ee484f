// Package anythingllm is the single point of contact with the remote chat
// platform. Create/read calls are wrapped in linear-backoff retries;
// deletions are direct best-effort calls reporting two-valued outcomes.
package anythingllm

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kvist-dev/guestpass/internal/domain"
	"github.com/kvist-dev/guestpass/internal/ports"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 30 * time.Second
	defaultUserRole       = "default"
)

type Config struct {
	// BaseURL is the API root, e.g. https://llm.example.com/api.
	BaseURL string
	APIKey  string

	// DocumentFolder is the platform-side folder whose documents get
	// embedded into every new workspace.
	DocumentFolder string

	AttachDocuments bool
	AssociateUsers  bool

	MaxAttempts    int
	RetryBaseDelay time.Duration
	RequestTimeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	clock      ports.Clock
	logger     *log.Logger
}

var _ ports.Platform = (*Client)(nil)

func NewClient(cfg Config, httpClient *http.Client, clock ports.Clock, logger *log.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("platform base url is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("platform api key is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Client{cfg: cfg, httpClient: httpClient, clock: clock, logger: logger}, nil
}

// MultiUserMode queries the platform feature flag. Any failure (network,
// non-2xx, bad shape) reads as false: absence of capability is the safe
// default, so this never returns an error.
func (c *Client) MultiUserMode(ctx context.Context) bool {
	var payload multiUserModeResponse
	if err := c.doJSON(ctx, http.MethodGet, "v1/admin/is-multi-user-mode", nil, &payload); err != nil {
		c.logger.Debug("multi-user mode check failed", "err", err)
		return false
	}

	return payload.IsMultiUser
}

func (c *Client) CreateUser(ctx context.Context, username string) (domain.UserID, error) {
	if !c.MultiUserMode(ctx) {
		return "", fmt.Errorf("create user %q: %w", username, domain.ErrMultiUserModeRequired)
	}

	password, err := randomPassword()
	if err != nil {
		return "", fmt.Errorf("create user %q: %w", username, err)
	}

	body := newUserRequest{Username: username, Password: password, Role: defaultUserRole}

	var payload newUserResponse
	err = c.withRetry(ctx, func(ctx context.Context) error {
		payload = newUserResponse{}
		return c.doJSON(ctx, http.MethodPost, "v1/admin/users/new", body, &payload)
	})
	if err != nil {
		return "", fmt.Errorf("create user %q: %w", username, err)
	}

	if payload.User == nil || payload.User.ID.String() == "" {
		return "", &domain.APIError{Op: "create user", Detail: "response missing user id"}
	}

	return domain.UserID(payload.User.ID.String()), nil
}

func (c *Client) CreateWorkspace(ctx context.Context, name string, settings domain.WorkspaceSettings) (domain.WorkspaceSlug, error) {
	body := newWorkspaceRequest{
		Name:                 name,
		SimilarityThreshold:  settings.SimilarityThreshold,
		OpenAITemp:           settings.OpenAITemp,
		OpenAIHistory:        settings.OpenAIHistory,
		OpenAIPrompt:         settings.OpenAIPrompt,
		QueryRefusalResponse: settings.QueryRefusalResponse,
		ChatMode:             settings.ChatMode,
		TopN:                 settings.TopN,
	}

	var payload newWorkspaceResponse
	err := c.withRetry(ctx, func(ctx context.Context) error {
		payload = newWorkspaceResponse{}
		return c.doJSON(ctx, http.MethodPost, "v1/workspace/new", body, &payload)
	})
	if err != nil {
		return "", fmt.Errorf("create workspace %q: %w", name, err)
	}

	if payload.Workspace == nil {
		return "", &domain.APIError{Op: "create workspace", Detail: "response missing workspace"}
	}
	if payload.Workspace.Slug != "" {
		return domain.WorkspaceSlug(payload.Workspace.Slug), nil
	}
	if payload.Workspace.ID.String() != "" {
		return domain.WorkspaceSlug(payload.Workspace.ID.String()), nil
	}

	return "", &domain.APIError{Op: "create workspace", Detail: "response missing workspace slug and id"}
}

// AttachDocuments embeds the configured document folder into the workspace.
// Best-effort: a disabled toggle or an empty folder is a skip, not a failure.
func (c *Client) AttachDocuments(ctx context.Context, slug domain.WorkspaceSlug) (domain.StepOutcome, error) {
	if !c.cfg.AttachDocuments {
		return domain.StepSkipped("document attachment disabled"), nil
	}

	folder := c.cfg.DocumentFolder
	var folderPayload documentFolderResponse
	err := c.withRetry(ctx, func(ctx context.Context) error {
		folderPayload = documentFolderResponse{}
		return c.doJSON(ctx, http.MethodGet, "v1/documents/folder/"+url.PathEscape(folder), nil, &folderPayload)
	})
	if err != nil {
		return domain.StepOutcome{}, fmt.Errorf("list document folder %q: %w", folder, err)
	}

	if len(folderPayload.Documents) == 0 {
		return domain.StepSkipped(fmt.Sprintf("document folder %q is empty", folder)), nil
	}

	adds := make([]string, 0, len(folderPayload.Documents))
	for _, doc := range folderPayload.Documents {
		adds = append(adds, folder+"/"+doc.Name)
	}

	body := updateEmbeddingsRequest{Adds: adds, Deletes: []string{}}
	err = c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, "v1/workspace/"+url.PathEscape(string(slug))+"/update-embeddings", body, nil)
	})
	if err != nil {
		return domain.StepOutcome{}, fmt.Errorf("update embeddings for %q: %w", slug, err)
	}

	return domain.StepPerformed(), nil
}

// AssociateUser adds the user to the workspace's member list. Best-effort:
// skipped when disabled by config or when multi-user mode is off — a 401 from
// the manage-users endpoint means the feature is not enabled, not that our
// credentials are bad.
func (c *Client) AssociateUser(ctx context.Context, userID domain.UserID, slug domain.WorkspaceSlug) (domain.StepOutcome, error) {
	if !c.cfg.AssociateUsers {
		return domain.StepSkipped("user association disabled"), nil
	}
	if !c.MultiUserMode(ctx) {
		return domain.StepSkipped("multi-user mode not enabled"), nil
	}

	numericID, err := strconv.ParseInt(string(userID), 10, 64)
	if err != nil {
		return domain.StepOutcome{}, &domain.APIError{Op: "associate user", Detail: fmt.Sprintf("user id %q is not numeric", userID)}
	}

	body := manageUsersRequest{UserIDs: []int64{numericID}, Reset: false}
	err = c.withRetry(ctx, func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, "v1/admin/workspaces/"+url.PathEscape(string(slug))+"/manage-users", body, nil)
	})
	if err != nil {
		var status *statusError
		if errors.As(err, &status) && status.Code == http.StatusUnauthorized {
			return domain.StepSkipped("multi-user mode not enabled (manage-users returned 401)"), nil
		}
		return domain.StepOutcome{}, fmt.Errorf("associate user %s with %q: %w", userID, slug, err)
	}

	return domain.StepPerformed(), nil
}

func (c *Client) IssueAuthToken(ctx context.Context, userID domain.UserID) (ports.AuthToken, error) {
	var payload issueAuthTokenResponse
	err := c.withRetry(ctx, func(ctx context.Context) error {
		payload = issueAuthTokenResponse{}
		return c.doJSON(ctx, http.MethodGet, "v1/users/"+url.PathEscape(string(userID))+"/issue-auth-token", nil, &payload)
	})
	if err != nil {
		return ports.AuthToken{}, fmt.Errorf("issue auth token for user %s: %w", userID, err)
	}

	if payload.Token == "" {
		return ports.AuthToken{}, &domain.APIError{Op: "issue auth token", Detail: "response missing token"}
	}

	return ports.AuthToken{Token: payload.Token, LoginPath: payload.LoginPath}, nil
}

// DeleteUser never returns an error: failures become a DeleteOutcome so the
// reconciler can aggregate partial success across a whole pass.
func (c *Client) DeleteUser(ctx context.Context, userID domain.UserID) domain.DeleteOutcome {
	if err := c.doJSON(ctx, http.MethodDelete, "v1/admin/users/"+url.PathEscape(string(userID)), nil, nil); err != nil {
		return domain.DeleteFailed(fmt.Sprintf("delete user %s: %v", userID, err))
	}

	return domain.DeleteSucceeded()
}

func (c *Client) DeleteWorkspace(ctx context.Context, slug domain.WorkspaceSlug) domain.DeleteOutcome {
	if err := c.doJSON(ctx, http.MethodDelete, "v1/workspace/"+url.PathEscape(string(slug)), nil, nil); err != nil {
		return domain.DeleteFailed(fmt.Sprintf("delete workspace %s: %v", slug, err))
	}

	return domain.DeleteSucceeded()
}

// doJSON performs one request against the platform API: bearer auth, JSON
// body in, JSON body out, bounded read, per-request timeout unless the caller
// already set a deadline.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	endpoint, err := buildAPIURL(c.cfg.BaseURL, path)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &statusError{
			Op:     fmt.Sprintf("%s %s", method, path),
			Code:   resp.StatusCode,
			Detail: readErrorDetail(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func readErrorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

func buildAPIURL(baseURL string, path string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse platform base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("platform base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("platform base url host is required")
	}

	return strings.TrimRight(parsed.String(), "/") + "/" + strings.TrimLeft(path, "/"), nil
}

func randomPassword() (string, error) {
	raw := make([]byte, 18)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}
