// Package connector implements the outbound transport: a minimal Bot
// Framework REST client that posts activities to a conversation's service
// URL, authenticated with the app's client credentials.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/config"
)

// Client sends activities to the messaging platform. It implements
// activity.Sender.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger

	appID       string
	appPassword string
	tokenURL    string
	apiScope    string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a connector client from the bot credentials.
func NewClient(cfg config.BotConfig, logger *slog.Logger) (*Client, error) {
	if cfg.AppID == "" || cfg.AppPassword == "" {
		return nil, errors.New("bot app id and password are required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger.With("component", "connector"),
		appID:       cfg.AppID,
		appPassword: cfg.AppPassword,
		tokenURL:    cfg.TokenURL,
		apiScope:    cfg.APIScope,
	}, nil
}

// sendResponse is the platform's reply to a send or update call.
type sendResponse struct {
	ID string `json:"id"`
}

// SendToConversation posts a new activity to the referenced conversation and
// returns its platform assigned id.
func (c *Client) SendToConversation(ctx context.Context, ref *activity.ConversationReference, a *activity.Activity) (string, error) {
	if ref == nil || ref.Conversation == nil {
		return "", errors.New("conversation reference is incomplete")
	}

	endpoint := fmt.Sprintf("%s/v3/conversations/%s/activities",
		strings.TrimSuffix(ref.ServiceURL, "/"), url.PathEscape(ref.Conversation.ID))

	var reply sendResponse
	if err := c.do(ctx, http.MethodPost, endpoint, a, &reply); err != nil {
		return "", fmt.Errorf("failed to send activity: %w", err)
	}

	c.logger.DebugContext(ctx, "Activity sent", "conversation_id", ref.Conversation.ID, "activity_id", reply.ID)
	return reply.ID, nil
}

// UpdateActivity replaces an existing activity in the referenced
// conversation. The activity's ID selects the message to replace.
func (c *Client) UpdateActivity(ctx context.Context, ref *activity.ConversationReference, a *activity.Activity) error {
	if ref == nil || ref.Conversation == nil {
		return errors.New("conversation reference is incomplete")
	}
	if a == nil || a.ID == "" {
		return errors.New("activity to update must carry an id")
	}

	endpoint := fmt.Sprintf("%s/v3/conversations/%s/activities/%s",
		strings.TrimSuffix(ref.ServiceURL, "/"), url.PathEscape(ref.Conversation.ID), url.PathEscape(a.ID))

	if err := c.do(ctx, http.MethodPut, endpoint, a, nil); err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}

	c.logger.DebugContext(ctx, "Activity updated", "conversation_id", ref.Conversation.ID, "activity_id", a.ID)
	return nil
}

// do performs one authenticated JSON round trip.
func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("platform returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// tokenResponse is the OAuth client-credentials grant reply.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// token returns a cached access token, refreshing it when close to expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.appID},
		"client_secret": {c.appPassword},
		"scope":         {c.apiScope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("token endpoint returned an empty access token")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	c.logger.DebugContext(ctx, "Refreshed connector access token", "expires_in", tok.ExpiresIn)

	return c.accessToken, nil
}
