package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://chat.stream-io-api.com"

// channelType groups all per-user channels under the provider's standard
// messaging channel type.
const channelType = "messaging"

// StreamClient talks to a Stream-Chat-compatible REST API using a server-side
// token. It implements Provider.
type StreamClient struct {
	apiKey     string
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewStreamClient builds a client for the given key/secret pair. baseURL may
// be empty, in which case the hosted endpoint is used.
func NewStreamClient(apiKey, apiSecret, baseURL string) (*StreamClient, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("stream api key and secret are required")
	}

	token, err := serverToken(apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to build server token: %w", err)
	}

	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &StreamClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// UserExists queries the provider for the given ID and reports whether a
// matching identity record came back.
func (c *StreamClient) UserExists(ctx context.Context, userID string) (bool, error) {
	payload, err := json.Marshal(map[string]any{
		"filter_conditions": map[string]any{
			"id": map[string]any{"$in": []string{userID}},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode user filter: %w", err)
	}

	endpoint := "/users?payload=" + url.QueryEscape(string(payload))

	var result struct {
		Users []struct {
			ID string `json:"id"`
		} `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return false, err
	}

	for _, u := range result.Users {
		if u.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// UpsertUser registers the identity with the provider. Upsert semantics make
// repeated registration for the same ID harmless.
func (c *StreamClient) UpsertUser(ctx context.Context, userID, name, email string) error {
	body := map[string]any{
		"users": map[string]any{
			userID: map[string]any{
				"id":    userID,
				"name":  name,
				"email": email,
				"role":  "user",
			},
		},
	}
	return c.do(ctx, http.MethodPost, "/users", body, nil)
}

// EnsureChannel creates-or-fetches the user's messaging channel. The provider
// treats channel query with state as create-if-absent.
func (c *StreamClient) EnsureChannel(ctx context.Context, userID string) (string, error) {
	channelID := "chat-" + userID
	body := map[string]any{
		"state": true,
		"data": map[string]any{
			"members":    []string{userID},
			"created_by": map[string]any{"id": userID},
		},
	}

	endpoint := fmt.Sprintf("/channels/%s/%s/query", channelType, channelID)
	if err := c.do(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return "", err
	}
	return channelID, nil
}

// SendMessage appends text to the channel, attributed to senderID.
func (c *StreamClient) SendMessage(ctx context.Context, channelID, text, senderID string) error {
	body := map[string]any{
		"message": map[string]any{
			"text":    text,
			"user_id": senderID,
		},
	}

	endpoint := fmt.Sprintf("/channels/%s/%s/message", channelType, channelID)
	return c.do(ctx, http.MethodPost, endpoint, body, nil)
}

// do performs one authenticated request and decodes the response into out
// when out is non-nil. Non-2xx responses become errors carrying the provider's
// status code.
func (c *StreamClient) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	fullURL := c.baseURL + endpoint + sep + "api_key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Stream-Auth-Type", "jwt")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chat provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chat provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}
