package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Client проверяет сессию запросом профиля пользователя во внешнем сервисе аутентификации.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewClient создаёт HTTP-клиент сервиса аутентификации по указанному адресу.
func NewClient(baseURL, apiKey string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.Logger = nil

	hc := rc.StandardClient()
	hc.Timeout = 5 * time.Second

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: hc,
	}
}

// Verify запрашивает пользователя, которому принадлежит токен.
func (c *Client) Verify(ctx context.Context, token string) (*Admin, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("auth client not configured")
	}
	if token == "" {
		return nil, ErrInvalidSession
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidSession
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var u userResponse
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if u.ID == "" {
		return nil, ErrInvalidSession
	}

	return &Admin{ID: u.ID, Email: u.Email}, nil
}
