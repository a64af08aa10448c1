package kitchen

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

// HTTPSource reads the board from GET /orders/board with an admin token.
type HTTPSource struct {
	baseURL string
	token   string
	policy  CancelledPolicy
	client  *http.Client
}

// NewHTTPSource creates an HTTPSource for the API at baseURL.
func NewHTTPSource(baseURL, token string, policy CancelledPolicy) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		policy:  policy,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type boardEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *Board `json:"data"`
}

// Board implements BoardSource.
func (s *HTTPSource) Board(ctx context.Context) (*Board, error) {
	q := url.Values{}
	if s.policy == CancelledLane {
		q.Set("cancelled", s.policy.String())
	}
	endpoint := s.baseURL + "/orders/board"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build board request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch board: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, ErrForbidden
	}

	var env boardEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode board (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success || env.Data == nil {
		return nil, fmt.Errorf("fetch board: status %d: %s", resp.StatusCode, env.Message)
	}
	return env.Data, nil
}

type loginEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

// Login exchanges admin credentials for an access token.
func Login(ctx context.Context, baseURL, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/auth/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var env loginEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode login response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK || env.Data.AccessToken == "" {
		return "", fmt.Errorf("login: status %d: %s", resp.StatusCode, env.Message)
	}
	return env.Data.AccessToken, nil
}
