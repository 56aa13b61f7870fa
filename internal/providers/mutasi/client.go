// Package mutasi fetches recent bank mutations from the QRIS settlement
// provider's history endpoint.
package mutasi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"viaqris/internal/domain"
	"viaqris/internal/infra"
	"viaqris/internal/payment"
)

// ErrNotConfigured indicates missing endpoint credentials.
var ErrNotConfigured = errors.New("mutasi: credentials are not configured")

// Options configures the mutation history client.
type Options struct {
	Endpoint       string
	Username       string
	Token          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

type Client struct {
	endpoint   string
	username   string
	token      string
	httpClient *http.Client
	logger     *infra.Logger
}

type historyRequest struct {
	AuthUsername string `json:"auth_username"`
	AuthToken    string `json:"auth_token"`
}

type historyResponse struct {
	Status  json.RawMessage   `json:"status"`
	Message string            `json:"message"`
	Data    []json.RawMessage `json:"data"`
}

type mutationRecord struct {
	Type   string          `json:"type"`
	Amount json.RawMessage `json:"amount"`
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = infra.DefaultMutationEndpoint
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{
		endpoint:   endpoint,
		username:   strings.TrimSpace(opts.Username),
		token:      strings.TrimSpace(opts.Token),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Recent returns the latest mutations reported by the provider.
func (c *Client) Recent(ctx context.Context) ([]payment.Mutation, error) {
	if c.username == "" || c.token == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, ErrNotConfigured)
	}
	body, err := json.Marshal(historyRequest{AuthUsername: c.username, AuthToken: c.token})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", c.endpoint).Msg("mutasi fetch failed")
		return nil, fmt.Errorf("%w: mutasi: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.logger.Error().Int("status", resp.StatusCode).Str("url", c.endpoint).Str("error", string(text)).Msg("mutasi rejected")
		return nil, fmt.Errorf("%w: mutasi: status %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}

	var out historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: mutasi: decode: %v", domain.ErrRemoteUnavailable, err)
	}
	if !truthy(out.Status) || out.Data == nil {
		c.logger.Warn().Str("message", out.Message).Msg("mutasi returned unsuccessful status")
		return nil, fmt.Errorf("%w: mutasi: unsuccessful response %q", domain.ErrRemoteUnavailable, out.Message)
	}

	mutations := make([]payment.Mutation, 0, len(out.Data))
	for _, raw := range out.Data {
		var rec mutationRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		mutations = append(mutations, payment.Mutation{
			Type:   rec.Type,
			Amount: parseAmount(rec.Amount),
			Raw:    append([]byte(nil), raw...),
		})
	}
	return mutations, nil
}

// parseAmount accepts numbers or strings such as "10.000" and keeps digits only.
func parseAmount(raw json.RawMessage) int64 {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
		if i := strings.IndexByte(s, '.'); i >= 0 {
			s = s[:i]
		}
	}
	return domain.ParseDigits(s)
}

func truthy(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	switch v {
	case "", "null", "false", "0", `""`, `"0"`, `"false"`:
		return false
	}
	return true
}
