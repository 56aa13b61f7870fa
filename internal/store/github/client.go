// Package github stores the transaction document as a file in a GitHub
// repository through the contents API. The blob SHA is the version token.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"viaqris/internal/domain"
	"viaqris/internal/infra"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("github: token is required")

// Options configures the contents API client.
type Options struct {
	Token          string
	BaseURL        string
	Owner          string
	Repo           string
	Branch         string
	Path           string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client implements domain.TransactionRepository on a single repository file.
type Client struct {
	token      string
	baseURL    string
	owner      string
	repo       string
	branch     string
	path       string
	httpClient *http.Client
	logger     *infra.Logger
}

type contentResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
	Commit struct {
		HTMLURL string `json:"html_url"`
	} `json:"commit"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if opts.Owner == "" || opts.Repo == "" || opts.Path == "" {
		return nil, errors.New("github: owner, repo and path are required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{
		token:      token,
		baseURL:    baseURL,
		owner:      opts.Owner,
		repo:       opts.Repo,
		branch:     opts.Branch,
		path:       strings.Trim(opts.Path, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) contentsURL(withRef bool) string {
	segments := strings.Split(c.path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, url.PathEscape(c.owner), url.PathEscape(c.repo), strings.Join(segments, "/"))
	if withRef && c.branch != "" {
		u += "?ref=" + url.QueryEscape(c.branch)
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, target, accept string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// ReadAll fetches and decodes the document. A missing file is an empty
// snapshot with no version.
func (c *Client) ReadAll(ctx context.Context) (*domain.Snapshot, error) {
	target := c.contentsURL(true)
	req, err := c.newRequest(ctx, http.MethodGet, target, "application/vnd.github.v3+json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", target).Msg("github read failed")
		return nil, fmt.Errorf("%w: github read: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug().Str("url", target).Msg("github document missing, starting empty")
		return &domain.Snapshot{Entries: domain.Entries{}}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.remoteError("read", target, resp)
	}

	var info contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: github read: decode metadata: %v", domain.ErrRemoteUnavailable, err)
	}

	var raw []byte
	if info.Encoding == "none" || (info.Content == "" && info.SHA != "") {
		// Files over 1 MB come back without inline content.
		raw, err = c.readRaw(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		raw, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(info.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("github read: decode content: %w", err)
		}
	}

	entries := domain.Entries{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("github read: parse document: %w", err)
		}
	}
	return &domain.Snapshot{Entries: entries, Version: info.SHA}, nil
}

func (c *Client) readRaw(ctx context.Context) ([]byte, error) {
	target := c.contentsURL(true)
	req, err := c.newRequest(ctx, http.MethodGet, target, "application/vnd.github.raw+json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: github raw read: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.remoteError("raw read", target, resp)
	}
	return io.ReadAll(resp.Body)
}

// Write replaces the document. version must be the SHA returned by the
// preceding ReadAll, or empty when the file did not exist.
func (c *Client) Write(ctx context.Context, entries domain.Entries, version, message string) (*domain.WriteResult, error) {
	if entries == nil {
		entries = domain.Entries{}
	}
	doc, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("github write: encode document: %w", err)
	}
	body, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(doc),
		Branch:  c.branch,
		SHA:     version,
	})
	if err != nil {
		return nil, err
	}

	target := c.contentsURL(false)
	req, err := c.newRequest(ctx, http.MethodPut, target, "application/vnd.github.v3+json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", target).Msg("github write failed")
		return nil, fmt.Errorf("%w: github write: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.remoteError("write", target, resp)
	}
	var out putResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: github write: decode response: %v", domain.ErrRemoteUnavailable, err)
	}
	c.logger.Info().Str("commit", out.Commit.HTMLURL).Msg(message)
	return &domain.WriteResult{Version: out.Content.SHA, CommitURL: out.Commit.HTMLURL}, nil
}

func (c *Client) remoteError(op, target string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr errorResponse
	_ = json.Unmarshal(data, &apiErr)
	msg := strings.TrimSpace(apiErr.Message)
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	c.logger.Error().Int("status", resp.StatusCode).Str("url", target).Str("error", msg).Msgf("github %s rejected", op)

	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: github %s: %s", domain.ErrVersionConflict, op, msg)
	case resp.StatusCode == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "sha"):
		return fmt.Errorf("%w: github %s: %s", domain.ErrVersionConflict, op, msg)
	}
	return fmt.Errorf("%w: github %s: status %d: %s", domain.ErrRemoteUnavailable, op, resp.StatusCode, msg)
}

var _ domain.TransactionRepository = (*Client)(nil)
