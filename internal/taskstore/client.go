package taskstore

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

	"taskdesk/internal/logger"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer credential for each call. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Options configures a Client.
type Options struct {
	// BaseURL of the API including the /api prefix
	BaseURL    string
	HTTPClient *http.Client
	// Timeout applies when HTTPClient is nil
	Timeout time.Duration
	Tokens  TokenSource
	// OnUnauthorized runs when an authenticated call is answered with 401
	OnUnauthorized func()
	Log            logrus.FieldLogger
}

// Client is a typed wrapper of the remote task API. It never retries.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            logrus.FieldLogger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", opts.BaseURL)
	}

	c := &Client{
		baseURL:        base,
		http:           opts.HTTPClient,
		tokens:         opts.Tokens,
		onUnauthorized: opts.OnUnauthorized,
		log:            opts.Log,
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.tokens == nil {
		c.tokens = StaticToken("")
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	c.log = logger.Component(c.log, "taskstore")
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// send performs req and converts failures to *TransportError or *RemoteError.
// On success the caller owns resp.Body.
func (c *Client) send(op string, req *http.Request) (*http.Response, error) {
	token := c.tokens.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	entry := c.log.WithFields(logrus.Fields{
		"op":          op,
		"method":      req.Method,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("request failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	entry = entry.WithField("status", resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		entry.Debug("request completed")
		return resp, nil
	}

	defer resp.Body.Close()
	rerr := decodeRemoteError(op, resp)
	entry.WithField("error", rerr.Message).Warn("request rejected")
	if resp.StatusCode == http.StatusUnauthorized && token != "" && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return nil, rerr
}

func decodeRemoteError(op string, resp *http.Response) *RemoteError {
	rerr := &RemoteError{Op: op, StatusCode: resp.StatusCode}

	var body struct {
		Error  string            `json:"error"`
		Errors map[string]string `json:"errors"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil {
		rerr.Message = body.Error
		rerr.Fields = body.Errors
	}
	if rerr.Message == "" {
		rerr.Message = http.StatusText(resp.StatusCode)
	}
	return rerr
}

// doJSON sends in (when non-nil) as JSON and decodes the response into out
// (when non-nil).
func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
