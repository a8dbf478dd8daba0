// Package api provides the BookRAG chat service client.
package api

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"

	apierrors "github.com/diogo/bookrag/internal/errors"
	"github.com/diogo/bookrag/internal/logging"
	"github.com/diogo/bookrag/internal/models"
)

// TokenSource supplies the CSRF token and cookies attached to every request.
// It is the opaque authentication collaborator; config.Credentials implements it.
type TokenSource interface {
	CSRF() string
	Cookies() map[string]string
}

// ChatClient is the surface the TUI and commands depend on
type ChatClient interface {
	StreamChat(ctx context.Context, query, sessionID string, onUpdate func(content string)) (*StreamResult, error)
	FetchHistory(ctx context.Context) ([]models.HistoryEntry, error)
	BaseURL() string
	Close()
}

var _ ChatClient = (*Client)(nil)

// Client is the HTTP client for the BookRAG chat service
type Client struct {
	httpClient tls_client.HttpClient
	tokens     TokenSource
	baseURL    string
	timeout    time.Duration
	log        zerolog.Logger
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL sets the service base URL (scheme and host)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// timeoutSeconds converts d to the whole seconds the transport accepts,
// rounding up so a sub-second timeout never becomes zero (no limit)
func timeoutSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// WithTimeout sets the transport-level timeout for a whole request
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the client logger
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new Client
func NewClient(tokens TokenSource, opts ...ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, apierrors.ErrNoCredentials
	}

	client := &Client{
		tokens:  tokens,
		baseURL: "http://localhost:5000",
		timeout: 300 * time.Second,
		log:     logging.Component("api"),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(timeoutSeconds(client.timeout)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close marks the client closed and releases idle connections
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// BaseURL returns the service base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// endpoint joins the base URL and an API path
func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// newRequest builds a request carrying the default headers, the CSRF header
// and the credential cookies
func (c *Client) newRequest(ctx context.Context, method, path string, body *strings.Reader) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.endpoint(path), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set(models.HeaderCSRF, c.tokens.CSRF())

	for name, value := range c.tokens.Cookies() {
		if value == "" {
			continue
		}
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	return req, nil
}

// readErrorBody reads at most 4KB of a failed response for diagnostics
func readErrorBody(resp *http.Response) string {
	errorBody := make([]byte, 0, 4096)
	buf := make([]byte, 1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			errorBody = append(errorBody, buf[:n]...)
			if len(errorBody) >= 4096 {
				break
			}
		}
		if readErr != nil {
			break
		}
	}
	return string(errorBody)
}

// checkStatus converts a non-2xx response into a typed error
func checkStatus(resp *http.Response, path, operation string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apierrors.NewAPIError(resp.StatusCode, path, operation+" rejected: log in again and re-import cookies").
			WithBody(readErrorBody(resp))
	}
	return apierrors.NewAPIError(resp.StatusCode, path, operation+" failed").WithBody(readErrorBody(resp))
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
