package api

import (
	"io"
	"net/url"
	"testing"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/tls-client/bandwidth"
)

// MockResponseBody is a ReadCloser that hands out predetermined chunks, one
// per Read, and optionally fails after the last one
type MockResponseBody struct {
	chunks  [][]byte
	failErr error
	closed  bool
}

// NewMockResponseBody creates a body that returns data in a single chunk
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{chunks: [][]byte{data}}
}

// NewChunkedBody creates a body that returns each chunk from a separate Read
func NewChunkedBody(chunks ...string) *MockResponseBody {
	body := &MockResponseBody{}
	for _, c := range chunks {
		body.chunks = append(body.chunks, []byte(c))
	}
	return body
}

// FailWith makes the body return err once its chunks are exhausted
func (m *MockResponseBody) FailWith(err error) *MockResponseBody {
	m.failErr = err
	return m
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	for len(m.chunks) > 0 && len(m.chunks[0]) == 0 {
		m.chunks = m.chunks[1:]
	}
	if len(m.chunks) == 0 {
		if m.failErr != nil {
			return 0, m.failErr
		}
		return 0, io.EOF
	}
	n = copy(p, m.chunks[0])
	m.chunks[0] = m.chunks[0][n:]
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.closed = true
	return nil
}

// MockHttpClient is a mock implementation of tls_client.HttpClient for testing
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error

	// Requests records every request passed to Do, with its body drained
	Requests []*fhttp.Request
	Bodies   []string
	Idle     int
}

// GetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookies(u *url.URL) []*fhttp.Cookie {
	return nil
}

// SetCookies implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookies(u *url.URL, cookies []*fhttp.Cookie) {}

// SetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetCookieJar(jar fhttp.CookieJar) {}

// GetCookieJar implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetCookieJar() fhttp.CookieJar {
	return nil
}

// SetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetProxy(proxyUrl string) error {
	return nil
}

// GetProxy implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetProxy() string {
	return ""
}

// SetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) SetFollowRedirect(followRedirect bool) {}

// GetFollowRedirect implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetFollowRedirect() bool {
	return false
}

// CloseIdleConnections implements the tls_client.HttpClient interface
func (m *MockHttpClient) CloseIdleConnections() {
	m.Idle++
}

// Do implements the tls_client.HttpClient interface
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.Requests = append(m.Requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		m.Bodies = append(m.Bodies, string(data))
	} else {
		m.Bodies = append(m.Bodies, "")
	}
	return m.Response, m.Err
}

// Get implements the tls_client.HttpClient interface
func (m *MockHttpClient) Get(url string) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// Head implements the tls_client.HttpClient interface
func (m *MockHttpClient) Head(url string) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// Post implements the tls_client.HttpClient interface
func (m *MockHttpClient) Post(url, contentType string, body io.Reader) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// GetBandwidthTracker implements the tls_client.HttpClient interface
func (m *MockHttpClient) GetBandwidthTracker() bandwidth.BandwidthTracker {
	return nil
}

// NewMockHttpClient creates a new MockHttpClient with a successful response
func NewMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return NewMockHttpClientWithBody(NewMockResponseBody(body), statusCode)
}

// NewMockHttpClientWithBody creates a MockHttpClient serving the given body
func NewMockHttpClientWithBody(body *MockResponseBody, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Body:       body,
			Header:     make(fhttp.Header),
		},
	}
}

// NewMockHttpClientWithError creates a new MockHttpClient that returns an error
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{
		Response: nil,
		Err:      err,
	}
}

// staticTokens is a TokenSource with fixed values
type staticTokens struct {
	csrf    string
	session string
}

func (s staticTokens) CSRF() string {
	return s.csrf
}

func (s staticTokens) Cookies() map[string]string {
	return map[string]string{
		"csrf_token": s.csrf,
		"session":    s.session,
	}
}

// newTestClient builds a Client wired to mock
func newTestClient(t *testing.T, mock *MockHttpClient) *Client {
	t.Helper()
	client, err := NewClient(
		staticTokens{csrf: "test-csrf", session: "test-session"},
		WithBaseURL("http://books.test/"),
		WithTimeout(5*time.Second),
		WithHTTPClient(mock),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}
