package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/fincoach/billing/internal/httpclient"
)

// MockHTTPClient implements a mock HTTP client for testing
type MockHTTPClient struct {
	mu        sync.RWMutex
	routes    map[string]MockResponse
	sequences map[string][]MockResponse
	failures  map[string]error
	calls     map[string]int
	bodies    map[string][]byte
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes:    make(map[string]MockResponse),
		sequences: make(map[string][]MockResponse),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
		bodies:    make(map[string][]byte),
	}
}

// RegisterResponse registers a mock response for a given URL suffix
func (m *MockHTTPClient) RegisterResponse(url string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[url] = resp
}

// RegisterJSONResponse is a helper to register a 200 JSON response
func (m *MockHTTPClient) RegisterJSONResponse(url string, body string) {
	m.RegisterResponse(url, MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	})
}

// RegisterSequence registers responses served in order for a URL suffix; the
// last response keeps repeating once the sequence is exhausted
func (m *MockHTTPClient) RegisterSequence(url string, resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[url] = resps
}

// RegisterFailure makes requests matching the URL suffix fail with the error
func (m *MockHTTPClient) RegisterFailure(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[url] = err
}

// Calls returns how many requests matched the given URL suffix
func (m *MockHTTPClient) Calls(url string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[url]
}

// LastBody returns the body of the most recent request matching the URL suffix
func (m *MockHTTPClient) LastBody(url string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bodies[url]
}

// TotalCalls returns the number of requests sent across all routes
func (m *MockHTTPClient) TotalCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// Send implements the httpclient.Client interface
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for route, err := range m.failures {
		if matchRoute(req.URL, route) {
			m.calls[route]++
			return nil, err
		}
	}

	for route, seq := range m.sequences {
		if matchRoute(req.URL, route) && len(seq) > 0 {
			m.calls[route]++
			m.bodies[route] = req.Body
			resp := seq[0]
			if len(seq) > 1 {
				m.sequences[route] = seq[1:]
			}
			return m.respond(resp)
		}
	}

	for route, resp := range m.routes {
		if matchRoute(req.URL, route) {
			m.calls[route]++
			m.bodies[route] = req.Body
			return m.respond(resp)
		}
	}

	return nil, httpclient.NewError(http.StatusNotFound, []byte("Not Found"))
}

func (m *MockHTTPClient) respond(resp MockResponse) (*httpclient.Response, error) {
	if resp.StatusCode >= 400 {
		return nil, httpclient.NewError(resp.StatusCode, resp.Body)
	}
	return &httpclient.Response{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Headers:    resp.Headers,
	}, nil
}

// matchRoute matches by suffix, ignoring any query string on the request URL
func matchRoute(url, route string) bool {
	if strings.Contains(route, "?") {
		return strings.HasSuffix(url, route)
	}
	if i := strings.Index(url, "?"); i >= 0 {
		url = url[:i]
	}
	return strings.HasSuffix(url, route)
}

// Clear removes all registered responses and counters
func (m *MockHTTPClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]MockResponse)
	m.sequences = make(map[string][]MockResponse)
	m.failures = make(map[string]error)
	m.calls = make(map[string]int)
	m.bodies = make(map[string][]byte)
}
