package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	clog "github.com/charmbracelet/log"
)

// Request is one authenticated call to the server. Body, when non-nil,
// is marshaled as JSON.
type Request struct {
	Method string
	URL    string
	Body   any
}

// Response is the normalized outcome of a request that reached the
// server: the status code and the raw body. Transport-level failures
// (DNS, connect, TLS, timeout) are returned as errors instead and never
// carry a status.
type Response struct {
	Status int
	Body   []byte
}

// Transport issues a single authenticated HTTP request. The engine never
// retries or pools; each call is synchronous with the transport's own
// timeout.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// HTTPTransport implements Transport on net/http with basic auth.
type HTTPTransport struct {
	log     *clog.Logger
	client  *http.Client
	cred    Credential
	timeout time.Duration
}

var _ Transport = &HTTPTransport{}

// NewTransport creates an HTTPTransport that attaches the credential to
// every request and bounds each call with the given timeout.
func NewTransport(cred Credential, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		log:     clog.Default().WithPrefix("bitbucket"),
		client:  &http.Client{},
		cred:    cred,
		timeout: timeout,
	}
}

func (t *HTTPTransport) Do(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return Response{}, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.SetBasicAuth(t.cred.Username, t.cred.Password)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// Never log headers: they carry the Authorization value.
	t.log.Debug("issuing request", "method", req.Method, "url", req.URL)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			t.log.Warn("request timed out", "method", req.Method, "url", req.URL, "timeout", t.timeout)
			return Response{}, fmt.Errorf("%s %s timed out after %s", req.Method, req.URL, t.timeout)
		}
		t.log.Warn("request failed", "method", req.Method, "url", req.URL, "error", err)
		return Response{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response body: %w", err)
	}

	t.log.Debug("request completed", "method", req.Method, "url", req.URL, "status", resp.StatusCode)
	return Response{Status: resp.StatusCode, Body: raw}, nil
}
