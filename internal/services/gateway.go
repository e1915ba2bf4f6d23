// Gateway for outbound calls to the movie catalogue REST API
package services

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

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "http://localhost:3000/api"

	headerAppToken  = "X-App-Token"
	headerRequestID = "X-Request-ID"
)

// RequestFailedError is returned for any non-2xx response. Body is the raw response text.
type RequestFailedError struct {
	StatusCode int
	Body       string
}

func (e *RequestFailedError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is matches [shared.ErrRequestFailed], and [shared.ErrServiceUnavailable] for 503 responses.
func (e *RequestFailedError) Is(target error) bool {
	switch target {
	case shared.ErrRequestFailed:
		return true
	case shared.ErrServiceUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable
	}
	return false
}

// Request describes one outbound call. Headers set here are never overwritten by the gateway.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers http.Header
}

// Response represents a successful (2xx) API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Decode unmarshals a JSON body into v. Empty bodies leave v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if !r.IsJSON {
		return fmt.Errorf("%w: content type %q is not JSON", shared.ErrDecodeResponse, r.Headers.Get("Content-Type"))
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
	}
	return nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// GatewayOpts configures a [Gateway].
type GatewayOpts struct {
	BaseURL  string
	AppToken string
	Client   *http.Client
	// Tokens yields the session's bearer token. Errors and invalid tokens mean "no Authorization header".
	Tokens    oauth2.TokenSource
	RateLimit float64
	Timeout   time.Duration
	Logger    *log.Logger
}

// Gateway is the single chokepoint for calls to the catalogue API.
//
// It attaches the JSON content type, the static app token and the session bearer token unless the
// caller already set those headers, and turns non-2xx responses into [RequestFailedError].
type Gateway struct {
	baseURL    string
	appToken   string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewGateway creates a gateway. An empty base URL falls back to [DefaultBaseURL].
func NewGateway(opts GatewayOpts) *Gateway {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	g := &Gateway{
		baseURL:    baseURL,
		appToken:   opts.AppToken,
		httpClient: client,
		tokens:     opts.Tokens,
		logger:     shared.WithLogger(logger, "component", "gateway"),
	}

	if opts.RateLimit > 0 {
		burst := max(int(opts.RateLimit), 1)
		g.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return g
}

// BaseURL returns the base every request path is appended to.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// SetTokenSource replaces the bearer token source.
func (g *Gateway) SetTokenSource(ts oauth2.TokenSource) {
	g.tokens = ts
}

// Do performs the request and returns the response of a 2xx call.
func (g *Gateway) Do(ctx context.Context, r Request) (*Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	fullURL := g.baseURL + r.Path
	if len(r.Query) > 0 {
		fullURL += "?" + r.Query.Encode()
	}

	body, err := encodeBody(r.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vals := range r.Headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	g.applyDefaultHeaders(req)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug("request error", "method", method, "path", r.Path, "request_id", req.Header.Get(headerRequestID), "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	g.logger.Debug("request",
		"method", method,
		"path", r.Path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(headerRequestID),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestFailedError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	apiResp := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		apiResp.IsJSON = true
		if len(bytes.TrimSpace(data)) > 0 {
			var jsonData any
			if err := json.Unmarshal(data, &jsonData); err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
			}
			apiResp.JSONData = jsonData
		}
	}

	return apiResp, nil
}

// applyDefaultHeaders fills headers the caller left unset.
func (g *Gateway) applyDefaultHeaders(req *http.Request) {
	has := func(key string) bool {
		_, ok := req.Header[http.CanonicalHeaderKey(key)]
		return ok
	}

	if !has("Content-Type") {
		req.Header.Set("Content-Type", "application/json")
	}

	if g.appToken != "" && !has(headerAppToken) {
		req.Header.Set(headerAppToken, g.appToken)
	}

	if g.tokens != nil && !has("Authorization") {
		if tok, err := g.tokens.Token(); err == nil && tok.Valid() {
			tok.SetAuthHeader(req)
		}
	}

	if !has(headerRequestID) {
		req.Header.Set(headerRequestID, shared.GenerateID())
	}
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode request body: %v", shared.ErrInvalidInput, err)
		}
		return bytes.NewReader(data), nil
	}
}

// Get performs a GET request to path with an optional query.
func (g *Gateway) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with body JSON-encoded.
func (g *Gateway) Post(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Patch performs a PATCH request with body JSON-encoded.
func (g *Gateway) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (g *Gateway) Delete(ctx context.Context, path string) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}
