// Package cameriere is a client for the restaurant ordering REST API: the
// public menu and order endpoints, the admin endpoints behind JWT auth, plus
// the cart, order polling and bill helpers the front ends build on.
package cameriere

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var (
	tracer = otel.Tracer("cameriere")
	meter  = otel.Meter("cameriere")
)

const (
	jsonContentType = "application/json"
	refreshPath     = "/admin/auth/refresh/"
	defaultTimeout  = 10 * time.Second
)

// SessionExpiredFunc runs once per expired session, after the tokens were
// cleared. Front ends use it to send the user back to the login view.
type SessionExpiredFunc func(ctx context.Context)

// Request describes a call to the API. Body is encoded as JSON unless it is
// a *MultipartBody, which is sent as is.
type Request struct {
	Method string
	// Path is joined to the base URL unless it is already absolute.
	Path   string
	Body   any
	Header http.Header
}

type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenStore
	onExpired SessionExpiredFunc
	publisher StatusPublisher
	validate  *validator.Validate

	refreshGroup singleflight.Group

	refreshCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

func WithSessionExpired(fn SessionExpiredFunc) Option {
	return func(c *Client) { c.onExpired = fn }
}

// WithStatusPublisher forwards every order seen while polling.
func WithStatusPublisher(p StatusPublisher) Option {
	return func(c *Client) { c.publisher = p }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: empty base url", ErrValidation)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens:    NewMemoryTokenStore(),
		publisher: NopPublisher{},
		validate:  validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	c.refreshCounter, err = meter.Int64Counter(
		"cameriere.token.refresh.count",
		metric.WithDescription("Number of access token refresh attempts"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		slog.Error("failed to create refresh counter", slog.Any("err", err))
		return nil, err
	}

	c.requestDuration, err = meter.Float64Histogram(
		"cameriere.request.duration",
		metric.WithDescription("Duration of API requests, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		slog.Error("failed to create request histogram", slog.Any("err", err))
		return nil, err
	}

	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) TokenStore() TokenStore { return c.tokens }

// Do sends an authenticated request. A 401 triggers one token refresh and one
// retry with the new token; if the refresh fails the stored tokens are
// cleared, the session-expired hook runs and the error wraps
// ErrSessionExpired. The caller must close the returned body.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	ctx, span := tracer.Start(ctx, "cameriere.Client.Do", trace.WithAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		c.requestDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("http.request.method", req.Method)))
	}()

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode body")
		return nil, err
	}

	tokens, err := c.tokens.Tokens(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read tokens")
		return nil, fmt.Errorf("read tokens: %w", err)
	}

	resp, err := c.send(ctx, req, body, contentType, tokens.Access)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	drainAndClose(resp)
	slog.DebugContext(ctx, "access token rejected, refreshing", slog.String("path", req.Path))
	span.AddEvent("token.refresh")

	access, err := c.refreshAccess(ctx, tokens.Access)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session expired")
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	resp, err = c.send(ctx, req, body, contentType, access)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Bool("cameriere.retried", true))
	return resp, nil
}

// refreshAccess returns a usable access token to replace stale. Concurrent
// callers share a single refresh. If the store already holds a different
// token, someone refreshed in the meantime and that token is returned as is.
// The session expired hook runs only for the refresh that cleared the store.
func (c *Client) refreshAccess(ctx context.Context, stale string) (string, error) {
	ctx = context.WithoutCancel(ctx)

	v, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		current, err := c.tokens.Tokens(ctx)
		if err != nil {
			return "", err
		}
		if current.Access != "" && current.Access != stale {
			return current.Access, nil
		}
		if current.Access == "" && current.Refresh == "" && stale != "" {
			// An earlier refresh already failed and cleared the session.
			return "", ErrNoRefreshToken
		}

		access, err := c.refresh(ctx, current.Refresh)
		if err != nil {
			c.expire(ctx, err)
			return "", err
		}
		return access, nil
	})
	if shared {
		slog.DebugContext(ctx, "shared token refresh with concurrent requests")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx, span := tracer.Start(ctx, "cameriere.Client.refresh")
	defer span.End()

	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	c.refreshCounter.Add(ctx, 1)

	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}
	resp, err := c.send(ctx, &Request{Method: http.MethodPost, Path: refreshPath}, payload, jsonContentType, "")
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := decodeAPIError(resp)
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh rejected")
		return "", fmt.Errorf("refresh failed: %w", err)
	}

	var tokens TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if tokens.Access == "" {
		return "", errors.New("refresh response has no access token")
	}
	if err := c.tokens.Save(ctx, tokens); err != nil {
		return "", fmt.Errorf("store refreshed tokens: %w", err)
	}

	slog.InfoContext(ctx, "access token refreshed", slog.Bool("rotated", tokens.Refresh != ""))
	return tokens.Access, nil
}

func (c *Client) expire(ctx context.Context, cause error) {
	slog.WarnContext(ctx, "session expired, clearing tokens", slog.Any("err", cause))
	if err := c.tokens.Clear(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to clear tokens", slog.Any("err", err))
	}
	if c.onExpired != nil {
		c.onExpired(ctx)
	}
}

// send issues one HTTP request. A fresh request is built on every call so a
// retry never carries the previous Authorization header.
func (c *Client) send(ctx context.Context, req *Request, body []byte, contentType, access string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), reader)
	if err != nil {
		return nil, err
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", uuid.NewString())
	}
	httpReq.Header.Set("Accept", jsonContentType)

	return c.http.Do(httpReq)
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

// encodeBody returns the bytes to send and the default content type.
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, jsonContentType, nil
	case *MultipartBody:
		return b.data, b.contentType, nil
	case json.RawMessage:
		return b, jsonContentType, nil
	case []byte:
		return b, jsonContentType, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode body: %w", err)
		}
		return data, jsonContentType, nil
	}
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}

// authJSON runs an authenticated call and decodes a 2xx JSON answer into out.
func (c *Client) authJSON(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

// publicJSON calls an endpoint that needs no credentials.
func (c *Client) publicJSON(ctx context.Context, req *Request, out any) error {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, req, body, contentType, "")
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}
