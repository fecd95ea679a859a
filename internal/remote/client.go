package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fixlabtech/fixlab-technologies/internal/apperr"
	"github.com/fixlabtech/fixlab-technologies/internal/metrics"
	"github.com/fixlabtech/fixlab-technologies/internal/observability"
)

const (
	// DefaultBaseURL is the production registration and blog API.
	DefaultBaseURL = "https://www.services.fixlabtech.com"

	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
	csrfHeader        = "X-CSRFToken"
	csrfCookie        = "csrftoken"
	tracerName        = "github.com/fixlabtech/fixlab-technologies/internal/remote"
)

// Client issues registration, payment and blog calls against the API service.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout bounds every call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient constructs an API client. An empty baseURL targets DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API origin the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	op      string
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
	cookies []*http.Cookie
}

type response struct {
	status int
	body   []byte
}

// send performs one call and returns the raw body of a 2xx response. Transport
// failures and other statuses become *apperr.NetworkError; the body of a
// non-2xx response is still returned so callers can read a server message.
func (c *Client) send(ctx context.Context, req request) (resp response, err error) {
	ctx, span := c.tracer.Start(ctx, "remote."+req.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("url.path", req.path),
		),
	)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperr.KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.FromContext(ctx).Warn("remote call failed",
				zap.String("op", req.op),
				zap.Int("status", resp.status),
				zap.Duration("latency", time.Since(start)),
				zap.Error(err),
			)
		}
		if resp.status > 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", resp.status))
		}
		metrics.ObserveRemoteCall(req.op, outcome, time.Since(start))
		span.End()
	}()

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return response{}, err
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return response{}, err
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	for _, ck := range req.cookies {
		httpReq.AddCookie(ck)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return response{}, &apperr.NetworkError{Op: req.op, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	resp = response{status: httpResp.StatusCode, body: raw}
	if err != nil {
		return resp, &apperr.NetworkError{Op: req.op, Status: httpResp.StatusCode, Err: err}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return resp, &apperr.NetworkError{Op: req.op, Status: httpResp.StatusCode, Err: errors.New(drainError(raw))}
	}
	return resp, nil
}

// decode unmarshals a 2xx body, mapping malformed JSON to a NetworkError.
func decode(op string, resp response, out any) error {
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &apperr.NetworkError{Op: op, Status: resp.status, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func newIdempotencyKey() string {
	return ulid.Make().String()
}

func csrfRequest(token string) (map[string]string, []*http.Cookie) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	return map[string]string{csrfHeader: token}, []*http.Cookie{{Name: csrfCookie, Value: token}}
}

func defaultString(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return strings.TrimSpace(val)
}

func drainError(b []byte) string {
	if len(b) > 256 {
		b = b[:256]
	}
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		return "empty response"
	}
	return msg
}

func parseTime(val string) time.Time {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02"}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, val); err == nil {
			return ts
		}
	}
	return time.Time{}
}
