package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName      = "planner/gateway"
	maxResponseSize = 4 << 20
	defaultTimeout  = 15 * time.Second
)

// Credentials supplies the bearer token and is told when the server rejects it.
type Credentials interface {
	Token() string
	Invalidate(token string)
}

// Client talks to the remote planner REST API. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
	logger  log.FieldLogger
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l log.FieldLogger) Option {
	return func(c *Client) { c.logger = l }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// New builds a client rooted at baseURL, e.g. http://localhost:8000/api/v1.
// creds may be nil for unauthenticated use.
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		creds:   creds,
		logger:  log.StandardLogger(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	form     url.Values
	fallback string
}

func call[T any](ctx context.Context, c *Client, r request) (T, error) {
	var out T
	err := c.do(ctx, r, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	ctx, span := c.tracer.Start(ctx, "gateway."+r.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.method),
			attribute.String("url.path", r.path),
		),
	)
	defer span.End()

	fail := func(e *APIError) error {
		span.RecordError(e)
		span.SetStatus(codes.Error, e.Kind.String())
		return e
	}

	var body io.Reader
	contentType := ""
	switch {
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.body != nil:
		payload, err := sonic.Marshal(r.body)
		if err != nil {
			return fail(&APIError{Op: r.op, Kind: KindValidation, Message: "Invalid request", Err: err})
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fail(&APIError{Op: r.op, Kind: KindTransport, Message: genericTransportMessage, Err: err})
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	token := ""
	if c.creds != nil {
		token = c.creds.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithFields(log.Fields{"op": r.op, "error": err}).Warn("planner api unreachable")
		return fail(&APIError{Op: r.op, Kind: KindTransport, Message: genericTransportMessage, Err: err})
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fail(&APIError{Op: r.op, Kind: KindTransport, Status: resp.StatusCode, Message: genericTransportMessage, Err: err})
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newStatusError(r.op, resp.StatusCode, data, r.fallback)
		if apiErr.Kind == KindUnauthorized && token != "" {
			c.creds.Invalidate(token)
			c.logger.WithField("op", r.op).Info("token rejected, cleared cached credentials")
		} else {
			c.logger.WithFields(log.Fields{"op": r.op, "status": resp.StatusCode}).Warn(apiErr.Message)
		}
		return fail(apiErr)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fail(&APIError{Op: r.op, Kind: KindServer, Status: resp.StatusCode, Message: genericServerMessage, Err: err})
	}
	return nil
}
