package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName      = "github.com/dmitrijs2005/gophsocial/internal/client/gateway"
	maxResponseSize = 8 << 20

	HeaderRequestID = "X-Request-ID"
)

// Credentials is the part of the session store the gateway uses.
type Credentials interface {
	Credential() string
	// Reject tears the session down if sent is still the current credential.
	Reject(ctx context.Context, sent string) bool
}

type Gateway struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	timeout time.Duration
	log     logging.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.http = c }
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) { g.log = logging.OrNop(l) }
}

func WithMetrics(m *Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Gateway) { g.tracer = t }
}

// New returns a gateway sending requests to baseURL with credentials read
// from creds.
func New(baseURL string, creds Credentials, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: baseURL,
		creds:   creds,
		http:    &http.Client{},
		timeout: 10 * time.Second,
		log:     logging.Nop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do sends r and decodes a JSON response into out when out is non-nil and
// the body is non-empty. Any failure is a *common.Failure.
func (g *Gateway) Do(ctx context.Context, r Request, out any) error {
	start := time.Now()
	op := r.op()

	ctx, span := g.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", r.route()),
		))
	defer span.End()

	status, err := g.do(ctx, r, out)

	kind := common.KindOf(err)
	g.metrics.observe(r.Method, kind.String(), time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", status))
	g.log.Debug(ctx, "api request",
		"method", r.Method,
		"path", r.Path,
		"status", status,
		"duration", time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		g.log.Warn(ctx, "api request failed", "op", op, "kind", kind.String(), "status", status)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (g *Gateway) do(ctx context.Context, r Request, out any) (int, error) {
	op := r.op()
	fail := func(status int, kind common.Kind, msg string, err error) (int, error) {
		return status, &common.Failure{Kind: kind, Status: status, Op: op, Message: msg, Err: err}
	}

	credential, fromSession := r.Credential, false
	if credential == "" && !r.Anonymous && g.creds != nil {
		credential, fromSession = g.creds.Credential(), true
	}

	body, contentType, err := encodeBody(r)
	if err != nil {
		return fail(0, common.KindUnknown, "encode request", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, joinURL(g.baseURL, r.Path, r.Query), body)
	if err != nil {
		return fail(0, common.KindUnknown, "build request", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return fail(0, common.KindUnknown, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fail(resp.StatusCode, common.KindUnknown, "read response", err)
	}

	if kind := common.KindForStatus(resp.StatusCode, credential != ""); kind != common.KindNone {
		if kind == common.KindUnauthenticated && fromSession && credential != "" {
			if g.creds.Reject(ctx, credential) {
				g.log.Info(ctx, "session rejected by server", "op", op)
			}
		}
		return fail(resp.StatusCode, kind, detailMessage(data), nil)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(resp.StatusCode, common.KindUnknown, "decode response", err)
	}
	return resp.StatusCode, nil
}
