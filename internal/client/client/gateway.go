package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agrisonic/agrisonic/internal/client/metrics"
	"github.com/agrisonic/agrisonic/internal/common"
	"github.com/agrisonic/agrisonic/internal/logging"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const maxResponseBytes = 8 << 20

// TokenSource yields the session token to attach, or "" for none.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// Request describes one API call. Path is relative to the base URL, e.g.
// "api/auth/signin". Body, when non-nil, is sent as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is the normalized envelope.
type Response struct {
	Status  int
	Success bool
	// Data is the raw payload; nil when absent or null.
	Data  json.RawMessage
	Error string

	// IssuedToken is set when the server delivered a new session cookie.
	IssuedToken string
	RequestID   string
}

// Err returns a *common.ServerError for an unsuccessful response.
func (r *Response) Err() error {
	if r.Success {
		return nil
	}
	msg := r.Error
	if msg == "" {
		msg = fmt.Sprintf("Request failed - Status: %d", r.Status)
	}
	return &common.ServerError{Status: r.Status, Message: msg}
}

// HasData reports whether the envelope carried a non-null payload.
func (r *Response) HasData() bool {
	return len(r.Data) > 0
}

// Decode unmarshals the payload into v. A missing or mistyped payload is
// common.ErrMalformedResponse.
func Decode(r *Response, v any) error {
	if !r.HasData() {
		return fmt.Errorf("%w: response has no data", common.ErrMalformedResponse)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	return nil
}

// Config bounds the phases of a call. Zero timeouts fall back to 30s.
//
//   - ConnectTimeout bounds the TCP dial and the TLS handshake.
//   - WriteTimeout bounds every write to the connection, so a request body
//     that stops draining fails after it.
//   - ReadTimeout bounds the wait for the response headers and every read
//     of the body after them.
//
// The write and read bounds are per operation, not totals: a response that
// keeps arriving is not cut off. The call as a whole is bounded by the
// caller's context.
type Config struct {
	BaseURL        string
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
}

type Option func(*Gateway)

func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithHTTPClient replaces the client built from Config, e.g. with an
// httptest server's client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		if c != nil {
			g.http = c
		}
	}
}

type Gateway struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	metrics *metrics.Collector
	log     logging.Logger
}

// NewGateway builds a gateway for cfg.BaseURL. tokens may be nil, in which
// case every request goes out unauthenticated.
func NewGateway(cfg Config, tokens TokenSource, opts ...Option) (*Gateway, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if tokens == nil {
		tokens = TokenFunc(func(context.Context) string { return "" })
	}

	g := &Gateway{
		baseURL: base,
		http:    newHTTPClient(cfg),
		tokens:  tokens,
		log:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func newHTTPClient(cfg Config) *http.Client {
	connect := orDefault(cfg.ConnectTimeout)
	write := orDefault(cfg.WriteTimeout)
	read := orDefault(cfg.ReadTimeout)

	dialer := &net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &phaseConn{Conn: conn, read: read, write: write}, nil
		},
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: read,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// phaseConn arms a fresh deadline before each read and write.
type phaseConn struct {
	net.Conn
	read  time.Duration
	write time.Duration
}

func (c *phaseConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.read)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *phaseConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.write)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Call sends req and returns the normalized response. A non-nil error means
// no usable envelope was obtained.
func (g *Gateway) Call(ctx context.Context, req Request) (*Response, error) {
	op := req.Method + " " + req.Path
	requestID := uuid.NewString()

	httpReq, err := g.newRequest(ctx, req, requestID)
	if err != nil {
		return nil, err
	}

	if g.metrics != nil {
		defer g.metrics.Start()()
	}
	start := time.Now()

	resp, raw, err := g.do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		nerr := classify(ctx, op, err)
		g.observe(req, outcomeOf(nerr), elapsed)
		g.log.Warn(ctx, "api call failed", "op", op, "kind", nerr.Kind, "request_id", requestID, "error", nerr.Err)
		return nil, nerr
	}

	out, err := normalize(resp, raw)
	if err != nil {
		g.observe(req, metrics.OutcomeMalformed, elapsed)
		g.log.Warn(ctx, "malformed api response", "op", op, "status", resp.StatusCode, "request_id", requestID)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out.RequestID = requestID

	outcome := metrics.OutcomeSuccess
	if !out.Success {
		outcome = metrics.OutcomeServerError
	}
	g.observe(req, outcome, elapsed)
	g.log.Debug(ctx, "api call",
		"op", op,
		"status", out.Status,
		"success", out.Success,
		"duration", elapsed,
		"request_id", requestID,
		"issued_token", out.IssuedToken != "",
	)
	return out, nil
}

func (g *Gateway) newRequest(ctx context.Context, req Request, requestID string) (*http.Request, error) {
	u := g.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(req.Path, "/")})
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)
	if tok := g.tokens.Token(ctx); tok != "" {
		httpReq.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: tok})
	}
	return httpReq, nil
}

func (g *Gateway) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, err
	}
	return resp, raw, nil
}

func (g *Gateway) observe(req Request, outcome string, d time.Duration) {
	if g.metrics == nil {
		return
	}
	g.metrics.Observe(req.Method, req.Path, outcome, d)
}

// normalize maps the body onto Response. The message of a failed call is
// taken from "error", falling back to "message".
func normalize(resp *http.Response, raw []byte) (*Response, error) {
	out := &Response{
		Status:      resp.StatusCode,
		IssuedToken: issuedToken(resp),
	}
	ok2xx := resp.StatusCode >= 200 && resp.StatusCode < 300

	body := gjson.ParseBytes(raw)
	if !gjson.ValidBytes(raw) || !body.IsObject() {
		if ok2xx {
			return nil, fmt.Errorf("%w: status %d with non-JSON body", common.ErrMalformedResponse, resp.StatusCode)
		}
		return out, nil
	}

	success := body.Get("success")
	if ok2xx && !success.IsBool() {
		return nil, fmt.Errorf("%w: envelope has no success flag", common.ErrMalformedResponse)
	}
	out.Success = ok2xx && success.Bool()

	if data := body.Get("data"); data.Exists() && data.Type != gjson.Null {
		out.Data = json.RawMessage(data.Raw)
	}
	out.Error = envelopeMessage(body)
	return out, nil
}

func envelopeMessage(body gjson.Result) string {
	for _, path := range []string{"error", "error.message", "message"} {
		if v := body.Get(path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func issuedToken(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == common.SessionCookieName && c.Value != "" && c.MaxAge >= 0 {
			return c.Value
		}
	}
	return ""
}

func classify(ctx context.Context, op string, err error) *common.NetworkError {
	kind := common.NetworkIO

	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		kind = common.NetworkCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		kind = common.NetworkTimeout
	case errors.As(err, &opErr) && opErr.Op == "dial":
		kind = common.NetworkConnect
	}
	return &common.NetworkError{Kind: kind, Op: op, Err: err}
}

func outcomeOf(err *common.NetworkError) string {
	if err.Kind == common.NetworkTimeout {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeNetworkError
}
