// Package fakeapi is an in-process stand-in for the Agrisonic backend used
// by tests. Every known route answers with a configurable canned reply and
// records how often it was called and with what.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agrisonic/agrisonic/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes served by the backend.
var Routes = []struct{ Method, Path string }{
	{http.MethodPost, "api/auth/signin"},
	{http.MethodPost, "api/auth/signup"},
	{http.MethodPost, "api/auth/verify-code"},
	{http.MethodPost, "api/auth/signout"},
	{http.MethodGet, "api/auth/me"},
	{http.MethodPost, "api/auth/forgot-password"},
	{http.MethodPost, "api/auth/reset-password"},
	{http.MethodPost, "api/auth/change-password"},
	{http.MethodPost, "api/auth/send-verification-code"},
	{http.MethodPost, "api/auth/verify-signup"},
	{http.MethodGet, "api/weather"},
	{http.MethodPost, "api/crop-prediction"},
	{http.MethodGet, "api/market-trends"},
}

// Reply is a canned answer.
type Reply struct {
	Status int
	Body   string
	// Cookie, when set, is sent as the session-token cookie.
	Cookie string
	// Delay holds the response back, or until the client goes away.
	Delay time.Duration
}

// OK wraps data in a successful envelope.
func OK(data any) Reply {
	env := map[string]any{"success": true}
	if data != nil {
		env["data"] = data
	}
	b, _ := json.Marshal(env)
	return Reply{Status: http.StatusOK, Body: string(b)}
}

// Fail is an unsuccessful envelope carrying msg in the error field.
func Fail(status int, msg string) Reply {
	b, _ := json.Marshal(map[string]any{"success": false, "error": msg})
	return Reply{Status: status, Body: string(b)}
}

// Recorded is what the server saw on the last call to a route.
type Recorded struct {
	Body      []byte
	Query     url.Values
	Cookie    string
	RequestID string
}

// Decode unmarshals the recorded JSON body into v.
func (r Recorded) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

type Server struct {
	srv *httptest.Server

	mu      sync.Mutex
	replies map[string]Reply
	calls   map[string]int
	last    map[string]Recorded
}

// New starts a server that is closed when the test ends.
func New(tb testing.TB) *Server {
	tb.Helper()
	s := &Server{
		replies: make(map[string]Reply),
		calls:   make(map[string]int),
		last:    make(map[string]Recorded),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, route := range Routes {
		r.Method(route.Method, "/"+route.Path, s.handler(route.Method, route.Path))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		write(w, Fail(http.StatusNotFound, "Not found"))
	})

	s.srv = httptest.NewServer(r)
	tb.Cleanup(s.srv.Close)
	return s
}

func (s *Server) URL() string { return s.srv.URL + "/" }

// Handle sets the reply of a route.
func (s *Server) Handle(method, path string, reply Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[key(method, path)] = reply
}

// Calls returns how many requests a route received.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key(method, path)]
}

// TotalCalls returns the number of requests across all routes.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// Last returns the most recent request to a route.
func (s *Server) Last(method, path string) Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[key(method, path)]
}

// Close shuts the server down early, e.g. to simulate an unreachable host.
func (s *Server) Close() { s.srv.Close() }

func (s *Server) handler(method, path string) http.HandlerFunc {
	k := key(method, path)
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec := Recorded{
			Body:      body,
			Query:     r.URL.Query(),
			RequestID: r.Header.Get(common.RequestIDHeaderName),
		}
		if c, err := r.Cookie(common.SessionCookieName); err == nil {
			rec.Cookie = c.Value
		}

		s.mu.Lock()
		s.calls[k]++
		s.last[k] = rec
		reply, ok := s.replies[k]
		s.mu.Unlock()

		if !ok {
			reply = Fail(http.StatusNotImplemented, "no reply configured for "+k)
		}
		if reply.Delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(reply.Delay):
			}
		}
		write(w, reply)
	}
}

func write(w http.ResponseWriter, reply Reply) {
	if reply.Cookie != "" {
		http.SetCookie(w, &http.Cookie{Name: common.SessionCookieName, Value: reply.Cookie, Path: "/", HttpOnly: true})
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}

func key(method, path string) string {
	return strings.ToUpper(method) + " " + strings.TrimPrefix(path, "/")
}
