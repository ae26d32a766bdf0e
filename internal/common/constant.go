// Package common contains wire constants and the error taxonomy shared by the
// Agrisonic client layers.
package common

// SessionCookieName is the cookie that carries the session token in both
// directions: set by the server on sign-in, sent back on every request.
const SessionCookieName = "session-token"

// RequestIDHeaderName tags outbound requests for log correlation.
const RequestIDHeaderName = "X-Request-ID"

// DefaultLanguage is the locale used when none was stored or requested.
const DefaultLanguage = "en"
