// Package store is the persisted-state boundary of the client: the
// credential store (session token, logged-in flag, language, push token)
// and the single-row profile cache, both backed by the local SQLite file.
//
// Reads take a read lock and see a point-in-time snapshot. Writes are
// serialized and fully committed before subscribers are notified.
// Writes that touch both components go through Store so they commit in one
// transaction. Every storage failure is returned as a *common.PersistenceError.
//
// Subscriptions deliver the current value on subscribe and then the latest
// value after every change; intermediate values may be skipped.
package store
