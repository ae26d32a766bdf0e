// Package services contains the application services of the Agrisonic
// client: the session manager that drives sign-in, sign-up, verification,
// password reset and logout, and the weather, crop prediction and market
// price clients.
//
// Every service talks to the backend through a Caller (the gateway) and
// never touches storage directly; the session manager persists through a
// SessionStore.
package services
