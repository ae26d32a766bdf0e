// Package models defines the data shared by the Agrisonic client layers:
// the stored Credential and User profile, the auth request payloads and the
// typed feature payloads (weather, crop prediction, market prices).
//
// JSON tags follow the remote API. The db tags on User map the single-row
// users table read with sqlx.
package models
