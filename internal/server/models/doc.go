// Package models defines server-side data models persisted in the database
// and returned over the HTTP API.
package models
