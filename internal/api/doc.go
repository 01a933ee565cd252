// Package api defines the boundary request/response shapes for the HTTP
// surface and the services behind it: the submission gateway that creates
// and launches dubbing sessions, the read-only status query service, and
// catalog views for languages and voices.
//
// DTOs use snake_case JSON tags matching the payloads the web frontend
// consumes. Internal session models never cross this boundary directly.
package api
