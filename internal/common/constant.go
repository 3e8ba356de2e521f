// Package common contains constants shared across crmclient components.
package common

// TokenStorageKey is the metadata key under which the raw bearer token is
// persisted. Nothing else about the session is stored.
const TokenStorageKey = "jwt_token"

// AuthorizationHeaderName carries the bearer token on outbound API requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the token in the Authorization header.
const BearerScheme = "Bearer"

// RequestIDHeaderName tags every outbound API request with a unique id.
const RequestIDHeaderName = "X-Request-ID"

// APIPrefix is the path prefix of every CRM API route.
const APIPrefix = "/api/v1"
