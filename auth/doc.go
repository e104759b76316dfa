// Package auth guards the tool endpoint with optional caller authentication.
//
// Two Authenticators are provided: APIKeyAuthenticator checks a static key
// set sent in X-API-Key, and JWTAuthenticator checks HS256 bearer tokens.
// CompositeAuthenticator tries several in order. Middleware adapts any
// Authenticator to echo and stores the resulting Identity in the request
// context.
package auth
