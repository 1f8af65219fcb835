// Package transport is the authenticated HTTP client every store and the session use
// to talk to the bookdesk API.
//
// # Bearer Tokens
//
// Each request carries "Authorization: Bearer <access token>" when the credential store
// holds an access token, and no Authorization header otherwise. Every request also gets
// an X-Request-ID so API logs can be correlated with client logs.
//
// # Silent Refresh
//
// When a request comes back 401 and has not been retried yet, the client:
//
//  1. marks the request as retried (at most one refresh per original request)
//  2. propagates the 401 if no refresh token is stored
//  3. calls POST /auth/refresh directly, outside this retry path
//  4. on success stores the new access token and replays the request once
//  5. on failure clears both tokens, notifies OnSessionInvalidated subscribers and
//     returns the refresh failure wrapped in ErrSessionExpired
//
// Callers never special-case token expiry: as long as the refresh token is good, a 401
// is invisible to them.
//
// # Concurrency
//
// Concurrent 401s holding the same refresh token share a single refresh call
// (singleflight). A refresh token the server rejected is remembered for a while, so a
// late 401 carrying that token fails fast without a second refresh, clear or
// notification. A request whose access token was already replaced by another refresh
// is replayed with the current token without refreshing again.
//
// # Errors
//
// Non-2xx responses become *APIError with the server's message parsed from
// {"detail": "..."}, {"detail": [{"msg": "..."}]} or {"error": "..."}. Network failures
// are returned wrapped and never as *APIError. Message picks the server text or a
// fallback for display.
//
// # Anonymous Requests
//
// Login and registration are sent with Request.Anonymous set: no bearer header and no
// refresh on 401, so a wrong password never touches leftover tokens.
//
// # Outcomes
//
// Stores and the session never return Go errors to their callers. They return an
// Outcome whose Error is the server's message when it sent one (FastAPI "detail"
// strings or validation lists) and a fixed fallback otherwise.
package transport
