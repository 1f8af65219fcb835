// Package session holds the authentication state of the current user.
//
// # Lifecycle
//
// A Session is created once by the application shell and passed explicitly to whatever
// needs it. Init subscribes to the transport's invalidation event and, when tokens are
// already stored (a previous run logged in), loads the profile. Teardown unsubscribes.
//
// # Authentication State
//
// IsAuthenticated is derived from the credential store on every call; it is never
// cached, so it cannot drift from the stored access token.
//
// Login and Register persist both tokens and then load the profile before returning,
// so a successful Login always returns with the profile either populated or failed
// silently. A profile failure never fails the login.
//
// # Logout
//
// There are two ways a session ends:
//
//   - Logout: the user asked. Profile and tokens are cleared; navigation is left to
//     the guard.
//   - Invalidation: the transport failed to refresh and already cleared the tokens.
//     The Session drops the profile and reports EventSessionInvalidated.
//
// # Events
//
// Every state change is reported through Options.Hook. The default hook logs with slog.
package session
