// ABOUTME: Package app assembles the bookdesk client from configuration
// ABOUTME: Wires credentials, transport, session, guard and every resource store

// Package app builds a ready-to-use client from a [config.Config].
//
// # Assembly
//
// [New] selects the credential backend, wraps it in a sealed store when an
// encryption key is configured, and builds the HTTP client. With Tailscale
// enabled the HTTP client dials through an embedded tsnet node so the API can
// live on a tailnet without being exposed publicly.
//
// The transport, session, navigation guard and all stores share one
// credential store, so a logout or a failed refresh is seen everywhere at
// once.
//
// # Lifecycle
//
//	a, err := app.New(ctx, cfg, logger)
//	if err != nil { ... }
//	defer a.Close()
//	a.Start(ctx, navigator)
//
// Close stops the session subscription and releases the transport, the
// SQLite database and the tsnet node, in that order.
package app
