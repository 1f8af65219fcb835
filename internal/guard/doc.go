// Package guard decides whether a navigation may proceed.
//
// Every transition is checked against live session state:
//
//	target requires auth, not authenticated  -> redirect to Login
//	target is Login, authenticated           -> redirect to Home
//	anything else                            -> proceed
//
// The guard never caches authentication status, so a login that happened after
// startup is honored on the very next navigation.
package guard
