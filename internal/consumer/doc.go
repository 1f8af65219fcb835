// Package consumer provides the stores an end customer works with.
//
// Profile wraps GET/PATCH /profile/me and the avatar endpoints. Every operation
// returns the updated profile, which replaces the cached one.
package consumer
