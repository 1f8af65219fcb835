// Package dedupe provides a small TTL set used to remember keys that were already
// handled, such as refresh tokens the server has rejected.
package dedupe
