// Package credstore holds the access and refresh tokens of the current session.
//
// # Contract
//
// A Store is a plain key-value accessor: Get, Set and Clear for the two token kinds. It
// never validates token contents and never returns errors. Backends that can fail (disk,
// database) log the failure and behave as if the token were absent, so a broken store
// degrades into "logged out" instead of crashing the caller.
//
// # Backends
//
//   - Memory: process-local, for tests and one-shot commands
//   - File: YAML document under $XDG_CONFIG_HOME/bookdesk, mode 0600
//   - SQLite: durable table in a local database (modernc.org/sqlite, no cgo)
//
// Any backend can be wrapped with Sealed to encrypt values at rest:
//
//	key, _ := credstore.ParseKey(os.Getenv("BOOKDESK_CREDENTIALS_KEY"))
//	store := credstore.NewSealed(fileStore, key, logger)
//
// # Keys
//
// Tokens are stored under "<namespace>.accessToken" and "<namespace>.refreshToken" so
// several deployments can share one database or file.
package credstore
