// ABOUTME: Outcome is the result shape every store and session action returns
// ABOUTME: Errors are converted to display messages at the boundary and never escape

package transport

// Outcome is the result of a store or session action. Error is set only when Success
// is false.
type Outcome[T any] struct {
	Success bool
	Error   string
	Data    T
}

// Succeed returns a successful Outcome carrying data.
func Succeed[T any](data T) Outcome[T] {
	return Outcome[T]{Success: true, Data: data}
}

// Fail returns a failed Outcome whose message prefers the server's over fallback.
func Fail[T any](err error, fallback string) Outcome[T] {
	return Outcome[T]{Error: Message(err, fallback)}
}

// Failf returns a failed Outcome with a fixed message.
func Failf[T any](msg string) Outcome[T] {
	return Outcome[T]{Error: msg}
}
