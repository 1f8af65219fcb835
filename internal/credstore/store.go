// ABOUTME: Credential store interface and token kinds
// ABOUTME: Defines the namespaced key layout shared by every backend

package credstore

import "fmt"

// Kind selects which token a Store operation addresses.
type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
)

// DefaultNamespace prefixes storage keys when no namespace is configured.
const DefaultNamespace = "bookdesk"

// Kinds lists every token kind in a stable order.
var Kinds = []Kind{Access, Refresh}

// Store holds session tokens. Implementations must be safe for concurrent use.
type Store interface {
	Get(kind Kind) (token string, ok bool)
	Set(kind Kind, token string)
	Clear(kind Kind)
}

// Key returns the storage key for kind under namespace.
func (k Kind) Key(namespace string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	switch k {
	case Access:
		return namespace + ".accessToken"
	case Refresh:
		return namespace + ".refreshToken"
	default:
		return fmt.Sprintf("%s.%s", namespace, string(k))
	}
}

// ClearAll removes both tokens.
func ClearAll(s Store) {
	for _, k := range Kinds {
		s.Clear(k)
	}
}
