package store

import (
	"fmt"
	"sort"
	"strings"
)

// KeyPrefix is the namespace of every Redis key written by this package.
const KeyPrefix = "booking"

// CollectionKey identifies a collection in Redis.
type CollectionKey struct {
	// Collection is the collection name (e.g. "offers")
	Collection string

	// Scope narrows the collection (e.g. {"account": "A-1"} for per-user data)
	Scope map[string]string
}

// String generates a deterministic key.
// Format: booking:collection:scope1=val1:scope2=val2
//
// Example:
//
//	booking:reservations:account=A-1
func (k CollectionKey) String() string {
	parts := []string{KeyPrefix}

	if c := strings.Trim(k.Collection, ":"); c != "" {
		parts = append(parts, c)
	}

	if len(k.Scope) > 0 {
		keys := make([]string, 0, len(k.Scope))
		for key := range k.Scope {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Scope[key]))
		}
	}

	return strings.Join(parts, ":")
}

// orderKey holds the insertion order of IDs for the collection.
func (k CollectionKey) orderKey() string {
	return k.String() + ":order"
}
