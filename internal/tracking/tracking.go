// Package tracking generates the human-shareable complaint references
// returned to submitters and accepted by the status lookup endpoint.
package tracking

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefix marks complaint references apart from internal row ids.
const Prefix = "CMP-"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewReference returns a unique, lexicographically sortable reference.
func NewReference() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return Prefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// IsReference reports whether a raw string has the shape of a reference.
// It validates shape only; existence is checked against storage.
func IsReference(raw string) bool {
	if !strings.HasPrefix(raw, Prefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.TrimPrefix(raw, Prefix))
	return err == nil
}
