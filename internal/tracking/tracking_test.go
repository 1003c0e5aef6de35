package tracking

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReferenceShape(t *testing.T) {
	ref := NewReference()
	assert.True(t, strings.HasPrefix(ref, Prefix))
	assert.True(t, IsReference(ref))
	// Prefix plus a 26-character ULID.
	assert.Len(t, ref, len(Prefix)+26)
}

func TestNewReferenceUniqueUnderConcurrency(t *testing.T) {
	const n = 200
	refs := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			refs <- NewReference()
		}()
	}
	wg.Wait()
	close(refs)

	seen := map[string]bool{}
	for ref := range refs {
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
	assert.Len(t, seen, n)
}

func TestIsReferenceRejectsMalformedInput(t *testing.T) {
	assert.False(t, IsReference(""))
	assert.False(t, IsReference("CMP-"))
	assert.False(t, IsReference("CMP-not-a-ulid"))
	assert.False(t, IsReference("01ARZ3NDEKTSV4RRFFQ69G5FAV")) // missing prefix
	assert.True(t, IsReference("CMP-01ARZ3NDEKTSV4RRFFQ69G5FAV"))
}
