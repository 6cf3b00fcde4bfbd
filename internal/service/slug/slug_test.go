package slug

import (
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestGenerator_Next(t *testing.T) {
	g := NewGenerator()
	g.now = fixedClock(0x0123456789AB)

	slug := g.Next()

	raw, err := base64.RawURLEncoding.DecodeString(slug)
	require.NoError(t, err)
	require.Len(t, raw, 9)

	// Timestamp occupies the first seven bytes, most significant first.
	assert.Equal(t, []byte{0x00, 0x01, 0x23, 0x45, 0x67, 0x89, 0xAB}, raw[:7])
	// First counter value is zero.
	assert.Equal(t, []byte{0x00, 0x00}, raw[7:])
}

func TestGenerator_CounterAdvances(t *testing.T) {
	g := NewGenerator()
	g.now = fixedClock(1_000)

	a := g.Next()
	b := g.Next()
	assert.NotEqual(t, a, b)

	raw, err := base64.RawURLEncoding.DecodeString(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01}, raw[7:])
}

func TestGenerator_CounterWraps(t *testing.T) {
	g := NewGenerator()
	g.now = fixedClock(1_000)
	g.counter.Store(counterLimit - 1)

	last := g.Next()
	raw, err := base64.RawURLEncoding.DecodeString(last)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFE}, raw[7:])

	// 65535 is never emitted; the counter wraps to zero.
	wrapped := g.Next()
	raw, err = base64.RawURLEncoding.DecodeString(wrapped)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00}, raw[7:])
}

func TestGenerator_ConcurrentUniqueness(t *testing.T) {
	g := NewGenerator()
	g.now = fixedClock(1_000)

	const workers = 8
	const perWorker = 100

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				slug := g.Next()
				mu.Lock()
				seen[slug] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// With a frozen clock every slug differs only by counter; any CAS race
	// would show up as a duplicate.
	assert.Len(t, seen, workers*perWorker)
}
