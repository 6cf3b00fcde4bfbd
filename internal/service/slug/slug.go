// Package slug generates short, collision-resistant identifiers for
// randomly assigned links.
package slug

import (
	"encoding/base64"
	"sync/atomic"
	"time"
)

// counterLimit bounds the rolling counter: values stay in [0, 65535) and
// wrap back to zero.
const counterLimit = 65535

// Generator produces roughly time-ordered slugs from the current
// epoch-millisecond timestamp and a rolling counter. The counter is the
// only source of uniqueness within a single millisecond, so two concurrent
// calls must never observe the same value; the increment is a CAS loop
// rather than a plain variable.
type Generator struct {
	counter atomic.Uint32

	now func() time.Time
}

// NewGenerator creates a Generator starting at counter zero.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Next returns a new slug: 7 timestamp bytes (bits 55..0, most significant
// first — millisecond timestamps will not need bits above 55 for decades)
// followed by the counter's high and low bytes, base64url encoded without
// padding.
func (g *Generator) Next() string {
	ts := uint64(g.now().UnixMilli())
	n := g.next()

	buf := [9]byte{
		byte(ts >> 48),
		byte(ts >> 40),
		byte(ts >> 32),
		byte(ts >> 24),
		byte(ts >> 16),
		byte(ts >> 8),
		byte(ts),
		byte(n >> 8),
		byte(n),
	}

	return base64.RawURLEncoding.EncodeToString(buf[:])
}

func (g *Generator) next() uint16 {
	for {
		cur := g.counter.Load()
		next := cur + 1
		if next == counterLimit {
			next = 0
		}
		if g.counter.CompareAndSwap(cur, next) {
			return uint16(cur)
		}
	}
}
