package idgen

import (
	"fmt"
	"sync"
	"time"
)

// Generator yields identifiers of the form "<prefix>-<unix millis>-<counter>".
// The counter is monotonic per generator, so ids never collide within a process
// even when the clock stalls.
type Generator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
	now     func() time.Time
}

// New constructs a generator. A nil clock uses time.Now; start seeds the counter.
func New(prefix string, start uint64, now func() time.Time) *Generator {
	if prefix == "" {
		prefix = "id"
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{prefix: prefix, counter: start, now: now}
}

// Next returns the next identifier in the sequence.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-%d-%d", g.prefix, g.now().UnixMilli(), g.counter)
	g.counter++
	return id
}
