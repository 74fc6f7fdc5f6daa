package resilience

import (
	"fmt"
	"sync"
)

// Group deduplicates concurrent calls for the same key. Callers arriving
// while a call is in flight block and receive the same result.
type Group[V any] struct {
	mu    sync.Mutex
	calls map[string]*call[V]
}

type call[V any] struct {
	wg    sync.WaitGroup
	val   V
	err   error
	dups  int
	panic any
}

// Do runs fn once per key at a time. shared reports whether the result was
// handed to more than one caller.
func (g *Group[V]) Do(key string, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[V])
	}

	if c, ok := g.calls[key]; ok {
		c.dups++
		g.mu.Unlock()
		c.wg.Wait()
		if c.panic != nil {
			panic(c.panic)
		}
		return c.val, c.err, true
	}

	c := &call[V]{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	g.run(key, c, fn)
	if c.panic != nil {
		panic(c.panic)
	}

	g.mu.Lock()
	shared = c.dups > 0
	g.mu.Unlock()

	return c.val, c.err, shared
}

func (g *Group[V]) run(key string, c *call[V], fn func() (V, error)) {
	defer func() {
		if r := recover(); r != nil {
			c.panic = fmt.Errorf("singleflight %q: %v", key, r)
		}
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
		c.wg.Done()
	}()

	c.val, c.err = fn()
}
