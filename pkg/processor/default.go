package processor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// defaultCache holds the process-wide processor. The first caller constructs
// it; every other caller, concurrent or later, observes the same value.
type defaultCache struct {
	once sync.Once
	p    atomic.Pointer[Processor]
}

var defaults = &defaultCache{}

// Default returns the process-wide processor, creating it with built-in
// engine defaults on first use. The engine is constructed exactly once.
// Failure to construct it is fatal and panics.
func Default() *Processor {
	return defaults.get()
}

func (c *defaultCache) get() *Processor {
	if p := c.p.Load(); p != nil {
		return p
	}
	c.once.Do(func() {
		p, err := New()
		if err != nil {
			panic(fmt.Sprintf("processor: default engine: %v", err))
		}
		c.p.Store(p)
	})
	return c.p.Load()
}
