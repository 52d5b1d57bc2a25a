package stream

import (
	"sync"
	"testing"
)

func TestCounter(t *testing.T) {
	c := NewCounter()
	if c.Total() != 0 {
		t.Fatalf("fresh counter not zero: %d", c.Total())
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	if c.Total() != 800 {
		t.Fatalf("expected 800, got %d", c.Total())
	}
}
