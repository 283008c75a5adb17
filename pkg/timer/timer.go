package timer

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the wall clock.
var System Clock = systemClock{}

// Ticker runs a function every step on its own goroutine until stopped.
type Ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Every starts calling fn every step. Calls never overlap.
func Every(step time.Duration, fn func()) *Ticker {
	t := &Ticker{
		ticker: time.NewTicker(step),
		done:   make(chan struct{}),
	}

	t.wg.Add(1)
	go t.run(fn)

	return t
}

func (t *Ticker) run(fn func()) {
	defer t.wg.Done()

	for {
		select {
		case <-t.ticker.C:
			fn()
		case <-t.done:
			t.ticker.Stop()
			return
		}
	}
}

// Stop halts the ticker and waits for a running call to return. Safe to call twice.
func (t *Ticker) Stop() {
	t.once.Do(func() { close(t.done) })
	t.wg.Wait()
}
