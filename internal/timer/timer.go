// Package timer provides the periodic tick source for the control loop.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrStarted is returned by Start on a source that is already running.
var ErrStarted = errors.New("timer: already started")

// Periodic fires a callback once per Period from its own goroutine.
type Periodic struct {
	Period time.Duration

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// NewPeriodic returns a source with the given period.
func NewPeriodic(period time.Duration) *Periodic {
	return &Periodic{Period: period}
}

// Start begins firing. fire runs on the timer goroutine and must not block.
func (p *Periodic) Start(fire func()) error {
	if p.Period <= 0 {
		return fmt.Errorf("timer: invalid period %v", p.Period)
	}
	if fire == nil {
		return errors.New("timer: nil callback")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrStarted
	}
	p.started = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	ticker := time.NewTicker(p.Period)
	go func() {
		defer close(p.done)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				fire()
			}
		}
	}()
	return nil
}

// Stop halts the source and waits for the goroutine to exit. Stopping a
// source that was never started is a no-op.
func (p *Periodic) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	stop, done := p.stop, p.done
	p.mu.Unlock()

	close(stop)
	<-done
}
