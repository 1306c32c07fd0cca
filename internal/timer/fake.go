package timer

import (
	"errors"
	"sync"
)

// Fake is a tick source driven by the test.
type Fake struct {
	mu   sync.Mutex
	fire func()

	// StartError, if set, will be returned by Start.
	StartError error
}

// NewFake creates an unstarted Fake.
func NewFake() *Fake {
	return &Fake{}
}

// Start records the callback.
func (f *Fake) Start(fire func()) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fire != nil {
		return ErrStarted
	}
	f.fire = fire
	return nil
}

// Fire invokes the callback n times.
func (f *Fake) Fire(n int) error {
	f.mu.Lock()
	fire := f.fire
	f.mu.Unlock()
	if fire == nil {
		return errors.New("timer: not started")
	}
	for i := 0; i < n; i++ {
		fire()
	}
	return nil
}

// Started reports whether Start succeeded.
func (f *Fake) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fire != nil
}
