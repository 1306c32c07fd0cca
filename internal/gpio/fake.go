package gpio

import (
	"errors"
	"sync"
)

// FakeOutput is a test double that records driven levels.
type FakeOutput struct {
	mu     sync.Mutex
	levels []bool

	// SetError, if set, will be returned by Set().
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeOutput creates a FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the level.
func (f *FakeOutput) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.levels = append(f.levels, on)
	return nil
}

// Levels returns every level driven so far.
func (f *FakeOutput) Levels() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.levels...)
}

// Level returns the last driven level, false if none.
func (f *FakeOutput) Level() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.levels) == 0 {
		return false
	}
	return f.levels[len(f.levels)-1]
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// FakeButtons is a test double whose presses are triggered by the test.
type FakeButtons struct {
	mu       sync.Mutex
	increase func()
	decrease func()

	// WatchError, if set, will be returned by Watch().
	WatchError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeButtons creates a FakeButtons.
func NewFakeButtons() *FakeButtons {
	return &FakeButtons{}
}

// Watch records the handlers.
func (f *FakeButtons) Watch(increase, decrease func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WatchError != nil {
		return f.WatchError
	}
	f.increase, f.decrease = increase, decrease
	return nil
}

// PressIncrease simulates n falling edges on the increase input.
func (f *FakeButtons) PressIncrease(n int) error {
	return f.press(func(b *FakeButtons) func() { return b.increase }, n)
}

// PressDecrease simulates n falling edges on the decrease input.
func (f *FakeButtons) PressDecrease(n int) error {
	return f.press(func(b *FakeButtons) func() { return b.decrease }, n)
}

func (f *FakeButtons) press(pick func(*FakeButtons) func(), n int) error {
	f.mu.Lock()
	handler := pick(f)
	f.mu.Unlock()
	if handler == nil {
		return errors.New("buttons not watched")
	}
	for i := 0; i < n; i++ {
		handler()
	}
	return nil
}

// Close marks the buttons as closed.
func (f *FakeButtons) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
