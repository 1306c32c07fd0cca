package serial

import (
	"bytes"
	"sync"
)

// FakePort records written bytes for test assertions.
type FakePort struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	writes []string

	// WriteError, if set, will be returned by Write.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePort creates an empty FakePort.
func NewFakePort() *FakePort {
	return &FakePort{}
}

// Write records p.
func (f *FakePort) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return 0, f.WriteError
	}
	f.writes = append(f.writes, string(p))
	return f.buf.Write(p)
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Stream returns everything written so far.
func (f *FakePort) Stream() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}

// Writes returns each Write call's payload.
func (f *FakePort) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}
