package sensor

import (
	"errors"
	"sync"
)

// Tx records one transaction seen by FakeBus.
type Tx struct {
	Addr uint16
	W    []byte
	Rn   int
}

// FakeBus is a test double that returns scripted register contents.
type FakeBus struct {
	mu sync.Mutex

	// Replies contains scripted bytes for successive reads.
	// Each call to Tx() consumes the next reply; the last one repeats.
	Replies [][]byte

	// Errors, when non-nil at a call's index, fails that call.
	Errors []error

	// TxError, if set, fails every call.
	TxError error

	// Txs records every transaction attempted.
	Txs []Tx

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeBus creates a FakeBus with the given replies.
func NewFakeBus(replies ...[]byte) *FakeBus {
	return &FakeBus{Replies: replies}
}

// Tx copies the next reply into r.
func (f *FakeBus) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.Txs)
	f.Txs = append(f.Txs, Tx{Addr: addr, W: append([]byte(nil), w...), Rn: len(r)})

	if f.TxError != nil {
		return f.TxError
	}
	if call < len(f.Errors) && f.Errors[call] != nil {
		return f.Errors[call]
	}
	if len(f.Replies) == 0 {
		return errors.New("no replies configured")
	}

	copy(r, f.Replies[f.index])
	if f.index < len(f.Replies)-1 {
		f.index++
	}
	return nil
}

// Close marks the bus as closed.
func (f *FakeBus) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Calls returns the number of transactions attempted.
func (f *FakeBus) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Txs)
}
