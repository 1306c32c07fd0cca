package control

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickFlagObserveClears(t *testing.T) {
	f := NewTickFlag()
	assert.False(t, f.Observe())

	f.Set()
	assert.True(t, f.Observe())
	assert.False(t, f.Observe())
	assert.False(t, f.Observe())
}

func TestTickFlagSetNeverBlocks(t *testing.T) {
	f := NewTickFlag()
	for i := 0; i < 100; i++ {
		f.Set()
	}
	assert.True(t, f.Observe())
	assert.False(t, f.Observe())

	select {
	case <-f.Wait():
	default:
		t.Fatal("expected a pending wake after Set")
	}
}

func TestTickFlagConcurrentSetObserve(t *testing.T) {
	f := NewTickFlag()
	const sets = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < sets; i++ {
			f.Set()
		}
	}()

	observed := 0
	for i := 0; i < sets; i++ {
		if f.Observe() {
			observed++
		}
	}
	wg.Wait()
	if f.Observe() {
		observed++
	}

	assert.GreaterOrEqual(t, observed, 1)
	assert.LessOrEqual(t, observed, sets)
}

func TestSetPointConcurrentAdds(t *testing.T) {
	s := NewSetPoint(25)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				s.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 300; j++ {
				s.Add(-1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 25+8*500-8*300, s.Load())
}

func TestSetPointUnbounded(t *testing.T) {
	s := NewSetPoint(0)
	for i := 0; i < 200; i++ {
		s.Add(-1)
	}
	assert.Equal(t, -200, s.Load())
	assert.Equal(t, -199, s.Add(1))
}
