package worker

import (
	"sync"
	"testing"
)

func TestCompletedCount(t *testing.T) {
	// The task loop and the heart beat ticker touch the counter from
	// different goroutines, so the accessors have to hold up under
	// concurrent increments
	w := &Worker{}

	var wait sync.WaitGroup
	for i := 0; i < 8; i++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			for j := 0; j < 100; j++ {
				w.incrementCompleted()
			}
		}()
	}
	wait.Wait()

	if got := w.completedCount(); got != 800 {
		t.Errorf("completedCount() = %d, want 800", got)
	}
}
