package scheduler

import (
	"testing"
	"time"
)

func TestTimer_Schedule(t *testing.T) {
	fired := make(chan struct{})

	NewTimer().Schedule(time.Now().Add(10*time.Millisecond), func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}
}

func TestTimer_SchedulePastInstantFiresImmediately(t *testing.T) {
	fired := make(chan struct{})

	NewTimer().Schedule(time.Now().Add(-time.Minute), func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}
}
