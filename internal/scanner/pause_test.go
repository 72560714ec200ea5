package scanner

import (
	"sync"
	"testing"
	"time"
)

func TestPauser_ToggleBlocksAndReleases(t *testing.T) {
	p := NewPauser()

	if p.IsPaused() {
		t.Fatal("new pauser should be running")
	}

	if !p.Toggle() {
		t.Fatal("first toggle should pause")
	}

	var wg sync.WaitGroup
	passed := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Wait()
		close(passed)
	}()

	select {
	case <-passed:
		t.Fatal("Wait returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	if p.Toggle() {
		t.Fatal("second toggle should resume")
	}

	select {
	case <-passed:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after resume")
	}
	wg.Wait()
}

func TestPauser_WaitIsNoopWhenRunning(t *testing.T) {
	p := NewPauser()
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked while running")
	}
}
