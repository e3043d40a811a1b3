package game

import (
	"sync"
	"time"
)

// Clock is the source of time and of scheduled callbacks for a session.
// Tests replace it with a manual clock.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f once after d. The returned func cancels it and
	// reports whether the call was stopped before firing.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
	// Every runs f repeatedly every d until the returned func is called.
	// Stopping from inside f is allowed.
	Every(d time.Duration, f func()) (stop func())
}

// RealClock is the wall clock
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

func (RealClock) Every(d time.Duration, f func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				f()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
