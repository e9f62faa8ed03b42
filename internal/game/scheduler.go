package game

import (
	"context"
	"sync"
	"time"
)

// Scheduler counts a fishing session down one second per Tick and fires
// every interval seconds. It owns no timer; whoever drives it supplies the
// ticks.
type Scheduler struct {
	mu        sync.Mutex
	interval  int
	remaining int
	running   bool
	fire      func()
}

func NewScheduler(intervalSeconds int, fire func()) *Scheduler {
	if intervalSeconds <= 0 {
		intervalSeconds = 1
	}
	return &Scheduler{interval: intervalSeconds, fire: fire}
}

// Start arms a countdown of sessionSeconds, replacing any running one.
func (s *Scheduler) Start(sessionSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionSeconds <= 0 {
		s.remaining = 0
		s.running = false
		return
	}
	s.remaining = sessionSeconds
	s.running = true
}

// Tick advances the countdown by one second and reports whether it fired.
// The callback runs outside the lock, so it may call Stop.
func (s *Scheduler) Tick() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.running = false
		s.mu.Unlock()
		return false
	}
	due := s.remaining%s.interval == 0
	fire := s.fire
	s.mu.Unlock()

	if due && fire != nil {
		fire()
	}
	return due
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Subtract takes time spent away from the countdown. Reaching zero ends
// the session without firing.
func (s *Scheduler) Subtract(seconds int) {
	if seconds <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining -= seconds
	if s.remaining <= 0 {
		s.remaining = 0
		s.running = false
	}
}

// Drive ticks the scheduler once per value received on ticks until the
// countdown ends, ticks is closed or ctx is done. It runs on the caller's
// goroutine and stops the scheduler before returning.
func (s *Scheduler) Drive(ctx context.Context, ticks <-chan time.Time) error {
	defer s.Stop()
	for s.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			s.Tick()
		}
	}
	return nil
}
