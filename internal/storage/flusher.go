package storage

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
)

var ErrFlusherClosed = errors.New("storage: flusher closed")

// Flusher writes snapshots to a Store on a background goroutine. Enqueue
// never blocks on I/O; a newer snapshot for a key replaces an unwritten one
// and moves to the back of the batch.
type Flusher struct {
	store  Store
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	waiters []chan error
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func NewFlusher(store Store, logger *slog.Logger) *Flusher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Flusher{
		store:   store,
		logger:  logger,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

// Enqueue schedules data to be written under key. data must not be
// modified afterwards. Returns false once the flusher is closed.
func (f *Flusher) Enqueue(key string, data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	if _, ok := f.pending[key]; ok {
		f.order = slices.DeleteFunc(f.order, func(k string) bool { return k == key })
	}
	f.order = append(f.order, key)
	f.pending[key] = data
	f.signalLocked()
	return true
}

// Flush blocks until everything enqueued so far has been written and
// returns the write error, if any.
func (f *Flusher) Flush(ctx context.Context) error {
	ch := make(chan error, 1)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFlusherClosed
	}
	f.waiters = append(f.waiters, ch)
	f.signalLocked()
	f.mu.Unlock()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Flusher) signalLocked() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *Flusher) take() ([]Entry, []chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := make([]Entry, 0, len(f.order))
	for _, k := range f.order {
		entries = append(entries, Entry{Key: k, Data: f.pending[k]})
	}
	waiters := f.waiters
	f.pending = make(map[string][]byte)
	f.order = nil
	f.waiters = nil
	return entries, waiters
}

func (f *Flusher) run() {
	defer close(f.done)
	for range f.wake {
		f.flush()
	}
	f.flush()
}

func (f *Flusher) flush() {
	entries, waiters := f.take()
	var err error
	if len(entries) > 0 {
		err = f.store.SaveAll(context.Background(), entries)
		if err != nil {
			f.logger.Error("background save failed", "keys", len(entries), "err", err)
		} else {
			f.logger.Debug("background save", "keys", len(entries))
		}
	}
	for _, w := range waiters {
		w <- err
	}
}

// Close stops accepting work and waits for queued snapshots to land.
func (f *Flusher) Close(ctx context.Context) error {
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.wake)
	}
	f.mu.Unlock()

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
