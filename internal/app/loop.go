package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrLoopStopped is returned when posting to a loop that has exited
var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs tasks one at a time on a single goroutine. Every mutation of
// the viewers, the registry and the controllers happens inside a task, so
// none of them needs locking. Work that blocks runs on its own goroutine
// and posts its result back.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	logger *slog.Logger
}

// NewLoop creates a loop; it does nothing until Run is called
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		tasks:  make(chan func(), 64),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run executes tasks until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-l.tasks:
			l.run(task)
		}
	}
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event loop task panicked", "panic", r)
		}
	}()
	task()
}

// Post queues fn for execution. It returns false when the loop has exited.
func (l *Loop) Post(fn func()) bool {
	// a stopped loop never accepts a task, even with buffer space left
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for its result. It must not be called
// from inside a task.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	ok := l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("task panicked: %v", r)
			}
		}()
		result <- fn()
	})
	if !ok {
		return ErrLoopStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrLoopStopped
		}
	}
}
