package buildtime

import (
	"context"
	"fmt"
	"sync"
)

type Listener func(ctx context.Context, result *BuildResult) error

type Task func(ctx context.Context) error

// Lifecycle runs completion listeners once a compilation finishes. Every
// Then listener runs before any task queued with NextTick, so work scheduled
// by a listener always sees the other listeners' effects.
type Lifecycle struct {
	mu        sync.Mutex
	listeners []Listener
	queue     []Task
}

func (l *Lifecycle) Then(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

func (l *Lifecycle) NextTick(fn Task) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = append(l.queue, fn)
}

// Complete fires every listener in registration order and then drains the
// task queue, including tasks queued while draining. The first error stops
// everything that has not run yet.
func (l *Lifecycle) Complete(ctx context.Context, result *BuildResult) error {
	l.mu.Lock()
	listeners := append([]Listener(nil), l.listeners...)
	l.mu.Unlock()

	for i, fn := range listeners {
		if err := fn(ctx, result); err != nil {
			return fmt.Errorf("error in completion listener %d: %w", i, err)
		}
	}

	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return nil
		}
		task := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx); err != nil {
			return err
		}
	}
}
