package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Generator is the language-model capability the executor invokes. The
// call blocks until a reply is available and must honor context
// cancellation.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (Message, error)
}

// Request carries one prompt submission.
type Request struct {
	Prompt         string
	SelectedText   string // optional editor selection
	ProjectContext string // optional assembled project context
	Language       string // optional editor language for the system message
}

// Future resolves once with the assistant reply or an error. A cancelled
// request resolves with context.Canceled.
type Future struct {
	once    sync.Once
	done    chan struct{}
	message *Message
	err     error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(message *Message, err error) {
	f.once.Do(func() {
		f.message = message
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed when the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Message, error) {
	select {
	case <-f.done:
		return f.message, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type job struct {
	ctx    context.Context
	cancel context.CancelFunc
	future *Future
}

// Executor owns the conversation window and a single-slot in-flight
// request. Submitting while a request is running cancels the outstanding
// request instead of starting a new one. Generation calls run on one
// dedicated worker goroutine, reused across requests, so at most one
// generation call executes at a time.
type Executor struct {
	window    *Window
	generator Generator
	logger    *slog.Logger

	// mu guards the slot state transition only, never the generation
	// call, so cancelling a long-running call is not blocked by it.
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	current *Future

	jobs      chan job
	closeOnce sync.Once
}

// NewExecutor creates an Executor over window and generator and starts
// its worker goroutine.
func NewExecutor(window *Window, generator Generator, logger *slog.Logger) *Executor {
	e := &Executor{
		window:    window,
		generator: generator,
		logger:    logger,
		jobs:      make(chan job, 1),
	}
	go e.worker()
	return e
}

// Submit starts a new generation request, or — when one is already
// running — cancels it and returns its (now-cancelled) future without
// starting a new request. A second submission acts as a stop button,
// not a queue.
func (e *Executor) Submit(req Request) *Future {
	e.mu.Lock()
	if e.running {
		e.cancel()
		e.running = false
		prior := e.current
		e.mu.Unlock()

		prior.resolve(nil, context.Canceled)
		e.logger.Info("prompt cancelled by new submission")
		return prior
	}

	future := newFuture()
	ctx, cancel := context.WithCancel(context.Background())
	e.running = true
	e.cancel = cancel
	e.current = future
	e.mu.Unlock()

	e.window.EnsureSystemMessage(func() Message {
		return NewSystemMessage(req.Language)
	})
	e.window.Append(NewUserMessage(req.Prompt, req.SelectedText, req.ProjectContext))

	e.jobs <- job{ctx: ctx, cancel: cancel, future: future}
	return future
}

// worker runs generation calls one at a time for the lifetime of the
// executor.
func (e *Executor) worker() {
	for j := range e.jobs {
		var reply Message
		err := j.ctx.Err()
		if err == nil {
			reply, err = e.generator.Generate(j.ctx, e.window.Messages())
		}
		// Snapshot before releasing the context: cancel() makes
		// ctx.Err() non-nil for every outcome.
		cancelled := j.ctx.Err() != nil
		j.cancel()

		e.mu.Lock()
		if e.current == j.future {
			e.running = false
			e.cancel = nil
		}
		e.mu.Unlock()

		switch {
		case cancelled:
			// Cancelled: never append a partial assistant message.
			j.future.resolve(nil, context.Canceled)
		case err != nil:
			e.logger.Error("prompt execution failed", "error", err)
			j.future.resolve(nil, fmt.Errorf("prompt execution failed: %w", err))
		default:
			e.window.Append(reply)
			j.future.resolve(&reply, nil)
		}
	}
}

// IsRunning reports whether a request is currently in flight.
func (e *Executor) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// RemoveMessagePair removes a user/assistant turn pair from the history.
// Used to roll back the user turn after a failed request.
func (e *Executor) RemoveMessagePair(user, assistant Message) {
	e.window.RemovePair(user, assistant)
}

// Clear empties the conversation history.
func (e *Executor) Clear() {
	e.window.Clear()
}

// Close stops the worker goroutine. Outstanding requests are cancelled.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		if e.running && e.cancel != nil {
			e.cancel()
		}
		e.mu.Unlock()
		close(e.jobs)
	})
}
