package form

import "context"

// Result is the settled outcome of a validation run. Fields is nil when
// Valid is true.
type Result struct {
	Valid  bool
	Fields *ValidationError
}

// Future is the handle of an asynchronous validation run.
type Future struct {
	done   chan struct{}
	result Result
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (fu *Future) resolve(result Result, err error) {
	fu.result = result
	fu.err = err
	close(fu.done)
}

// Done is closed once the run settles.
func (fu *Future) Done() <-chan struct{} {
	return fu.done
}

// Await blocks until the run settles.
func (fu *Future) Await() (Result, error) {
	<-fu.done
	return fu.result, fu.err
}

// AwaitContext blocks until the run settles or ctx is done.
func (fu *Future) AwaitContext(ctx context.Context) (Result, error) {
	select {
	case <-fu.done:
		return fu.result, fu.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
