package eth

import (
	"context"
	"sync"
)

// Callback is the completion callback of a wallet provider operation.
type Callback[T any] func(err error, result T)

type settled[T any] struct {
	result T
	err    error
}

// Await turns a callback based operation into a blocking call. The first invocation of the callback
// settles the call; later invocations are ignored. Await returns ctx.Err() if ctx is done first.
func Await[T any](ctx context.Context, fn func(cb Callback[T])) (T, error) {
	ch := make(chan settled[T], 1)
	once := &sync.Once{}

	fn(func(err error, result T) {
		once.Do(func() {
			ch <- settled[T]{result: result, err: err}
		})
	})

	select {
	case s := <-ch:
		return s.result, s.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
