/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package invoke implements the client-side invocation path: Invoker
// submits two-way, one-way, and batched requests to a ConnectionCore and
// delivers their outcome through a small channel-backed Future, rather
// than a callback chain.
package invoke

import (
	"context"
	"sync"

	"github.com/sabouaram/goice/rpcerr"
)

// Future is resolved exactly once, either by Resolve or by Fail. Wait
// blocks until one of those happens or ctx is done, whichever comes
// first.
type Future[T any] struct {
	done chan struct{}
	once sync.Once

	mu  sync.Mutex
	val T
	err rpcerr.Error
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve completes the future successfully. Only the first call (of
// either Resolve or Fail) has any effect.
func (f *Future[T]) Resolve(v T) {
	f.once.Do(func() {
		f.mu.Lock()
		f.val = v
		f.mu.Unlock()
		close(f.done)
	})
}

// Fail completes the future with err. Only the first call (of either
// Resolve or Fail) has any effect.
func (f *Future[T]) Fail(err rpcerr.Error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
		close(f.done)
	})
}

// Done returns a channel closed once the future is resolved or failed.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the future settles or ctx is canceled, whichever
// comes first. A context cancellation does not itself resolve the
// future; a caller that wants cancellation to also fail the pending
// invocation must separately call Invoker.Cancel.
func (f *Future[T]) Wait(ctx context.Context) (T, rpcerr.Error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, rpcerr.Canceled.Errorf("invocation wait canceled: %v", ctx.Err())
	}
}
