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

package transport

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// GoroutinePool is a ThreadPool backed by a bounded worker semaphore: at
// most `capacity` readiness callbacks or dispatched work items run
// concurrently, the rest block acquiring a slot. Registration is a pure
// bookkeeping map; polling is driven by Run, which repeatedly probes
// every registered handle's Transceiver-backed readiness by simply
// invoking OnReady and letting the handle's own non-blocking I/O report
// OpNeedRead/OpNeedWrite back via its own retry loop.
type GoroutinePool struct {
	sem *semaphore.Weighted

	mu        sync.Mutex
	interest  map[Handle]Interest
	stop      chan struct{}
	stopOnce  sync.Once
	pollEvery time.Duration
}

// NewGoroutinePool builds a pool allowing up to capacity concurrent
// dispatches, polling registered handles every pollEvery.
func NewGoroutinePool(capacity int64, pollEvery time.Duration) *GoroutinePool {
	if capacity <= 0 {
		capacity = 1
	}
	if pollEvery <= 0 {
		pollEvery = time.Millisecond
	}
	return &GoroutinePool{
		sem:       semaphore.NewWeighted(capacity),
		interest:  make(map[Handle]Interest),
		stop:      make(chan struct{}),
		pollEvery: pollEvery,
	}
}

func (p *GoroutinePool) Register(handle Handle, interest Interest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interest[handle] |= interest
}

func (p *GoroutinePool) Unregister(handle Handle, interest Interest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	remaining := p.interest[handle] &^ interest
	if remaining == InterestNone {
		delete(p.interest, handle)
	} else {
		p.interest[handle] = remaining
	}
}

func (p *GoroutinePool) Update(handle Handle, old, new Interest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if new == InterestNone {
		delete(p.interest, handle)
		return
	}
	p.interest[handle] = new
}

func (p *GoroutinePool) Finish(handle Handle, closeNow bool) bool {
	p.mu.Lock()
	delete(p.interest, handle)
	p.mu.Unlock()
	return closeNow
}

func (p *GoroutinePool) DispatchFromThisThread(work func()) {
	ctx := context.Background()
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return
	}
	go func() {
		defer p.sem.Release(1)
		work()
	}()
}

// Run polls registered handles until Stop is called or ctx is done. Each
// tick, every handle with a non-empty registered interest is invoked via
// a pool slot, same as DispatchFromThisThread; a handle whose readiness
// call has nothing to do is expected to return immediately.
func (p *GoroutinePool) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *GoroutinePool) tick() {
	p.mu.Lock()
	snapshot := make(map[Handle]Interest, len(p.interest))
	for h, in := range p.interest {
		snapshot[h] = in
	}
	p.mu.Unlock()

	for h, in := range snapshot {
		h, in := h, in
		p.DispatchFromThisThread(func() { h.OnReady(in) })
	}
}

// Stop halts Run; Register/Unregister remain safe to call afterward but
// no further ticks will invoke handles.
func (p *GoroutinePool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}
