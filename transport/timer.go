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
)

// WheelTimer is the concrete Timer every production connection uses: a
// thin registry of *time.Timer values keyed by TaskID, so Cancel can
// stop a specific scheduled callback without tearing down the others.
type WheelTimer struct {
	mu     sync.Mutex
	next   TaskID
	active map[TaskID]*time.Timer
}

func NewWheelTimer() *WheelTimer {
	return &WheelTimer{active: make(map[TaskID]*time.Timer)}
}

// Schedule runs task after delay, unless ctx is done first or Cancel is
// called with the returned TaskID before it fires.
func (w *WheelTimer) Schedule(ctx context.Context, delay time.Duration, task func()) TaskID {
	w.mu.Lock()
	w.next++
	id := w.next
	w.mu.Unlock()

	t := time.AfterFunc(delay, func() {
		w.mu.Lock()
		delete(w.active, id)
		w.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		default:
			task()
		}
	})

	w.mu.Lock()
	w.active[id] = t
	w.mu.Unlock()

	return id
}

func (w *WheelTimer) Cancel(id TaskID) {
	w.mu.Lock()
	t, ok := w.active[id]
	delete(w.active, id)
	w.mu.Unlock()

	if ok {
		t.Stop()
	}
}
