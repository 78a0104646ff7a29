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

package connection

import (
	"github.com/sabouaram/goice/atomic"
	"github.com/sabouaram/goice/rpcerr"
)

// PendingRequest is a handle an Invoker registers in RequestTable while
// waiting for a two-way reply. Resolve and Fail are mutually exclusive
// and each may be called at most once; callers detect a duplicate
// resolution themselves (RequestTable only handles lookup and removal).
type PendingRequest struct {
	RequestID uint32
	Resolve   func(status uint8, encaps []byte)
	Fail      func(err rpcerr.Error)
}

// RequestTable maps request id to PendingRequest, with a hint pointing
// at the most recently inserted id: replies usually arrive close to
// send order, so the hint turns the common case into an O(1) lookup
// before falling back to the map.
type RequestTable struct {
	entries atomic.MapTyped[uint32, *PendingRequest]
	hint    uint32
	next    uint32
}

func NewRequestTable() *RequestTable {
	return &RequestTable{entries: atomic.NewMapTyped[uint32, *PendingRequest]()}
}

// NextID returns the next request id, monotone increasing and wrapping
// to 1 on overflow; 0 is reserved for one-way requests.
func (t *RequestTable) NextID() uint32 {
	t.next++
	if t.next == 0 {
		t.next = 1
	}
	return t.next
}

func (t *RequestTable) Insert(p *PendingRequest) {
	t.entries.Store(p.RequestID, p)
	t.hint = p.RequestID
}

// Take removes and returns the pending request for id, consulting the
// hint first.
func (t *RequestTable) Take(id uint32) (*PendingRequest, bool) {
	if id == t.hint {
		if p, ok := t.entries.LoadAndDelete(id); ok {
			return p, true
		}
	}
	return t.entries.LoadAndDelete(id)
}

func (t *RequestTable) Cancel(id uint32, err rpcerr.Error) bool {
	p, ok := t.Take(id)
	if !ok {
		return false
	}
	p.Fail(err)
	return true
}

// FailAll resolves every outstanding entry with err, used when the
// connection transitions to Closed.
func (t *RequestTable) FailAll(err rpcerr.Error) {
	var ids []uint32
	t.entries.Range(func(id uint32, _ *PendingRequest) bool {
		ids = append(ids, id)
		return true
	})
	for _, id := range ids {
		if p, ok := t.entries.LoadAndDelete(id); ok {
			p.Fail(err)
		}
	}
}

// Len reports the number of outstanding entries, used by
// close(GracefullyWithWait) to detect drain completion.
func (t *RequestTable) Len() int {
	n := 0
	t.entries.Range(func(uint32, *PendingRequest) bool {
		n++
		return true
	})
	return n
}
