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

package dispatch

import (
	"sync"

	"github.com/sabouaram/goice/marshal"
)

type registryKey struct {
	name     string
	category string
	facet    string
}

// Registry is a concrete ServantManager: an identity+facet keyed map
// protected by a single RWMutex, usable standalone for a single-adapter
// server or replaced entirely by a caller's own ServantManager.
type Registry struct {
	mu       sync.RWMutex
	servants map[registryKey]Servant
}

func NewRegistry() *Registry {
	return &Registry{servants: make(map[registryKey]Servant)}
}

// Add binds s under identity and facet, replacing any prior binding.
func (r *Registry) Add(identity marshal.Identity, facet string, s Servant) {
	key := registryKey{identity.Name, identity.Category, facet}
	r.mu.Lock()
	r.servants[key] = s
	r.mu.Unlock()
}

// Remove unbinds whatever servant is registered under identity and facet.
func (r *Registry) Remove(identity marshal.Identity, facet string) {
	key := registryKey{identity.Name, identity.Category, facet}
	r.mu.Lock()
	delete(r.servants, key)
	r.mu.Unlock()
}

func (r *Registry) Find(identity marshal.Identity, facet string) (Servant, bool) {
	key := registryKey{identity.Name, identity.Category, facet}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.servants[key]
	return s, ok
}
