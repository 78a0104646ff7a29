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

package marshal

import "github.com/sabouaram/goice/rpcerr"

// WriteDict writes a compact size followed by each key/value pair, key
// first, in map iteration order (callers needing a deterministic order
// must sort keys themselves before building the map).
func WriteDict[K comparable, V any](o *OutputStream, m map[K]V, writeKey func(*OutputStream, K), writeVal func(*OutputStream, V)) {
	o.WriteSize(len(m))
	for k, v := range m {
		writeKey(o, k)
		writeVal(o, v)
	}
}

// ReadDict reads a compact size and decodes that many key/value pairs.
func ReadDict[K comparable, V any](i *InputStream, readKey func(*InputStream) (K, rpcerr.Error), readVal func(*InputStream) (V, rpcerr.Error)) (map[K]V, rpcerr.Error) {
	n, err := i.ReadSize()
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, n)
	for k := 0; k < n; k++ {
		key, err := readKey(i)
		if err != nil {
			return nil, err
		}
		val, err := readVal(i)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}
