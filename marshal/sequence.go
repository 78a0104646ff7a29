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

// WriteSequence writes a compact size followed by each element encoded
// by write, in order.
func WriteSequence[T any](o *OutputStream, elems []T, write func(*OutputStream, T)) {
	o.WriteSize(len(elems))
	for _, e := range elems {
		write(o, e)
	}
}

// ReadSequence reads a compact size and decodes that many elements with
// read, stopping at the first error.
func ReadSequence[T any](i *InputStream, read func(*InputStream) (T, rpcerr.Error)) ([]T, rpcerr.Error) {
	n, err := i.ReadSize()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for k := 0; k < n; k++ {
		v, err := read(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
