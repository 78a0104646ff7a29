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

import (
	"github.com/sabouaram/goice/protocol"
	"github.com/sabouaram/goice/rpcerr"
)

// Identity names a servant: a primary name plus an optional category
// used to namespace related servants (e.g. all objects of one facility).
type Identity struct {
	Name     string
	Category string
}

// RequestHeader is the fixed prefix of every request encapsulation: the
// target identity, the facet selecting a secondary servant under that
// identity, the operation to invoke, its declared mode, and a string
// context propagated to the dispatched operation.
type RequestHeader struct {
	Identity  Identity
	Facet     string
	Operation string
	Mode      protocol.OperationMode
	Context   map[string]string
}

func EncodeRequestHeader(o *OutputStream, h RequestHeader) {
	o.WriteString(h.Identity.Name)
	o.WriteString(h.Identity.Category)
	o.WriteString(h.Facet)
	o.WriteString(h.Operation)
	o.WriteByte(byte(h.Mode))
	WriteDict(o, h.Context,
		func(o *OutputStream, k string) { o.WriteString(k) },
		func(o *OutputStream, v string) { o.WriteString(v) })
}

func DecodeRequestHeader(i *InputStream) (RequestHeader, rpcerr.Error) {
	var h RequestHeader
	var err rpcerr.Error

	if h.Identity.Name, err = i.ReadString(); err != nil {
		return h, err
	}
	if h.Identity.Category, err = i.ReadString(); err != nil {
		return h, err
	}
	if h.Facet, err = i.ReadString(); err != nil {
		return h, err
	}
	if h.Operation, err = i.ReadString(); err != nil {
		return h, err
	}

	mode, err := i.ReadByte()
	if err != nil {
		return h, err
	}
	h.Mode = protocol.OperationMode(mode)

	h.Context, err = ReadDict(i,
		func(i *InputStream) (string, rpcerr.Error) { return i.ReadString() },
		func(i *InputStream) (string, rpcerr.Error) { return i.ReadString() })
	if err != nil {
		return h, err
	}

	return h, nil
}
