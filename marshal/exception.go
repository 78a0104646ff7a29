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

// UserException is a single-slice user-exception value: a type id plus
// its member encoding. Unlike a class, an exception chain has no
// inheritance-skip requirement on the wire, but the same type id +
// size-prefixed body shape is kept so an unrecognized exception id can
// still be reported as an UnknownUserException without losing framing.
type UserException struct {
	TypeID string
	Body   []byte
}

func EncodeUserException(o *OutputStream, e UserException) {
	o.WriteString(e.TypeID)
	o.WriteSize(len(e.Body))
	o.buf = append(o.buf, e.Body...)
}

func DecodeUserException(i *InputStream) (UserException, rpcerr.Error) {
	typeID, err := i.ReadString()
	if err != nil {
		return UserException{}, err
	}
	body, err := i.ReadRawBytes()
	if err != nil {
		return UserException{}, err
	}
	return UserException{TypeID: typeID, Body: body}, nil
}
