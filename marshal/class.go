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

// sliceLastFlag marks the most-derived-to-base slice chain's final
// (most-base) slice, so a reader stops without needing to know every
// type in the inheritance chain.
const sliceLastFlag = 1 << 0

// Slice is one level of a class instance's most-derived-to-base
// encoding. A reader that does not recognize TypeID can still skip
// Body and move to the next slice, which is what makes the format
// forward-compatible with derived types the reader was not compiled
// against.
type Slice struct {
	TypeID string
	Body   []byte
}

// EncodeClass writes slices most-derived-first, flagging the last one
// so a reader without Last knowledge can still find the end.
func EncodeClass(o *OutputStream, slices []Slice) {
	for n, s := range slices {
		flags := byte(0)
		if n == len(slices)-1 {
			flags |= sliceLastFlag
		}
		o.WriteByte(flags)
		o.WriteString(s.TypeID)
		o.WriteSize(len(s.Body))
		o.buf = append(o.buf, s.Body...)
	}
}

// DecodeClass reads a full most-derived-to-base slice chain.
func DecodeClass(i *InputStream) ([]Slice, rpcerr.Error) {
	var out []Slice
	for {
		flags, err := i.ReadByte()
		if err != nil {
			return nil, err
		}
		typeID, err := i.ReadString()
		if err != nil {
			return nil, err
		}
		body, err := i.ReadRawBytes()
		if err != nil {
			return nil, err
		}
		out = append(out, Slice{TypeID: typeID, Body: body})
		if flags&sliceLastFlag != 0 {
			return out, nil
		}
	}
}

// skipClass discards a class value without building its slice list.
func skipClass(i *InputStream) rpcerr.Error {
	_, err := DecodeClass(i)
	return err
}

// Unmarshaler decodes its own slice Body; registered per type id so
// DecodeClass's generic slices can be turned back into a concrete type.
type Unmarshaler interface {
	UnmarshalSlice(body []byte) rpcerr.Error
}

// MostDerived returns the first slice in a chain produced by DecodeClass,
// or ("", nil, false) for an empty chain.
func MostDerived(slices []Slice) (typeID string, body []byte, ok bool) {
	if len(slices) == 0 {
		return "", nil, false
	}
	return slices[0].TypeID, slices[0].Body, true
}
