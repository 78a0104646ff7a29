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

// Format selects how a tagged optional's value is sized on the wire: a
// fixed width, a variable length prefixed by a compact size, or a class
// instance (itself self-delimiting via its slice sizes).
type Format uint8

const (
	FormatFixed1 Format = iota
	FormatFixed2
	FormatFixed4
	FormatFixed8
	FormatVariable
	FormatFSize
	FormatClass
)

// WriteTag writes a tagged optional's header. A tag below 31 shares one
// byte with the 3-bit format (tag in the high five bits, format in the
// low three); a larger tag writes 0x1F in the high bits, then the tag as
// a compact size. The tag is not written as a uvarint.
func (o *OutputStream) WriteTag(tag uint32, format Format) {
	if tag < 0x1F {
		o.WriteByte(byte(tag<<3) | byte(format))
		return
	}
	o.WriteByte(0xF8 | byte(format))
	o.WriteSize(int(tag))
}

// ReadTag reads a tagged optional's header, returning io.EOF-equivalent
// via ok=false when the stream is exhausted (the normal termination for
// a run of trailing optional members).
func (i *InputStream) ReadTag() (tag uint32, format Format, ok bool, err rpcerr.Error) {
	if i.Remaining() == 0 {
		return 0, 0, false, nil
	}
	b, e := i.ReadByte()
	if e != nil {
		return 0, 0, false, e
	}
	format = Format(b & 0x07)
	t := uint32(b) >> 3
	if t == 0x1F {
		n, e := i.ReadSize()
		if e != nil {
			return 0, 0, false, e
		}
		t = uint32(n)
	}
	return t, format, true, nil
}

// SkipTagged discards a tagged value whose tag the reader does not
// recognize, using format to determine how many bytes it occupies.
func (i *InputStream) SkipTagged(format Format) rpcerr.Error {
	switch format {
	case FormatFixed1:
		return i.Skip(1)
	case FormatFixed2:
		return i.Skip(2)
	case FormatFixed4:
		return i.Skip(4)
	case FormatFixed8:
		return i.Skip(8)
	case FormatVariable, FormatFSize:
		n, err := i.ReadSize()
		if err != nil {
			return err
		}
		return i.Skip(n)
	case FormatClass:
		return skipClass(i)
	default:
		return rpcerr.ProtocolFraming.Errorf("marshal: unknown tag format %d", format)
	}
}
