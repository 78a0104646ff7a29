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

// Package marshal encodes and decodes the typed parameter values carried
// inside a protocol encapsulation: fixed-size scalars, compact-size
// strings, tagged optionals, sequences, dictionaries, structs, enums,
// user exceptions and sliced class instances. Every integer and float
// is little-endian on the wire regardless of host endianness.
package marshal

import (
	"math"

	"github.com/sabouaram/goice/rpcerr"
)

// OutputStream accumulates an encapsulation body.
type OutputStream struct {
	buf []byte
}

// NewOutputStream returns an empty stream, optionally pre-sized.
func NewOutputStream(sizeHint int) *OutputStream {
	return &OutputStream{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated body.
func (o *OutputStream) Bytes() []byte { return o.buf }

// Len reports the number of bytes written so far.
func (o *OutputStream) Len() int { return len(o.buf) }

func (o *OutputStream) WriteByte(b byte) { o.buf = append(o.buf, b) }

func (o *OutputStream) WriteBool(v bool) {
	if v {
		o.WriteByte(1)
	} else {
		o.WriteByte(0)
	}
}

func (o *OutputStream) WriteInt16(v int16) {
	o.buf = append(o.buf, byte(v), byte(v>>8))
}

func (o *OutputStream) WriteInt32(v int32) {
	o.buf = append(o.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (o *OutputStream) WriteInt64(v int64) {
	o.buf = append(o.buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func (o *OutputStream) WriteFloat32(v float32) {
	o.WriteInt32(int32(math.Float32bits(v)))
}

func (o *OutputStream) WriteFloat64(v float64) {
	o.WriteInt64(int64(math.Float64bits(v)))
}

// WriteSize writes a compact size: one byte if < 255, else 0xFF followed
// by a 4-byte little-endian length.
func (o *OutputStream) WriteSize(n int) {
	if n < 255 {
		o.WriteByte(byte(n))
		return
	}
	o.WriteByte(0xFF)
	o.WriteInt32(int32(n))
}

// WriteString writes a compact-size-prefixed UTF-8 string.
func (o *OutputStream) WriteString(s string) {
	o.WriteSize(len(s))
	o.buf = append(o.buf, s...)
}

// WriteRawBytes writes a compact-size-prefixed opaque byte sequence.
func (o *OutputStream) WriteRawBytes(b []byte) {
	o.WriteSize(len(b))
	o.buf = append(o.buf, b...)
}

// InputStream consumes an encapsulation body.
type InputStream struct {
	buf []byte
	pos int
}

// NewInputStream wraps b for sequential decoding.
func NewInputStream(b []byte) *InputStream {
	return &InputStream{buf: b}
}

// Remaining reports how many bytes are left to read.
func (i *InputStream) Remaining() int { return len(i.buf) - i.pos }

// Rest returns the unread tail of the stream without consuming it,
// letting a caller hand off the remaining bytes (e.g. an operation's
// in-parameters following a decoded fixed-shape prefix) to a separate
// decoder.
func (i *InputStream) Rest() []byte { return i.buf[i.pos:] }

func (i *InputStream) need(n int) rpcerr.Error {
	if i.Remaining() < n {
		return rpcerr.ProtocolFraming.Errorf("marshal: need %d bytes, have %d", n, i.Remaining())
	}
	return nil
}

func (i *InputStream) ReadByte() (byte, rpcerr.Error) {
	if err := i.need(1); err != nil {
		return 0, err
	}
	b := i.buf[i.pos]
	i.pos++
	return b, nil
}

func (i *InputStream) ReadBool() (bool, rpcerr.Error) {
	b, err := i.ReadByte()
	return b != 0, err
}

func (i *InputStream) ReadInt16() (int16, rpcerr.Error) {
	if err := i.need(2); err != nil {
		return 0, err
	}
	v := int16(i.buf[i.pos]) | int16(i.buf[i.pos+1])<<8
	i.pos += 2
	return v, nil
}

func (i *InputStream) ReadInt32() (int32, rpcerr.Error) {
	if err := i.need(4); err != nil {
		return 0, err
	}
	v := int32(i.buf[i.pos]) | int32(i.buf[i.pos+1])<<8 | int32(i.buf[i.pos+2])<<16 | int32(i.buf[i.pos+3])<<24
	i.pos += 4
	return v, nil
}

func (i *InputStream) ReadInt64() (int64, rpcerr.Error) {
	if err := i.need(8); err != nil {
		return 0, err
	}
	var v int64
	for k := 0; k < 8; k++ {
		v |= int64(i.buf[i.pos+k]) << (8 * k)
	}
	i.pos += 8
	return v, nil
}

func (i *InputStream) ReadFloat32() (float32, rpcerr.Error) {
	v, err := i.ReadInt32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

func (i *InputStream) ReadFloat64() (float64, rpcerr.Error) {
	v, err := i.ReadInt64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// ReadSize reads a compact size value.
func (i *InputStream) ReadSize() (int, rpcerr.Error) {
	b, err := i.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return int(b), nil
	}
	n, err := i.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, rpcerr.ProtocolFraming.Errorf("marshal: negative size %d", n)
	}
	return int(n), nil
}

func (i *InputStream) ReadString() (string, rpcerr.Error) {
	n, err := i.ReadSize()
	if err != nil {
		return "", err
	}
	if err = i.need(n); err != nil {
		return "", err
	}
	s := string(i.buf[i.pos : i.pos+n])
	i.pos += n
	return s, nil
}

func (i *InputStream) ReadRawBytes() ([]byte, rpcerr.Error) {
	n, err := i.ReadSize()
	if err != nil {
		return nil, err
	}
	if err = i.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, i.buf[i.pos:i.pos+n])
	i.pos += n
	return b, nil
}

// Skip advances n bytes without interpreting them, used to discard an
// unrecognized tagged value or class slice by its declared size.
func (i *InputStream) Skip(n int) rpcerr.Error {
	if err := i.need(n); err != nil {
		return err
	}
	i.pos += n
	return nil
}
