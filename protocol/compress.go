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

package protocol

import (
	"bytes"
	"encoding/binary"
	"io"

	bz2 "github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"

	"github.com/sabouaram/goice/rpcerr"
)

// CompressionFloor is the minimum body size eligible for compression; a
// body smaller than this is always sent uncompressed even if the
// connection's level permits it.
const CompressionFloor = 100

// Algorithm selects the codec behind the wire's single "compressed" bit.
// Bzip2 is the default: the wire format documents a "bzip2-compatible"
// body, so it is the codec used unless the connection is explicitly
// configured otherwise.
type Algorithm uint8

const (
	AlgorithmBzip2 Algorithm = iota
	AlgorithmFlate
)

// Compress compresses body at the given level (1..9) using alg, returning
// the compressed bytes. The caller is responsible for checking
// len(body) >= CompressionFloor before calling.
func Compress(alg Algorithm, level int, body []byte) ([]byte, rpcerr.Error) {
	var buf bytes.Buffer

	switch alg {
	case AlgorithmFlate:
		w, e := flate.NewWriter(&buf, level)
		if e != nil {
			return nil, rpcerr.CompressionUnsupported.Errorf("flate writer: %v", e)
		}
		if _, e = w.Write(body); e != nil {
			return nil, rpcerr.CompressionUnsupported.Errorf("flate compress: %v", e)
		}
		if e = w.Close(); e != nil {
			return nil, rpcerr.CompressionUnsupported.Errorf("flate close: %v", e)
		}
	default:
		w, e := bz2.NewWriter(&buf, &bz2.WriterConfig{Level: level})
		if e != nil {
			return nil, rpcerr.CompressionUnsupported.Errorf("bzip2 writer: %v", e)
		}
		if _, e = w.Write(body); e != nil {
			return nil, rpcerr.CompressionUnsupported.Errorf("bzip2 compress: %v", e)
		}
		if e = w.Close(); e != nil {
			return nil, rpcerr.CompressionUnsupported.Errorf("bzip2 close: %v", e)
		}
	}

	return buf.Bytes(), nil
}

// Decompress reverses Compress. uncompressedSize sizes the destination
// buffer; it is the 4-byte field this codec prepends to the compressed
// body on the wire (see EncodeCompressedBody).
func Decompress(alg Algorithm, compressed []byte, uncompressedSize uint32) ([]byte, rpcerr.Error) {
	var r io.Reader
	src := bytes.NewReader(compressed)

	switch alg {
	case AlgorithmFlate:
		r = flate.NewReader(src)
	default:
		br, e := bz2.NewReader(src, nil)
		if e != nil {
			return nil, rpcerr.CompressionUnsupported.Errorf("bzip2 reader: %v", e)
		}
		defer br.Close()
		r = br
	}

	out := make([]byte, uncompressedSize)
	if _, e := io.ReadFull(r, out); e != nil {
		return nil, rpcerr.CompressionUnsupported.Errorf("decompress: %v", e)
	}

	return out, nil
}

// EncodeCompressedBody prepends the 4-byte little-endian uncompressed
// size ahead of the compressed bytes, so a reader can size its
// destination buffer before inflating.
func EncodeCompressedBody(uncompressedSize uint32, compressed []byte) []byte {
	out := make([]byte, 4+len(compressed))
	binary.LittleEndian.PutUint32(out[0:4], uncompressedSize)
	copy(out[4:], compressed)
	return out
}

// SplitCompressedBody reverses EncodeCompressedBody.
func SplitCompressedBody(body []byte) (uncompressedSize uint32, compressed []byte, err rpcerr.Error) {
	if len(body) < 4 {
		return 0, nil, rpcerr.ProtocolFraming.Errorf("compressed body shorter than its size prefix")
	}
	return binary.LittleEndian.Uint32(body[0:4]), body[4:], nil
}

// Eligible reports whether a body of the given size, at the given
// connection compression level, should be compressed before framing.
func Eligible(level int, bodySize int) bool {
	return level > 0 && bodySize >= CompressionFloor
}
