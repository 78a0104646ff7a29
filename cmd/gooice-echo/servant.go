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

package main

import (
	"context"

	"github.com/sabouaram/goice/dispatch"
	"github.com/sabouaram/goice/marshal"
	"github.com/sabouaram/goice/protocol"
	"github.com/sabouaram/goice/rpcerr"
)

// echoIdentity is the one servant this example binary registers.
var echoIdentity = marshal.Identity{Name: "echo"}

// echoServant implements a single "echo" operation: decode a string
// in-parameter, return it unchanged as the sole out-parameter.
type echoServant struct{}

func (echoServant) Operation(name string) (dispatch.Operation, bool) {
	if name != "echo" {
		return dispatch.Operation{}, false
	}
	return dispatch.Operation{
		Mode: protocol.ModeNormal,
		Invoke: func(ctx context.Context, inArgs []byte, reqCtx map[string]string) ([]byte, *marshal.UserException, rpcerr.Error) {
			in := marshal.NewInputStream(inArgs)
			msg, err := in.ReadString()
			if err != nil {
				return nil, nil, err
			}

			o := marshal.NewOutputStream(len(msg) + 4)
			o.WriteString(msg)
			return o.Bytes(), nil, nil
		},
	}, true
}
