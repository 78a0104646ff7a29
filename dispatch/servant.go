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

// Package dispatch implements the server-side invocation path: Dispatcher
// decodes a request, looks up the target servant and operation, validates
// the sent mode, invokes the user implementation, and marshals the reply.
package dispatch

import (
	"context"

	"github.com/sabouaram/goice/marshal"
	"github.com/sabouaram/goice/protocol"
	"github.com/sabouaram/goice/rpcerr"
)

// Operation is one invocable member of a Servant: its declared mode
// (checked against the sent mode before Invoke ever runs) and the
// function that unmarshals in-parameters, runs the user implementation,
// and returns marshaled out-parameters or a user exception.
type Operation struct {
	Mode protocol.OperationMode
	// Invoke receives the raw in-parameter bytes (the request
	// encapsulation's body, past the RequestHeader) and the invocation
	// context, and returns either marshaled out-parameter bytes or a
	// user exception — never both.
	Invoke func(ctx context.Context, inArgs []byte, reqCtx map[string]string) (outArgs []byte, userErr *marshal.UserException, err rpcerr.Error)
}

// Servant is a user-implemented object reachable through identity+facet
// lookup. Operation returns the metadata for name, or false if this
// servant declares no such operation.
type Servant interface {
	Operation(name string) (Operation, bool)
}

// ServantManager is the collaborator Dispatcher consults to resolve a
// request's target identity and facet to a concrete Servant.
type ServantManager interface {
	Find(identity marshal.Identity, facet string) (Servant, bool)
}
