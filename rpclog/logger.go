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

package rpclog

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the interface ConnectionCore and the Dispatcher depend on.
// Both pass the Logger they are given through Resolve, so a nil Logger
// resolves to a discard logger and construction never requires one.
type Logger interface {
	WithFields(f Fields) Logger
	Error(msg string)
	Errorf(format string, args ...interface{})
	Warn(msg string)
	Info(msg string)
	Debug(msg string)
}

// FuncLog returns a Logger lazily, the same dependency-injection shape the
// teacher's logger package uses for construction-time configuration.
type FuncLog func() Logger

type entry struct {
	l *logrus.Logger
	f Fields
}

// New wraps an existing *logrus.Logger (teacher dependency) as a Logger.
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.New()
	}
	return &entry{l: l}
}

// Discard returns a Logger that drops every entry, used when FuncLog is nil.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &entry{l: l}
}

func (e *entry) WithFields(f Fields) Logger {
	merged := make(Fields, len(e.f)+len(f))
	for k, v := range e.f {
		merged[k] = v
	}
	for k, v := range f {
		merged[k] = v
	}
	return &entry{l: e.l, f: merged}
}

func (e *entry) fields() logrus.Fields {
	return logrus.Fields(e.f)
}

func (e *entry) Error(msg string) { e.l.WithFields(e.fields()).Error(msg) }
func (e *entry) Errorf(format string, args ...interface{}) {
	e.l.WithFields(e.fields()).Errorf(format, args...)
}
func (e *entry) Warn(msg string)  { e.l.WithFields(e.fields()).Warn(msg) }
func (e *entry) Info(msg string)  { e.l.WithFields(e.fields()).Info(msg) }
func (e *entry) Debug(msg string) { e.l.WithFields(e.fields()).Debug(msg) }

// Resolve calls fn if non-nil, else returns a discard logger; a nil Logger
// returned by fn also yields a discard logger. connection.New and
// dispatch.NewDispatcher wrap the Logger they are given in a FuncLog and
// pass it here.
func Resolve(fn FuncLog) Logger {
	if fn == nil {
		return Discard()
	}
	if l := fn(); l != nil {
		return l
	}
	return Discard()
}
