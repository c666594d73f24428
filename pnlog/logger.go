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
 */

// Package pnlog provides the leveled, field-oriented logger used across the
// SDK. It is a thin wrapper over logrus, kept deliberately small: the
// transaction engine logs a handful of fields (context id, transaction
// kind, fsm state) at a handful of levels, it does not need logrus's full
// surface.
package pnlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level mirrors logrus.Level so callers of this package never need to
// import logrus directly.
type Level = logrus.Level

const (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
	TraceLevel = logrus.TraceLevel
)

// Logger is the SDK-facing logging surface. A Context holds one Logger and
// derives field-scoped children from it via With.
type Logger interface {
	With(fields Fields) Logger
	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	SetLevel(l Level)
}

// Fields is a set of structured key/value pairs attached to a log line.
type Fields map[string]interface{}

type logger struct {
	e *logrus.Entry
}

// New returns a Logger writing to w (stderr if w is nil) at the given
// level, in text format, timestamps included — matching the teacher's
// default formatter choice for CLI-facing tools.
func New(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	return &logger{e: logrus.NewEntry(l)}
}

func (l *logger) With(fields Fields) Logger {
	return &logger{e: l.e.WithFields(logrus.Fields(fields))}
}

func (l *logger) SetLevel(lvl Level) {
	l.e.Logger.SetLevel(lvl)
}

func (l *logger) Trace(msg string) { l.e.Trace(msg) }
func (l *logger) Debug(msg string) { l.e.Debug(msg) }
func (l *logger) Info(msg string)  { l.e.Info(msg) }
func (l *logger) Warn(msg string)  { l.e.Warn(msg) }
func (l *logger) Error(msg string) { l.e.Error(msg) }

// Discard is a Logger that drops everything; it is the zero-cost default
// used by a Context that was not given an explicit Logger.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &logger{e: logrus.NewEntry(l)}
}
