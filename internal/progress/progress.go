// Package progress is the side channel long-running operations use to
// report what they are doing.  A Sink never influences control flow or
// return values; every implementation may drop messages.
package progress

import (
	"fmt"

	"go.uber.org/zap"
)

// Sink receives human readable progress messages.
type Sink interface {
	Report(msg string)
}

// Func adapts a plain function to a Sink.
type Func func(string)

func (f Func) Report(msg string) { f(msg) }

// Nop discards everything.
var Nop Sink = Func(func(string) {})

// Zap returns a Sink that logs each message at debug level.
func Zap(l *zap.SugaredLogger) Sink {
	if l == nil {
		l = zap.S()
	}
	return Func(func(msg string) { l.Debugw(msg) })
}

// Or returns s, or Nop when s is nil.
func Or(s Sink) Sink {
	if s == nil {
		return Nop
	}
	return s
}

// Reportf formats and reports through s, tolerating a nil sink.
func Reportf(s Sink, format string, args ...any) {
	if s == nil {
		return
	}
	s.Report(fmt.Sprintf(format, args...))
}
