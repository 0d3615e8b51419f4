// Package rexlog defines the logging contract the routing core consumes
// (spec.md §6): trace/info/warn/error/fatal/debug, each a plain string
// message. A no-op implementation is the default, matching the teacher's
// habit of making *log.Logger fields optional throughout handler.go,
// router.go and config.go.
package rexlog

// Logger is the contract the routing core logs through. Real sinks (files,
// syslog, structured JSON) are an external collaborator (spec.md §1).
// nethttp.Handler reports errors through this interface; nethttp.Context's
// github.com/ije/gox/log logger is a separate type and is not adapted to it.
type Logger interface {
	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
}

// Noop is the default Logger: every method is a no-op.
type Noop struct{}

func (Noop) Trace(string) {}
func (Noop) Debug(string) {}
func (Noop) Info(string)  {}
func (Noop) Warn(string)  {}
func (Noop) Error(string) {}
func (Noop) Fatal(string) {}

// Default is the package-level no-op logger instance, used whenever a
// component is constructed without an explicit Logger.
var Default Logger = Noop{}
