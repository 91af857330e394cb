package xank

import "fortio.org/log"

// Sink receives diagnostics from an Evaluator. msg is the formatted error
// message, including the position if there is one.
type Sink interface {
	Report(code Code, msg string)
}

// LogSink is a Sink that logs diagnostics as warnings.
type LogSink struct{}

func (LogSink) Report(code Code, msg string) {
	log.Warnf("xank: %v (%d): %s", code, int(code), msg)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(code Code, msg string)

func (f SinkFunc) Report(code Code, msg string) {
	f(code, msg)
}
