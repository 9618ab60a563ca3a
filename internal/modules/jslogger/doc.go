// Package jslogger writes host log messages to the browser console.
//
// A Logger gates each message against its Config on the host and only then
// crosses into the browser, where the message is formatted with the
// configured template and written to the console channel of its level.
// NewCore adapts a Logger to zapcore so ordinary zap loggers can target
// the browser console.
package jslogger
