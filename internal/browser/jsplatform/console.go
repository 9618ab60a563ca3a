//go:build js && wasm

package jsplatform

import "syscall/js"

type console struct {
	v js.Value
}

func (c console) Trace(msg string) { c.v.Call("trace", msg) }
func (c console) Debug(msg string) { c.v.Call("debug", msg) }
func (c console) Info(msg string)  { c.v.Call("info", msg) }
func (c console) Warn(msg string)  { c.v.Call("warn", msg) }
func (c console) Error(msg string) { c.v.Call("error", msg) }

func (c console) Log(msg, style string) {
	if style == "" {
		c.v.Call("log", msg)
		return
	}
	c.v.Call("log", msg, style)
}
