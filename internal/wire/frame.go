package wire

import (
	"fmt"
)

// Kind identifies the purpose of a frame.
type Kind string

const (
	// KindHello is sent once by the browser runtime after connecting.
	KindHello Kind = "hello"
	// KindInvoke calls a function on the browser side.
	KindInvoke Kind = "invoke"
	// KindCallback calls a method on a host object reference.
	KindCallback Kind = "callback"
	// KindDispose releases a module handle on the browser side.
	KindDispose Kind = "dispose"
	// KindResult answers a request frame.
	KindResult Kind = "result"
)

// Frame is the unit of exchange on an interop connection.
type Frame struct {
	Kind   Kind   `json:"kind" cbor:"kind"`
	ID     uint64 `json:"id,omitempty" cbor:"id,omitempty"`
	Target string `json:"target,omitempty" cbor:"target,omitempty"`
	Method string `json:"method,omitempty" cbor:"method,omitempty"`
	Args   []Raw  `json:"args,omitempty" cbor:"args,omitempty"`
	Result Raw    `json:"result,omitempty" cbor:"result,omitempty"`
	Error  string `json:"error,omitempty" cbor:"error,omitempty"`
}

// IsRequest reports whether the frame expects a result frame in reply.
func (f *Frame) IsRequest() bool {
	switch f.Kind {
	case KindInvoke, KindCallback, KindDispose:
		return true
	}
	return false
}

// Validate checks the structural invariants of a frame.
func (f *Frame) Validate() error {
	switch f.Kind {
	case KindHello:
		return nil
	case KindInvoke, KindCallback:
		if f.ID == 0 {
			return fmt.Errorf("%s frame without id", f.Kind)
		}
		if f.Method == "" {
			return fmt.Errorf("%s frame without method", f.Kind)
		}
		if f.Kind == KindCallback && f.Target == "" {
			return fmt.Errorf("callback frame without target")
		}
	case KindDispose:
		if f.ID == 0 || f.Target == "" {
			return fmt.Errorf("dispose frame requires id and target")
		}
	case KindResult:
		if f.ID == 0 {
			return fmt.Errorf("result frame without id")
		}
	default:
		return fmt.Errorf("unknown frame kind %q", f.Kind)
	}
	return nil
}

// Hello is the payload of a hello frame.
type Hello struct {
	ContextID string `json:"contextId" cbor:"contextId"`
	UserAgent string `json:"userAgent,omitempty" cbor:"userAgent,omitempty"`
	Codec     string `json:"codec" cbor:"codec"`
}

// EncodeFrame validates and encodes a frame.
func EncodeFrame(c Codec, f *Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	return c.Marshal(f)
}

// DecodeFrame decodes and validates a frame.
func DecodeFrame(c Codec, data []byte) (*Frame, error) {
	var f Frame
	if err := c.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	return &f, nil
}
