package wire

import "fmt"

// ObjectHandle is the wire form of a host object reference.
type ObjectHandle struct {
	ID string `json:"__objref" cbor:"__objref"`
}

// ModuleHandle is the wire form of an imported browser module.
type ModuleHandle struct {
	ID string `json:"__modref" cbor:"__modref"`
}

// WireValuer is implemented by values that travel as a handle rather than
// by their own encoding.
type WireValuer interface {
	WireValue() any
}

// EncodeArgs encodes positional arguments. Nil arguments become null.
func EncodeArgs(c Codec, args ...any) ([]Raw, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]Raw, len(args))
	for i, arg := range args {
		if wv, ok := arg.(WireValuer); ok {
			arg = wv.WireValue()
		}
		data, err := c.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode argument %d: %w", i, err)
		}
		out[i] = data
	}
	return out, nil
}

// DecodeArg decodes argument i into v. A missing argument leaves v untouched
// and reports false.
func DecodeArg(c Codec, args []Raw, i int, v any) (bool, error) {
	if i >= len(args) || args[i].IsNull() {
		return false, nil
	}
	if err := c.Unmarshal(args[i], v); err != nil {
		return false, fmt.Errorf("failed to decode argument %d: %w", i, err)
	}
	return true, nil
}
