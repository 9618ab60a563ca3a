package wire

import "bytes"

var (
	jsonNull = []byte("null")
	cborNull = []byte{0xf6}
)

// Raw is a payload already encoded with the codec of the enclosing frame.
// It is copied through both codecs verbatim.
type Raw []byte

// MarshalJSON returns the raw bytes, or null when empty.
func (r Raw) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return jsonNull, nil
	}
	return r, nil
}

// UnmarshalJSON stores a copy of data.
func (r *Raw) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// MarshalCBOR returns the raw bytes, or CBOR null when empty.
func (r Raw) MarshalCBOR() ([]byte, error) {
	if len(r) == 0 {
		return cborNull, nil
	}
	return r, nil
}

// UnmarshalCBOR stores a copy of data.
func (r *Raw) UnmarshalCBOR(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// IsNull reports whether the payload is absent or an explicit null.
func (r Raw) IsNull() bool {
	if len(r) == 0 {
		return true
	}
	trimmed := bytes.TrimSpace(r)
	return bytes.Equal(trimmed, jsonNull) || bytes.Equal(trimmed, cborNull) ||
		bytes.Equal(trimmed, []byte{0xf7}) // CBOR undefined
}
