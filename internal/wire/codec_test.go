package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Key   string  `json:"key" cbor:"key"`
	Width float64 `json:"width" cbor:"width"`
}

func TestFrameRoundTripBothCodecs(t *testing.T) {
	for _, codec := range []Codec{JSON, CBOR} {
		t.Run(codec.Name(), func(t *testing.T) {
			args, err := EncodeArgs(codec, "a", sample{Key: "k", Width: 12.5}, nil)
			require.NoError(t, err)

			data, err := EncodeFrame(codec, &Frame{
				Kind:   KindInvoke,
				ID:     7,
				Target: "mod_1",
				Method: "Observer.addResizers",
				Args:   args,
			})
			require.NoError(t, err)

			frame, err := DecodeFrame(codec, data)
			require.NoError(t, err)
			assert.Equal(t, KindInvoke, frame.Kind)
			assert.Equal(t, uint64(7), frame.ID)
			require.Len(t, frame.Args, 3)

			var first string
			ok, err := DecodeArg(codec, frame.Args, 0, &first)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "a", first)

			var second sample
			_, err = DecodeArg(codec, frame.Args, 1, &second)
			require.NoError(t, err)
			assert.Equal(t, sample{Key: "k", Width: 12.5}, second)

			assert.True(t, frame.Args[2].IsNull())
			ok, err = DecodeArg(codec, frame.Args, 5, &first)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

type refArg struct{ id string }

func (r refArg) WireValue() any { return ObjectHandle{ID: r.id} }

func TestEncodeArgsUsesWireValue(t *testing.T) {
	args, err := EncodeArgs(JSON, refArg{id: "ref_1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"__objref":"ref_1"}`, string(args[0]))
}

func TestFrameValidation(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		ok    bool
	}{
		{"hello", Frame{Kind: KindHello}, true},
		{"invoke without id", Frame{Kind: KindInvoke, Method: "x"}, false},
		{"invoke without method", Frame{Kind: KindInvoke, ID: 1}, false},
		{"callback without target", Frame{Kind: KindCallback, ID: 1, Method: "m"}, false},
		{"dispose", Frame{Kind: KindDispose, ID: 1, Target: "mod_1"}, true},
		{"result", Frame{Kind: KindResult, ID: 3}, true},
		{"unknown", Frame{Kind: "bogus"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = CodecByName("CBOR")
	require.NoError(t, err)
	assert.True(t, c.Binary())

	_, err = CodecByName("xml")
	assert.Error(t, err)
}
