package wire

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := func(xs []int32) bool {
		decoded, err := Decode(Encode(xs))
		if err != nil {
			return false
		}
		if len(xs) == 0 && len(decoded) == 0 {
			return true
		}
		if len(xs) != len(decoded) {
			return false
		}
		for i := range xs {
			if xs[i] != decoded[i] {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestEncodeBigEndian(t *testing.T) {
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, Encode([]int32{1}))
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, Encode([]int32{-1}))
}

func TestDecodeTruncatedBufferIsError(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x00, 0x01})
	assert.Error(t, err)
}

func TestMessageRoundTrip(t *testing.T) {
	m := Message{Instance: 7, Phase: Phase2A, Payload: []int32{3, 42}}
	decoded, err := DecodeMessage(EncodeMessage(m))
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestDecodeMessageRequiresHeader(t *testing.T) {
	_, err := DecodeMessage(Encode([]int32{1}))
	assert.Error(t, err)
}
