package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		content string
	}{
		{name: "plain short", key: "", content: "hello"},
		{name: "plain empty", key: "", content: ""},
		{name: "plain unicode", key: "", content: "héllo wörld ✍️ 日本語"},
		{name: "plain large", key: "", content: strings.Repeat("lorem ipsum dolor sit amet ", 4096)},
		{name: "encrypted short", key: "secret-key", content: "hello"},
		{name: "encrypted unicode", key: "secret-key", content: "héllo wörld ✍️"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := NewCodec(tt.key)
			require.NoError(t, err)

			encoded, err := codec.Encode(tt.content)
			require.NoError(t, err)
			assert.NotEqual(t, tt.content, encoded)

			decoded, err := codec.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.content, decoded)
		})
	}
}

func TestCodec_CompressesLargeContent(t *testing.T) {
	codec, err := NewCodec("")
	require.NoError(t, err)

	content := strings.Repeat("the same line over and over\n", 1000)
	encoded, err := codec.Encode(content)
	require.NoError(t, err)

	assert.Less(t, len(encoded), len(content))
}

func TestCodec_DecodeWrongKeyFails(t *testing.T) {
	enc, err := NewCodec("key-one")
	require.NoError(t, err)
	dec, err := NewCodec("key-two")
	require.NoError(t, err)

	encoded, err := enc.Encode("confidential")
	require.NoError(t, err)

	_, err = dec.Decode(encoded)
	assert.Error(t, err)
}

func TestCodec_DecodeGarbageFails(t *testing.T) {
	codec, err := NewCodec("")
	require.NoError(t, err)

	_, err = codec.Decode("not base64 at all!!!")
	assert.Error(t, err)

	// Valid base64 but not a gzip stream.
	_, err = codec.Decode("aGVsbG8gd29ybGQ=")
	assert.Error(t, err)
}

func TestCodec_EncodeNotDeterministicWithEncryption(t *testing.T) {
	codec, err := NewCodec("secret")
	require.NoError(t, err)

	first, err := codec.Encode("same content")
	require.NoError(t, err)
	second, err := codec.Encode("same content")
	require.NoError(t, err)

	// Random nonce per write.
	assert.NotEqual(t, first, second)
}
