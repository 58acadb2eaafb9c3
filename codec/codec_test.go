package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("phase grid payload "), 512)

	for _, name := range []string{"none", "zstd", "lz4"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())

			var buf bytes.Buffer
			w, err := c.NewWriter(&buf)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			assert.Equal(t, name, Detect(buf.Bytes()).Name())

			r, err := c.NewReader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, payload, got)

			decoded, err := Decode(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestByName_Unknown(t *testing.T) {
	_, ok := ByName("snappy")
	assert.False(t, ok)
}

func TestDetect_Short(t *testing.T) {
	assert.Equal(t, "none", Detect(nil).Name())
	assert.Equal(t, "none", Detect([]byte{0x28, 0xb5}).Name())
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode(append([]byte{0x28, 0xb5, 0x2f, 0xfd}, 0xff, 0xff, 0xff))
	assert.Error(t, err)
}
