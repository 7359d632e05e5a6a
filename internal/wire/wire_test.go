package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		language string
		source   string
	}{
		{"simple", "toml", `key = "value"`},
		{"empty source", "go", ""},
		{"empty language", "", "hello"},
		{"multibyte", "text", "héllo wörld ☃"},
		{"newlines", "gdb", "(gdb) break main\n(gdb) run\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRequest(&buf, tt.language, tt.source))

			language, source, err := ReadRequest(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.language, language)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestReplyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReply(&buf, `<span class="n">key</span>`))

	payload, err := ReadReply(&buf)
	require.NoError(t, err)
	assert.Equal(t, `<span class="n">key</span>`, payload)
}

func TestReadRequestCleanEOF(t *testing.T) {
	// A connection closed between requests surfaces as a bare io.EOF.
	_, _, err := ReadRequest(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRequestTruncatedSourceFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRequest(&buf, "toml", `key = "value"`))
	truncated := buf.Bytes()[:buf.Len()-3]

	_, _, err := ReadRequest(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteRejectsOversizedFrame(t *testing.T) {
	payload := string(make([]byte, MaxFrameSize+1))

	var buf bytes.Buffer
	err := WriteReply(&buf, payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
	assert.Zero(t, buf.Len(), "no bytes may be written for a rejected frame")
}

func TestReadRejectsOversizedFrame(t *testing.T) {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], MaxFrameSize+1)

	_, err := ReadReply(bytes.NewReader(hdr[:]))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "exceeds limit"))
}
