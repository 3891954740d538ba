package ipc

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	fr := NewFrameReader(&buf)

	payloads := [][]byte{
		[]byte("a"),
		[]byte(`{"messageType":1,"data":{}}`),
		bytes.Repeat([]byte("x"), 4096),
	}
	for _, p := range payloads {
		require.NoError(t, fw.WriteFrame(p))
	}
	for _, p := range payloads {
		got, err := fr.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := fr.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestFrameWriterRejects(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)

	err := fw.WriteFrame(nil)
	assert.ErrorIs(t, err, ErrMessageEmpty)

	err = fw.WriteFrame(bytes.Repeat([]byte("x"), DefaultMaxMessageSize+1))
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	assert.Zero(t, buf.Len(), "rejected frames must not hit the wire")
}

func TestFrameReaderErrors(t *testing.T) {
	t.Run("truncated payload", func(t *testing.T) {
		var buf bytes.Buffer
		var lengthBuf [LengthPrefixSize]byte
		binary.BigEndian.PutUint32(lengthBuf[:], 100)
		buf.Write(lengthBuf[:])
		buf.WriteString("short")

		_, err := NewFrameReader(&buf).ReadFrame()
		assert.ErrorIs(t, err, ErrFrameTruncated)
	})

	t.Run("truncated prefix", func(t *testing.T) {
		buf := bytes.NewBuffer([]byte{0, 0})
		_, err := NewFrameReader(buf).ReadFrame()
		assert.ErrorIs(t, err, ErrFrameTruncated)
	})

	t.Run("zero length", func(t *testing.T) {
		buf := bytes.NewBuffer(make([]byte, LengthPrefixSize))
		_, err := NewFrameReader(buf).ReadFrame()
		assert.ErrorIs(t, err, ErrMessageEmpty)
	})

	t.Run("oversize length", func(t *testing.T) {
		var buf bytes.Buffer
		var lengthBuf [LengthPrefixSize]byte
		binary.BigEndian.PutUint32(lengthBuf[:], DefaultMaxMessageSize+1)
		buf.Write(lengthBuf[:])

		_, err := NewFrameReader(&buf).ReadFrame()
		assert.ErrorIs(t, err, ErrMessageTooLarge)
	})
}
