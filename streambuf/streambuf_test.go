package streambuf

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestSequenceAppendBytes(t *testing.T) {
	sq := NewSequence()
	sq.Append([]byte("hello "))
	sq.Append([]byte("world"))
	assert.Equal(t, string(sq.Bytes()), "hello world")
}

