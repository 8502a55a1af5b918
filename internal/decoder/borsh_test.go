package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadBorshString(t *testing.T) {
	buf := append(u32le(5), []byte("hello world")...)

	s, next := ReadBorshString(buf, 0)
	assert.Equal(t, "hello", s)
	assert.Equal(t, 9, next)

	s, next = ReadBorshString(u32le(0), 0)
	assert.Equal(t, "", s)
	assert.Equal(t, 4, next)

	s, next = ReadBorshString(append(u32le(50), 'a'), 0)
	assert.Equal(t, "", s, "overrun yields empty")
	assert.Equal(t, 4, next)

	s, next = ReadBorshString([]byte{1, 0}, 0)
	assert.Equal(t, "", s)
	assert.Equal(t, 0, next)

	s, next = ReadBorshString(append(u32le(0xFFFFFFFF), 'a'), 0)
	assert.Equal(t, "", s)
	assert.Equal(t, 4, next)
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "TOKEN", CleanString("TOKEN\x00\x00\x00"))
	assert.Equal(t, "TOKEN", CleanString("TOKEN\x00\x00 "))
	assert.Equal(t, "AB", CleanString("A\x00B"))
	assert.Equal(t, "", CleanString("\x00\x00"))
	assert.Equal(t, "a b", CleanString("  a b\t\n"))
}
