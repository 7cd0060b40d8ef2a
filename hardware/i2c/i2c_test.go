package i2c

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockBus(t *testing.T) {
	t.Parallel()
	m := NewMockBus()
	require.NoError(t, m.Tx(0x3c, []byte{0x00, 0xae}, nil))
	m.ExpectRead([]byte{0x85, 0x83})
	r := make([]byte, 2)
	require.NoError(t, m.Tx(0x48, []byte{0x00}, r))
	assert.Equal(t, []byte{0x85, 0x83}, r)
	assert.Equal(t, "3c:00ae 48:00", m.WritesString())
	assert.Empty(t, m.Writes())

	assert.Error(t, m.Tx(0x48, nil, r))

	m.Err = fmt.Errorf("nack")
	assert.EqualError(t, m.Tx(0x3c, []byte{1}, nil), "nack")
	assert.Empty(t, m.Writes())

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
}

func TestDevBusEmptyTx(t *testing.T) {
	t.Parallel()
	b := NewDevBus(250)
	defer b.Close()
	err := b.Tx(0x3c, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to do")
}

func TestDevBusOpenError(t *testing.T) {
	t.Parallel()
	b := &devBus{path: "/nonexistent/i2c-9"}
	err := b.Tx(0x3c, []byte{0}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "i2c open /nonexistent/i2c-9")
	assert.NoError(t, b.Close())
}
