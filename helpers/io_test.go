package helpers

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteAll(t *testing.T) {
	t.Parallel()
	buf := bytes.NewBuffer(nil)
	reply := []byte("Temperature: 25.0 °C\n")
	tw := &throttleWriter{buf, 7}
	n, err := tw.Write(reply[:2])
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, buf.Len())
	buf.Reset()
	n, err = tw.Write(reply)
	assert.NoError(t, err)
	assert.Equal(t, tw.n, n)
	assert.Equal(t, tw.n, buf.Len())
	buf.Reset()
	err = WriteAll(tw, reply)
	assert.NoError(t, err)
	assert.Equal(t, string(reply), buf.String())
}

func TestWriteAllStuck(t *testing.T) {
	t.Parallel()
	tw := &throttleWriter{bytes.NewBuffer(nil), 0}
	assert.Equal(t, io.ErrShortWrite, WriteAll(tw, []byte("x")))
}

type throttleWriter struct {
	w io.Writer
	n int
}

func (tw *throttleWriter) Write(p []byte) (n int, err error) {
	limit := len(p)
	if limit > tw.n {
		limit = tw.n
	}
	return tw.w.Write(p[:limit])
}
