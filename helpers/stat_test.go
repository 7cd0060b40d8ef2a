package helpers

import (
	"bytes"
	"expvar"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatReadWrite(t *testing.T) {
	t.Parallel()
	type Case struct {
		name   string
		sizes  []int
		fix    int64
		expect int64
	}
	cases := []Case{
		{"empty", []int{0}, 0, 0},
		{"sum", []int{0, 5, 17}, 0, 22},
		{"fix", []int{3, 4}, 1, 9},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			var rv, wv expvar.Int
			r := NewStatReader(strings.NewReader(strings.Repeat(".", 1024)), &rv, c.fix)
			w := NewStatWriter(bytes.NewBuffer(nil), &wv, c.fix)
			for _, size := range c.sizes {
				buf := make([]byte, size)
				_, _ = r.Read(buf)
				_, _ = w.Write(buf)
			}
			assert.Equal(t, c.expect, rv.Value())
			assert.Equal(t, c.expect, wv.Value())
		})
	}
}
