package display

import (
	"image"
	"strings"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSurface struct {
	bufs  [][]byte
	areas []Area
}

func (r *recordSurface) Submit(buf []byte, area Area) error {
	r.bufs = append(r.bufs, append([]byte(nil), buf...))
	r.areas = append(r.areas, area)
	return nil
}

func TestFramePageLayout(t *testing.T) {
	t.Parallel()
	f := NewFrame(image.Point{X: 128, Y: 64}, nil)
	assert.Equal(t, 8, f.Pages())
	assert.Len(t, f.Bytes(), 1024)
	assert.Equal(t, Area{StartColumn: 0, EndColumn: 127, StartPage: 0, EndPage: 7}, f.FullArea())

	type Case struct {
		x, y  int16
		index int
		value byte
	}
	cases := []Case{
		{0, 0, 0, 0x01},
		{0, 7, 0, 0x80},
		{5, 8, 128 + 5, 0x01},
		{127, 63, 1023, 0x80},
		{10, 19, 2*128 + 10, 0x08},
	}
	for _, c := range cases {
		f.Clear()
		f.SetPixel(c.x, c.y, On)
		assert.Equal(t, c.value, f.Bytes()[c.index], "x=%d y=%d", c.x, c.y)
		assert.True(t, f.Get(int(c.x), int(c.y)))
		f.SetPixel(c.x, c.y, Off)
		assert.Equal(t, byte(0), f.Bytes()[c.index])
	}

	// clipped, must not panic
	f.SetPixel(-1, 0, On)
	f.SetPixel(128, 0, On)
	f.SetPixel(0, 64, On)
	assert.Equal(t, make([]byte, 1024), f.Bytes())
	assert.False(t, f.Get(200, 200))
}

func TestFrameDisplay(t *testing.T) {
	t.Parallel()
	s := &recordSurface{}
	f := NewFrame(image.Point{X: 128, Y: 64}, s)
	f.SetPixel(3, 3, On)
	require.NoError(t, f.Display())
	require.Len(t, s.bufs, 1)
	assert.Equal(t, f.FullArea(), s.areas[0])
	assert.Equal(t, byte(0x08), s.bufs[0][3])

	assert.NoError(t, NewFrame(image.Point{X: 8, Y: 8}, nil).Display())
}

func TestFrameString2(t *testing.T) {
	t.Parallel()
	f := NewFrame(image.Point{X: 3, Y: 2}, nil)
	f.SetPixel(1, 0, On)
	f.SetPixel(2, 1, On)
	assert.Equal(t, "  ██  \n    ██\n", f.String2())
}

func TestQR(t *testing.T) {
	t.Parallel()
	qrText := "tcp://192.168.4.1:8080"
	qr, err := qrcode.New(qrText, qrcode.Medium)
	require.NoError(t, err)
	qr.DisableBorder = true
	n := len(qr.Bitmap())

	f := NewFrame(image.Point{X: n, Y: n}, nil)
	assert.Equal(t, strings.Repeat(strings.Repeat("  ", n)+"\n", n), f.String2())
	require.NoError(t, f.QR(qrText, false, qrcode.Medium))
	assert.Equal(t, qr.ToString(true), f.String2())

	f.Clear()
	assert.Equal(t, strings.Repeat(strings.Repeat("  ", n)+"\n", n), f.String2())
}
