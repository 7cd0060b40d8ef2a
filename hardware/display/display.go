// Package display holds a monochrome off-screen frame in SSD1306 page layout.
// Each byte is a vertical strip of 8 pixels, LSB on top; pages of `width` bytes.
package display

import (
	"image"
	"image/color"
	"strings"

	"github.com/juju/errors"
	"github.com/skip2/go-qrcode"
	"tinygo.org/x/drivers"
)

// Area is an inclusive rectangle in columns and pages.
type Area struct {
	StartColumn, EndColumn uint8
	StartPage, EndPage     uint8
}

// Surface accepts a page-layout buffer for the given area.
type Surface interface {
	Submit(buf []byte, area Area) error
}

var (
	On  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Off = color.RGBA{0, 0, 0, 0xff}
)

type Frame struct {
	buf     []byte
	size    image.Point
	pages   int
	surface Surface
}

var _ drivers.Displayer = &Frame{}

// NewFrame allocates a cleared frame. Surface may be nil.
func NewFrame(size image.Point, surface Surface) *Frame {
	pages := (size.Y + 7) / 8
	return &Frame{
		buf:     make([]byte, size.X*pages),
		size:    size,
		pages:   pages,
		surface: surface,
	}
}

func (f *Frame) Bytes() []byte       { return f.buf }
func (f *Frame) Pages() int          { return f.pages }
func (f *Frame) Bounds() image.Point { return f.size }

// FullArea covers every column and page.
func (f *Frame) FullArea() Area {
	return Area{
		StartColumn: 0,
		EndColumn:   uint8(f.size.X - 1),
		StartPage:   0,
		EndPage:     uint8(f.pages - 1),
	}
}

func (f *Frame) Clear() {
	for i := range f.buf {
		f.buf[i] = 0
	}
}

// Size implements drivers.Displayer.
func (f *Frame) Size() (x, y int16) { return int16(f.size.X), int16(f.size.Y) }

// SetPixel implements drivers.Displayer. Out of bounds pixels are clipped.
func (f *Frame) SetPixel(x, y int16, c color.RGBA) {
	f.set(int(x), int(y), isOn(c))
}

// Display implements drivers.Displayer, submits whole frame in one transfer.
func (f *Frame) Display() error {
	if f.surface == nil {
		return nil
	}
	return f.surface.Submit(f.buf, f.FullArea())
}

func (f *Frame) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= f.size.X || y >= f.size.Y {
		return false
	}
	return f.buf[(y/8)*f.size.X+x]&(1<<uint(y%8)) != 0
}

func (f *Frame) set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= f.size.X || y >= f.size.Y {
		return
	}
	idx := (y/8)*f.size.X + x
	bit := byte(1 << uint(y%8))
	if on {
		f.buf[idx] |= bit
	} else {
		f.buf[idx] &^= bit
	}
}

// QR draws text as QR code in top left corner, as large as fits.
func (f *Frame) QR(text string, border bool, level qrcode.RecoveryLevel) error {
	qr, err := qrcode.New(text, level)
	if err != nil {
		return errors.Annotate(err, "QR")
	}
	qr.DisableBorder = !border
	minSize := minInt(f.size.X, f.size.Y)
	img := qr.Image(minSize).(*image.Paletted)
	if !img.Rect.In(image.Rectangle{Max: f.size}) {
		return errors.Errorf("QR image size=%s > display size=%s", img.Bounds().Max.String(), f.size.String())
	}
	f.paletted2(img, image.Point{})
	return nil
}

// String2 is ASCII art dump, two characters per pixel, lit pixels are blocks.
func (f *Frame) String2() string {
	b := strings.Builder{}
	b.Grow((f.size.X*len("██") + 1) * f.size.Y)
	for y := 0; y < f.size.Y; y++ {
		for x := 0; x < f.size.X; x++ {
			if f.Get(x, y) {
				b.WriteString("██")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

// QR modules are dark on light background, dark modules light up OLED pixels.
func (f *Frame) paletted2(img *image.Paletted, at image.Point) {
	min, max := img.Bounds().Min, img.Bounds().Max
	for y := min.Y; y < max.Y; y++ {
		for x := min.X; x < max.X; x++ {
			palidx := img.Pix[img.PixOffset(x, y)]
			f.set(at.X+x, at.Y+y, palidx != 0)
		}
	}
}

func isOn(c color.RGBA) bool {
	return uint16(c.R)+uint16(c.G)+uint16(c.B) >= 0x180
}

func minInt(i1, i2 int) int {
	if i1 <= i2 {
		return i1
	}
	return i2
}
