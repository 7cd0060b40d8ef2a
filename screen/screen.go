// Package screen renders node state into display frame.
package screen

import (
	"fmt"
	"strings"

	"github.com/fsae-telemetry/telenode/hardware/display"
	"github.com/fsae-telemetry/telenode/mode"
	"github.com/fsae-telemetry/telenode/sampler"
	"github.com/juju/errors"
	"github.com/skip2/go-qrcode"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	OriginX = 5
	OriginY = 0 // top of first text row
)

var DefaultFont = &proggy.TinySZ8pt7b

type Controller struct {
	frame *display.Frame
	font  tinyfont.Fonter
	lineH int16
}

func New(frame *display.Frame) *Controller {
	return &Controller{
		frame: frame,
		font:  DefaultFont,
		lineH: int16(DefaultFont.YAdvance),
	}
}

func (c *Controller) Frame() *display.Frame { return c.frame }

func ReadingText(r sampler.Reading) string { return fmt.Sprintf("Temp: %.1fC", r) }

// Render redraws whole frame and submits it in one transfer.
func (c *Controller) Render(m mode.Mode, r sampler.Reading, msg string) error {
	c.frame.Clear()
	switch m {
	case mode.ModeMessage:
		c.drawText(OriginX, OriginY, msg)
	default:
		c.drawText(OriginX, OriginY, ReadingText(r))
	}
	return errors.Annotate(c.frame.Display(), "render")
}

// Splash shows status lines, and QR code of qrText on the right when it fits.
func (c *Controller) Splash(lines []string, qrText string) error {
	c.frame.Clear()
	textWidth := c.frame.Bounds().X
	if qrText != "" {
		size := c.frame.Bounds()
		qr := display.NewFrame(size, nil)
		if err := qr.QR(qrText, false, qrcode.Low); err != nil {
			return errors.Annotate(err, "splash")
		}
		side := minInt(size.X, size.Y)
		left := size.X - side
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				if qr.Get(x, y) {
					c.frame.SetPixel(int16(left+x), int16(y), display.On)
				}
			}
		}
		textWidth = left
	}
	c.drawTextWidth(0, OriginY, strings.Join(lines, "\n"), textWidth)
	return errors.Annotate(c.frame.Display(), "splash")
}

func (c *Controller) drawText(x, top int16, s string) {
	c.drawTextWidth(x, top, s, c.frame.Bounds().X)
}

// Rows split on newline and wrap at maxX pixels, rows below frame are clipped.
func (c *Controller) drawTextWidth(x, top int16, s string, maxX int) {
	_, height := c.frame.Size()
	rows := c.wrap(s, maxX-int(x))
	for i, row := range rows {
		rowTop := top + int16(i)*c.lineH
		if rowTop+c.lineH > height {
			break
		}
		tinyfont.WriteLine(c.frame, c.font, x, c.baseline(rowTop), row, display.On)
	}
}

func (c *Controller) baseline(top int16) int16 { return top + c.lineH - c.lineH/4 }

func (c *Controller) wrap(s string, width int) []string {
	var rows []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		for {
			n := c.fit(line, width)
			rows = append(rows, line[:n])
			line = line[n:]
			if line == "" {
				break
			}
		}
	}
	return rows
}

// fit returns byte length of longest prefix of s, at least one rune, not wider than width.
func (c *Controller) fit(s string, width int) int {
	if s == "" {
		return 0
	}
	end := 0
	for i := range s {
		if i == 0 {
			continue
		}
		if _, w := tinyfont.LineWidth(c.font, s[:i]); int(w) > width {
			if end == 0 {
				return i
			}
			return end
		}
		end = i
	}
	if _, w := tinyfont.LineWidth(c.font, s); int(w) > width && end != 0 {
		return end
	}
	return len(s)
}

func minInt(i1, i2 int) int {
	if i1 <= i2 {
		return i1
	}
	return i2
}
