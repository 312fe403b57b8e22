// Package convert turns captured RGBA frames into the packed 1bpp
// black/red planes the tri-color e-paper controller expects.
package convert

import (
	"fmt"
	"image"
	"image/color"
)

// Panel geometry (7.5" B, tri-color, portrait orientation).
const (
	PanelWidth     = 480
	PanelHeight    = 800
	PanelByteWidth = PanelWidth / 8 // 60 bytes per row
	PanelPlaneSize = PanelByteWidth * PanelHeight
)

// inkColor indicates which plane a pixel is drawn to.
type inkColor int

const (
	inkWhite inkColor = iota
	inkBlack
	inkRed
)

// PackNRGBA converts an image.NRGBA into packed 1bpp black/red planes.
//
// The image width must be exactly PanelWidth; the height must be at
// least PanelHeight (taller captures are center-cropped vertically).
// Each plane is y-major, MSB-first 1bpp: all bits start at 1 (white) and
// inked pixels clear their bit. Transparent pixels (alpha < 128) count
// as white.
func PackNRGBA(img *image.NRGBA) (black, red []byte, err error) {
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()

	if w != PanelWidth {
		return nil, nil, fmt.Errorf("convert: expected width %d, got %d", PanelWidth, w)
	}
	if h < PanelHeight {
		return nil, nil, fmt.Errorf("convert: expected height >= %d, got %d", PanelHeight, h)
	}

	// Center-crop vertically when the capture is taller than the panel.
	startY := b.Min.Y + (h-PanelHeight)/2

	black = make([]byte, PanelPlaneSize)
	red = make([]byte, PanelPlaneSize)
	for i := range black {
		black[i] = 0xFF
	}
	for i := range red {
		red[i] = 0xFF
	}

	// Walk the pixel buffer via the stride to avoid At() per pixel.
	for py := 0; py < PanelHeight; py++ {
		rowOff := (startY + py - b.Min.Y) * img.Stride
		for px := 0; px < PanelWidth; px++ {
			i := rowOff + px*4

			r := img.Pix[i+0]
			g := img.Pix[i+1]
			bb := img.Pix[i+2]
			a := img.Pix[i+3]
			if a < 128 {
				continue
			}

			ink := classifyPixel(color.NRGBA{R: r, G: g, B: bb, A: a})
			if ink == inkWhite {
				continue
			}

			byteIndex := py*PanelByteWidth + (px >> 3)
			mask := byte(0x80 >> (px & 7))
			switch ink {
			case inkBlack:
				black[byteIndex] &^= mask
			case inkRed:
				red[byteIndex] &^= mask
			}
		}
	}

	return black, red, nil
}

// classifyPixel decides whether a pixel renders black, red, or white on
// the tri-color panel. Dark pixels (luma < 64) go black; sufficiently
// red pixels (R > 128 and R exceeding max(G,B) by more than 32) go red;
// everything else stays white.
func classifyPixel(c color.NRGBA) inkColor {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)

	luma := 0.299*r + 0.587*g + 0.114*b
	if luma < 64 {
		return inkBlack
	}

	maxGB := g
	if b > maxGB {
		maxGB = b
	}
	if r > 128 && r-maxGB > 32 {
		return inkRed
	}
	return inkWhite
}
