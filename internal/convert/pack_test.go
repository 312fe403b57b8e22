package convert

import (
	"image"
	"image/color"
	"testing"
)

func blankPanel() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, PanelWidth, PanelHeight))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

func bitCleared(plane []byte, x, y int) bool {
	return plane[y*PanelByteWidth+(x>>3)]&(0x80>>(x&7)) == 0
}

func TestPackNRGBA_Planes(t *testing.T) {
	img := blankPanel()
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})                          // black
	img.SetNRGBA(100, 50, color.NRGBA{R: 200, G: 30, B: 30, A: 255}) // red
	img.SetNRGBA(7, 0, color.NRGBA{A: 255})                          // black, same byte as (0,0)

	black, red, err := PackNRGBA(img)
	if err != nil {
		t.Fatal(err)
	}
	if len(black) != PanelPlaneSize || len(red) != PanelPlaneSize {
		t.Fatalf("plane sizes %d/%d, want %d", len(black), len(red), PanelPlaneSize)
	}

	if !bitCleared(black, 0, 0) || !bitCleared(black, 7, 0) {
		t.Error("black pixels not cleared in the black plane")
	}
	if black[0] != 0x7E {
		t.Errorf("first black byte = %#x, want 0x7e (MSB and LSB cleared)", black[0])
	}
	if bitCleared(red, 0, 0) {
		t.Error("black pixel leaked into the red plane")
	}
	if !bitCleared(red, 100, 50) {
		t.Error("red pixel not cleared in the red plane")
	}
	if bitCleared(black, 100, 50) {
		t.Error("red pixel leaked into the black plane")
	}
}

func TestPackNRGBA_TransparentIsWhite(t *testing.T) {
	img := blankPanel()
	img.SetNRGBA(10, 10, color.NRGBA{R: 0, G: 0, B: 0, A: 0})

	black, _, err := PackNRGBA(img)
	if err != nil {
		t.Fatal(err)
	}
	if bitCleared(black, 10, 10) {
		t.Error("transparent pixel inked")
	}
}

func TestPackNRGBA_SizeValidation(t *testing.T) {
	if _, _, err := PackNRGBA(image.NewNRGBA(image.Rect(0, 0, 100, PanelHeight))); err == nil {
		t.Error("wrong width accepted")
	}
	if _, _, err := PackNRGBA(image.NewNRGBA(image.Rect(0, 0, PanelWidth, 100))); err == nil {
		t.Error("short image accepted")
	}
}

func TestPackNRGBA_TallCaptureCropped(t *testing.T) {
	tall := image.NewNRGBA(image.Rect(0, 0, PanelWidth, PanelHeight+100))
	for i := range tall.Pix {
		tall.Pix[i] = 0xFF
	}
	// A black pixel 50 rows into the crop window maps to panel row 0.
	tall.SetNRGBA(0, 50, color.NRGBA{A: 255})

	black, _, err := PackNRGBA(tall)
	if err != nil {
		t.Fatal(err)
	}
	if !bitCleared(black, 0, 0) {
		t.Error("center crop offset wrong: pixel at capture row 50 should land on panel row 0")
	}
}

func TestClassifyPixel(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want inkColor
	}{
		{"black", color.NRGBA{A: 255}, inkBlack},
		{"white", color.NRGBA{R: 255, G: 255, B: 255, A: 255}, inkWhite},
		{"red", color.NRGBA{R: 200, G: 30, B: 30, A: 255}, inkRed},
		{"dark red is black", color.NRGBA{R: 100, G: 0, B: 0, A: 255}, inkBlack},
		{"orange-ish gray stays white", color.NRGBA{R: 150, G: 140, B: 130, A: 255}, inkWhite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyPixel(tt.c); got != tt.want {
				t.Errorf("classifyPixel(%+v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}
