// badge.go renders the default brand icon: a short label centred on a
// solid rectangle sized to the banner row.

package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Badge renders label in fg on a bg rectangle height pixels tall. The width
// follows the label's ink width plus half the height of padding per side.
// Returns the PNG bytes.
func Badge(label string, face font.Face, height int, bg, fg color.NRGBA) ([]byte, error) {
	if label == "" {
		return nil, fmt.Errorf("badge label is empty")
	}
	if height <= 0 {
		return nil, fmt.Errorf("invalid badge height %d", height)
	}

	bounds, _ := font.BoundString(face, label)
	glyphW := (bounds.Max.X - bounds.Min.X).Ceil()
	glyphH := (bounds.Max.Y - bounds.Min.Y).Ceil()
	width := glyphW + height

	originX := (width-glyphW)/2 - bounds.Min.X.Floor()
	originY := (height-glyphH)/2 - bounds.Min.Y.Floor()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(originX, originY),
	}
	d.DrawString(label)

	return Encode(img)
}
