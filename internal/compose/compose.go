// Package compose draws a computed layout plan onto a raster canvas and
// encodes the result as PNG.
//
// The compositor makes no placement decisions: every position comes from
// the [layout.Plan]. Assets arrive as encoded bytes (PNG, JPEG, GIF or WebP)
// and are decoded once up front by [Decode].
package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	// Decoders for cover and icon formats.
	_ "image/gif"
	_ "image/jpeg"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"tools.zach/dev/lyricard/internal/layout"
)

// ///////////////////////////////////////////////
// Assets
// ///////////////////////////////////////////////

// Asset names used in errors and logs.
const (
	AssetCover = "cover"
	AssetIcon  = "icon"
	AssetCode  = "code"
)

// Assets holds the encoded image inputs of a card.
type Assets struct {
	Cover []byte
	Icon  []byte
	Code  []byte
}

// Images holds decoded assets.
type Images struct {
	Cover image.Image
	Icon  image.Image
	Code  image.Image
}

// AssetDecodeError reports an asset whose bytes are not a supported image.
type AssetDecodeError struct {
	Asset string
	Err   error
}

func (e *AssetDecodeError) Error() string {
	return fmt.Sprintf("decode %s image: %v", e.Asset, e.Err)
}

func (e *AssetDecodeError) Unwrap() error { return e.Err }

// Decode decodes every asset, failing on the first one that is empty or
// not a supported image format.
func Decode(a Assets) (Images, error) {
	var imgs Images
	var err error
	if imgs.Cover, err = decodeAsset(AssetCover, a.Cover); err != nil {
		return Images{}, err
	}
	if imgs.Icon, err = decodeAsset(AssetIcon, a.Icon); err != nil {
		return Images{}, err
	}
	if imgs.Code, err = decodeAsset(AssetCode, a.Code); err != nil {
		return Images{}, err
	}
	return imgs, nil
}

func decodeAsset(name string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &AssetDecodeError{Asset: name, Err: errors.New("no data")}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &AssetDecodeError{Asset: name, Err: err}
	}
	return img, nil
}

// ///////////////////////////////////////////////
// Render
// ///////////////////////////////////////////////

// Faces are the drawing faces for each text role.
type Faces struct {
	Lyric  font.Face
	Title  font.Face
	Artist font.Face
}

// Render executes plan on a new canvas filled with the plan's background.
// Elements are drawn in plan order: cover, lyric rows, artist, title, icon
// and finally the code image scaled into its square.
func Render(plan *layout.Plan, imgs Images, faces Faces) (*image.NRGBA, error) {
	style := plan.Style()
	canvas := imaging.New(plan.Width(), plan.Height(), style.Background)
	ink := image.NewUniform(style.Text)

	for _, e := range plan.Elements() {
		switch e.Kind {
		case layout.KindCover:
			if imgs.Cover == nil {
				return nil, &AssetDecodeError{Asset: AssetCover, Err: errors.New("not decoded")}
			}
			cover := imaging.Resize(imgs.Cover, e.Rect.Dx(), e.Rect.Dy(), imaging.Lanczos)
			draw.Draw(canvas, e.Rect, cover, image.Point{}, draw.Src)
		case layout.KindLyric:
			drawText(canvas, ink, faces.Lyric, e)
		case layout.KindArtist:
			drawText(canvas, ink, faces.Artist, e)
		case layout.KindTitle:
			drawText(canvas, ink, faces.Title, e)
		case layout.KindIcon:
			if imgs.Icon == nil {
				return nil, &AssetDecodeError{Asset: AssetIcon, Err: errors.New("not decoded")}
			}
			canvas = imaging.Overlay(canvas, imgs.Icon, e.Rect.Min, 1.0)
		case layout.KindCode:
			if imgs.Code == nil {
				return nil, &AssetDecodeError{Asset: AssetCode, Err: errors.New("not decoded")}
			}
			code := imaging.Resize(imgs.Code, e.Rect.Dx(), e.Rect.Dy(), imaging.Lanczos)
			canvas = imaging.Paste(canvas, code, e.Rect.Min)
		default:
			return nil, fmt.Errorf("unknown element kind %s", e.Kind)
		}
	}
	return canvas, nil
}

// drawText draws e.Text with its baseline at e.Origin.
func drawText(dst draw.Image, src image.Image, face font.Face, e layout.Element) {
	if e.Text == "" || face == nil {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.P(e.Origin.X, e.Origin.Y),
	}
	d.DrawString(e.Text)
}

// Encode encodes img as PNG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
