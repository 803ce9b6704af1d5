package media

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const jpegQuality = 80

// Optimize downscales an image wider than maxWidth and re-encodes it as
// JPEG. Anything it cannot decode, or that already fits, is returned
// unchanged.
func Optimize(f File, maxWidth int) File {
	if maxWidth <= 0 {
		return f
	}
	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return f
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return f
	}

	newH := max(h*maxWidth/w, 1)
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return f
	}
	base, ext := slugifyFilename(f.Name)
	if ext != ".jpg" && ext != ".jpeg" {
		ext = ".jpg"
	}
	return File{Name: base + ext, ContentType: "image/jpeg", Data: buf.Bytes()}
}
