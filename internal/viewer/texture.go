package viewer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"github.com/taigrr/modelview/pkg/render"
)

func textureSuffix(name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedTexture, filepath.Base(name))
	}
}

// DecodeTexture decodes a JPEG file and shrinks it to fit the configured
// maximum size, keeping the aspect ratio.
func (v *Viewer) DecodeTexture(name string, data []byte) (*render.Texture, error) {
	if err := textureSuffix(name); err != nil {
		return nil, err
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	img = fitTexture(img, v.opts.TextureMaxSize)
	return render.TextureFromImage(filepath.Base(name), img), nil
}

func fitTexture(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	if maxSize <= 0 || (b.Dx() <= maxSize && b.Dy() <= maxSize) {
		return img
	}
	return resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Bilinear)
}
