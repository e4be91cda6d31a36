package output

import (
	"image"

	"github.com/nfnt/resize"
)

// Thumbnail scales img to fit within a size x size box, keeping its aspect
// ratio. Images already inside the box are returned unchanged.
func Thumbnail(img image.Image, size uint) image.Image {
	if size == 0 {
		return img
	}
	return resize.Thumbnail(size, size, img, resize.Bilinear)
}
