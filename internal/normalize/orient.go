package normalize

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// orientationOf reads the EXIF orientation tag (1..8) from raw image bytes.
// Missing or unreadable metadata yields 1 (identity) — never an error.
func orientationOf(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

// applyOrientation maps an EXIF orientation code to the transform that makes
// the visual top of the image point up. Identity and unknown codes are a
// no-op.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// decodeImage decodes raw bytes into an image, accepting any format the
// imaging codecs register (PNG, JPEG, GIF, TIFF, BMP).
func decodeImage(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data))
}
