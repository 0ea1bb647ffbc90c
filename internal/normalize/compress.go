package normalize

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Quality ladder for bounded JPEG encoding. Encoding stops at the first
// quality that fits the byte ceiling; the floor quality is accepted even
// when it does not, so the ceiling is a soft target.
var jpegQualities = []int{85, 75, 65, 55, 45, 35}

// compress caps the artifact's long edge and re-encodes it as JPEG under
// the configured byte ceiling. It returns both the resized image (the
// thumbnail derives from it) and the encoded bytes.
func (p *Pipeline) compress(img image.Image) (image.Image, []byte, error) {
	img = fitLongEdge(img, p.opts.MaxLongEdge)

	data, err := encodeBounded(img, p.opts.MaxArtifactBytes)
	if err != nil {
		return nil, nil, err
	}
	return img, data, nil
}

// thumbnail produces the small preview from the compressed artifact.
func (p *Pipeline) thumbnail(compressed image.Image) ([]byte, error) {
	return encodeBounded(fitLongEdge(compressed, p.opts.ThumbLongEdge), p.opts.MaxThumbBytes)
}

func fitLongEdge(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxEdge && b.Dy() <= maxEdge {
		return img
	}
	return imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
}

func encodeBounded(img image.Image, maxBytes int) ([]byte, error) {
	var buf bytes.Buffer
	for _, q := range jpegQualities {
		buf.Reset()
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			return nil, fmt.Errorf("jpeg encode: %w", err)
		}
		if buf.Len() <= maxBytes {
			break
		}
	}
	return bytes.Clone(buf.Bytes()), nil
}
