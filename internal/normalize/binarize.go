package normalize

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// binarize runs the legibility stage: grayscale, an edge-preserving denoise,
// then an adaptive local threshold. The output is a pure black/white image.
func (p *Pipeline) binarize(img image.Image) *image.Gray {
	gray := toGray(imaging.Grayscale(img))
	denoised := bilateral(gray, p.opts.DenoiseDiameter, p.opts.DenoiseSigmaColor, p.opts.DenoiseSigmaSpace)
	return adaptiveThreshold(denoised, p.opts.ThresholdWindow, p.opts.ThresholdBias)
}

// toGray collapses an already-grayscale NRGBA image into image.Gray,
// reading the red channel.
func toGray(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		srcRow := src.Pix[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dstRow[x] = srcRow[x*4]
		}
	}
	return dst
}

// bilateral smooths flat regions while keeping edges intact. Each output
// pixel is a weighted mean of its diameter×diameter neighborhood, where a
// neighbor's weight falls off with spatial distance (sigmaSpace) and with
// intensity difference from the center pixel (sigmaColor). Neighbors across
// an edge differ strongly in intensity and contribute almost nothing, so the
// edge survives for the threshold stage. The window is clipped at borders.
func bilateral(src *image.Gray, diameter int, sigmaColor, sigmaSpace float64) *image.Gray {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	r := diameter / 2

	spatial := make([]float64, diameter*diameter)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+r)*diameter+(dx+r)] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}

	var intensity [256]float64
	for i := range intensity {
		d := float64(i)
		intensity[i] = math.Exp(-d * d / (2 * sigmaColor * sigmaColor))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := src.Pix[y*src.Stride+x]

			var sum, norm float64
			for dy := -r; dy <= r; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				for dx := -r; dx <= r; dx++ {
					xx := x + dx
					if xx < 0 || xx >= w {
						continue
					}
					v := src.Pix[yy*src.Stride+xx]
					diff := int(v) - int(center)
					if diff < 0 {
						diff = -diff
					}
					wgt := spatial[(dy+r)*diameter+(dx+r)] * intensity[diff]
					sum += wgt * float64(v)
					norm += wgt
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8(sum/norm + 0.5)
		}
	}
	return dst
}

// adaptiveThreshold binarizes a grayscale image against the local mean of a
// window×window neighborhood minus bias. A pixel brighter than its local
// threshold becomes white, everything else black. The window is clipped at
// the image borders.
func adaptiveThreshold(src *image.Gray, window, bias int) *image.Gray {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	// Summed-area table, (w+1)×(h+1), so any rectangle sum is four lookups.
	integral := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(src.Pix[y*src.Stride+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	r := window / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0 := max(0, x-r)
			y0 := max(0, y-r)
			x1 := min(w-1, x+r)
			y1 := min(h-1, y+r)

			count := uint64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] -
				integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] +
				integral[y0*(w+1)+x0]

			mean := int(sum / count)
			if int(src.Pix[y*src.Stride+x]) > mean-bias {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}
