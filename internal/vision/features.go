// Package vision extracts heuristic features from verification photos. None of
// this is real computer vision; labels are synthesized from pixel statistics,
// line geometry and color proportions, plus documented random filler.
package vision

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

const (
	// scaledSize is the side of the working downscale used for edge, line
	// and color analysis. Keeps cost independent of input resolution.
	scaledSize = 100

	// edgeThreshold is the combined RGB delta above which a pixel pair
	// counts as an edge.
	edgeThreshold = 30

	// runDelta is the per-channel delta under which two consecutive pixels
	// belong to the same run during line counting.
	runDelta = 20
)

// pixel is one sampled pixel in 8-bit channel space.
type pixel struct {
	r, g, b float64
}

// downscale resizes img to scaledSize x scaledSize.
func downscale(img image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, scaledSize, scaledSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// samplePixels walks img on a uniform stride, collecting at most cap pixels.
func samplePixels(img image.Image, cap int) []pixel {
	if cap <= 0 {
		cap = 1000
	}
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return nil
	}

	stride := 1
	if total > cap {
		stride = int(math.Ceil(math.Sqrt(float64(total) / float64(cap))))
	}

	samples := make([]pixel, 0, cap)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			r, g, b, _ := img.At(x, y).RGBA()
			samples = append(samples, pixel{
				r: float64(r >> 8),
				g: float64(g >> 8),
				b: float64(b >> 8),
			})
			if len(samples) >= cap {
				return samples
			}
		}
	}
	return samples
}

// brightness is the mean perceived luminance of the samples, in [0,1].
func brightness(samples []pixel) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, p := range samples {
		sum += 0.299*p.r + 0.587*p.g + 0.114*p.b
	}
	return sum / float64(len(samples)) / 255.0
}

// colorfulness is the mean per-channel standard deviation, in [0,1].
func colorfulness(samples []pixel) float64 {
	if len(samples) == 0 {
		return 0
	}

	var meanR, meanG, meanB float64
	for _, p := range samples {
		meanR += p.r
		meanG += p.g
		meanB += p.b
	}
	n := float64(len(samples))
	meanR /= n
	meanG /= n
	meanB /= n

	var varR, varG, varB float64
	for _, p := range samples {
		varR += (p.r - meanR) * (p.r - meanR)
		varG += (p.g - meanG) * (p.g - meanG)
		varB += (p.b - meanB) * (p.b - meanB)
	}
	stddev := (math.Sqrt(varR/n) + math.Sqrt(varG/n) + math.Sqrt(varB/n)) / 3.0
	return stddev / 255.0
}

// edgeDensity is the fraction of pixel pairs in the scaled image whose
// combined RGB delta against the left and top neighbor exceeds the threshold.
func edgeDensity(scaled *image.RGBA) float64 {
	bounds := scaled.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 2 || height < 2 {
		return 0
	}

	edges, pairs := 0, 0
	for y := 1; y < height; y++ {
		for x := 1; x < width; x++ {
			cur := rgbaAt(scaled, x, y)
			left := rgbaAt(scaled, x-1, y)
			top := rgbaAt(scaled, x, y-1)

			if channelDelta(cur, left) > edgeThreshold {
				edges++
			}
			pairs++
			if channelDelta(cur, top) > edgeThreshold {
				edges++
			}
			pairs++
		}
	}
	return float64(edges) / float64(pairs)
}

// complexity blends edge density and colorfulness.
func complexity(edge, colorful float64) float64 {
	return 0.7*edge + 0.3*colorful
}

func rgbaAt(img *image.RGBA, x, y int) pixel {
	i := img.PixOffset(img.Bounds().Min.X+x, img.Bounds().Min.Y+y)
	return pixel{
		r: float64(img.Pix[i]),
		g: float64(img.Pix[i+1]),
		b: float64(img.Pix[i+2]),
	}
}

// channelDelta is the summed absolute RGB difference of two pixels.
func channelDelta(a, b pixel) float64 {
	return math.Abs(a.r-b.r) + math.Abs(a.g-b.g) + math.Abs(a.b-b.b)
}
