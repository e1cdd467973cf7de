package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// edgeBlurSize is the side of the smoothing window applied before
// differentiation.
const edgeBlurSize = 11

var (
	edgeBlur = gaussianKernel(edgeBlurSize)

	sobelX = &convolution.Kernel{
		Matrix: []float64{
			-1, 0, 1,
			-2, 0, 2,
			-1, 0, 1,
		},
		Width:  3,
		Height: 3,
	}
	sobelY = &convolution.Kernel{
		Matrix: []float64{
			-1, -2, -1,
			0, 0, 0,
			1, 2, 1,
		},
		Width:  3,
		Height: 3,
	}
)

// ComputeEdges returns the edge-magnitude map of img.
//
// The result has the same width and height as img, anchored at (0,0). Each
// pixel holds the combined strength of the horizontal and vertical gradient,
// saturated to 0-255.
//
// # Algorithm
//
//  1. Grayscale conversion using ITU-R BT.601 weights
//     (0.299*R + 0.587*G + 0.114*B)
//
//  2. Gaussian blur with an 11x11 support to suppress pixel-level noise.
//     Sigma follows from the window size as 0.3*((size-1)/2 - 1) + 0.8,
//     which is 2.0 for 11 taps.
//
//  3. Sobel derivatives in X and Y. Each is taken in absolute value and
//     saturated to 8 bits.
//
//  4. The two directional maps are combined with a bitwise OR, so either a
//     horizontal or a vertical edge registers.
//
// Borders replicate the outermost pixels.
func ComputeEdges(img image.Image) *image.Gray {
	gray := imaging.Grayscale(img)
	blurred := gaussianBlur(gray, edgeBlur)

	gx := absGradient(blurred, sobelX)
	gy := absGradient(blurred, sobelY)

	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := range out.Pix {
		out.Pix[i] = gx[i] | gy[i]
	}
	return out
}

// absGradient convolves src with k and with -k and keeps the larger of the
// two clamped responses, which is |k * src| saturated to 255. The result is
// the red channel laid out row-major without stride padding.
func absGradient(src image.Image, k *convolution.Kernel) []uint8 {
	opts := &convolution.Options{Bias: 0, Wrap: false, KeepAlpha: true}
	pos := convolution.Convolve(src, k, opts)
	neg := convolution.Convolve(src, negate(k), opts)

	w, h := pos.Rect.Dx(), pos.Rect.Dy()
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := pos.Pix[y*pos.Stride+x*4]
			n := neg.Pix[y*neg.Stride+x*4]
			if n > p {
				p = n
			}
			out[y*w+x] = p
		}
	}
	return out
}

func negate(k *convolution.Kernel) *convolution.Kernel {
	m := make([]float64, len(k.Matrix))
	for i, v := range k.Matrix {
		m[i] = -v
	}
	return &convolution.Kernel{Matrix: m, Width: k.Width, Height: k.Height}
}

// gaussianKernel returns a normalized 1-D Gaussian of the given odd size.
// Sigma is derived from the size the same way OpenCV does when it is not
// given explicitly.
func gaussianKernel(size int) *convolution.Kernel {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	k := convolution.NewKernel(size, 1)
	center := float64(size / 2)
	var sum float64
	for i := range k.Matrix {
		x := float64(i) - center
		k.Matrix[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k.Matrix[i]
	}
	for i := range k.Matrix {
		k.Matrix[i] /= sum
	}
	return k
}

// gaussianBlur runs k horizontally and then vertically.
func gaussianBlur(src image.Image, k *convolution.Kernel) *image.RGBA {
	opts := &convolution.Options{Bias: 0, Wrap: false, KeepAlpha: false}
	out := convolution.Convolve(src, k, opts)
	return convolution.Convolve(out, k.Transposed(), opts)
}
