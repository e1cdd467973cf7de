package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEdges_SameSize(t *testing.T) {
	img := createFramedImage(64, 48, 16, 12, 48, 36, color.White)

	edges := ComputeEdges(img)
	require.NotNil(t, edges)
	assert.Equal(t, image.Rect(0, 0, 64, 48), edges.Bounds())
}

func TestComputeEdges_UniformImage(t *testing.T) {
	img := createInMemoryImage(50, 50, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	edges := ComputeEdges(img)
	for _, v := range edges.Pix {
		require.Zero(t, v, "uniform image must not produce edges")
	}
}

func TestComputeEdges_AllBlack(t *testing.T) {
	edges := ComputeEdges(createInMemoryImage(30, 20, color.Black))
	for _, v := range edges.Pix {
		require.Zero(t, v)
	}
}

func TestComputeEdges_VerticalEdge(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x < 50 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}

	edges := ComputeEdges(img)

	assert.Greater(t, edges.GrayAt(50, 50).Y, uint8(100), "step must register near x=50")
	assert.Zero(t, edges.GrayAt(10, 50).Y, "flat region left of the step")
	assert.Zero(t, edges.GrayAt(90, 50).Y, "flat region right of the step")
}

// Either gradient direction alone is enough to mark a pixel.
func TestComputeEdges_HorizontalEdge(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			if y < 30 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}

	edges := ComputeEdges(img)
	assert.Greater(t, edges.GrayAt(30, 30).Y, uint8(100))
	assert.Zero(t, edges.GrayAt(30, 5).Y)
}

func TestComputeEdges_NonZeroOrigin(t *testing.T) {
	base := createFramedImage(80, 80, 20, 20, 60, 60, color.White)
	sub := base.SubImage(image.Rect(10, 10, 70, 70))

	edges := ComputeEdges(sub)
	assert.Equal(t, image.Rect(0, 0, 60, 60), edges.Bounds())
}

func TestComputeEdges_SmallImage(t *testing.T) {
	edges := ComputeEdges(createInMemoryImage(3, 2, color.White))
	assert.Equal(t, image.Rect(0, 0, 3, 2), edges.Bounds())
}

func TestGaussianKernel(t *testing.T) {
	k := gaussianKernel(11)
	require.Len(t, k.Matrix, 11)

	var sum float64
	for i, v := range k.Matrix {
		sum += v
		assert.InDelta(t, v, k.Matrix[10-i], 1e-15, "kernel must be symmetric")
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	// sigma 2.0: neighbouring taps around the center differ by exp(-1/8)
	assert.InDelta(t, math.Exp(-1.0/8), k.Matrix[6]/k.Matrix[5], 1e-12)
	assert.InDelta(t, math.Exp(-25.0/8), k.Matrix[0]/k.Matrix[5], 1e-12)
}
