package imaging

import (
	"image"
	"image/color"
)

// createInMemoryImage creates a uniform in-memory image for testing
func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createFramedImage creates a black image with a filled rectangle covering
// columns [x1,x2) and rows [y1,y2)
func createFramedImage(width, height, x1, y1, x2, y2 int, fill color.Color) *image.NRGBA {
	img := createInMemoryImage(width, height, color.Black)
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, fill)
		}
	}
	return img
}

// createEdgeMap builds an edge map with the given columns and rows set to v
// along their full length
func createEdgeMap(width, height int, v uint8, cols, rows []int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	for _, x := range cols {
		for y := 0; y < height; y++ {
			m.SetGray(x, y, color.Gray{Y: v})
		}
	}
	for _, y := range rows {
		for x := 0; x < width; x++ {
			m.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return m
}
