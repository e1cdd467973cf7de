package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Defaults for the content and aspect croppers.
const (
	DefaultEdgeThreshold uint8   = 10
	DefaultCropMargin    float64 = 0.2
	DefaultAspectRatio   float64 = 1.2
)

// BoundingBox is a crop window in image coordinates.
//
// Min bounds are inclusive and Max bounds are exclusive, so a box always
// satisfies 0 <= Min <= Max <= extent on each axis.
type BoundingBox struct {
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// Rect converts the box to an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Empty reports whether the box covers no pixels.
func (b BoundingBox) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("x=[%d,%d) y=[%d,%d)", b.MinX, b.MaxX, b.MinY, b.MaxY)
}

// ContentBounds finds the content box of an edge map.
//
// Only two lines are inspected: the center row decides the horizontal
// bounds and the center column decides the vertical bounds. On each line the
// first and last positions with an edge value >= threshold become the lower
// and upper bound; a line without such a position keeps the full extent.
//
// # Margin Guard
//
// A bound that would remove more than margin*extent pixels from its side is
// treated as detection noise and reset to the image border:
//
//	lower > margin*extent         -> lower = 0
//	extent - upper > margin*extent -> upper = extent
//
// An edge map with no edges therefore yields the full image on both axes.
func ContentBounds(edges *image.Gray, threshold uint8, margin float64) BoundingBox {
	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return BoundingBox{}
	}

	row := make([]uint8, w)
	midY := h / 2
	for x := 0; x < w; x++ {
		row[x] = edges.GrayAt(b.Min.X+x, b.Min.Y+midY).Y
	}

	col := make([]uint8, h)
	midX := w / 2
	for y := 0; y < h; y++ {
		col[y] = edges.GrayAt(b.Min.X+midX, b.Min.Y+y).Y
	}

	minX, maxX := lineBounds(row, threshold, margin)
	minY, maxY := lineBounds(col, threshold, margin)
	return BoundingBox{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
}

// lineBounds applies the threshold scan and the margin guard to one line.
// The upper bound is the index of the last edge pixel itself, so that pixel
// is excluded from the crop.
func lineBounds(line []uint8, threshold uint8, margin float64) (lower, upper int) {
	extent := len(line)
	lower, upper = -1, extent
	for i, v := range line {
		if v >= threshold {
			if lower < 0 {
				lower = i
			}
			upper = i
		}
	}
	if lower < 0 {
		return 0, extent
	}

	limit := margin * float64(extent)
	if float64(lower) > limit {
		lower = 0
	}
	if float64(extent-upper) > limit {
		upper = extent
	}
	return lower, upper
}

// CropToContent trims low-information borders from img.
//
// The edge map from ComputeEdges is reduced to a box by ContentBounds and all
// color channels are cropped to it. The box is returned alongside the crop,
// in the coordinates of img with its origin moved to (0,0).
//
// # Errors
//
//   - ErrChannelMismatch for single-channel input
//   - ErrEmptyCrop if the box has zero area
func CropToContent(img image.Image, threshold uint8, margin float64) (*image.NRGBA, BoundingBox, error) {
	if err := requireColor(img); err != nil {
		return nil, BoundingBox{}, err
	}
	src := asNRGBA(img)

	box := ContentBounds(ComputeEdges(src), threshold, margin)
	if box.Empty() {
		return nil, box, errors.Wrapf(ErrEmptyCrop, "content box %s", box)
	}
	return imaging.Crop(src, box.Rect()), box, nil
}

// CropToAspect trims the longer side of img so that its aspect ratio
// (longer/shorter) approaches target.
//
// An image whose ratio is already below target is returned unchanged (as a
// copy). Otherwise floor(k*longer) pixels are removed from both ends of the
// longer side, where
//
//	sar = longer / shorter
//	k   = 0.5 * (1 - target/sar)
//
// The shorter side is never touched. Because the trim is truncated the result
// can overshoot the exact target slightly; that is accepted.
//
// # Errors
//
//   - ErrChannelMismatch for single-channel input
//   - ErrEmptyCrop if the input or the result has zero area
func CropToAspect(img image.Image, target float64) (*image.NRGBA, error) {
	if target <= 0 || math.IsNaN(target) {
		return nil, fmt.Errorf("aspect ratio must be positive, got %v", target)
	}
	if err := requireColor(img); err != nil {
		return nil, err
	}
	src := asNRGBA(img)

	h, w := src.Rect.Dy(), src.Rect.Dx()
	if h == 0 || w == 0 {
		return nil, errors.Wrapf(ErrEmptyCrop, "input is %dx%d", w, h)
	}

	longer, shorter := max(h, w), min(h, w)
	sar := float64(longer) / float64(shorter)
	if sar < target {
		return imaging.Clone(src), nil
	}

	k := 0.5 * (1.0 - target/sar)
	trim := int(k * float64(longer))

	var rect image.Rectangle
	if h > w {
		rect = image.Rect(0, trim, w, h-trim)
	} else {
		rect = image.Rect(trim, 0, w-trim, h)
	}
	if rect.Empty() {
		return nil, errors.Wrapf(ErrEmptyCrop, "aspect crop of %dx%d to %v", w, h, target)
	}
	return imaging.Crop(src, rect), nil
}

// Resize scales img to exactly width x height with a bilinear filter,
// ignoring the source aspect ratio.
func Resize(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid output size %dx%d", width, height)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.Wrap(ErrEmptyCrop, "resize of an empty image")
	}
	return imaging.Resize(img, width, height, imaging.Linear), nil
}
