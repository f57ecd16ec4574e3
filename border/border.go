package border

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Mode selects how the border region is derived from the subject mask.
type Mode string

const (
	// ModeBoundingBox draws a solid band around the subject's minimal
	// axis-aligned bounding rectangle.
	ModeBoundingBox Mode = "bbox"
	// ModeSilhouette grows the subject by dilation and paints the newly
	// covered ring, so the border follows the subject's contour.
	ModeSilhouette Mode = "silhouette"
)

// Spec describes the border to draw. It is immutable once built.
type Spec struct {
	Color color.NRGBA
	Width int
	Mode  Mode
}

// ValidationError reports caller mistakes: out-of-range width, bad colors,
// unknown modes. These are fatal at the CLI boundary.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validate checks the spec at the boundary. Width must be in [1,100].
func (s Spec) Validate() error {
	if s.Width < 1 || s.Width > 100 {
		return &ValidationError{Msg: "border width must be between 1 and 100 pixels"}
	}
	switch s.Mode {
	case ModeBoundingBox, ModeSilhouette:
	default:
		return &ValidationError{Msg: fmt.Sprintf("unknown border mode %q", s.Mode)}
	}
	return nil
}

// ParseHexColor parses a "#RRGGBB" hex color (leading '#' optional) into a
// fully opaque NRGBA.
func ParseHexColor(s string) (color.NRGBA, error) {
	trimmed := strings.TrimPrefix(s, "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, &ValidationError{Msg: fmt.Sprintf("invalid hex color %q", s)}
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return color.NRGBA{}, &ValidationError{Msg: fmt.Sprintf("invalid hex color %q", s)}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Apply draws the border described by spec around the image's subject and
// returns the result together with the number of painted pixels. The input
// image is never modified. An image with no subject is returned as an
// untouched copy with zero painted pixels.
func Apply(img image.Image, spec Spec) (*image.NRGBA, int, error) {
	if err := spec.Validate(); err != nil {
		return nil, 0, err
	}

	result := imaging.Clone(img)
	mask := SubjectMask(result)
	if mask.Empty() {
		return result, 0, nil
	}

	var painted *Mask
	switch spec.Mode {
	case ModeBoundingBox:
		painted = bboxRegion(mask, spec.Width)
	case ModeSilhouette:
		painted = silhouetteRegion(mask, spec.Width)
	}

	n := 0
	for y := 0; y < painted.h; y++ {
		for x := 0; x < painted.w; x++ {
			if painted.cells[y*painted.w+x] {
				result.SetNRGBA(x, y, spec.Color)
				n++
			}
		}
	}
	return result, n, nil
}

// bboxRegion collects the pixels of width concentric 1-pixel rectangle
// outlines around the subject's bounding box, each ring expanded by one more
// pixel and clamped to the image bounds.
func bboxRegion(mask *Mask, width int) *Mask {
	region := NewMask(mask.w, mask.h)
	left, top, right, bottom, _ := mask.BBox()

	for i := 0; i < width; i++ {
		x0 := max(0, left-i)
		y0 := max(0, top-i)
		x1 := min(mask.w-1, right+i)
		y1 := min(mask.h-1, bottom+i)

		for x := x0; x <= x1; x++ {
			region.Set(x, y0)
			region.Set(x, y1)
		}
		for y := y0; y <= y1; y++ {
			region.Set(x0, y)
			region.Set(x1, y)
		}
	}
	return region
}

// silhouetteRegion dilates the subject mask width times and keeps only the
// cells dilation added, leaving the subject itself untouched.
func silhouetteRegion(mask *Mask, width int) *Mask {
	dilated := mask
	for i := 0; i < width; i++ {
		dilated = dilated.Dilate()
	}

	region := NewMask(mask.w, mask.h)
	for i, c := range dilated.cells {
		if c && !mask.cells[i] {
			region.cells[i] = true
		}
	}
	return region
}
