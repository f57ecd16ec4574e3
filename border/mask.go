// Package border draws colored borders around the subject (the
// non-transparent area) of transparent PNG images, either as a rectangle
// around the subject's bounding box or as a contour-following ring grown by
// morphological dilation of the alpha mask.
package border

import "image"

// Mask is a boolean grid over an image's pixels. For a subject mask, a cell
// is true where the pixel's alpha is greater than zero.
type Mask struct {
	w, h  int
	cells []bool
}

func NewMask(w, h int) *Mask {
	return &Mask{w: w, h: h, cells: make([]bool, w*h)}
}

// SubjectMask derives the subject mask from an image's alpha channel.
func SubjectMask(img *image.NRGBA) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+m.w*4]
		for x := 0; x < m.w; x++ {
			if row[x*4+3] > 0 {
				m.cells[y*m.w+x] = true
			}
		}
	}
	return m
}

func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.cells[y*m.w+x]
}

func (m *Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return
	}
	m.cells[y*m.w+x] = true
}

// Empty reports whether no cell is set.
func (m *Mask) Empty() bool {
	for _, c := range m.cells {
		if c {
			return false
		}
	}
	return true
}

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0
	for _, c := range m.cells {
		if c {
			n++
		}
	}
	return n
}

// BBox returns the minimal axis-aligned rectangle (inclusive coordinates)
// enclosing every set cell. ok is false for an empty mask.
func (m *Mask) BBox() (left, top, right, bottom int, ok bool) {
	left, top = m.w, m.h
	right, bottom = -1, -1
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if !m.cells[y*m.w+x] {
				continue
			}
			if x < left {
				left = x
			}
			if x > right {
				right = x
			}
			if y < top {
				top = y
			}
			if y > bottom {
				bottom = y
			}
		}
	}
	if right < 0 {
		return 0, 0, 0, 0, false
	}
	return left, top, right, bottom, true
}

// Dilate grows the mask by one step with an 8-connected (3x3 all-true)
// structuring element and returns the grown copy.
func (m *Mask) Dilate() *Mask {
	out := NewMask(m.w, m.h)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.cells[y*m.w+x] {
				out.cells[y*m.w+x] = true
				continue
			}
			if m.At(x-1, y-1) || m.At(x, y-1) || m.At(x+1, y-1) ||
				m.At(x-1, y) || m.At(x+1, y) ||
				m.At(x-1, y+1) || m.At(x, y+1) || m.At(x+1, y+1) {
				out.cells[y*m.w+x] = true
			}
		}
	}
	return out
}
