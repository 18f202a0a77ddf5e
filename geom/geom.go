package geom

// BoundingBox is an axis-aligned box, either in normalized [0,1] surface
// coordinates or in pixels. It is a value type; every transform returns a copy.
type BoundingBox struct {
	X, Y, W, H float64
}

// Box is shorthand for BoundingBox{x, y, w, h}.
func Box(x, y, w, h float64) BoundingBox {
	return BoundingBox{X: x, Y: y, W: w, H: h}
}

// ToPixels scales a normalized box to a surface of the given size.
func (b BoundingBox) ToPixels(width, height float64) BoundingBox {
	return BoundingBox{
		X: b.X * width,
		Y: b.Y * height,
		W: b.W * width,
		H: b.H * height,
	}
}

// Contains reports whether (px, py) lies inside the box.
// The upper edges are excluded on both axes.
func (b BoundingBox) Contains(px, py float64) bool {
	return b.X <= px && px < b.X+b.W &&
		b.Y <= py && py < b.Y+b.H
}

// Inset shrinks the box by d on every side. Extent never goes negative.
func (b BoundingBox) Inset(d float64) BoundingBox {
	out := BoundingBox{X: b.X + d, Y: b.Y + d, W: b.W - 2*d, H: b.H - 2*d}
	if out.W < 0 {
		out.X, out.W = b.X+b.W/2, 0
	}
	if out.H < 0 {
		out.Y, out.H = b.Y+b.H/2, 0
	}
	return out
}

// Valid reports whether the box has positive extent.
func (b BoundingBox) Valid() bool {
	return b.W > 0 && b.H > 0
}

// Bottom returns the y coordinate of the lower edge.
func (b BoundingBox) Bottom() float64 { return b.Y + b.H }

// Right returns the x coordinate of the right edge.
func (b BoundingBox) Right() float64 { return b.X + b.W }

// Normalize interprets x relative to [min, max] as a value where min maps to 0
// and max maps to 1. min may be greater than max to flip the axis.
// With confine set, the result is clamped to [0,1].
// The caller guarantees min != max.
func Normalize(x, min, max float64, confine bool) float64 {
	v := (x - min) / (max - min)
	if confine {
		v = Clamp01(v)
	}
	return v
}

// Lerp interpolates between a and b. t is clamped to [0,1].
func Lerp(a, b, t float64) float64 {
	t = Clamp01(t)
	return a + (b-a)*t
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
