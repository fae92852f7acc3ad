package scene

import (
	"image"
	"image/color"
	"math"
)

type screenPoint struct {
	x, y, z float64
}

// fillTriangleWithDepth fills a triangle with depth testing
func fillTriangleWithDepth(img *image.RGBA, zbuffer []float64, a, b, c screenPoint, col color.RGBA) {
	// Sort vertices by Y coordinate (top to bottom)
	if a.y > b.y {
		a, b = b, a
	}
	if b.y > c.y {
		b, c = c, b
	}
	if a.y > b.y {
		a, b = b, a
	}

	bounds := img.Bounds()
	width := bounds.Dx()

	edges := [3][2]screenPoint{{a, b}, {b, c}, {a, c}}

	for y := int(math.Max(0, math.Ceil(a.y))); y <= int(math.Min(float64(bounds.Max.Y-1), c.y)); y++ {
		fy := float64(y)

		var xs, zs [2]float64
		found := 0
		for _, e := range edges {
			p, q := e[0], e[1]
			if found == 2 || p.y == q.y || fy < p.y || fy > q.y {
				continue
			}
			t := (fy - p.y) / (q.y - p.y)
			xs[found] = p.x + t*(q.x-p.x)
			zs[found] = p.z + t*(q.z-p.z)
			found++
		}
		if found < 2 {
			continue
		}

		if xs[0] > xs[1] {
			xs[0], xs[1] = xs[1], xs[0]
			zs[0], zs[1] = zs[1], zs[0]
		}

		xStart := int(math.Max(0, math.Ceil(xs[0])))
		xEnd := int(math.Min(float64(bounds.Max.X-1), xs[1]))

		for x := xStart; x <= xEnd; x++ {
			t := 0.0
			if xs[1] != xs[0] {
				t = (float64(x) - xs[0]) / (xs[1] - xs[0])
			}
			z := zs[0] + t*(zs[1]-zs[0])

			// Depth test - draw if closer (smaller z)
			idx := y*width + x
			if idx >= 0 && idx < len(zbuffer) && z < zbuffer[idx] {
				zbuffer[idx] = z
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// drawLine draws a line on an image using Bresenham's algorithm
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := img.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}

	err := dx - dy

	for {
		if x1 >= 0 && x1 < bounds.Max.X && y1 >= 0 && y1 < bounds.Max.Y {
			img.SetRGBA(x1, y1, col)
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// clipLine keeps very distant endpoints from stalling the line walk
func clipLine(v float64) int {
	const limit = 1 << 15
	return int(math.Max(-limit, math.Min(limit, v)))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
