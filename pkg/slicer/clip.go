package slicer

import "github.com/philipparndt/goslice/pkg/geometry"

// clipBelow clips a triangle against the plane z=world and keeps the part
// at or below it. The result is zero, one or two triangles.
func clipBelow(tri geometry.Triangle, world float64) []geometry.Triangle {
	vertices := tri.Vertices()

	inside := [3]bool{}
	insideCount := 0
	for i, v := range vertices {
		inside[i] = v.Z <= world
		if inside[i] {
			insideCount++
		}
	}

	cut := func(a, b geometry.Vector3) geometry.Vector3 {
		return a.Lerp(b, (world-a.Z)/(b.Z-a.Z))
	}
	make3 := func(a, b, c geometry.Vector3) geometry.Triangle {
		return geometry.NewTriangle(tri.Normal, a, b, c)
	}

	switch insideCount {
	case 3:
		return []geometry.Triangle{tri}
	case 0:
		return nil
	case 1:
		// One vertex below: shrink to the corner triangle at that vertex
		i := 0
		for !inside[i] {
			i++
		}
		v0, v1, v2 := vertices[i], vertices[(i+1)%3], vertices[(i+2)%3]
		return []geometry.Triangle{make3(v0, cut(v0, v1), cut(v0, v2))}
	default:
		// One vertex above: the remaining quad is split into two triangles
		i := 0
		for inside[i] {
			i++
		}
		v0, v1, v2 := vertices[i], vertices[(i+1)%3], vertices[(i+2)%3]
		n1, n2 := cut(v0, v1), cut(v0, v2)
		return []geometry.Triangle{make3(v1, v2, n1), make3(v2, n2, n1)}
	}
}
