package server

import (
	"math"

	"skroodle/internal/game"
)

// simplifyStroke runs Ramer-Douglas-Peucker over a stroke segment, keeping
// only the points that deviate more than epsilon from the straight line
// through their neighbors. Only x and y participate; any trailing
// components ride along with the kept points.
func simplifyStroke(points []game.Point, epsilon float64) []game.Point {
	if len(points) < 3 {
		return points
	}
	epsilon = math.Abs(epsilon)
	keep := make([]bool, len(points))
	keep[0], keep[len(points)-1] = true, true
	markKept(points, 0, len(points)-1, epsilon, keep)

	out := make([]game.Point, 0, len(points))
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

func markKept(points []game.Point, first, last int, epsilon float64, keep []bool) {
	if last-first < 2 {
		return
	}
	index, dmax := first, 0.0
	for i := first + 1; i < last; i++ {
		if d := perpendicularDistance(points[i], points[first], points[last]); d > dmax {
			index, dmax = i, d
		}
	}
	if dmax <= epsilon {
		return
	}
	keep[index] = true
	markKept(points, first, index, epsilon, keep)
	markKept(points, index, last, epsilon, keep)
}

func perpendicularDistance(p, a, b game.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(p[0]-a[0], p[1]-a[1])
	}
	return math.Abs(dx*(a[1]-p[1])-dy*(a[0]-p[0])) / length
}
