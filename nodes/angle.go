package nodes

import "math"

// wrapAngle maps degrees into [0, 360).
func wrapAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// blendAngle interpolates between angles a and b (degrees) along the shorter
// arc as x moves from x0 to x1.
func blendAngle(x, x0, x1, a, b float64) float64 {
	if x1 == x0 {
		return wrapAngle(b)
	}
	diff := math.Mod(b-a+540, 360) - 180
	return wrapAngle(a + diff*(x-x0)/(x1-x0))
}
