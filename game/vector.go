package game

import "math"

// Vec3 is a position, velocity, or direction in world space. Z is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Norm returns the vector's length
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector along v, or the zero vector when v is
// too short to have a direction
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n < 1e-9 {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

// Ground projects v onto the floor plane
func (v Vec3) Ground() Vec3 {
	return Vec3{v.X, v.Y, 0}
}

// Dot returns the dot product of a and b
func Dot(a, b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Distance calculates distance between two points
func Distance(a, b Vec3) float64 {
	return b.Sub(a).Norm()
}

// GroundDistance is the distance between a and b ignoring height
func GroundDistance(a, b Vec3) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Direction returns the unit vector from a toward b
func Direction(a, b Vec3) Vec3 {
	return b.Sub(a).Normalize()
}

// Align scores the shot angle from car through ball toward goal: the dot
// product of the ground-projected car->ball and ball->goal directions.
// 1 means the car sits directly behind the ball on the line to goal, -1
// means it would knock the ball straight away from it. Degenerate
// (zero-length) legs score 0.
func Align(car, ball, goal Vec3) float64 {
	return Dot(Direction(car.Ground(), ball.Ground()), Direction(ball.Ground(), goal.Ground()))
}

// NearestPoint returns the index of the point closest to target, or -1 for
// an empty slice. Ties go to the earliest point.
func NearestPoint(target Vec3, points []Vec3) int {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range points {
		if d := Distance(target, p); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
