package server

import (
	"math"

	"github.com/lab1702/rocket-hivemind/game"
)

// Intercept binds one car to the predicted ball sample it can meet first
type Intercept struct {
	Car       game.Car  `json:"car"`       // Car state when the intercept was computed
	Ball      game.Ball `json:"ball"`      // Predicted ball at the meeting point
	Time      float64   `json:"time"`      // Seconds from now until the meeting
	Index     int       `json:"index"`     // Sample index in the prediction, -1 if none
	Reachable bool      `json:"reachable"` // False when the last sample was taken as fallback
}

// Position is where the car meets the ball
func (i Intercept) Position() game.Vec3 {
	return i.Ball.Position
}

// ReachFunc estimates how many seconds car needs to get to target
type ReachFunc func(car game.Car, target game.Vec3) float64

// ConstantSpeed is a reach model that drives the straight ground distance
// at a fixed speed
func ConstantSpeed(speed float64) ReachFunc {
	return func(car game.Car, target game.Vec3) float64 {
		if speed <= 0 {
			return math.Inf(1)
		}
		return game.GroundDistance(car.Position, target) / speed
	}
}

// InterceptEstimator pairs cars with predicted ball samples
type InterceptEstimator struct {
	reach ReachFunc
}

// NewInterceptEstimator creates an estimator using reach, or the default
// speed envelope when reach is nil
func NewInterceptEstimator(reach ReachFunc) *InterceptEstimator {
	if reach == nil {
		reach = game.EstimateTime
	}
	return &InterceptEstimator{reach: reach}
}

// Estimate scans pred in time order and returns the earliest sample car can
// reach no later than the ball gets there.
//
// Parameters:
//
//	car: The car to commit (its state is copied into the result)
//	pred: This tick's ball prediction
//
// Returns:
//
//	The earliest reachable intercept. When no sample is reachable inside the
//	horizon the final sample is returned with Reachable=false, so every car
//	always has an intercept to rank.
func (e *InterceptEstimator) Estimate(car game.Car, pred game.Prediction) Intercept {
	if pred.Len() == 0 {
		return Intercept{Car: car, Time: math.Inf(1), Index: -1}
	}

	for i, sample := range pred.Samples {
		if e.reach(car, sample.Position) <= sample.Time {
			return Intercept{Car: car, Ball: sample, Time: sample.Time, Index: i, Reachable: true}
		}
	}

	last := pred.Len() - 1
	return Intercept{Car: car, Ball: pred.Samples[last], Time: pred.Samples[last].Time, Index: last}
}

// EstimateAll returns one intercept per car, in the same order
func (e *InterceptEstimator) EstimateAll(cars []game.Car, pred game.Prediction) []Intercept {
	out := make([]Intercept, len(cars))
	for i, car := range cars {
		out[i] = e.Estimate(car, pred)
	}
	return out
}

// fastestIntercept returns the index of the earliest intercept accepted by
// keep, or -1. Ties go to the first enumerated.
func fastestIntercept(intercepts []Intercept, keep func(Intercept) bool) int {
	best := -1
	bestTime := math.Inf(1)
	for i, ic := range intercepts {
		if keep != nil && !keep(ic) {
			continue
		}
		if best == -1 || ic.Time < bestTime {
			best = i
			bestTime = ic.Time
		}
	}
	return best
}

// bestAlignedIntercept returns the index of the intercept accepted by keep
// with the best shot angle toward goal, or -1. Ties go to the first
// enumerated.
func bestAlignedIntercept(intercepts []Intercept, goal game.Vec3, keep func(Intercept) bool) int {
	best := -1
	bestScore := WorstScore
	for i, ic := range intercepts {
		if keep != nil && !keep(ic) {
			continue
		}
		if score := alignment(ic, goal); best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

// alignment scores ic's shot angle toward goal
func alignment(ic Intercept, goal game.Vec3) float64 {
	return game.Align(ic.Car.Position, ic.Ball.Position, goal)
}
