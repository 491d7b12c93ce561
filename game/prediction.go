package game

import "math"

// Prediction defaults
const (
	PredictionHorizon = 6.0       // Seconds of ball flight to roll out
	PredictionStep    = 1.0 / 120 // Integration step in seconds
	NoGoal            = -1.0      // TimeOfGoal sentinel when no goal is predicted
)

// GoalEvent records the first goal line the predicted ball crosses
type GoalEvent struct {
	AboutToScore      bool    `json:"aboutToScore"`
	AboutToBeScoredOn bool    `json:"aboutToBeScoredOn"`
	TimeOfGoal        float64 `json:"timeOfGoal"` // Elapsed seconds, NoGoal if none
}

// Predicted reports whether any goal falls inside the horizon
func (e GoalEvent) Predicted() bool {
	return e.TimeOfGoal != NoGoal
}

// Prediction is one tick's rolled-out ball trajectory. Samples are ordered by
// elapsed time; each sample's Time is seconds after the origin state.
type Prediction struct {
	Samples []Ball    `json:"samples"`
	Goal    GoalEvent `json:"goal"`
}

// Len returns the number of samples
func (p Prediction) Len() int {
	return len(p.Samples)
}

// Last returns the final sample, or the zero Ball for an empty prediction
func (p Prediction) Last() Ball {
	if len(p.Samples) == 0 {
		return Ball{}
	}
	return p.Samples[len(p.Samples)-1]
}

// PredictBall integrates ball forward in fixed dt steps until horizon seconds
// have elapsed, checking both goals after every step. Only the first goal
// crossing sets the event. The rollout always runs the full horizon; it
// yields ceil(horizon/dt) samples.
func PredictBall(ball Ball, myGoal, theirGoal Goal, horizon, dt float64) Prediction {
	pred := Prediction{Goal: GoalEvent{TimeOfGoal: NoGoal}}
	if horizon <= 0 || dt <= 0 {
		return pred
	}

	steps := int(math.Ceil(horizon/dt - 1e-9))
	pred.Samples = make([]Ball, 0, steps)

	sim := ball
	sim.Time = 0
	for i := 1; i <= steps; i++ {
		sim.Step(dt)
		// Re-derive the clock from the step index so accumulated float error
		// cannot reorder or duplicate sample times.
		sim.Time = float64(i) * dt
		pred.Samples = append(pred.Samples, sim)

		if pred.Goal.Predicted() {
			continue
		}
		if myGoal.Inside(sim.Position) {
			pred.Goal.AboutToBeScoredOn = true
			pred.Goal.TimeOfGoal = sim.Time
		} else if theirGoal.Inside(sim.Position) {
			pred.Goal.AboutToScore = true
			pred.Goal.TimeOfGoal = sim.Time
		}
	}
	return pred
}

// PredictDefault rolls out the standard 6 second horizon at 120Hz
func (w *WorldState) PredictDefault() Prediction {
	return PredictBall(w.Ball, w.MyGoal, w.TheirGoal, PredictionHorizon, PredictionStep)
}
