package server

import (
	"github.com/sirupsen/logrus"

	"github.com/lab1702/rocket-hivemind/game"
)

// Debug flags for various subsystems
var (
	DebugStrategy = false // Set to true to trace every per-tick role decision
)

// logStrategy traces a routine decision when strategy debugging is enabled
func logStrategy(log *logrus.Entry, msg string) {
	if DebugStrategy {
		log.Debug(msg)
	}
}

// Renderer receives each tick's assignments for visualization. It has no
// effect on decisions.
type Renderer interface {
	Render(tick uint64, assignments []Assignment, pred game.Prediction)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(tick uint64, assignments []Assignment, pred game.Prediction)

func (f RendererFunc) Render(tick uint64, assignments []Assignment, pred game.Prediction) {
	f(tick, assignments, pred)
}

// LogRenderer writes a one-line summary per drone at debug level
type LogRenderer struct {
	Log *logrus.Entry
}

func (r LogRenderer) Render(tick uint64, assignments []Assignment, pred game.Prediction) {
	if !r.Log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	for _, a := range assignments {
		r.Log.WithFields(logrus.Fields{
			"tick":     tick,
			"drone":    a.Drone,
			"role":     a.Role,
			"maneuver": a.Kind,
		}).Debug("assignment")
	}
	if pred.Goal.Predicted() {
		r.Log.WithFields(logrus.Fields{
			"tick":           tick,
			"time_of_goal":   pred.Goal.TimeOfGoal,
			"about_to_score": pred.Goal.AboutToScore,
		}).Debug("goal predicted")
	}
}
