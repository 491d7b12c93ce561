package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictBall_SampleCountAndOrdering(t *testing.T) {
	ball := Ball{Position: Vec3{0, 0, BallRadius}, Time: 123.4}
	pred := PredictBall(ball, NewGoal(TeamBlue), NewGoal(TeamOrange), PredictionHorizon, PredictionStep)

	require.Equal(t, 720, pred.Len())
	for i := 1; i < pred.Len(); i++ {
		assert.Greater(t, pred.Samples[i].Time, pred.Samples[i-1].Time, "sample %d", i)
	}
	assert.InDelta(t, PredictionStep, pred.Samples[0].Time, 1e-12)
	assert.InDelta(t, PredictionHorizon, pred.Last().Time, 1e-9)
	assert.False(t, pred.Goal.Predicted())
	assert.Equal(t, NoGoal, pred.Goal.TimeOfGoal)
}

func TestPredictBall_StationaryBallStaysPut(t *testing.T) {
	ball := Ball{Position: Vec3{500, -300, BallRadius}}
	pred := PredictBall(ball, NewGoal(TeamBlue), NewGoal(TeamOrange), 1.0, PredictionStep)

	require.Equal(t, 120, pred.Len())
	assert.InDelta(t, 500, pred.Last().Position.X, 1e-6)
	assert.InDelta(t, -300, pred.Last().Position.Y, 1e-6)
	assert.InDelta(t, BallRadius, pred.Last().Position.Z, 1e-6)
}

func TestPredictBall_DoesNotMutateInput(t *testing.T) {
	ball := Ball{Position: Vec3{0, 0, 500}, Velocity: Vec3{100, 200, 0}, Time: 9}
	orig := ball
	PredictBall(ball, NewGoal(TeamBlue), NewGoal(TeamOrange), 1.0, PredictionStep)
	assert.Equal(t, orig, ball)
}

func TestPredictBall_ScoredOn(t *testing.T) {
	myGoal, theirGoal := NewGoal(TeamBlue), NewGoal(TeamOrange)
	ball := Ball{Position: Vec3{0, -4500, 200}, Velocity: Vec3{0, -2000, 0}}

	pred := PredictBall(ball, myGoal, theirGoal, PredictionHorizon, PredictionStep)

	require.True(t, pred.Goal.Predicted())
	assert.True(t, pred.Goal.AboutToBeScoredOn)
	assert.False(t, pred.Goal.AboutToScore)
	assert.Equal(t, firstCrossing(t, pred, myGoal), pred.Goal.TimeOfGoal)
	assert.Equal(t, 720, pred.Len(), "a goal does not truncate the rollout")
}

func TestPredictBall_AboutToScoreOnlyFirstCrossingCounts(t *testing.T) {
	myGoal, theirGoal := NewGoal(TeamBlue), NewGoal(TeamOrange)
	// Fast enough to bounce off the back of the net and head back upfield
	ball := Ball{Position: Vec3{0, 4000, 200}, Velocity: Vec3{0, 6000, 0}}

	pred := PredictBall(ball, myGoal, theirGoal, PredictionHorizon, PredictionStep)

	assert.True(t, pred.Goal.AboutToScore)
	assert.False(t, pred.Goal.AboutToBeScoredOn)
	assert.Equal(t, firstCrossing(t, pred, theirGoal), pred.Goal.TimeOfGoal)
}

func TestPredictBall_OrangePerspective(t *testing.T) {
	// Orange defends +Y, so a ball heading there is a goal against
	w := NewWorldState(TeamOrange)
	w.Ball = Ball{Position: Vec3{0, 4500, 200}, Velocity: Vec3{0, 2500, 0}}

	pred := w.PredictDefault()
	assert.True(t, pred.Goal.AboutToBeScoredOn)
	assert.False(t, pred.Goal.AboutToScore)
}

func TestPredictBall_WideShotBouncesOffBackWall(t *testing.T) {
	ball := Ball{Position: Vec3{2500, 4000, 200}, Velocity: Vec3{0, 3000, 0}}
	pred := PredictBall(ball, NewGoal(TeamBlue), NewGoal(TeamOrange), 2.0, PredictionStep)

	assert.False(t, pred.Goal.Predicted())
	for _, s := range pred.Samples {
		assert.LessOrEqual(t, s.Position.Y, ArenaHalfLength-BallRadius+1e-9)
	}
}

func TestPredictBall_EmptyHorizon(t *testing.T) {
	pred := PredictBall(Ball{}, NewGoal(TeamBlue), NewGoal(TeamOrange), 0, PredictionStep)
	assert.Equal(t, 0, pred.Len())
	assert.Equal(t, Ball{}, pred.Last())
	assert.False(t, pred.Goal.Predicted())
}

func firstCrossing(t *testing.T, pred Prediction, goal Goal) float64 {
	t.Helper()
	for _, s := range pred.Samples {
		if goal.Inside(s.Position) {
			return s.Time
		}
	}
	t.Fatalf("no sample crosses goal of team %d", goal.Team)
	return NoGoal
}
