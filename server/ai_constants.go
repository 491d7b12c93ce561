package server

import "fmt"

// AI Constants for Hivemind Behavior
// These constants are the fixed geometry of the decision layer. Policy knobs
// that differ between strategy variants live in StrategyConfig instead.

const (
	// Kickoff
	KickoffDodgeRadius    = 800.0  // Within this distance of the ball the taker decides whether to dodge
	KickoffOpponentRadius = 1500.0 // An opponent this close to the ball is contesting the kickoff
	KickoffAimOffset      = 100.0  // Lateral aim offset for an uncontested kickoff
	KickoffCornerX        = 1000.0 // Spawns wider than this are corner kickoffs
	KickoffOffCenterX     = 250.0  // Spawns wider than this can grab a flank pad

	// Shot selection by intercept height
	GroundShotMaxHeight = 250.0 // Ball height reachable without jumping
	DodgeShotMaxHeight  = 550.0 // Ball height reachable with a jump and dodge
	AerialMinBoost      = 30.0  // Boost needed to attempt an aerial

	// Refuel
	RefuelCarWeight = 2.0 // Pad choice aims at (toward + w*car) / (1 + w)

	// Far post retreat
	FarPostSideOffset = 200.0 // Lateral offset outside the post
	FarPostDepth      = 500.0 // Distance in front of the goal line

	// Sentinel Values
	MaxSearchDistance = 999999.0  // Sentinel for "no target found" in nearest-object searches
	WorstScore        = -999999.0 // Sentinel for "no candidate scored" in best-candidate searches
)

// Strategy variant names
const (
	StrategyPrimary    = "primary"
	StrategyPermissive = "permissive"
)

// StrategyConfig holds the thresholds that distinguish strategy variants.
// The two presets come from two different bot policies.
type StrategyConfig struct {
	Name string `json:"name"`

	// Intercepts whose alignment toward goal exceeds this are shot chances
	GoodAlignment float64 `json:"goodAlignment"`
	// When slower than every opponent, still shoot if aligned above this.
	// Values >= 1 disable the check.
	FallbackShotAlignment float64 `json:"fallbackShotAlignment"`
	// When slower than every opponent, shoot anyway if the intercept is at
	// least this far from our goal
	FarFromGoalDistance float64 `json:"farFromGoalDistance"`
	// Clear with the dedicated any-direction clear instead of into a corner
	DedicatedClear bool `json:"dedicatedClear"`

	// Idle drones below this boost go refuel
	RefuelBoostThreshold float64 `json:"refuelBoostThreshold"`

	ShadowDistance         float64 `json:"shadowDistance"`
	DefenderShadowDistance float64 `json:"defenderShadowDistance"`

	// Airborne drones lower than this still count as ready. 0 requires
	// wheels on the ground.
	ReadyHeight float64 `json:"readyHeight"`

	KickoffFlankPickup bool `json:"kickoffFlankPickup"`
	KickoffRetreat     bool `json:"kickoffRetreat"`
}

// PrimaryStrategy is the stricter policy: clean shots only, corner clears
func PrimaryStrategy() StrategyConfig {
	return StrategyConfig{
		Name:                   StrategyPrimary,
		GoodAlignment:          0.0,
		FallbackShotAlignment:  1.0,
		FarFromGoalDistance:    6000,
		DedicatedClear:         false,
		RefuelBoostThreshold:   40,
		ShadowDistance:         3000,
		DefenderShadowDistance: 8000,
		ReadyHeight:            0,
		KickoffFlankPickup:     true,
		KickoffRetreat:         true,
	}
}

// PermissiveStrategy accepts worse shot angles and slightly airborne drones
func PermissiveStrategy() StrategyConfig {
	return StrategyConfig{
		Name:                   StrategyPermissive,
		GoodAlignment:          -0.3,
		FallbackShotAlignment:  0.3,
		FarFromGoalDistance:    6000,
		DedicatedClear:         true,
		RefuelBoostThreshold:   30,
		ShadowDistance:         2500,
		DefenderShadowDistance: 6000,
		ReadyHeight:            150,
		KickoffFlankPickup:     true,
		KickoffRetreat:         true,
	}
}

// StrategyByName returns the preset with the given name
func StrategyByName(name string) (StrategyConfig, error) {
	switch name {
	case StrategyPrimary, "":
		return PrimaryStrategy(), nil
	case StrategyPermissive:
		return PermissiveStrategy(), nil
	default:
		return StrategyConfig{}, fmt.Errorf("unknown strategy variant %q", name)
	}
}
