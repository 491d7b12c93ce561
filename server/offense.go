package server

import "github.com/lab1702/rocket-hivemind/game"

// Offense turns a chosen intercept into a concrete ball plan
type Offense struct {
	cfg StrategyConfig
}

// AnyShot picks the strike variant that fits the intercept height and the
// car's boost, aimed at target
func (o Offense) AnyShot(ic Intercept, target game.Vec3) *Strike {
	height := ic.Ball.Position.Z

	var shot ShotKind
	switch {
	case height <= GroundShotMaxHeight:
		shot = GroundShot
	case height <= DodgeShotMaxHeight:
		shot = DodgeShot
	case ic.Car.Boost >= AerialMinBoost:
		shot = AerialShot
	default:
		shot = DodgeShot
	}

	return &Strike{Shot: shot, Intercept: ic, Target: target}
}

// Clear returns the defensive plan for ic
func (o Offense) Clear(ic Intercept) *Clear {
	style := ClearIntoCorner
	if o.cfg.DedicatedClear {
		style = AnyClear
	}
	return &Clear{Style: style, Intercept: ic}
}
