package server

import (
	"math"

	"github.com/lab1702/rocket-hivemind/game"
)

// KickoffPolicy picks the opening drive for the kickoff taker
type KickoffPolicy func(world *game.WorldState, car game.Car) KickoffStyle

// DefaultKickoffPolicy speed flips from the corner spawns and drives
// straight from the others
func DefaultKickoffPolicy(world *game.WorldState, car game.Car) KickoffStyle {
	if math.Abs(car.Position.X) > KickoffCornerX {
		return SpeedFlipKickoff
	}
	return SimpleKickoff
}

// kickoffSelector hands out kickoff roles at the start of a kickoff pause
type kickoffSelector struct {
	cfg    StrategyConfig
	policy KickoffPolicy
	ledger *BoostLedger
}

// assign gives the drone nearest the ball spot the kickoff and support roles
// to the rest. Drones are processed in slice order; the kickoff taker's id
// is returned, or NoDrone when drones is empty.
func (k kickoffSelector) assign(world *game.WorldState, drones []*Drone) DroneID {
	takerIdx := k.giveKickoff(world, drones)
	if takerIdx == -1 {
		return NoDrone
	}
	taker := drones[takerIdx]

	rest := make([]*Drone, 0, len(drones)-1)
	for i, d := range drones {
		if i != takerIdx {
			rest = append(rest, d)
		}
	}

	if k.cfg.KickoffFlankPickup {
		rest = k.assignFlankPickup(world, rest)
	}
	if k.cfg.KickoffRetreat {
		rest = k.assignRetreat(world, rest)
	}

	ourGoal := world.MyGoal.Center
	for _, d := range rest {
		pad, ok := chooseRefuelPad(world, d.Car, ourGoal, k.ledger.ReservedPads())
		if ok && k.ledger.Reserve(d.ID, pad) {
			d.Assign(&Refuel{Pad: pad, Toward: ourGoal})
			continue
		}
		d.Assign(&Defend{Target: farPost(world)})
	}

	return taker.ID
}

// takeOver hands the kickoff to the drone nearest the ball spot without
// touching anyone else's role
func (k kickoffSelector) takeOver(world *game.WorldState, drones []*Drone) DroneID {
	if i := k.giveKickoff(world, drones); i != -1 {
		return drones[i].ID
	}
	return NoDrone
}

// giveKickoff assigns a fresh kickoff to the drone nearest the ball spot and
// returns its index, or -1 when drones is empty
func (k kickoffSelector) giveKickoff(world *game.WorldState, drones []*Drone) int {
	spots := make([]game.Vec3, len(drones))
	for i, d := range drones {
		spots[i] = d.Car.Position
	}
	i := game.NearestPoint(world.Ball.Position, spots)
	if i == -1 {
		return -1
	}

	taker := drones[i]
	kickoff := &Kickoff{Style: k.policy(world, taker.Car)}
	kickoff.Approach, kickoff.Target = kickoffApproach(world, taker.Car, ApproachArrive)
	taker.Assign(kickoff)
	return i
}

// assignFlankPickup sends the off-center drone nearest the ball to the large
// pad on its side, returning the drones still unassigned
func (k kickoffSelector) assignFlankPickup(world *game.WorldState, rest []*Drone) []*Drone {
	flankIdx := -1
	bestDist := MaxSearchDistance
	for i, d := range rest {
		if math.Abs(d.Car.Position.X) <= KickoffOffCenterX {
			continue
		}
		if dist := d.Car.Position.Norm(); flankIdx == -1 || dist < bestDist {
			flankIdx = i
			bestDist = dist
		}
	}
	if flankIdx == -1 {
		return rest
	}

	d := rest[flankIdx]
	pad, ok := nearestPadOnSide(world, d.Car, k.ledger.ReservedPads())
	if !ok || !k.ledger.Reserve(d.ID, pad) {
		return rest
	}
	d.Assign(&Refuel{Pad: pad, Toward: world.Ball.Position})
	return append(rest[:flankIdx:flankIdx], rest[flankIdx+1:]...)
}

// assignRetreat sends the drone farthest from the ball spot back to our far
// post, returning the drones still unassigned
func (k kickoffSelector) assignRetreat(world *game.WorldState, rest []*Drone) []*Drone {
	farIdx := -1
	farDist := -1.0
	for i, d := range rest {
		if dist := d.Car.Position.Norm(); dist > farDist {
			farIdx = i
			farDist = dist
		}
	}
	if farIdx == -1 {
		return rest
	}

	rest[farIdx].Assign(&Defend{Target: farPost(world)})
	return append(rest[:farIdx:farIdx], rest[farIdx+1:]...)
}

// update re-evaluates the taker's approach as it closes on the ball. A
// kickoff that has committed to a dodge stays committed.
func (k kickoffSelector) update(world *game.WorldState, d *Drone) {
	kickoff, ok := d.Maneuver.(*Kickoff)
	if !ok {
		return
	}
	kickoff.Approach, kickoff.Target = kickoffApproach(world, d.Car, kickoff.Approach)
}

// kickoffApproach decides how car finishes the kickoff. Until the car is
// within KickoffDodgeRadius it arrives at the ball; then it dodges if an
// opponent is contesting, otherwise it aims slightly to the side.
func kickoffApproach(world *game.WorldState, car game.Car, current KickoffApproach) (KickoffApproach, game.Vec3) {
	ball := world.Ball.Position
	if current == ApproachDodge {
		return ApproachDodge, ball
	}
	if game.Distance(car.Position, ball) >= KickoffDodgeRadius {
		return ApproachArrive, ball
	}
	for _, opp := range world.Opponents(world.Team) {
		if !opp.Demolished && game.Distance(ball, opp.Position) < KickoffOpponentRadius {
			return ApproachDodge, ball
		}
	}
	return ApproachArrive, ball.Add(game.Vec3{X: KickoffAimOffset})
}

// farPost is the retreat point just outside our far post relative to the ball
func farPost(world *game.WorldState) game.Vec3 {
	goal := world.MyGoal
	post := goal.LeftPost
	if world.Ball.Position.X*post.X > 0 {
		post = goal.RightPost
	}
	side := math.Copysign(FarPostSideOffset, post.X)
	return game.Vec3{X: post.X + side, Y: post.Y + world.Team.Sign()*FarPostDepth}
}
