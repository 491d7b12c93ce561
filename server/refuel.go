package server

import (
	"github.com/lab1702/rocket-hivemind/game"
)

// chooseRefuelPad finds the pad car should collect on its way toward a
// strategic point. It aims at the point weighted RefuelCarWeight times
// toward the car, prefers large pads, skips forbidden pads and pads that
// will still be respawning when the car arrives. Ties go to the earliest
// pad in feed order.
func chooseRefuelPad(world *game.WorldState, car game.Car, toward game.Vec3, forbidden map[int]bool) (game.Pad, bool) {
	aim := toward.Add(car.Position.Scale(RefuelCarWeight)).Scale(1 / (1 + RefuelCarWeight))

	if pad, ok := nearestUsablePad(world.LargePads(), car, aim, forbidden); ok {
		return pad, true
	}
	return nearestUsablePad(world.SmallPads(), car, aim, forbidden)
}

func nearestUsablePad(pads []game.Pad, car game.Car, aim game.Vec3, forbidden map[int]bool) (game.Pad, bool) {
	var best game.Pad
	found := false
	bestDist := MaxSearchDistance

	for _, pad := range pads {
		if forbidden[pad.ID] {
			continue
		}
		if !pad.AvailableWithin(game.EstimateTime(car, pad.Position)) {
			continue
		}
		if dist := game.Distance(aim, pad.Position); !found || dist < bestDist {
			best = pad
			bestDist = dist
			found = true
		}
	}
	return best, found
}

// nearestPadOnSide returns the closest unclaimed large pad on the same side
// of the field (sign of X) as car. Pads still respawning on arrival are
// skipped.
func nearestPadOnSide(world *game.WorldState, car game.Car, forbidden map[int]bool) (game.Pad, bool) {
	var side []game.Pad
	for _, pad := range world.LargePads() {
		if pad.Position.X*car.Position.X > 0 {
			side = append(side, pad)
		}
	}
	return nearestUsablePad(side, car, car.Position, forbidden)
}
