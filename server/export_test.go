package server

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/lab1702/rocket-hivemind/game"
)

// Test helpers to expose internals and build fixtures
// This file should only be used for testing and not in production

// Drones exposes the session roster for testing
func (s *Session) Drones() []*Drone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drones
}

// quietLog returns a log entry that discards everything
func quietLog() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// Standard pad layout used by the fixtures. Ids follow slice order.
var testPads = []game.Pad{
	{ID: 0, Position: game.Vec3{X: -3072, Y: -4096, Z: 73}, Size: game.PadLarge, Active: true},
	{ID: 1, Position: game.Vec3{X: 3072, Y: -4096, Z: 73}, Size: game.PadLarge, Active: true},
	{ID: 2, Position: game.Vec3{X: -3584, Y: 0, Z: 73}, Size: game.PadLarge, Active: true},
	{ID: 3, Position: game.Vec3{X: 3584, Y: 0, Z: 73}, Size: game.PadLarge, Active: true},
	{ID: 4, Position: game.Vec3{X: -3072, Y: 4096, Z: 73}, Size: game.PadLarge, Active: true},
	{ID: 5, Position: game.Vec3{X: 3072, Y: 4096, Z: 73}, Size: game.PadLarge, Active: true},
	{ID: 6, Position: game.Vec3{X: 0, Y: -2816, Z: 70}, Size: game.PadSmall, Active: true},
	{ID: 7, Position: game.Vec3{X: 0, Y: 2816, Z: 70}, Size: game.PadSmall, Active: true},
}

// newTestWorld builds a blue-team world with a resting ball at ball and the
// standard pads
func newTestWorld(ball game.Vec3, cars ...game.Car) *game.WorldState {
	w := game.NewWorldState(game.TeamBlue)
	w.Ball = game.Ball{Position: ball}
	w.Cars = cars
	w.Pads = append([]game.Pad(nil), testPads...)
	return w
}

// restingBall is the kickoff spot
var restingBall = game.Vec3{Z: game.BallRadius}

func blueCar(id int, x, y, boost float64) game.Car {
	return game.Car{ID: id, Team: game.TeamBlue, Position: game.Vec3{X: x, Y: y, Z: 17}, Boost: boost, OnGround: true}
}

func orangeCar(id int, x, y float64) game.Car {
	return game.Car{ID: id, Team: game.TeamOrange, Position: game.Vec3{X: x, Y: y, Z: 17}, Boost: 33, OnGround: true}
}

// dronesFor wraps our team's cars in world as drones, in feed order
func dronesFor(world *game.WorldState) []*Drone {
	var out []*Drone
	for _, c := range world.Cars {
		if c.Team == world.Team {
			out = append(out, NewDrone(c))
		}
	}
	return out
}

// refreshCars copies the cars in world onto drones with matching ids
func refreshCars(world *game.WorldState, drones []*Drone) {
	for _, d := range drones {
		if car, ok := world.Car(int(d.ID)); ok {
			d.Car = car
		}
	}
}

// newTestHivemind runs cfg with a constant 1000 uu/s reach so intercept
// times are easy to reason about
func newTestHivemind(cfg StrategyConfig, opts ...Option) *Hivemind {
	opts = append([]Option{WithReach(ConstantSpeed(1000)), WithLogger(quietLog())}, opts...)
	return NewHivemind(cfg, opts...)
}

// holders returns the drones whose role is role
func holders(h *Hivemind, drones []*Drone, role string) []DroneID {
	var out []DroneID
	for _, d := range drones {
		if h.RoleOf(d) == role {
			out = append(out, d.ID)
		}
	}
	return out
}
