package server

import (
	"github.com/lab1702/rocket-hivemind/game"
)

// DroneID identifies a drone by the id of its car in the world feed
type DroneID int

// NoDrone marks a role nobody holds
const NoDrone DroneID = -1

// Drone roles reported by RoleOf
const (
	RoleIdle       = "idle"
	RoleBall       = "ball"
	RoleKickoff    = "kickoff"
	RoleRecovering = "recovering"
	RoleRefueling  = "refueling"
	RoleShadowing  = "shadowing"
	RoleDefender   = "defender"
	RoleRetreating = "retreating"
)

// Drone is one car under our control. The host owns the drone; the
// hivemind only writes its maneuver slot.
type Drone struct {
	ID  DroneID
	Car game.Car

	// Maneuver is nil while the drone is idle
	Maneuver Maneuver

	// Executor status for the current maneuver, refreshed by Report
	Interruptible bool
	Finished      bool
}

// NewDrone wraps car as an idle drone
func NewDrone(car game.Car) *Drone {
	return &Drone{ID: DroneID(car.ID), Car: car}
}

// Assign replaces the drone's maneuver. Interruptibility starts at the
// maneuver's default until the executor reports otherwise.
func (d *Drone) Assign(m Maneuver) {
	d.Maneuver = m
	d.Finished = false
	d.Interruptible = m != nil && m.Interruptible()
}

// Clear makes the drone idle
func (d *Drone) Clear() {
	d.Assign(nil)
}

// Idle reports whether the drone has no maneuver
func (d *Drone) Idle() bool {
	return d.Maneuver == nil
}

// Report records the executor's view of the current maneuver
func (d *Drone) Report(finished, interruptible bool) {
	if d.Maneuver == nil {
		return
	}
	d.Finished = finished
	d.Interruptible = interruptible
}

// findDrone returns the drone with id, or nil
func findDrone(drones []*Drone, id DroneID) *Drone {
	if id == NoDrone {
		return nil
	}
	for _, d := range drones {
		if d.ID == id {
			return d
		}
	}
	return nil
}
