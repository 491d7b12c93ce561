package server

import (
	"sort"

	"github.com/lab1702/rocket-hivemind/game"
)

// Reservation is one drone's claim on a boost pad
type Reservation struct {
	Drone DroneID  `json:"drone"`
	Pad   game.Pad `json:"pad"`
}

// BoostLedger tracks which pad each refueling drone is heading for so two
// drones never chase the same pad. A claim lives only as long as the owning
// drone's refuel maneuver.
type BoostLedger struct {
	byDrone map[DroneID]game.Pad
	owner   map[int]DroneID // pad id -> drone
}

// NewBoostLedger creates an empty ledger
func NewBoostLedger() *BoostLedger {
	return &BoostLedger{
		byDrone: make(map[DroneID]game.Pad),
		owner:   make(map[int]DroneID),
	}
}

// Reserve claims pad for drone, replacing any earlier claim by that drone.
// It returns false and changes nothing if another drone already holds pad.
func (l *BoostLedger) Reserve(drone DroneID, pad game.Pad) bool {
	if holder, ok := l.owner[pad.ID]; ok && holder != drone {
		return false
	}
	l.Release(drone)
	l.byDrone[drone] = pad
	l.owner[pad.ID] = drone
	return true
}

// Release drops drone's claim, if any
func (l *BoostLedger) Release(drone DroneID) {
	pad, ok := l.byDrone[drone]
	if !ok {
		return
	}
	delete(l.byDrone, drone)
	delete(l.owner, pad.ID)
}

// IsReserved reports whether any drone holds the pad with padID
func (l *BoostLedger) IsReserved(padID int) bool {
	_, ok := l.owner[padID]
	return ok
}

// ReservedPads returns the set of claimed pad ids
func (l *BoostLedger) ReservedPads() map[int]bool {
	out := make(map[int]bool, len(l.owner))
	for id := range l.owner {
		out[id] = true
	}
	return out
}

// Len returns the number of live claims
func (l *BoostLedger) Len() int {
	return len(l.byDrone)
}

// Snapshot lists the claims ordered by drone id
func (l *BoostLedger) Snapshot() []Reservation {
	out := make([]Reservation, 0, len(l.byDrone))
	for drone, pad := range l.byDrone {
		out = append(out, Reservation{Drone: drone, Pad: pad})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Drone < out[j].Drone })
	return out
}

// Reset drops every claim
func (l *BoostLedger) Reset() {
	clear(l.byDrone)
	clear(l.owner)
}
