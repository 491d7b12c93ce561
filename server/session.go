package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lab1702/rocket-hivemind/game"
)

// SessionStats summarizes a session for the status endpoint
type SessionStats struct {
	ID           string    `json:"id"`
	Team         game.Team `json:"team"`
	Strategy     string    `json:"strategy"`
	Connected    time.Time `json:"connected"`
	Frames       uint64    `json:"frames"`
	Errors       uint64    `json:"errors"`
	Drones       int       `json:"drones"`
	GoingForBall DroneID   `json:"goingForBall"`
	Defending    DroneID   `json:"defending"`
	Reservations int       `json:"reservations"`
}

// Session is one host connection's hivemind and drone roster
type Session struct {
	ID uuid.UUID

	mu        sync.Mutex
	hivemind  *Hivemind
	drones    []*Drone
	team      game.Team
	connected time.Time
	frames    uint64
	errors    uint64
	log       *logrus.Entry
}

// NewSession creates a session running cfg for team. Frames that name a
// team override it. Extra options are passed to the hivemind after the
// session's own logger.
func NewSession(cfg StrategyConfig, team game.Team, log *logrus.Entry, opts ...Option) *Session {
	id := uuid.New()
	entry := log.WithFields(logrus.Fields{"component": "hivemind", "session": id.String()})
	opts = append([]Option{WithLogger(entry)}, opts...)
	return &Session{
		ID:        id,
		hivemind:  NewHivemind(cfg, opts...),
		team:      team,
		connected: time.Now(),
		log:       entry,
	}
}

// Apply feeds one world frame through the hivemind and returns the
// resulting assignments
func (s *Session) Apply(frame *WorldFrame) AssignmentFrame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames++
	s.team = frame.TeamOr(s.team)
	s.syncDrones(frame)
	for _, r := range frame.Reports {
		if d := findDrone(s.drones, DroneID(r.ID)); d != nil {
			d.Report(r.Finished, r.Interruptible)
		}
	}

	world := frame.World(s.team)
	s.hivemind.SetManeuvers(world, s.drones)

	st := s.hivemind.State
	return AssignmentFrame{
		Tick:         st.Tick,
		Session:      s.ID.String(),
		GoingForBall: st.GoingForBall,
		Defending:    st.Defending,
		Goal:         st.Prediction.Goal,
		Assignments:  s.hivemind.Assignments(s.drones),
		Reservations: st.Reservations.Snapshot(),
	}
}

// syncDrones refreshes the roster from our team's cars, keeping feed order.
// Drones keep their maneuver slot across frames; cars that left the feed
// are dropped.
func (s *Session) syncDrones(frame *WorldFrame) {
	known := make(map[DroneID]*Drone, len(s.drones))
	for _, d := range s.drones {
		known[d.ID] = d
	}

	drones := make([]*Drone, 0, len(s.drones))
	for _, car := range frame.Cars {
		if car.Team != s.team {
			continue
		}
		d, ok := known[DroneID(car.ID)]
		if !ok {
			d = NewDrone(car)
			s.log.WithField("drone", d.ID).Info("drone joined")
		}
		d.Car = car
		drones = append(drones, d)
		delete(known, d.ID)
	}
	for id := range known {
		s.log.WithField("drone", id).Info("drone left")
	}
	s.drones = drones
}

// Reset drops every role, reservation and maneuver
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hivemind.State.Reset()
	for _, d := range s.drones {
		d.Clear()
	}
	s.log.Info("session reset")
}

// RecordError counts a rejected frame
func (s *Session) RecordError() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

// Snapshot returns the session's current stats
func (s *Session) Snapshot() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.hivemind.State
	return SessionStats{
		ID:           s.ID.String(),
		Team:         s.team,
		Strategy:     s.hivemind.Config().Name,
		Connected:    s.connected,
		Frames:       s.frames,
		Errors:       s.errors,
		Drones:       len(s.drones),
		GoingForBall: st.GoingForBall,
		Defending:    st.Defending,
		Reservations: st.Reservations.Len(),
	}
}
