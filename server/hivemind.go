package server

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/lab1702/rocket-hivemind/game"
)

// EngineState is everything the hivemind carries from one tick to the next.
// Roles are held by drone id, never by pointer, so a respawned or removed
// drone cannot leave a dangling commitment.
type EngineState struct {
	Tick         uint64
	GoingForBall DroneID // Drone committed to the ball
	Defending    DroneID // Deep defender
	Reservations *BoostLedger
	Kickoff      bool            // Engine reset for the current kickoff pause
	Prediction   game.Prediction // Last rollout, kept for rendering and status
}

// NewEngineState creates a state with no roles held
func NewEngineState() *EngineState {
	return &EngineState{
		GoingForBall: NoDrone,
		Defending:    NoDrone,
		Reservations: NewBoostLedger(),
	}
}

// Reset drops all roles and reservations
func (s *EngineState) Reset() {
	s.GoingForBall = NoDrone
	s.Defending = NoDrone
	s.Kickoff = false
	s.Reservations.Reset()
}

// Hivemind assigns a maneuver to every drone on the team, once per tick
type Hivemind struct {
	cfg       StrategyConfig
	State     *EngineState
	estimator *InterceptEstimator
	offense   Offense
	kickoff   kickoffSelector
	renderer  Renderer
	log       *logrus.Entry
}

// Option customizes a Hivemind
type Option func(*Hivemind)

// WithReach replaces the default speed envelope used for intercepts
func WithReach(reach ReachFunc) Option {
	return func(h *Hivemind) { h.estimator = NewInterceptEstimator(reach) }
}

// WithKickoffPolicy replaces the kickoff style policy
func WithKickoffPolicy(policy KickoffPolicy) Option {
	return func(h *Hivemind) { h.kickoff.policy = policy }
}

// WithRenderer installs a debug render hook
func WithRenderer(r Renderer) Option {
	return func(h *Hivemind) { h.renderer = r }
}

// WithLogger sets the log entry decisions are traced to
func WithLogger(log *logrus.Entry) Option {
	return func(h *Hivemind) { h.log = log }
}

// NewHivemind creates a hivemind running cfg
func NewHivemind(cfg StrategyConfig, opts ...Option) *Hivemind {
	state := NewEngineState()
	h := &Hivemind{
		cfg:       cfg,
		State:     state,
		estimator: NewInterceptEstimator(nil),
		offense:   Offense{cfg: cfg},
		kickoff:   kickoffSelector{cfg: cfg, policy: DefaultKickoffPolicy, ledger: state.Reservations},
		log:       logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Config returns the strategy thresholds in use
func (h *Hivemind) Config() StrategyConfig {
	return h.cfg
}

// SetManeuvers runs one tick of role assignment over drones, which must be
// in a stable agent order; every fold below breaks ties by that order.
func (h *Hivemind) SetManeuvers(world *game.WorldState, drones []*Drone) {
	st := h.State
	st.Tick++
	log := h.log.WithField("tick", st.Tick)

	h.clearFinished(drones)
	h.clearStaleRoles(log, drones)

	// Pause bookkeeping runs before the readiness check: a new pause voids
	// old plans before readiness is judged, and the taker holds a
	// non-interruptible kickoff so it is never ready itself.
	fresh := false
	switch {
	case !world.KickoffPause:
		st.Kickoff = false
	case !st.Kickoff:
		h.startKickoff(drones)
		fresh = true
	default:
		if d := findDrone(drones, st.GoingForBall); d != nil {
			h.kickoff.update(world, d)
		}
	}

	h.assignRecoveries(drones)

	ready := h.readyDrones(drones)
	if len(ready) == 0 {
		logStrategy(log, "no ready drones, keeping assignments")
		h.render(drones)
		return
	}

	if world.KickoffPause {
		h.handleKickoff(log, world, ready, fresh)
	} else if st.GoingForBall == NoDrone {
		h.commitToBall(log, world, drones, ready)
	}

	h.releaseStaleReservations(log, drones)
	h.assignIdle(log, world, drones)
	h.render(drones)
}

// clearFinished empties the slot of drones whose maneuver finished and of
// demolished drones, whose maneuver is treated as absent
func (h *Hivemind) clearFinished(drones []*Drone) {
	for _, d := range drones {
		if d.Maneuver != nil && (d.Finished || d.Car.Demolished) {
			d.Clear()
		}
	}
}

// clearStaleRoles frees a role whose holder went idle or left the feed
func (h *Hivemind) clearStaleRoles(log *logrus.Entry, drones []*Drone) {
	st := h.State
	if d := findDrone(drones, st.GoingForBall); st.GoingForBall != NoDrone && (d == nil || d.Idle()) {
		logStrategy(log.WithField("drone", st.GoingForBall), "ball commitment released")
		st.GoingForBall = NoDrone
	}
	if d := findDrone(drones, st.Defending); st.Defending != NoDrone && (d == nil || d.Idle()) {
		logStrategy(log.WithField("drone", st.Defending), "defender released")
		st.Defending = NoDrone
	}
}

// assignRecoveries never leaves an airborne drone without control
func (h *Hivemind) assignRecoveries(drones []*Drone) {
	for _, d := range drones {
		if d.Idle() && !d.Car.OnGround && !d.Car.Demolished {
			d.Assign(&Recovery{})
		}
	}
}

// readyDrones returns the drones that may take a new ball commitment
func (h *Hivemind) readyDrones(drones []*Drone) []*Drone {
	var ready []*Drone
	for _, d := range drones {
		if d.Car.Demolished || d.Car.Jumping {
			continue
		}
		grounded := d.Car.OnGround
		if h.cfg.ReadyHeight > 0 && d.Car.Position.Z < h.cfg.ReadyHeight {
			grounded = true
		}
		if !grounded {
			continue
		}
		if d.Idle() || d.Interruptible {
			ready = append(ready, d)
		}
	}
	return ready
}

// startKickoff resets the engine once per kickoff pause. The ball has been
// reset, so every plan except landing is void.
func (h *Hivemind) startKickoff(drones []*Drone) {
	st := h.State
	st.Reset()
	st.Kickoff = true
	for _, d := range drones {
		if _, recovering := d.Maneuver.(*Recovery); !recovering {
			d.Clear()
		}
	}
}

// handleKickoff hands out kickoff roles on the first tick of a pause. If the
// pause has no taker later on, because the taker dropped its kickoff or
// nobody was ready at the start, the ready drone nearest the ball spot
// takes over and the other roles stay as they are.
func (h *Hivemind) handleKickoff(log *logrus.Entry, world *game.WorldState, ready []*Drone, fresh bool) {
	st := h.State
	if fresh {
		st.GoingForBall = h.kickoff.assign(world, ready)
		log.WithFields(logrus.Fields{
			"drone": st.GoingForBall,
			"ready": len(ready),
		}).Debug("kickoff roles assigned")
		return
	}
	if st.GoingForBall == NoDrone {
		st.GoingForBall = h.kickoff.takeOver(world, ready)
		if st.Defending == st.GoingForBall {
			st.Defending = NoDrone
		}
		log.WithField("drone", st.GoingForBall).Debug("kickoff taken over")
	}
}

// commitToBall picks the drone and plan that go for the ball
func (h *Hivemind) commitToBall(log *logrus.Entry, world *game.WorldState, drones, ready []*Drone) {
	st := h.State
	theirGoal := world.TheirGoal.Center.Ground()
	ourGoal := world.MyGoal.Center.Ground()

	st.Prediction = world.PredictDefault()

	cars := make([]game.Car, len(ready))
	for i, d := range ready {
		cars[i] = d.Car
	}
	ours := h.estimator.EstimateAll(cars, st.Prediction)

	good := func(ic Intercept) bool { return alignment(ic, theirGoal) > h.cfg.GoodAlignment }

	var best int
	var plan Maneuver
	if best = fastestIntercept(ours, good); best != -1 {
		plan = h.offense.AnyShot(ours[best], theirGoal)
	} else {
		oppTime := h.fastestOpponentTime(world, st.Prediction)
		faster := func(ic Intercept) bool { return ic.Time < oppTime }

		if best = bestAlignedIntercept(ours, theirGoal, faster); best != -1 {
			plan = h.offense.AnyShot(ours[best], theirGoal)
		} else {
			best = fastestIntercept(ours, nil)
			ic := ours[best]
			if game.GroundDistance(ic.Position(), ourGoal) > h.cfg.FarFromGoalDistance ||
				alignment(ic, theirGoal) > h.cfg.FallbackShotAlignment {
				plan = h.offense.AnyShot(ic, theirGoal)
			} else {
				plan = h.offense.Clear(ic)
			}
		}
	}

	d := ready[best]
	d.Assign(plan)
	st.GoingForBall = d.ID
	if st.Defending == d.ID {
		st.Defending = NoDrone
	}

	log.WithFields(logrus.Fields{
		"drone":     d.ID,
		"plan":      kindName(plan),
		"time":      ours[best].Time,
		"reachable": ours[best].Reachable,
		"alignment": alignment(ours[best], theirGoal),
	}).Debug("committed to ball")
}

// fastestOpponentTime is the earliest intercept time of any live opponent,
// +Inf when there is none
func (h *Hivemind) fastestOpponentTime(world *game.WorldState, pred game.Prediction) float64 {
	best := math.Inf(1)
	for _, opp := range world.Opponents(world.Team) {
		if opp.Demolished {
			continue
		}
		if ic := h.estimator.Estimate(opp, pred); ic.Time < best {
			best = ic.Time
		}
	}
	return best
}

// releaseStaleReservations drops claims whose drone is no longer refueling
func (h *Hivemind) releaseStaleReservations(log *logrus.Entry, drones []*Drone) {
	ledger := h.State.Reservations
	for _, r := range ledger.Snapshot() {
		d := findDrone(drones, r.Drone)
		if d != nil {
			if _, ok := d.Maneuver.(*Refuel); ok {
				continue
			}
		}
		ledger.Release(r.Drone)
		logStrategy(log.WithFields(logrus.Fields{"drone": r.Drone, "pad": r.Pad.ID}), "boost reservation released")
	}
}

// assignIdle sends low-boost idle drones to refuel, picks a defender if
// the role is free, and shadows the ball with everyone else
func (h *Hivemind) assignIdle(log *logrus.Entry, world *game.WorldState, drones []*Drone) {
	st := h.State
	ball := world.Ball.Position

	var idle []*Drone
	for _, d := range drones {
		if !d.Idle() || d.Car.Demolished {
			continue
		}
		if d.Car.Boost < h.cfg.RefuelBoostThreshold && h.assignRefuel(log, world, d, ball) {
			continue
		}
		idle = append(idle, d)
	}
	if len(idle) == 0 {
		return
	}

	if st.Defending == NoDrone {
		ourGoal := world.MyGoal.Center
		farthest := -1.0
		for _, d := range idle {
			if dist := game.GroundDistance(d.Car.Position, ourGoal); dist > farthest {
				farthest = dist
				st.Defending = d.ID
			}
		}
		logStrategy(log.WithField("drone", st.Defending), "defender selected")
	}

	for _, d := range idle {
		dist := h.cfg.ShadowDistance
		if d.ID == st.Defending {
			dist = h.cfg.DefenderShadowDistance
		}
		d.Assign(&ShadowDefense{Anchor: ball, Distance: dist})
	}
}

// assignRefuel claims the best free pad for d. Claims made earlier in the
// tick are already in the ledger, so drones never pick the same pad.
func (h *Hivemind) assignRefuel(log *logrus.Entry, world *game.WorldState, d *Drone, toward game.Vec3) bool {
	ledger := h.State.Reservations
	pad, ok := chooseRefuelPad(world, d.Car, toward, ledger.ReservedPads())
	if !ok {
		return false
	}
	if !ledger.Reserve(d.ID, pad) {
		log.WithFields(logrus.Fields{"drone": d.ID, "pad": pad.ID}).Warn("boost pad already reserved")
		return false
	}
	d.Assign(&Refuel{Pad: pad, Toward: toward})
	logStrategy(log.WithFields(logrus.Fields{"drone": d.ID, "pad": pad.ID}), "boost pad reserved")
	return true
}

// RoleOf reports the role d currently plays
func (h *Hivemind) RoleOf(d *Drone) string {
	switch d.Maneuver.(type) {
	case nil:
		return RoleIdle
	case *Kickoff:
		return RoleKickoff
	case *Recovery:
		return RoleRecovering
	case *Refuel:
		return RoleRefueling
	case *Defend:
		return RoleRetreating
	case *ShadowDefense:
		if d.ID == h.State.Defending {
			return RoleDefender
		}
		return RoleShadowing
	default:
		if d.ID == h.State.GoingForBall {
			return RoleBall
		}
		return RoleIdle
	}
}

// Assignments reports every drone's maneuver and role, in drone order
func (h *Hivemind) Assignments(drones []*Drone) []Assignment {
	out := make([]Assignment, len(drones))
	for i, d := range drones {
		out[i] = Assignment{
			Drone:         d.ID,
			Role:          h.RoleOf(d),
			Kind:          kindName(d.Maneuver),
			Interruptible: d.Interruptible,
			Maneuver:      d.Maneuver,
		}
	}
	return out
}

func (h *Hivemind) render(drones []*Drone) {
	if h.renderer == nil {
		return
	}
	h.renderer.Render(h.State.Tick, h.Assignments(drones), h.State.Prediction)
}
