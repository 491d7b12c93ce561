package game

import (
	"math"
)

// Arena and ball constants (unreal units, seconds)
const (
	// Goal geometry
	GoalWidth    = 1784.0
	GoalHeight   = 640.0
	GoalDistance = 5120.0 // Distance from the center spot to each goal line
	GoalDepth    = 880.0  // How far the net extends behind the goal line

	// Arena bounds (box approximation, no curved corners)
	ArenaHalfWidth  = 4096.0
	ArenaHalfLength = 5120.0
	CeilingHeight   = 2044.0

	// Ball physics
	BallRadius       = 92.75
	Gravity          = -650.0 // Z acceleration in uu/s^2
	BallDrag         = 0.03   // Fraction of velocity lost per second in flight
	BallRestitution  = 0.6    // Normal velocity retained after a bounce
	BallGroundFrict  = 0.2    // Tangential velocity lost per bounce
	BallMaxSpeed     = 6000.0
	BallRollingFrict = 0.05 // Fraction of velocity lost per second while rolling
	BallMinBounce    = 40.0 // Slower floor impacts settle into rolling

	// Car speed envelope
	MaxCarSpeed      = 2300.0
	MaxThrottleSpeed = 1410.0
	ThrottleAccel    = 1600.0
	BoostAccel       = 991.666
	MaxBoost         = 100.0

	// Boost pad respawn times
	LargePadRespawn = 10.0
	SmallPadRespawn = 4.0
)

// Team identifies a side of the field
type Team int

const (
	TeamBlue   Team = 0 // Defends the negative Y goal
	TeamOrange Team = 1 // Defends the positive Y goal
)

// Opponent returns the other team
func (t Team) Opponent() Team {
	return 1 - t
}

// Sign is +1 for blue and -1 for orange; multiplying a Y coordinate by it
// turns "toward the opponent goal" into the positive direction.
func (t Team) Sign() float64 {
	return float64(1 - 2*int(t))
}

// PadSize distinguishes the two kinds of boost pad
type PadSize int

const (
	PadSmall PadSize = iota
	PadLarge
)

func (s PadSize) String() string {
	if s == PadLarge {
		return "large"
	}
	return "small"
}

// Goal describes one team's goal mouth
type Goal struct {
	Team      Team `json:"team"`
	Center    Vec3 `json:"center"`
	LeftPost  Vec3 `json:"leftPost"`
	RightPost Vec3 `json:"rightPost"`
}

// NewGoal returns the goal defended by team
func NewGoal(team Team) Goal {
	sign := team.Sign()
	return Goal{
		Team:      team,
		Center:    Vec3{0, -sign * GoalDistance, GoalHeight / 2.0},
		LeftPost:  Vec3{sign * GoalWidth / 2, -sign * GoalDistance, 0},
		RightPost: Vec3{-sign * GoalWidth / 2, -sign * GoalDistance, 0},
	}
}

// Inside reports whether pos has crossed this goal's line. The test is a pure
// half-space check along Y; lateral and vertical position are ignored.
func (g Goal) Inside(pos Vec3) bool {
	if g.Team == TeamBlue {
		return pos.Y < -GoalDistance
	}
	return pos.Y > GoalDistance
}

// Car is the kinematic and status snapshot of one car
type Car struct {
	ID         int     `json:"id"`
	Team       Team    `json:"team"`
	Position   Vec3    `json:"position"`
	Velocity   Vec3    `json:"velocity"`
	Forward    Vec3    `json:"forward"` // Unit vector along the car's nose
	Boost      float64 `json:"boost"`
	OnGround   bool    `json:"onGround"`
	Demolished bool    `json:"demolished"`
	Jumping    bool    `json:"jumping"` // Jump input held this tick
}

// Ball is a ball state; Time is the game clock for live states and the
// elapsed time since the prediction origin for predicted samples.
type Ball struct {
	Position        Vec3    `json:"position"`
	Velocity        Vec3    `json:"velocity"`
	AngularVelocity Vec3    `json:"angularVelocity"`
	Time            float64 `json:"time"`
}

// Pad is a boost pad
type Pad struct {
	ID       int     `json:"id"`
	Position Vec3    `json:"position"`
	Size     PadSize `json:"size"`
	Active   bool    `json:"active"`
	Timer    float64 `json:"timer"` // Seconds until the pad respawns, 0 when active
}

// AvailableWithin reports whether the pad will be collectable after t seconds
func (p Pad) AvailableWithin(t float64) bool {
	return p.Active || p.Timer <= t
}

// WorldState is the snapshot the host feeds in once per tick. The decision
// layer only reads it.
type WorldState struct {
	Time         float64 `json:"time"`
	Team         Team    `json:"team"` // The team our drones play for
	KickoffPause bool    `json:"kickoffPause"`
	Ball         Ball    `json:"ball"`
	Cars         []Car   `json:"cars"`
	Pads         []Pad   `json:"pads"`
	MyGoal       Goal    `json:"myGoal"`
	TheirGoal    Goal    `json:"theirGoal"`
}

// NewWorldState creates an empty world for team with goal geometry filled in
func NewWorldState(team Team) *WorldState {
	return &WorldState{
		Team:      team,
		MyGoal:    NewGoal(team),
		TheirGoal: NewGoal(team.Opponent()),
	}
}

// Car returns the car with the given id
func (w *WorldState) Car(id int) (Car, bool) {
	for _, c := range w.Cars {
		if c.ID == id {
			return c, true
		}
	}
	return Car{}, false
}

// Opponents returns the cars not on car's team, in feed order
func (w *WorldState) Opponents(team Team) []Car {
	var out []Car
	for _, c := range w.Cars {
		if c.Team != team {
			out = append(out, c)
		}
	}
	return out
}

// LargePads returns the large boost pads in feed order
func (w *WorldState) LargePads() []Pad {
	return w.padsOfSize(PadLarge)
}

// SmallPads returns the small boost pads in feed order
func (w *WorldState) SmallPads() []Pad {
	return w.padsOfSize(PadSmall)
}

func (w *WorldState) padsOfSize(size PadSize) []Pad {
	var out []Pad
	for _, p := range w.Pads {
		if p.Size == size {
			out = append(out, p)
		}
	}
	return out
}

// EstimateTime is the default speed envelope: the time for car to cover the
// straight ground distance to target, accelerating from its current speed
// along that line up to the throttle cap, or the boost cap when it has boost.
func EstimateTime(car Car, target Vec3) float64 {
	d := GroundDistance(car.Position, target)
	if d < 1e-6 {
		return 0
	}

	dir := Direction(car.Position.Ground(), target.Ground())
	v0 := math.Max(Dot(car.Velocity.Ground(), dir), 0)

	vmax := MaxThrottleSpeed
	accel := ThrottleAccel
	if car.Boost > 0 {
		vmax = MaxCarSpeed
		accel += BoostAccel
	}
	if v0 >= vmax {
		return d / v0
	}

	accelTime := (vmax - v0) / accel
	accelDist := (v0 + vmax) / 2 * accelTime
	if accelDist >= d {
		return (-v0 + math.Sqrt(v0*v0+2*accel*d)) / accel
	}
	return accelTime + (d-accelDist)/vmax
}
