package server

import "github.com/lab1702/rocket-hivemind/game"

// ManeuverKind tags the concrete maneuver held in a drone's slot
type ManeuverKind int

const (
	KindStrike ManeuverKind = iota
	KindClear
	KindShadow
	KindRefuel
	KindRecovery
	KindKickoff
	KindDefend
)

func (k ManeuverKind) String() string {
	switch k {
	case KindStrike:
		return "strike"
	case KindClear:
		return "clear"
	case KindShadow:
		return "shadow"
	case KindRefuel:
		return "refuel"
	case KindRecovery:
		return "recovery"
	case KindKickoff:
		return "kickoff"
	case KindDefend:
		return "defend"
	default:
		return "unknown"
	}
}

// Maneuver is the closed set of assignments the hivemind hands to the
// executor. The executor steps it and reports back; the hivemind never does.
type Maneuver interface {
	Kind() ManeuverKind
	// Interruptible is the default before the executor reports otherwise
	Interruptible() bool
}

// ShotKind selects how a Strike meets the ball
type ShotKind int

const (
	GroundShot ShotKind = iota
	DodgeShot
	AerialShot
)

func (s ShotKind) String() string {
	switch s {
	case GroundShot:
		return "ground"
	case DodgeShot:
		return "dodge"
	case AerialShot:
		return "aerial"
	default:
		return "unknown"
	}
}

// Strike hits the ball at Intercept toward Target
type Strike struct {
	Shot      ShotKind  `json:"shot"`
	Intercept Intercept `json:"intercept"`
	Target    game.Vec3 `json:"target"`
}

func (*Strike) Kind() ManeuverKind  { return KindStrike }
func (*Strike) Interruptible() bool { return true }

// ClearKind selects where a Clear sends the ball
type ClearKind int

const (
	ClearIntoCorner ClearKind = iota
	AnyClear
)

func (c ClearKind) String() string {
	if c == AnyClear {
		return "any"
	}
	return "corner"
}

// Clear hits the ball at Intercept away from our goal
type Clear struct {
	Style     ClearKind `json:"style"`
	Intercept Intercept `json:"intercept"`
}

func (*Clear) Kind() ManeuverKind  { return KindClear }
func (*Clear) Interruptible() bool { return true }

// ShadowDefense holds a position Distance behind Anchor toward our goal
type ShadowDefense struct {
	Anchor   game.Vec3 `json:"anchor"`
	Distance float64   `json:"distance"`
}

func (*ShadowDefense) Kind() ManeuverKind  { return KindShadow }
func (*ShadowDefense) Interruptible() bool { return true }

// Refuel drives over Pad, then continues toward Toward
type Refuel struct {
	Pad    game.Pad  `json:"pad"`
	Toward game.Vec3 `json:"toward"`
}

func (*Refuel) Kind() ManeuverKind  { return KindRefuel }
func (*Refuel) Interruptible() bool { return true }

// Recovery lands an airborne car on its wheels
type Recovery struct{}

func (*Recovery) Kind() ManeuverKind  { return KindRecovery }
func (*Recovery) Interruptible() bool { return false }

// KickoffStyle is the opening drive variant, chosen by a KickoffPolicy
type KickoffStyle int

const (
	SimpleKickoff KickoffStyle = iota
	SpeedFlipKickoff
)

func (s KickoffStyle) String() string {
	if s == SpeedFlipKickoff {
		return "speed_flip"
	}
	return "simple"
}

// KickoffApproach is how the taker finishes the kickoff
type KickoffApproach int

const (
	ApproachArrive KickoffApproach = iota // Drive through the ball without dodging
	ApproachDodge                         // Dodge into the ball to win a contested kickoff
)

func (a KickoffApproach) String() string {
	if a == ApproachDodge {
		return "dodge"
	}
	return "arrive"
}

// Kickoff takes the opening touch
type Kickoff struct {
	Style    KickoffStyle    `json:"style"`
	Approach KickoffApproach `json:"approach"`
	Target   game.Vec3       `json:"target"`
}

func (*Kickoff) Kind() ManeuverKind  { return KindKickoff }
func (*Kickoff) Interruptible() bool { return false }

// Defend retreats to Target near our far post and waits there
type Defend struct {
	Target game.Vec3 `json:"target"`
}

func (*Defend) Kind() ManeuverKind  { return KindDefend }
func (*Defend) Interruptible() bool { return true }

// kindName is the wire name of m's kind, "" for an idle slot
func kindName(m Maneuver) string {
	if m == nil {
		return ""
	}
	return m.Kind().String()
}
