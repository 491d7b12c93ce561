package game

import "math"

// Step advances the ball by dt seconds: gravity and drag, then collision
// against the floor, ceiling, side walls and back walls. The back wall is
// open across the goal mouth so the ball can enter the net, which is closed
// GoalDepth further back.
func (b *Ball) Step(dt float64) {
	rolling := b.Position.Z <= BallRadius && b.Velocity.Z == 0
	b.Velocity.Z += Gravity * dt

	drag := BallDrag
	if rolling {
		drag += BallRollingFrict
	}
	b.Velocity = b.Velocity.Scale(Clamp(1-drag*dt, 0, 1))

	if speed := b.Velocity.Norm(); speed > BallMaxSpeed {
		b.Velocity = b.Velocity.Scale(BallMaxSpeed / speed)
	}

	b.Position = b.Position.Add(b.Velocity.Scale(dt))
	b.Time += dt

	b.collide()
}

func (b *Ball) collide() {
	p, v := &b.Position, &b.Velocity

	// Floor
	if p.Z < BallRadius {
		p.Z = BallRadius
		if v.Z < -BallMinBounce {
			v.Z = -v.Z * BallRestitution
			v.X *= 1 - BallGroundFrict
			v.Y *= 1 - BallGroundFrict
		} else if v.Z < 0 {
			v.Z = 0
		}
	}

	// Ceiling
	if p.Z > CeilingHeight-BallRadius {
		p.Z = CeilingHeight - BallRadius
		if v.Z > 0 {
			v.Z = -v.Z * BallRestitution
		}
	}

	// Side walls
	if limit := ArenaHalfWidth - BallRadius; math.Abs(p.X) > limit {
		p.X = math.Copysign(limit, p.X)
		if p.X*v.X > 0 {
			v.X = -v.X * BallRestitution
		}
	}

	// Back walls, with the goal mouth cut out
	inMouth := math.Abs(p.X) < GoalWidth/2-BallRadius && p.Z < GoalHeight-BallRadius
	limit := ArenaHalfLength - BallRadius
	if inMouth {
		limit = ArenaHalfLength + GoalDepth - BallRadius
	}
	if math.Abs(p.Y) > limit {
		p.Y = math.Copysign(limit, p.Y)
		if p.Y*v.Y > 0 {
			v.Y = -v.Y * BallRestitution
		}
	}
}
