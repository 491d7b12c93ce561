package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lab1702/rocket-hivemind/game"
)

// openPlayWorld has the ball resting at center and three blue drones: one
// right behind the ball and two further back on either side
func openPlayWorld() *game.WorldState {
	return newTestWorld(restingBall,
		blueCar(0, 0, -1000, 50),
		blueCar(1, -2000, -3000, 50),
		blueCar(2, 2000, -4000, 50),
	)
}

func TestSetManeuvers_SingleBallCommitment(t *testing.T) {
	world := openPlayWorld()
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)

	require.Equal(t, DroneID(0), h.State.GoingForBall)
	assert.Equal(t, []DroneID{0}, holders(h, drones, RoleBall))
	strike, ok := drones[0].Maneuver.(*Strike)
	require.True(t, ok)
	assert.Equal(t, GroundShot, strike.Shot)
	assert.Equal(t, world.TheirGoal.Center.Ground(), strike.Target)
	assert.True(t, strike.Intercept.Reachable)

	// Drone 1 is farthest from our goal and becomes the deep defender
	assert.Equal(t, DroneID(1), h.State.Defending)
	assert.Equal(t, RoleDefender, h.RoleOf(drones[1]))
	assert.Equal(t, RoleShadowing, h.RoleOf(drones[2]))
	assert.Equal(t, PrimaryStrategy().DefenderShadowDistance, drones[1].Maneuver.(*ShadowDefense).Distance)
	assert.Equal(t, PrimaryStrategy().ShadowDistance, drones[2].Maneuver.(*ShadowDefense).Distance)

	assert.Equal(t, uint64(1), h.State.Tick)
	assert.Equal(t, 720, h.State.Prediction.Len())
}

func TestSetManeuvers_IdempotentWithoutChanges(t *testing.T) {
	world := openPlayWorld()
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)
	first := h.Assignments(drones)
	firstBall, firstDefender := h.State.GoingForBall, h.State.Defending

	for i := 0; i < 5; i++ {
		h.SetManeuvers(world, drones)
		assert.Equal(t, first, h.Assignments(drones), "tick %d", h.State.Tick)
		assert.Equal(t, firstBall, h.State.GoingForBall)
		assert.Equal(t, firstDefender, h.State.Defending)
		assert.Len(t, holders(h, drones, RoleBall), 1)
	}
}

func TestSetManeuvers_LowBoostDronesGetDistinctPads(t *testing.T) {
	world := newTestWorld(restingBall,
		blueCar(0, 0, -1000, 50),
		blueCar(1, 0, -3000, 10),
		blueCar(2, 0, -3000, 10),
	)
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)

	require.Equal(t, DroneID(0), h.State.GoingForBall)
	r1, ok := drones[1].Maneuver.(*Refuel)
	require.True(t, ok)
	r2, ok := drones[2].Maneuver.(*Refuel)
	require.True(t, ok)

	// Same spot, same aim: the first drone takes the first pad of the tie
	assert.Equal(t, 0, r1.Pad.ID)
	assert.Equal(t, 1, r2.Pad.ID)
	assert.Equal(t, 2, h.State.Reservations.Len())
	assert.Equal(t, []string{RoleRefueling, RoleRefueling}, []string{h.RoleOf(drones[1]), h.RoleOf(drones[2])})

	// Drone 1 picks up its pad; the claim goes with the maneuver
	world.Cars[1].Boost = 100
	refreshCars(world, drones)
	drones[1].Report(true, true)
	h.SetManeuvers(world, drones)

	assert.False(t, h.State.Reservations.IsReserved(0))
	assert.True(t, h.State.Reservations.IsReserved(1))
	_, ok = drones[1].Maneuver.(*ShadowDefense)
	assert.True(t, ok)
	assert.Equal(t, DroneID(1), h.State.Defending)
}

func TestSetManeuvers_ReservationReleasedOnReassignment(t *testing.T) {
	world := newTestWorld(restingBall,
		blueCar(0, 0, -1000, 50),
		blueCar(1, 0, -3000, 10),
	)
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)
	require.True(t, h.State.Reservations.IsReserved(0))

	// Striker is demolished; the refueling drone is the only one left ready
	// and takes over the ball
	world.Cars[0].Demolished = true
	refreshCars(world, drones)
	h.SetManeuvers(world, drones)

	assert.Equal(t, DroneID(1), h.State.GoingForBall)
	assert.Equal(t, 0, h.State.Reservations.Len())
}

func TestSetManeuvers_DefenderReselectedAfterFinishing(t *testing.T) {
	world := openPlayWorld()
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)
	require.Equal(t, DroneID(1), h.State.Defending)

	// Defender finishes and is the only idle drone, so it takes the role back
	drones[1].Report(true, true)
	h.SetManeuvers(world, drones)
	assert.Equal(t, DroneID(1), h.State.Defending)
	assert.Equal(t, RoleDefender, h.RoleOf(drones[1]))

	// Both support drones finish with drone 2 now the farthest from goal
	world.Cars[2].Position = game.Vec3{X: 3000, Y: -1000, Z: 17}
	refreshCars(world, drones)
	drones[1].Report(true, true)
	drones[2].Report(true, true)
	h.SetManeuvers(world, drones)

	assert.Equal(t, DroneID(2), h.State.Defending)
	assert.Equal(t, RoleDefender, h.RoleOf(drones[2]))
	assert.Equal(t, RoleShadowing, h.RoleOf(drones[1]))
}

func TestSetManeuvers_NoReadyDronesSkipsTick(t *testing.T) {
	world := openPlayWorld()
	world.Cars[0].OnGround = false
	world.Cars[0].Position.Z = 600
	world.Cars[1].Demolished = true
	world.Cars[2].Jumping = true
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)

	assert.Equal(t, uint64(1), h.State.Tick)
	assert.Equal(t, NoDrone, h.State.GoingForBall)
	assert.Equal(t, NoDrone, h.State.Defending)
	assert.Equal(t, 0, h.State.Prediction.Len(), "no commitment search ran")
	assert.Equal(t, RoleRecovering, h.RoleOf(drones[0]))
	assert.True(t, drones[1].Idle())
	assert.True(t, drones[2].Idle())
}

func TestSetManeuvers_DemolishedStrikerReleased(t *testing.T) {
	world := openPlayWorld()
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)
	require.Equal(t, DroneID(0), h.State.GoingForBall)
	require.Equal(t, DroneID(1), h.State.Defending)

	world.Cars[0].Demolished = true
	refreshCars(world, drones)
	h.SetManeuvers(world, drones)

	assert.True(t, drones[0].Idle(), "demolished drone keeps no maneuver")
	assert.NotEqual(t, DroneID(0), h.State.GoingForBall)
	assert.Equal(t, DroneID(1), h.State.GoingForBall, "next fastest drone takes over")
	assert.Equal(t, RoleBall, h.RoleOf(drones[1]))
	assert.Equal(t, NoDrone, h.State.Defending, "the defender left its role to strike")
	assert.Len(t, holders(h, drones, RoleBall), 1)
}

func TestSetManeuvers_StrikerMissingFromFeedReleased(t *testing.T) {
	world := openPlayWorld()
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)
	require.Equal(t, DroneID(0), h.State.GoingForBall)

	world.Cars = world.Cars[1:]
	h.SetManeuvers(world, drones[1:])

	assert.Equal(t, DroneID(1), h.State.GoingForBall)
}

func TestSetManeuvers_AirborneDroneRecovers(t *testing.T) {
	world := newTestWorld(restingBall,
		blueCar(0, 0, -1000, 50),
		blueCar(1, 0, -3000, 50),
	)
	world.Cars[0].OnGround = false
	world.Cars[0].Position.Z = 400
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)

	_, ok := drones[0].Maneuver.(*Recovery)
	require.True(t, ok)
	assert.False(t, drones[0].Interruptible)
	assert.Equal(t, RoleRecovering, h.RoleOf(drones[0]))
	assert.Equal(t, DroneID(1), h.State.GoingForBall, "airborne drone cannot commit")

	// Still airborne next tick: recovery is not replaced
	h.SetManeuvers(world, drones)
	_, ok = drones[0].Maneuver.(*Recovery)
	assert.True(t, ok)
}

func TestSetManeuvers_BestAlignedWhenFasterThanOpponents(t *testing.T) {
	// Neither drone has a clean angle, both beat the opponent; the better
	// angle wins even though the other drone is closer
	world := newTestWorld(restingBall,
		blueCar(0, -800, 200, 50),
		blueCar(1, 1000, 0, 50),
		orangeCar(5, 0, 4000),
	)
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)

	require.Equal(t, DroneID(1), h.State.GoingForBall)
	_, ok := drones[1].Maneuver.(*Strike)
	assert.True(t, ok)
}

func TestSetManeuvers_ClearWhenBeatenNearOwnGoal(t *testing.T) {
	tests := []struct {
		name string
		cfg  StrategyConfig
		want ClearKind
	}{
		{"primary clears into the corner", PrimaryStrategy(), ClearIntoCorner},
		{"permissive uses the dedicated clear", PermissiveStrategy(), AnyClear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := newTestWorld(game.Vec3{X: 3000, Y: -4000, Z: game.BallRadius},
				blueCar(0, 0, -4000, 50),
				orangeCar(5, 3000, -3500),
			)
			drones := dronesFor(world)
			h := newTestHivemind(tt.cfg)

			h.SetManeuvers(world, drones)

			require.Equal(t, DroneID(0), h.State.GoingForBall)
			plan, ok := drones[0].Maneuver.(*Clear)
			require.True(t, ok, "got %T", drones[0].Maneuver)
			assert.Equal(t, tt.want, plan.Style)
			assert.Equal(t, RoleBall, h.RoleOf(drones[0]))
		})
	}
}

func TestSetManeuvers_ShootWhenBeatenFarFromOwnGoal(t *testing.T) {
	world := newTestWorld(game.Vec3{Y: 2000, Z: game.BallRadius},
		blueCar(0, 0, 3000, 50),
		orangeCar(5, 0, 1500),
	)
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	h.SetManeuvers(world, drones)

	_, ok := drones[0].Maneuver.(*Strike)
	assert.True(t, ok, "got %T", drones[0].Maneuver)
}

func TestSetManeuvers_ReadyHeightVariant(t *testing.T) {
	tests := []struct {
		name      string
		cfg       StrategyConfig
		wantReady bool
	}{
		{"primary requires wheels down", PrimaryStrategy(), false},
		{"permissive accepts a small hop", PermissiveStrategy(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := newTestWorld(restingBall, blueCar(0, 0, -1000, 50))
			world.Cars[0].OnGround = false
			world.Cars[0].Position.Z = 100
			drones := dronesFor(world)
			drones[0].Assign(&ShadowDefense{Anchor: restingBall, Distance: 3000})
			h := newTestHivemind(tt.cfg)

			h.SetManeuvers(world, drones)

			if tt.wantReady {
				assert.Equal(t, DroneID(0), h.State.GoingForBall)
			} else {
				assert.Equal(t, NoDrone, h.State.GoingForBall)
				_, ok := drones[0].Maneuver.(*ShadowDefense)
				assert.True(t, ok)
			}
		})
	}
}

func TestSetManeuvers_Kickoff(t *testing.T) {
	world := kickoffWorld()
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())

	// A leftover strike from before the goal must not survive the reset
	drones[1].Assign(&Strike{})
	h.State.GoingForBall = 1

	h.SetManeuvers(world, drones)

	assert.True(t, h.State.Kickoff)
	assert.Equal(t, DroneID(0), h.State.GoingForBall)
	assert.Equal(t, RoleKickoff, h.RoleOf(drones[0]))
	assert.Equal(t, RoleRefueling, h.RoleOf(drones[1]))
	assert.Equal(t, RoleRetreating, h.RoleOf(drones[2]))
	assert.True(t, h.State.Reservations.IsReserved(1))

	// Later ticks of the same pause keep the roles and steer the taker
	world.Cars[0].Position = game.Vec3{X: -300, Y: -400, Z: 17}
	world.Cars[3].Position = game.Vec3{X: 300, Y: 900, Z: 17}
	refreshCars(world, drones)
	h.SetManeuvers(world, drones)

	kickoff, ok := drones[0].Maneuver.(*Kickoff)
	require.True(t, ok)
	assert.Equal(t, ApproachDodge, kickoff.Approach)
	assert.Equal(t, RoleRefueling, h.RoleOf(drones[1]))
	assert.Equal(t, RoleRetreating, h.RoleOf(drones[2]))

	// Kickoff over: the taker finishes and play resumes
	world.KickoffPause = false
	drones[0].Report(true, false)
	h.SetManeuvers(world, drones)

	assert.False(t, h.State.Kickoff)
	assert.Len(t, holders(h, drones, RoleBall), 1)
}

func TestSetManeuvers_LoneKickoffTakerSteered(t *testing.T) {
	tests := []struct {
		name       string
		opponentY  float64
		wantMode   KickoffApproach
		wantTarget game.Vec3
	}{
		{"contested", 1000, ApproachDodge, restingBall},
		{"uncontested", 4608, ApproachArrive, restingBall.Add(game.Vec3{X: KickoffAimOffset})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := newTestWorld(restingBall, blueCar(0, 0, -4608, 33), orangeCar(1, 0, 4608))
			world.KickoffPause = true
			drones := dronesFor(world)
			h := newTestHivemind(PrimaryStrategy())

			h.SetManeuvers(world, drones)
			require.Equal(t, DroneID(0), h.State.GoingForBall)

			// The only drone holds its kickoff, so nobody is ready on this tick
			world.Cars[0].Position = game.Vec3{Y: -500, Z: 17}
			world.Cars[1].Position = game.Vec3{Y: tt.opponentY, Z: 17}
			refreshCars(world, drones)
			require.Empty(t, h.readyDrones(drones))
			h.SetManeuvers(world, drones)

			kickoff, ok := drones[0].Maneuver.(*Kickoff)
			require.True(t, ok)
			assert.Equal(t, tt.wantMode, kickoff.Approach)
			assert.Equal(t, tt.wantTarget, kickoff.Target)
			assert.Equal(t, DroneID(0), h.State.GoingForBall)
		})
	}
}

func TestSetManeuvers_KickoffAfterSkippedPlay(t *testing.T) {
	world := kickoffWorld()
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())
	h.SetManeuvers(world, drones)

	// Play resumes with every drone airborne, so the tick is skipped
	world.KickoffPause = false
	for i := range world.Cars[:3] {
		world.Cars[i].OnGround = false
		world.Cars[i].Position.Z = 600
	}
	refreshCars(world, drones)
	h.SetManeuvers(world, drones)
	assert.False(t, h.State.Kickoff)

	// A goal later the cars are back on their spawns
	world = kickoffWorld()
	refreshCars(world, drones)
	h.SetManeuvers(world, drones)

	assert.True(t, h.State.Kickoff)
	assert.Equal(t, DroneID(0), h.State.GoingForBall)
	assert.Equal(t, RoleKickoff, h.RoleOf(drones[0]))
	assert.Equal(t, RoleRefueling, h.RoleOf(drones[1]))
	assert.Equal(t, RoleRetreating, h.RoleOf(drones[2]))
}

func TestSetManeuvers_KickoffTakenOverDuringPause(t *testing.T) {
	world := kickoffWorld()
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy())
	h.SetManeuvers(world, drones)
	require.True(t, h.State.Reservations.IsReserved(1))

	// The taker is demolished before the ball is touched
	world.Cars[0].Demolished = true
	refreshCars(world, drones)
	h.SetManeuvers(world, drones)

	assert.True(t, drones[0].Idle())
	assert.Equal(t, DroneID(1), h.State.GoingForBall, "nearest ready drone takes over")
	assert.Equal(t, RoleKickoff, h.RoleOf(drones[1]))
	assert.Equal(t, RoleRetreating, h.RoleOf(drones[2]), "other roles are kept")
	assert.False(t, h.State.Reservations.IsReserved(1), "the new taker's pad is freed")
}

func TestSetManeuvers_RendererSeesEveryTick(t *testing.T) {
	var ticks []uint64
	var seen []Assignment
	render := RendererFunc(func(tick uint64, assignments []Assignment, _ game.Prediction) {
		ticks = append(ticks, tick)
		seen = assignments
	})

	world := openPlayWorld()
	drones := dronesFor(world)
	h := newTestHivemind(PrimaryStrategy(), WithRenderer(render))

	h.SetManeuvers(world, drones)
	h.SetManeuvers(world, drones)

	assert.Equal(t, []uint64{1, 2}, ticks)
	require.Len(t, seen, 3)
	assert.Equal(t, RoleBall, seen[0].Role)
	assert.Equal(t, "strike", seen[0].Kind)
}
