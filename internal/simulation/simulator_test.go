package simulation

import (
	"math"
	"testing"

	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

func kickoff(t *testing.T) (*Simulator, *random.XorShift) {
	t.Helper()
	rules := types.DefaultRules()
	rules.Seed = 42
	sim := New(rules, types.KickoffGame(rules), 1)
	rng := random.MustFromSeed([4]uint32{uint32(rules.Seed), uint32(rules.Seed >> 32), 0, 0})
	return sim, rng
}

func near(a, b, delta float64) bool {
	return math.Abs(a-b) <= delta
}

type solid struct {
	position geom.Vec3
	velocity geom.Vec3
	radius   float64
	mass     float64
}

func (s *solid) Position() geom.Vec3        { return s.position }
func (s *solid) Velocity() geom.Vec3        { return s.velocity }
func (s *solid) SetPosition(v geom.Vec3)    { s.position = v }
func (s *solid) SetVelocity(v geom.Vec3)    { s.velocity = v }
func (s *solid) Radius() float64            { return s.radius }
func (s *solid) Mass() float64              { return s.mass }
func (s *solid) RadiusChangeSpeed() float64 { return 0 }
func (s *solid) ArenaE() float64            { return 0 }

func TestRobotJumpFirstTick(t *testing.T) {
	sim, rng := kickoff(t)
	rules := sim.Rules()
	sim.Me().SetAction(types.Action{JumpSpeed: rules.RobotMaxJumpSpeed})

	sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)

	position := sim.Me().Position()
	want := geom.V3(-0.289095425043726, 1.2931412499999937, -19.997910486728827)
	if !near(position.X, want.X, 1e-12) || !near(position.Y, want.Y, 1e-12) || !near(position.Z, want.Z, 1e-12) {
		t.Fatalf("expected position %v, got=%v", want, position)
	}
	if _, touch := sim.Me().TouchNormal(); touch {
		t.Fatalf("expected robot in the air")
	}
}

func TestRobotJumpLandsAtFixedTime(t *testing.T) {
	for _, micro := range []int{100, 50} {
		sim, rng := kickoff(t)
		rules := sim.Rules()
		sim.Me().SetAction(types.Action{JumpSpeed: rules.RobotMaxJumpSpeed})
		sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick/2, rng)

		sim.Me().SetAction(types.Action{})
		for sim.Me().Position().Y > 1 {
			sim.Tick(rules.TickTimeInterval(), micro, rng)
		}
		if got := sim.CurrentTime(); !near(got, 1.016666666666668, 1e-12) {
			t.Fatalf("micro ticks %d: expected landing time 1.016666666666668, got=%v", micro, got)
		}
		if got := sim.CurrentTick(); got != 61 {
			t.Fatalf("micro ticks %d: expected landing tick 61, got=%d", micro, got)
		}
	}
}

func TestCollideIsEnergyBounded(t *testing.T) {
	rules := types.DefaultRules()
	a := &solid{position: geom.V3(0, 0, 0), velocity: geom.V3(10, 0, 0), radius: 1, mass: 2}
	b := &solid{position: geom.V3(2.5, 0, 0), velocity: geom.V3(-5, 1, 0), radius: 2, mass: 1}
	closing := 15.0
	sampled := 0

	got := Collide(func() float64 { sampled++; return rules.MaxHitE }, a, b)

	if got != CollisionKick {
		t.Fatalf("expected kick, got=%v", got)
	}
	if sampled != 1 {
		t.Fatalf("expected restitution sampled once, got=%d", sampled)
	}
	separating := b.velocity.X - a.velocity.X
	if separating <= 0 || separating > (1+rules.MaxHitE)*closing+1e-9 {
		t.Fatalf("expected separating speed in (0, %v], got=%v", (1+rules.MaxHitE)*closing, separating)
	}
	if gap := b.position.X - a.position.X; !near(gap, 3, 1e-12) {
		t.Fatalf("expected centers 3 apart, got=%v", gap)
	}
}

func TestCollideTouchAndMiss(t *testing.T) {
	never := func() float64 { t.Fatal("restitution sampled without closing speed"); return 0 }

	a := &solid{position: geom.V3(0, 0, 0), velocity: geom.V3(-1, 0, 0), radius: 1, mass: 1}
	b := &solid{position: geom.V3(1.5, 0, 0), radius: 1, mass: 1}
	if got := Collide(never, a, b); got != CollisionTouch {
		t.Fatalf("expected touch, got=%v", got)
	}

	far := &solid{position: geom.V3(10, 0, 0), radius: 1, mass: 1}
	if got := Collide(never, a, far); got != CollisionNone {
		t.Fatalf("expected no collision, got=%v", got)
	}
}

func TestCollisionTypeMerge(t *testing.T) {
	robot := []struct{ a, b, want CollisionType }{
		{CollisionNone, CollisionTouch, CollisionTouch},
		{CollisionTouch, CollisionNone, CollisionTouch},
		{CollisionTouch, CollisionKick, CollisionKick},
		{CollisionKick, CollisionTouch, CollisionKick},
	}
	for _, c := range robot {
		if got := c.a.Merge(c.b); got != c.want {
			t.Fatalf("expected %v merged with %v to be %v, got=%v", c.a, c.b, c.want, got)
		}
	}
	if got := BallCollisionArena.Merge(BallCollisionRobot); got != BallCollisionArenaAndRobot {
		t.Fatalf("expected arena and robot, got=%v", got)
	}
	if got := BallCollisionNone.Merge(BallCollisionRobot); got != BallCollisionRobot {
		t.Fatalf("expected robot, got=%v", got)
	}
}

func TestBallBouncesOffFloor(t *testing.T) {
	sim, rng := kickoff(t)
	rules := sim.Rules()
	sim.Ball().SetPosition(geom.V3(0, 2.1, 0))
	sim.Ball().SetVelocity(geom.V3(0, -20, 0))

	sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)

	ball := sim.Ball()
	if got := ball.CollisionType(); got != BallCollisionArena {
		t.Fatalf("expected arena collision, got=%v", got)
	}
	if ball.Velocity().Y <= 0 {
		t.Fatalf("expected ball going up, got=%v", ball.Velocity())
	}
	if !near(ball.DistanceToArena(), ball.Position().Y, 1e-9) {
		t.Fatalf("expected floor distance %v, got=%v", ball.Position().Y, ball.DistanceToArena())
	}
}

func TestGoalScoreSticks(t *testing.T) {
	sim, rng := kickoff(t)
	rules := sim.Rules()
	sim.Ball().SetPosition(geom.V3(0, 3, 41.9))
	sim.Ball().SetVelocity(geom.V3(0, 0, 30))

	sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)
	if got := sim.Score(); got != 1 {
		t.Fatalf("expected score 1, got=%d", got)
	}

	sim.Ball().SetPosition(geom.V3(0, 3, -45))
	sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)
	if got := sim.Score(); got != 1 {
		t.Fatalf("expected score to stay 1, got=%d", got)
	}
}

func TestOwnGoal(t *testing.T) {
	sim, rng := kickoff(t)
	rules := sim.Rules()
	sim.Ball().SetPosition(geom.V3(0, 3, -41.9))
	sim.Ball().SetVelocity(geom.V3(0, 0, -30))

	sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)
	if got := sim.Score(); got != -1 {
		t.Fatalf("expected score -1, got=%d", got)
	}
}

func TestNitroPackPickupAndRespawn(t *testing.T) {
	sim, rng := kickoff(t)
	rules := sim.Rules()
	me := sim.Me()
	me.SetNitroAmount(0)
	me.SetPosition(geom.V3(rules.NitroPackX, rules.RobotRadius, -rules.NitroPackZ))

	sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)

	if got := sim.Me().NitroAmount(); got != rules.MaxNitroAmount {
		t.Fatalf("expected full nitro, got=%v", got)
	}
	taken := 0
	for _, pack := range sim.NitroPacks() {
		if pack.RespawnTicks == nil {
			continue
		}
		taken++
		if *pack.RespawnTicks != rules.NitroPackRespawnTicks-1 {
			t.Fatalf("expected respawn in %d ticks, got=%d", rules.NitroPackRespawnTicks-1, *pack.RespawnTicks)
		}
	}
	if taken != 1 {
		t.Fatalf("expected one pack taken, got=%d", taken)
	}
}

func TestNitroAccelerationSpendsNitro(t *testing.T) {
	sim, rng := kickoff(t)
	rules := sim.Rules()
	me := sim.Me()
	me.SetPosition(geom.V3(0, 5, -10))
	me.SetTouchNormal(geom.Vec3{}, false)
	me.SetAction(types.Action{TargetVelocityY: 30, UseNitro: true})

	sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)

	if want, got := rules.StartNitroAmount-0.5/rules.NitroPointVelocityChange, sim.Me().NitroAmount(); !near(got, want, 1e-9) {
		t.Fatalf("expected nitro %v, got=%v", want, got)
	}
	if want, got := 0.5-rules.Gravity*rules.TickTimeInterval(), sim.Me().Velocity().Y; !near(got, want, 1e-9) {
		t.Fatalf("expected vertical speed %v, got=%v", want, got)
	}
}

func TestIgnoredRobotIsFrozen(t *testing.T) {
	sim, rng := kickoff(t)
	rules := sim.Rules()
	sim.Me().SetPosition(geom.V3(0, 5, -10))
	sim.SetIgnoreMe(true)

	sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)

	if !sim.IgnoreMe() {
		t.Fatalf("expected robot still ignored")
	}
	if got := sim.Me().Position(); got != geom.V3(0, 5, -10) {
		t.Fatalf("expected robot not to move, got=%v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	sim, rng := kickoff(t)
	rules := sim.Rules()
	fork := sim.Clone()
	fork.Me().SetAction(types.Action{JumpSpeed: rules.RobotMaxJumpSpeed})

	fork.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng.Clone())

	if got := sim.CurrentTick(); got != 0 {
		t.Fatalf("expected original at tick 0, got=%d", got)
	}
	if got := sim.Me().Position().Y; got != 1 {
		t.Fatalf("expected original robot on the floor, got=%v", got)
	}
	if got := fork.Me().Position().Y; got <= 1 {
		t.Fatalf("expected forked robot in the air, got=%v", got)
	}
}

func TestGameRoundTrip(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	game.CurrentTick = 30
	sim := New(rules, game, 1)

	out := sim.Game()
	if out.CurrentTick != 30 {
		t.Fatalf("expected tick 30, got=%d", out.CurrentTick)
	}
	if out.Ball != game.Ball {
		t.Fatalf("expected ball %+v, got=%+v", game.Ball, out.Ball)
	}
	me, ok := out.Robot(1)
	if !ok {
		t.Fatalf("expected robot 1 in the game")
	}
	if me.Position() != game.Robots[0].Position() {
		t.Fatalf("expected robot at %v, got=%v", game.Robots[0].Position(), me.Position())
	}
	if len(out.NitroPacks) != 4 {
		t.Fatalf("expected 4 nitro packs, got=%d", len(out.NitroPacks))
	}
}

func TestNewPanicsWithoutMe(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown robot")
		}
	}()
	rules := types.DefaultRules()
	New(rules, types.KickoffGame(rules), 99)
}
