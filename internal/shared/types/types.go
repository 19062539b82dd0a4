package types

import (
	"github.com/elsid/CodeBall-sub000/internal/geom"
)

// Player is one side of the match.
type Player struct {
	ID              int  `json:"id"`
	Me              bool `json:"me"`
	StrategyCrashed bool `json:"strategy_crashed"`
	Score           int  `json:"score"`
}

// Robot is the authoritative state of one robot as sent by the host.
type Robot struct {
	ID           int      `json:"id"`
	PlayerID     int      `json:"player_id"`
	IsTeammate   bool     `json:"is_teammate"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Z            float64  `json:"z"`
	VelocityX    float64  `json:"velocity_x"`
	VelocityY    float64  `json:"velocity_y"`
	VelocityZ    float64  `json:"velocity_z"`
	Radius       float64  `json:"radius"`
	NitroAmount  float64  `json:"nitro_amount"`
	Touch        bool     `json:"touch"`
	TouchNormalX *float64 `json:"touch_normal_x"`
	TouchNormalY *float64 `json:"touch_normal_y"`
	TouchNormalZ *float64 `json:"touch_normal_z"`
}

func (r Robot) Position() geom.Vec3 {
	return geom.V3(r.X, r.Y, r.Z)
}

func (r Robot) Velocity() geom.Vec3 {
	return geom.V3(r.VelocityX, r.VelocityY, r.VelocityZ)
}

func (r *Robot) SetPosition(v geom.Vec3) {
	r.X, r.Y, r.Z = v.X, v.Y, v.Z
}

func (r *Robot) SetVelocity(v geom.Vec3) {
	r.VelocityX, r.VelocityY, r.VelocityZ = v.X, v.Y, v.Z
}

// TouchNormal reports the surface normal the robot is standing on.
func (r Robot) TouchNormal() (geom.Vec3, bool) {
	if !r.Touch || r.TouchNormalX == nil || r.TouchNormalY == nil || r.TouchNormalZ == nil {
		return geom.Vec3{}, false
	}
	return geom.V3(*r.TouchNormalX, *r.TouchNormalY, *r.TouchNormalZ), true
}

func (r *Robot) SetTouchNormal(n geom.Vec3, ok bool) {
	r.Touch = ok
	if !ok {
		r.TouchNormalX, r.TouchNormalY, r.TouchNormalZ = nil, nil, nil
		return
	}
	x, y, z := n.X, n.Y, n.Z
	r.TouchNormalX, r.TouchNormalY, r.TouchNormalZ = &x, &y, &z
}

// Opposite mirrors the robot to the other side and swaps the team flag.
func (r Robot) Opposite() Robot {
	out := r
	out.IsTeammate = !r.IsTeammate
	out.SetPosition(r.Position().Opposite())
	out.SetVelocity(r.Velocity().Opposite())
	if n, ok := r.TouchNormal(); ok {
		out.SetTouchNormal(n.Opposite(), true)
	}
	return out
}

type Ball struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	VelocityX float64 `json:"velocity_x"`
	VelocityY float64 `json:"velocity_y"`
	VelocityZ float64 `json:"velocity_z"`
	Radius    float64 `json:"radius"`
}

func (b Ball) Position() geom.Vec3 {
	return geom.V3(b.X, b.Y, b.Z)
}

func (b Ball) Velocity() geom.Vec3 {
	return geom.V3(b.VelocityX, b.VelocityY, b.VelocityZ)
}

func (b *Ball) SetPosition(v geom.Vec3) {
	b.X, b.Y, b.Z = v.X, v.Y, v.Z
}

func (b *Ball) SetVelocity(v geom.Vec3) {
	b.VelocityX, b.VelocityY, b.VelocityZ = v.X, v.Y, v.Z
}

func (b Ball) Opposite() Ball {
	out := b
	out.SetPosition(b.Position().Opposite())
	out.SetVelocity(b.Velocity().Opposite())
	return out
}

// NitroPack is available when RespawnTicks is nil.
type NitroPack struct {
	ID           int     `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Z            float64 `json:"z"`
	Radius       float64 `json:"radius"`
	RespawnTicks *int    `json:"respawn_ticks"`
}

func (n NitroPack) Position() geom.Vec3 {
	return geom.V3(n.X, n.Y, n.Z)
}

func (n NitroPack) Opposite() NitroPack {
	out := n
	out.X, out.Z = -n.X, -n.Z
	return out
}

// Action is the per-tick control output for one robot.
type Action struct {
	TargetVelocityX float64 `json:"target_velocity_x"`
	TargetVelocityY float64 `json:"target_velocity_y"`
	TargetVelocityZ float64 `json:"target_velocity_z"`
	JumpSpeed       float64 `json:"jump_speed"`
	UseNitro        bool    `json:"use_nitro"`
}

func (a Action) TargetVelocity() geom.Vec3 {
	return geom.V3(a.TargetVelocityX, a.TargetVelocityY, a.TargetVelocityZ)
}

func (a *Action) SetTargetVelocity(v geom.Vec3) {
	a.TargetVelocityX, a.TargetVelocityY, a.TargetVelocityZ = v.X, v.Y, v.Z
}

func (a Action) Opposite() Action {
	out := a
	out.SetTargetVelocity(a.TargetVelocity().Opposite())
	return out
}

// Game is the authoritative state of one tick.
type Game struct {
	CurrentTick int         `json:"current_tick"`
	Players     []Player    `json:"players"`
	Robots      []Robot     `json:"robots"`
	NitroPacks  []NitroPack `json:"nitro_packs"`
	Ball        Ball        `json:"ball"`
}

// Clone deep copies the slices so the copy can be mutated freely.
func (g Game) Clone() Game {
	out := g
	out.Players = append([]Player(nil), g.Players...)
	out.Robots = make([]Robot, len(g.Robots))
	for i, r := range g.Robots {
		out.Robots[i] = r
		if n, ok := r.TouchNormal(); ok {
			out.Robots[i].SetTouchNormal(n, true)
		}
	}
	out.NitroPacks = make([]NitroPack, len(g.NitroPacks))
	for i, n := range g.NitroPacks {
		out.NitroPacks[i] = n
		if n.RespawnTicks != nil {
			v := *n.RespawnTicks
			out.NitroPacks[i].RespawnTicks = &v
		}
	}
	return out
}

// Opposite mirrors the whole game so the other player becomes "me".
func (g Game) Opposite() Game {
	out := g.Clone()
	for i := range out.Players {
		out.Players[i].Me = !out.Players[i].Me
	}
	for i := range out.Robots {
		out.Robots[i] = out.Robots[i].Opposite()
	}
	for i := range out.NitroPacks {
		out.NitroPacks[i] = out.NitroPacks[i].Opposite()
	}
	out.Ball = g.Ball.Opposite()
	return out
}

func (g Game) Robot(id int) (Robot, bool) {
	for _, r := range g.Robots {
		if r.ID == id {
			return r, true
		}
	}
	return Robot{}, false
}

// TotalScore sums both players' goals.
func (g Game) TotalScore() int {
	total := 0
	for _, p := range g.Players {
		total += p.Score
	}
	return total
}

// ClientEnvelope is sent from a viewer or a remote robot controller to the
// local match host.
type ClientEnvelope struct {
	Type    string  `json:"type"` // action|ping
	RobotID int     `json:"robot_id,omitempty"`
	Action  *Action `json:"action,omitempty"`
}

// ServerEnvelope is sent from the local match host to viewers.
type ServerEnvelope struct {
	Type     string `json:"type"` // welcome|state|pong|error
	Tick     int    `json:"tick,omitempty"`
	MatchID  string `json:"match_id,omitempty"`
	Game     *Game  `json:"game,omitempty"`
	ServerMS int64  `json:"server_ms,omitempty"`
	Message  string `json:"message,omitempty"`
}
