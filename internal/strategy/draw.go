package strategy

import (
	"slices"

	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/orders"
	"github.com/elsid/CodeBall-sub000/internal/render"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

var (
	opponentColor = render.Color{R: 0.8, G: 0.5, B: 0.1, A: 0.5}
	teammateColor = render.Color{R: 0.1, G: 0.5, B: 0.8, A: 0.5}
	historyColor  = render.Color{R: 0.6, G: 0.6, B: 0.1, A: 0.3}
)

func roleColor(k RoleKind) render.Color {
	if k == Goalkeeper {
		return render.Green
	}
	return render.Red
}

// draw fills the render of the current tick.
func (s *Strategy) draw() {
	w := s.world
	r := s.render
	r.Clear()

	r.Add(render.Textf("current_tick: %d", w.Game.CurrentTick))
	r.Add(render.Textf("priority: %v", s.priority))
	summary := make([][3]int, 0, len(s.orders))
	for _, o := range s.orders {
		summary = append(summary, [3]int{o.RobotID(), o.ID(), o.Score()})
	}
	r.Add(render.Textf("orders: %v", summary))

	r.Add(render.NewSphere(w.Game.Ball.Position(), w.Game.Ball.Radius, render.Gray))

	robots := slices.Clone(w.Game.Robots)
	slices.SortFunc(robots, func(a, b types.Robot) int { return a.ID - b.ID })
	for _, robot := range robots {
		color := opponentColor
		if robot.IsTeammate {
			color = teammateColor
		}
		r.Add(render.NewSphere(robot.Position(), robot.Radius, color))
		for _, role := range s.roles {
			if role.RobotID == robot.ID {
				r.Add(render.Textf("  role: %s", role.Kind))
				marker := robot.Position().Add(geom.V3(0, 2*robot.Radius, 0))
				r.Add(render.NewSphere(marker, robot.Radius/2, roleColor(role.Kind)))
			}
		}
		if order, ok := s.orders.Find(robot.ID); ok {
			drawOrder(r, robot, order)
		}
	}

	z := GoalkeeperMaxZ(w.Rules, s.cfg)
	r.Add(render.NewLine(
		geom.V3(-w.Rules.Arena.Width/2, w.Rules.RobotRadius, z),
		geom.V3(w.Rules.Arena.Width/2, w.Rules.RobotRadius, z),
		3,
		roleColor(Goalkeeper),
	))
}

func drawOrder(r *render.Render, robot types.Robot, order orders.Order) {
	r.Add(render.Textf("  order: %s id=%d score=%d", order.Name(), order.ID(), order.Score()))
	switch o := order.(type) {
	case *orders.Play:
		r.Add(render.Textf("  path: %v", o.Transitions()))
		for _, sim := range o.History() {
			r.Add(render.NewSphere(sim.Me().Position(), 0.5, historyColor))
			r.Add(render.NewSphere(sim.Ball().Position(), 0.5, render.Gray))
		}
	case interface{ Target() geom.Vec3 }:
		r.Add(render.NewLine(robot.Position(), o.Target(), 2, render.Blue))
	}
}
