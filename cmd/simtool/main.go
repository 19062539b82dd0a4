package main

import (
	"fmt"
	"math"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/ttacon/chalk"
	"github.com/urfave/cli"

	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/orders"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/search"
	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/simulation"
	"github.com/elsid/CodeBall-sub000/internal/strategy"
)

func main() {
	if err := makeapp().Run(os.Args); err != nil {
		fmt.Println(chalk.Red.Color(err.Error()))
		os.Exit(1)
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = "simtool"
	app.Usage = "run CodeBall scenarios from the kickoff position"

	common := []cli.Flag{
		cli.IntFlag{Name: "ticks", Value: 100, Usage: "Number of game ticks to simulate"},
		cli.Int64Flag{Name: "seed", Value: 42, Usage: "Match seed"},
		cli.BoolFlag{Name: "dump", Usage: "Dump the final simulator state"},
		cli.BoolFlag{Name: "verbose", Usage: "Log planner decisions"},
	}

	app.Commands = []cli.Command{
		{
			Name:   "jump",
			Usage:  "Run at the ball and jump, print where everything ends up",
			Flags:  common,
			Action: jump,
		},
		{
			Name:   "goalkeeper",
			Usage:  "Shoot at my goal and let the strategy defend it",
			Flags:  common,
			Action: goalkeeper,
		},
		{
			Name:  "plan",
			Usage: "Search one plan for my robot and print it",
			Flags: append([]cli.Flag{
				cli.IntFlag{Name: "iterations", Value: 0, Usage: "Override max search iterations"},
				cli.Float64Flag{Name: "max-z", Value: math.MaxFloat64, Usage: "Do not plan to meet the ball beyond this z"},
			}, common...),
			Action: plan,
		},
	}
	return app
}

func setup(c *cli.Context) (types.Rules, types.Game, *random.XorShift) {
	rules := types.DefaultRules()
	rules.Seed = c.Int64("seed")
	return rules, types.KickoffGame(rules), random.FromGameSeed(rules.Seed)
}

func jump(c *cli.Context) error {
	rules, game, rng := setup(c)
	sim := simulation.New(rules, game, game.Robots[0].ID)

	for tick := 0; tick < c.Int("ticks") && sim.Score() == 0; tick++ {
		me := sim.Me()
		var action types.Action
		toBall := sim.Ball().Position().Sub(me.Position()).WithY(0)
		if direction, ok := toBall.Direction(); ok {
			action.SetTargetVelocity(direction.Mul(rules.RobotMaxGroundSpeed))
		}
		if toBall.Norm() < rules.BallRadius+rules.RobotMaxRadius {
			action.JumpSpeed = rules.RobotMaxJumpSpeed
		}
		sim.SetAction(me.ID(), action)
		sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)
	}

	report(sim)
	if c.Bool("dump") {
		spew.Dump(sim.Game())
	}
	return nil
}

func goalkeeper(c *cli.Context) error {
	rules, game, rng := setup(c)
	game.Ball.SetPosition(geom.V3(5, 3, -15))
	game.Ball.SetVelocity(geom.V3(-5, 5, -30))
	for i := range game.Robots {
		if game.Robots[i].IsTeammate {
			game.Robots[i].SetPosition(rules.GoalkeeperPosition())
		}
	}

	cfg := config.Default(rules.TeamSize)
	cfg.VerboseLog = c.Bool("verbose")
	me, _ := game.Robot(1)
	s := strategy.New(me, rules, game, strategy.Options{Config: &cfg, Log: logger.New("simtool")})
	sim := simulation.New(rules, game, me.ID)

	for tick := 0; tick < c.Int("ticks") && sim.Score() == 0; tick++ {
		current := sim.Game()
		robot, _ := current.Robot(me.ID)
		var action types.Action
		s.Act(robot, rules, current, &action)
		sim.SetAction(me.ID, action)
		sim.Tick(rules.TickTimeInterval(), rules.MicroticksPerTick, rng)
	}

	report(sim)
	if sim.Score() < 0 {
		fmt.Println(chalk.Red.Color("goal conceded"))
	} else {
		fmt.Println(chalk.Green.Color("goal defended"))
	}
	total, longest := s.CPUTime()
	fmt.Printf("micro_ticks=%d cpu=%s max_cpu=%s\n", s.UsedMicroTicks(), total, longest)
	if c.Bool("dump") {
		spew.Dump(sim.Game())
	}
	return nil
}

func plan(c *cli.Context) error {
	rules, game, rng := setup(c)
	cfg := config.Default(rules.TeamSize)
	if n := c.Int("iterations"); n > 0 {
		cfg.MaxIterations = n
	}
	cfg.VerboseLog = c.Bool("verbose")

	var ids search.IDGenerator
	ctx := &orders.Context{
		Config: &cfg,
		Log:    logger.NewTicked(logger.New("simtool"), cfg.VerboseLog),
		Rng:    rng,
		IDs:    &ids,
	}
	ctx.Refill()

	me, _ := game.Robot(1)
	order := orders.TryPlay(me, rules, game, nil, c.Float64("max-z"), ctx)
	play, ok := order.(*orders.Play)
	if !ok {
		fmt.Println(chalk.Yellow.Color("no play found"), "used_micro_ticks:", ctx.UsedMicroTicks)
		return nil
	}

	st := play.Stats()
	fmt.Println(chalk.Bold.TextStyle("score:"), play.Score())
	fmt.Println(chalk.Bold.TextStyle("iterations:"), st.Iteration, "of", st.TotalIterations)
	fmt.Println(chalk.Bold.TextStyle("path:"), chalk.Cyan.Color(fmt.Sprint(play.Transitions())))
	fmt.Println(chalk.Bold.TextStyle("first action:"), fmt.Sprintf("%+v", play.Action()))
	fmt.Println(chalk.Bold.TextStyle("used micro ticks:"), ctx.UsedMicroTicks)

	if c.Bool("dump") {
		spew.Dump(st)
	}
	return nil
}

func report(sim *simulation.Simulator) {
	game := sim.Game()
	fmt.Println(chalk.Bold.TextStyle("tick:"), game.CurrentTick, "score:", sim.Score())
	fmt.Println(chalk.Blue.Color("ball:"), game.Ball.Position(), "velocity:", game.Ball.Velocity())
	for _, r := range game.Robots {
		color := chalk.Magenta
		if r.IsTeammate {
			color = chalk.Green
		}
		fmt.Println(color.Color(fmt.Sprintf("robot %d:", r.ID)), r.Position(), "nitro:", r.NitroAmount, "touch:", r.Touch)
	}
}
