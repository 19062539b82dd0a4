package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/render"
	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/stats"
	"github.com/elsid/CodeBall-sub000/internal/strategy"
	"github.com/elsid/CodeBall-sub000/internal/transport"
)

func main() {
	log := logger.New("codeball-bot")
	host := getEnv("CODEBALL_HOST", "127.0.0.1")
	port := getEnv("CODEBALL_PORT", "31001")
	token := getEnv("CODEBALL_TOKEN", "0000000000000000")
	if len(os.Args) == 4 {
		host, port, token = os.Args[1], os.Args[2], os.Args[3]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	client, err := transport.Dial(dialCtx, host+":"+port, token, uint64(getEnvInt("CODEBALL_DIAL_RETRIES", 10)))
	cancel()
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.Close()

	rules, err := client.ReadRules()
	if err != nil {
		log.Fatalf("read rules: %v", err)
	}
	cfg, err := config.Load(getEnv("CODEBALL_CONFIG", ""), rules.TeamSize)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	b := &bot{
		log:   log,
		rules: rules,
		opts: strategy.Options{
			Config: &cfg,
			Log:    log,
			Sink:   newSink(ctx, log),
			RunID:  stats.NewRunID(),
		},
		render: getEnv("CODEBALL_RENDER", "") != "",
	}
	if err := b.run(ctx, client); err != nil {
		log.Fatalf("match: %v", err)
	}
}

type bot struct {
	log      *logger.Logger
	rules    types.Rules
	opts     strategy.Options
	render   bool
	strategy *strategy.Strategy
}

// run answers every game tick until the host ends the match.
func (b *bot) run(ctx context.Context, client *transport.Client) error {
	defer b.summary()
	if b.render {
		b.opts.Recorder = discardRecorder{}
	}
	for {
		if ctx.Err() != nil {
			return nil
		}
		game, err := client.ReadGame()
		if errors.Is(err, transport.ErrClosed) {
			b.log.Printf("match over")
			return nil
		}
		if err != nil {
			return err
		}
		actions := b.act(game)
		var rendering []byte
		if b.render && b.strategy != nil {
			if rendering, err = json.Marshal(b.strategy.Render()); err != nil {
				return errors.Wrap(err, "encode rendering")
			}
		}
		if err := client.WriteActions(actions, rendering); err != nil {
			return err
		}
	}
}

func (b *bot) act(game types.Game) map[int]types.Action {
	actions := make(map[int]types.Action, b.rules.TeamSize)
	for _, robot := range game.Robots {
		if !robot.IsTeammate {
			continue
		}
		if b.strategy == nil {
			b.strategy = strategy.New(robot, b.rules, game, b.opts)
		}
		var action types.Action
		b.strategy.Act(robot, b.rules, game, &action)
		actions[robot.ID] = action
	}
	return actions
}

func (b *bot) summary() {
	if b.strategy == nil {
		return
	}
	total, longest := b.strategy.CPUTime()
	b.log.Printf("micro_ticks=%d cpu=%s max_cpu=%s", b.strategy.UsedMicroTicks(), total, longest)
}

// discardRecorder keeps the strategy drawing so the rendering line is filled.
type discardRecorder struct{}

func (discardRecorder) Record(int, *render.Render) {}

// newSink sends planner stats to the telemetry service or to a local sqlite
// file when one of them is configured.
func newSink(ctx context.Context, log *logger.Logger) stats.Sink {
	if url := getEnv("TELEMETRY_URL", ""); url != "" {
		return stats.NewHTTPSink(url)
	}
	if path := getEnv("CODEBALL_STATS_DB", ""); path != "" {
		store := stats.NewSQLiteStore(path)
		if err := store.Init(ctx); err != nil {
			log.Printf("stats disabled: %v", err)
			return stats.Discard{}
		}
		return store
	}
	return stats.Discard{}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
