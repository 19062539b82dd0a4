package main

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/strategy"
	"github.com/elsid/CodeBall-sub000/internal/transport"
)

func quickOptions() strategy.Options {
	cfg := config.Default(1)
	cfg.MaxIterations = 5
	return strategy.Options{Config: &cfg, Log: logger.Discard()}
}

func TestMirroredSidePlaysSecondPlayer(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	s := newSide(2, true, quickOptions())

	actions := s.act(rules, game, logger.Discard())

	require.Len(t, actions, 1)
	_, ok := actions[2]
	assert.True(t, ok)
}

func TestSideAsksAttachedBot(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	s := newSide(1, false, quickOptions())

	botSide, hostSide := net.Pipe()
	s.attach(transport.NewHost(hostSide))
	client := transport.NewClient(botSide)
	defer client.Close()

	want := types.Action{TargetVelocityX: 10, UseNitro: true}
	done := make(chan error, 1)
	go func() {
		got, err := client.ReadGame()
		if err == nil && got.CurrentTick != game.CurrentTick {
			err = assert.AnError
		}
		if err == nil {
			err = client.WriteActions(map[int]types.Action{1: want}, nil)
		}
		done <- err
	}()

	actions := s.act(rules, game, logger.Discard())
	require.NoError(t, <-done)
	assert.Equal(t, map[int]types.Action{1: want}, actions)
}

func TestSideFallsBackWhenBotLeaves(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	s := newSide(1, false, quickOptions())

	botSide, hostSide := net.Pipe()
	s.attach(transport.NewHost(hostSide))
	require.NoError(t, botSide.Close())

	actions := s.act(rules, game, logger.Discard())

	_, ok := actions[1]
	assert.True(t, ok)
	assert.Nil(t, s.bot)
}
