package transport

import (
	"encoding/json"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

// Host is the match side of a bot connection.
type Host struct {
	conn
}

func NewHost(raw net.Conn) *Host {
	return &Host{conn: newConn(raw)}
}

// ReadToken waits for the bot to introduce itself.
func (h *Host) ReadToken() (string, error) {
	line, err := h.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(line)), nil
}

func (h *Host) WriteRules(rules types.Rules) error {
	if err := h.writeJSON(rules); err != nil {
		return err
	}
	return h.flush()
}

func (h *Host) WriteGame(game types.Game) error {
	if err := h.writeJSON(game); err != nil {
		return err
	}
	return h.flush()
}

// ReadActions reads the answer to one tick.
func (h *Host) ReadActions() (map[int]types.Action, json.RawMessage, error) {
	var byID map[string]types.Action
	if err := h.readJSON(&byID); err != nil {
		return nil, nil, err
	}
	actions := make(map[int]types.Action, len(byID))
	for key, a := range byID {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "robot id %q", key)
		}
		actions[id] = a
	}
	rendering, err := h.readLine()
	if err != nil {
		return nil, nil, err
	}
	return actions, json.RawMessage(strings.TrimSpace(string(rendering))), nil
}

func (h *Host) Close() error {
	return h.raw.Close()
}
