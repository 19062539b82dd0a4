// Package transport speaks the host protocol: one JSON document per line
// over a TCP connection.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

// ErrClosed means the peer ended the match.
var ErrClosed = errors.New("transport: connection closed")

// conn frames JSON values as lines.
type conn struct {
	raw    net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

func newConn(raw net.Conn) conn {
	return conn{raw: raw, reader: bufio.NewReaderSize(raw, 64*1024), writer: bufio.NewWriter(raw)}
}

func (c conn) readLine() ([]byte, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			if len(line) == 0 {
				return nil, ErrClosed
			}
			return line, nil
		}
		return nil, errors.Wrap(err, "read line")
	}
	return line, nil
}

func (c conn) readJSON(v any) error {
	line, err := c.readLine()
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(line, v), "decode %T", v)
}

func (c conn) writeLine(payload []byte) error {
	if _, err := c.writer.Write(payload); err != nil {
		return errors.Wrap(err, "write line")
	}
	return errors.Wrap(c.writer.WriteByte('\n'), "write line")
}

func (c conn) writeJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %T", v)
	}
	return c.writeLine(payload)
}

func (c conn) flush() error {
	return errors.Wrap(c.writer.Flush(), "flush")
}

// Client is the bot side of a match.
type Client struct {
	conn
}

func NewClient(raw net.Conn) *Client {
	return &Client{conn: newConn(raw)}
}

// Dial connects to the host, retrying with exponential backoff until ctx is
// done or maxRetries attempts failed, and sends the token.
func Dial(ctx context.Context, addr, token string, maxRetries uint64) (*Client, error) {
	var raw net.Conn
	dialer := net.Dialer{Timeout: 5 * time.Second}
	operation := func() error {
		c, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		raw = c
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	c := NewClient(raw)
	if err := c.WriteToken(token); err != nil {
		_ = raw.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) WriteToken(token string) error {
	if err := c.writeLine([]byte(token)); err != nil {
		return err
	}
	return c.flush()
}

func (c *Client) ReadRules() (types.Rules, error) {
	var rules types.Rules
	err := c.readJSON(&rules)
	return rules, err
}

// ReadGame returns ErrClosed once the host ends the match.
func (c *Client) ReadGame() (types.Game, error) {
	var game types.Game
	err := c.readJSON(&game)
	return game, err
}

// WriteActions answers one tick: the actions keyed by robot id and the
// custom rendering line, which may be empty.
func (c *Client) WriteActions(actions map[int]types.Action, rendering []byte) error {
	byID := make(map[string]types.Action, len(actions))
	for id, a := range actions {
		byID[strconv.Itoa(id)] = a
	}
	if err := c.writeJSON(byID); err != nil {
		return err
	}
	if len(rendering) == 0 {
		rendering = []byte("[]")
	}
	if err := c.writeLine(rendering); err != nil {
		return err
	}
	return c.flush()
}

func (c *Client) Close() error {
	return c.raw.Close()
}
