package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger is an alias used by services for dependency injection.
type Logger = log.Logger

// New returns a standard logger with consistent service prefix.
func New(service string) *Logger {
	return log.New(os.Stdout, "["+service+"] ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return log.New(io.Discard, "", 0)
}

// Ticked prefixes every line with the game tick it belongs to.
// A nil *Ticked is valid and logs nothing.
type Ticked struct {
	out     *Logger
	enabled bool
}

func NewTicked(out *Logger, enabled bool) *Ticked {
	return &Ticked{out: out, enabled: enabled}
}

func (t *Ticked) Enabled() bool {
	return t != nil && t.enabled && t.out != nil
}

func (t *Ticked) Logf(tick int, format string, args ...any) {
	if !t.Enabled() {
		return
	}
	t.out.Printf("[%d] %s", tick, fmt.Sprintf(format, args...))
}
