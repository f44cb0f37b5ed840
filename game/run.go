package game

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Command is an externally triggered control action.
type Command uint8

const (
	CommandPause Command = iota + 1
	CommandResume
	CommandToggle
	CommandReset
)

var commandNames = map[Command]string{
	CommandPause:  "PAUSE",
	CommandResume: "RESUME",
	CommandToggle: "TOGGLE",
	CommandReset:  "RESET",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", uint8(c))
}

// ParseCommand maps a wire name such as "PAUSE" to a Command.
func ParseCommand(s string) (Command, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for c, name := range commandNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

// Apply executes a control command.
func (g *Game) Apply(cmd Command) {
	switch cmd {
	case CommandPause:
		g.SetPaused(true)
	case CommandResume:
		g.SetPaused(false)
	case CommandToggle:
		g.TogglePause()
	case CommandReset:
		g.Reset()
	}
}

// RunOptions controls the run loop.
type RunOptions struct {
	// Realtime paces ticks at the configured rate; otherwise ticks run back to back.
	Realtime bool
	// MaxTicks stops the loop at this tick (0 = configured run duration).
	MaxTicks int32
	// Commands are applied between ticks on the loop goroutine.
	Commands <-chan Command
	// OnTick is called after every loop iteration that reached Step, paused or not.
	OnTick func(*Game)
}

// Run steps the game until the tick limit is reached or ctx is cancelled.
// With no limit configured it runs until ctx is cancelled.
func (g *Game) Run(ctx context.Context, opts RunOptions) error {
	limit := opts.MaxTicks
	if limit == 0 {
		limit = g.cfg.Derived.MaxTicks
	}
	commands := opts.Commands

	var tickC <-chan time.Time
	if opts.Realtime {
		ticker := time.NewTicker(g.cfg.Derived.TickDuration)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		if limit > 0 && g.tick >= limit {
			return nil
		}

		if opts.Realtime || g.paused {
			// A paused headless loop has no ticker and waits for a command.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd, ok := <-commands:
				if !ok {
					commands = nil
				} else {
					g.Apply(cmd)
				}
				continue
			case <-tickC:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd, ok := <-commands:
				if !ok {
					commands = nil
				} else {
					g.Apply(cmd)
				}
				continue
			default:
			}
		}

		g.Step()
		if opts.OnTick != nil {
			opts.OnTick(g)
		}
	}
}
