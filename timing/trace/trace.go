// Package trace provides hooks that log scheduler activity.
package trace

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/timing/pipeline"
)

// Logger is an akita hook that writes one line per scheduler event.
type Logger struct {
	out       io.Writer
	positions map[*sim.HookPos]bool
}

// NewLogger creates a logger that writes to out. If positions are given,
// only those hook positions are logged.
func NewLogger(out io.Writer, positions ...*sim.HookPos) *Logger {
	l := &Logger{out: out}
	if len(positions) > 0 {
		l.positions = make(map[*sim.HookPos]bool, len(positions))
		for _, p := range positions {
			l.positions[p] = true
		}
	}
	return l
}

// Func implements sim.Hook.
func (l *Logger) Func(ctx sim.HookCtx) {
	if l.positions != nil && !l.positions[ctx.Pos] {
		return
	}

	domain := "?"
	if named, ok := ctx.Domain.(interface{ Name() string }); ok {
		domain = named.Name()
	}

	index, _ := ctx.Detail.(int)

	switch item := ctx.Item.(type) {
	case pipeline.StageInterval:
		if item.StallsBefore > 0 {
			_, _ = fmt.Fprintf(l.out, "[%s] #%d %-9s cycles %d-%d after %d stall(s)\n",
				domain, index, item.Stage, item.Start, item.End, item.StallsBefore)
			return
		}
		_, _ = fmt.Fprintf(l.out, "[%s] #%d %-9s cycles %d-%d\n",
			domain, index, item.Stage, item.Start, item.End)
	case pipeline.Hazard:
		_, _ = fmt.Fprintf(l.out, "[%s] #%d hazard  %s\n", domain, index, item)
	case pipeline.ForwardingPath:
		_, _ = fmt.Fprintf(l.out, "[%s] #%d forward %s\n", domain, index, item)
	default:
		_, _ = fmt.Fprintf(l.out, "[%s] #%d %s %v\n", domain, index, ctx.Pos.Name, ctx.Item)
	}
}
