package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Console renders lifecycle events as numbered step lines on Out and
// mirrors structured detail to the logger.
type Console struct {
	Out  io.Writer
	Log  *slog.Logger
	step int
}

func NewConsole(out io.Writer, log *slog.Logger) *Console {
	return &Console{Out: out, Log: log}
}

func (c *Console) Emit(ev Event) {
	switch ev.Type {
	case EventStateEntered:
		c.step++
		fmt.Fprintf(c.Out, "%d. %s\n", c.step, ev.Detail)
		c.Log.Debug("state entered", "state", ev.State)
	case EventMethodsListed:
		MethodTable(c.Out, ev.Methods)
		c.Log.Debug("methods listed", "count", len(ev.Methods))
	case EventPollAttempt:
		c.Log.Debug("poll attempt", "state", ev.State, "attempt", ev.Attempt, "status", ev.Detail)
	case EventCancelResult:
		fmt.Fprintf(c.Out, "   Cancellation: %s\n", ev.Detail)
		c.Log.Info("cancellation result", "detail", ev.Detail)
	case EventRefundUpdate:
		fmt.Fprintf(c.Out, "   Refund: %s\n", ev.Detail)
		c.Log.Info("refund update", "detail", ev.Detail, "attempt", ev.Attempt)
	case EventFinalOutcome:
		fmt.Fprintf(c.Out, "\nFinal status: %s\n", ev.State)
		if ev.Detail != "" {
			fmt.Fprintf(c.Out, "%s\n", ev.Detail)
		}
		c.Log.Info("final outcome", "state", ev.State)
	}
}

// MethodTable renders the discovered payment methods as a plain table
func MethodTable(out io.Writer, methods []string) {
	fmt.Fprintln(out, "   Available Payment Methods")
	fmt.Fprintln(out, "   "+strings.Repeat("-", 25))
	for _, m := range methods {
		fmt.Fprintf(out, "   %s\n", m)
	}
}
