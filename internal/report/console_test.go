package report

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newTestConsole() (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewConsole(&buf, logger), &buf
}

func TestConsoleNumbersSteps(t *testing.T) {
	t.Parallel()

	c, buf := newTestConsole()
	c.Emit(Event{Type: EventStateEntered, State: "INIT", Detail: "Verifying API health..."})
	c.Emit(Event{Type: EventStateEntered, State: "HEALTH_CHECKED", Detail: "Fetching payment methods..."})

	out := buf.String()
	if !strings.Contains(out, "1. Verifying API health...") {
		t.Errorf("missing first step, got %q", out)
	}
	if !strings.Contains(out, "2. Fetching payment methods...") {
		t.Errorf("missing second step, got %q", out)
	}
}

func TestConsoleRendersMethodTable(t *testing.T) {
	t.Parallel()

	c, buf := newTestConsole()
	c.Emit(Event{Type: EventMethodsListed, Methods: []string{"CARD", "PAYSAFECARD"}})

	out := buf.String()
	if !strings.Contains(out, "CARD") || !strings.Contains(out, "PAYSAFECARD") {
		t.Errorf("method table incomplete: %q", out)
	}
}

func TestConsoleFinalOutcome(t *testing.T) {
	t.Parallel()

	c, buf := newTestConsole()
	c.Emit(Event{Type: EventFinalOutcome, State: "COMPLETED"})

	if !strings.Contains(buf.String(), "Final status: COMPLETED") {
		t.Errorf("missing final status, got %q", buf.String())
	}
}

func TestConsolePollAttemptsStayOffStdout(t *testing.T) {
	t.Parallel()

	c, buf := newTestConsole()
	c.Emit(Event{Type: EventPollAttempt, State: "POLLING", Attempt: 3, Detail: "PROCESSING"})

	if buf.Len() != 0 {
		t.Errorf("poll attempts are debug detail, got %q", buf.String())
	}
}
