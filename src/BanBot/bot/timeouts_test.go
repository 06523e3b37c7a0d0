package bot

import (
	"testing"
	"time"

	"github.com/mfl-ops/banbot/src/BanBot/components/workflow"
)

func TestPromptTimerFires(t *testing.T) {
	timers := newPromptTimers()
	fired := make(chan struct{})

	timers.Arm("u1", 10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestReArmReplacesPreviousTimer(t *testing.T) {
	timers := newPromptTimers()
	stale := make(chan struct{}, 1)
	current := make(chan struct{}, 1)

	timers.Arm("u1", 10*time.Millisecond, func() { stale <- struct{}{} })
	timers.Arm("u1", 30*time.Millisecond, func() { current <- struct{}{} })

	select {
	case <-current:
	case <-time.After(time.Second):
		t.Fatal("re-armed timer never fired")
	}
	select {
	case <-stale:
		t.Fatal("replaced timer still fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelStopsTimer(t *testing.T) {
	timers := newPromptTimers()
	fired := make(chan struct{}, 1)

	timers.Arm("u1", 10*time.Millisecond, func() { fired <- struct{}{} })
	timers.Cancel("u1")

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimersAreIndependentPerUser(t *testing.T) {
	timers := newPromptTimers()
	fired := make(chan string, 2)

	timers.Arm("u1", 10*time.Millisecond, func() { fired <- "u1" })
	timers.Arm("u2", 10*time.Millisecond, func() { fired <- "u2" })
	timers.Cancel("u1")

	select {
	case who := <-fired:
		if who != "u2" {
			t.Fatalf("wrong timer fired: %s", who)
		}
	case <-time.After(time.Second):
		t.Fatal("u2's timer never fired")
	}
}

func TestTimeoutNoticePerStep(t *testing.T) {
	if got := timeoutNotice(workflow.StepSelectPlayer); got != "Player selection for ban timed out." {
		t.Fatalf("got %q", got)
	}
	if got := timeoutNotice(workflow.StepConfirm); got != "Ban form confirmation timed out." {
		t.Fatalf("got %q", got)
	}
	if got := timeoutNotice(workflow.Step("unknown")); got != "Ban form timed out." {
		t.Fatalf("got %q", got)
	}
}
