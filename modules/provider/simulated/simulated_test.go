package simulated

import (
	"context"
	"testing"
	"time"

	"github.com/parleychat/parley/internal/provider"
)

func TestComplete_ReturnsCannedResponse(t *testing.T) {
	t.Parallel()
	a := NewAdapter(0, 0)

	text, err := a.Complete(context.Background(), []provider.Turn{provider.UserTurn("hi")}, "", "")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, r := range responses {
		if r == text {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("reply %q not in the canned pool", text)
	}
}

func TestComplete_CancelledDuringDelay(t *testing.T) {
	t.Parallel()
	a := NewAdapter(time.Minute, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Complete(ctx, nil, "", ""); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestConfig_Delays(t *testing.T) {
	t.Parallel()
	c := Config{}
	c.defaults()
	minD, maxD, err := c.delays()
	if err != nil {
		t.Fatal(err)
	}
	if minD != time.Second || maxD != 3*time.Second {
		t.Errorf("defaults = %v/%v", minD, maxD)
	}

	bad := Config{MinDelay: "2s", MaxDelay: "1s"}
	if _, _, err := bad.delays(); err == nil {
		t.Error("max below min must fail")
	}
}
