package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWatchRunsImmediatePassAndStopsOnCancel(t *testing.T) {
	gw := newFakeGateway()
	gw.addMessage(0, inboxEmail("m1", "one@example.com", "body"))

	ctrl := newTestController(gw, &fakeRuleStore{}, 10)

	// Cancel up front: the immediate pass still runs, then the loop must
	// observe the cancellation and return instead of ticking.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ctrl.Watch(ctx, time.Hour, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Watch returned %v, want context.Canceled", err)
	}
	if len(ctrl.Emails()) != 1 {
		t.Errorf("got %d emails, want 1 from the immediate pass", len(ctrl.Emails()))
	}
}

func TestWatchKeepsGoingAfterPassFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.listErr = errors.New("quota exceeded")

	ctrl := newTestController(gw, &fakeRuleStore{}, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := ctrl.Watch(ctx, 10*time.Millisecond, "")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Watch returned %v, want deadline exceeded after surviving pass failures", err)
	}
}
