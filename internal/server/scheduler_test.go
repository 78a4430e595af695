package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	wf := &fakeWorkflow{}
	sc := newTestContext(wf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewScheduler(sc, 10*time.Millisecond, "office").Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return wf.scanCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	wf.mu.Lock()
	defer wf.mu.Unlock()
	assert.Equal(t, "office", wf.scans[0].calendarID)
}

func TestScheduler_ContinuesAfterFailure(t *testing.T) {
	wf := &fakeWorkflow{scanErr: errors.New("calendar down")}
	sc := newTestContext(wf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewScheduler(sc, 5*time.Millisecond, "").Run(ctx)

	assert.Eventually(t, func() bool { return wf.scanCount() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.Eventually(t, func() bool {
		last := sc.LastScan()
		return last != nil && last.Error == "calendar down"
	}, time.Second, 5*time.Millisecond)
}
