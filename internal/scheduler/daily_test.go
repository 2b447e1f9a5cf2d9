package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestNewDailyRejectsBadTime(t *testing.T) {
	for _, at := range []string{"", "25:00", "06:60", "six"} {
		_, err := NewDaily("sweep", at, time.UTC, func(context.Context) error { return nil }, nil)
		assert.Error(t, err, at)
	}
}

func TestNext(t *testing.T) {
	loc := berlin(t)
	d, err := NewDaily("sweep", "06:00", loc, func(context.Context) error { return nil }, nil)
	require.NoError(t, err)

	cases := []struct {
		now    time.Time
		expect time.Time
	}{
		{time.Date(2025, time.January, 7, 5, 0, 0, 0, loc), time.Date(2025, time.January, 7, 6, 0, 0, 0, loc)},
		{time.Date(2025, time.January, 7, 6, 0, 0, 0, loc), time.Date(2025, time.January, 8, 6, 0, 0, 0, loc)},
		{time.Date(2025, time.January, 7, 23, 59, 0, 0, loc), time.Date(2025, time.January, 8, 6, 0, 0, 0, loc)},
		{time.Date(2025, time.December, 31, 7, 0, 0, 0, loc), time.Date(2026, time.January, 1, 6, 0, 0, 0, loc)},
		// 04:30 UTC on the DST switch day is 06:30 local, after the slot.
		{time.Date(2025, time.March, 30, 4, 30, 0, 0, time.UTC), time.Date(2025, time.March, 31, 6, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		assert.True(t, tc.expect.Equal(d.Next(tc.now)), "now=%s got=%s", tc.now, d.Next(tc.now))
	}
}

func TestRunFiresAndSurvivesFailures(t *testing.T) {
	var calls int32
	d, err := NewDaily("sweep", "06:00", time.UTC, func(context.Context) error {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return errors.New("first run fails")
		}
		if n == 2 {
			panic("second run panics")
		}
		return nil
	}, nil)
	require.NoError(t, err)

	ticks := make(chan time.Time)
	d.after = func(time.Duration) <-chan time.Time { return ticks }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		ticks <- time.Now()
	}
	require.Eventually(t, func() bool {
		runs, _ := d.Runs()
		return runs == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRunWaitsOnInjectedClock(t *testing.T) {
	d, err := NewDaily("sweep", "06:00", time.UTC, func(context.Context) error { return nil }, nil)
	require.NoError(t, err)

	d.now = func() time.Time { return time.Date(2025, time.January, 7, 5, 0, 0, 0, time.UTC) }
	waits := make(chan time.Duration, 1)
	d.after = func(wait time.Duration) <-chan time.Time {
		select {
		case waits <- wait:
		default:
		}
		return make(chan time.Time)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case wait := <-waits:
		assert.Equal(t, time.Hour, wait)
	case <-time.After(time.Second):
		t.Fatal("scheduler never waited")
	}
	cancel()
	<-done
}
