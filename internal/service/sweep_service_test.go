package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/jobs"
)

type sweepFixture struct {
	bookings *memBookings
	dedup    *memDedup
	dispatch *dispatcherStub
	audit    *auditSpy
	svc      *SweepService
}

// newSweepFixture runs on a Tuesday so that today+7 is slot 1's weekday.
func newSweepFixture(t *testing.T, now time.Time) *sweepFixture {
	t.Helper()
	bookings := newMemBookings()
	f := &sweepFixture{
		bookings: bookings,
		dedup:    newMemDedup(bookings),
		dispatch: &dispatcherStub{recipients: []string{"admin@example.com"}},
		audit:    &auditSpy{},
	}
	notifier := NewNotificationService(f.dispatch, time.Second, nil, nil)
	f.svc = NewSweepService(testRules(t), testCatalog(t), f.dedup, notifier, f.audit, NewMetricsService(), nil, func() time.Time { return now })
	return f
}

var tuesdayMorning = time.Date(2024, time.December, 31, 6, 0, 0, 0, time.UTC)

func TestCheckDueWarningsDedupAcrossRuns(t *testing.T) {
	f := newSweepFixture(t, tuesdayMorning)
	ctx := context.Background()
	target := calendar.Date(2025, time.January, 7)

	first, err := f.svc.CheckDueWarnings(ctx, 7)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, first[0].Slot.ID)
	assert.True(t, first[0].Date.Equal(target))
	assert.Equal(t, models.NotificationWarningUnfilled, first[0].Type)
	assert.Len(t, f.dedup.keys, 1)

	second, err := f.svc.CheckDueWarnings(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, second)

	require.NoError(t, f.bookings.Create(ctx, &models.Booking{ID: "b1", UserID: "user-a", SlotTemplateID: 1, CalendarDate: target}))
	third, err := f.svc.CheckDueWarnings(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, third)
	assert.Len(t, f.dedup.keys, 1)
}

func TestCheckDueWarningsSkipsBookedInstances(t *testing.T) {
	f := newSweepFixture(t, tuesdayMorning)
	ctx := context.Background()
	require.NoError(t, f.bookings.Create(ctx, &models.Booking{ID: "b1", UserID: "user-a", SlotTemplateID: 1, CalendarDate: calendar.Date(2025, time.January, 7)}))

	due, err := f.svc.CheckDueWarnings(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, due)
	assert.Empty(t, f.dedup.keys)
}

func TestCheckDueWarningsSkipsClosedDates(t *testing.T) {
	// 2025-07-01 is a Tuesday inside the summer break.
	f := newSweepFixture(t, time.Date(2025, time.June, 24, 8, 0, 0, 0, time.UTC))

	due, err := f.svc.CheckDueWarnings(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, due)
	assert.Empty(t, f.dedup.keys)
}

func TestCheckDueWarningsSkipsHolidays(t *testing.T) {
	// 2025-12-25 is a Thursday and a national holiday.
	f := newSweepFixture(t, time.Date(2025, time.December, 18, 8, 0, 0, 0, time.UTC))

	due, err := f.svc.CheckDueWarnings(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, due)
	assert.Empty(t, f.dedup.keys)
}

func TestCheckDueWarningsUsesLocalDate(t *testing.T) {
	// 23:30 UTC on Dec 30 is already Dec 31 in Berlin.
	f := newSweepFixture(t, time.Date(2024, time.December, 30, 23, 30, 0, 0, time.UTC))

	due, err := f.svc.CheckDueWarnings(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.True(t, due[0].Date.Equal(calendar.Date(2025, time.January, 7)))
}

func TestRunSweepDeliversInline(t *testing.T) {
	f := newSweepFixture(t, tuesdayMorning)

	report, err := f.svc.RunSweep(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, report.Due, 1)
	assert.Equal(t, 1, report.Delivered)
	assert.Empty(t, report.Warnings)

	require.Len(t, f.dispatch.broadcasts, 1)
	assert.Contains(t, f.dispatch.broadcasts[0].Subject, "Tuesday 17:00-20:00")
	assert.Contains(t, f.dispatch.broadcasts[0].Subject, "2025-01-07")
	assert.Equal(t, []string{models.AuditSweepWarningSent}, f.audit.actions())
	assert.Nil(t, f.audit.entries[0].UserID)

	report, err = f.svc.RunSweep(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, report.Due)
	assert.Len(t, f.dispatch.broadcasts, 1)
}

func TestRunSweepFailedBroadcastStaysDeduped(t *testing.T) {
	f := newSweepFixture(t, tuesdayMorning)
	f.dispatch.broadcastErr = errBoom

	report, err := f.svc.RunSweep(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Delivered)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, StepAdminBroadcast, report.Warnings[0].Step)
	assert.Empty(t, f.audit.entries)

	report, err = f.svc.RunSweep(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, report.Due)
}

func TestRunSweepReportsClaimErrors(t *testing.T) {
	f := newSweepFixture(t, tuesdayMorning)
	f.dedup.err = errBoom

	report, err := f.svc.RunSweep(context.Background(), 7)
	require.Error(t, err)
	assert.Empty(t, report.Due)
	assert.Empty(t, f.dispatch.broadcasts)
}

func TestRunSweepThroughQueue(t *testing.T) {
	f := newSweepFixture(t, tuesdayMorning)
	queue := jobs.NewQueue("warnings", f.svc.HandleJob, jobs.QueueConfig{Workers: 1, MaxRetries: 1, RetryDelay: 10 * time.Millisecond, OnGiveUp: f.svc.GiveUp})
	f.svc.UseQueue(queue)
	queue.Start(context.Background())
	defer queue.Stop()

	report, err := f.svc.RunSweep(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Queued)
	assert.Equal(t, 0, report.Delivered)

	require.Eventually(t, func() bool {
		return len(f.audit.actions()) == 1
	}, time.Second, 10*time.Millisecond)
}

type queueSpy struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (q *queueSpy) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func TestRunSweepFallsBackWhenQueueRejects(t *testing.T) {
	f := newSweepFixture(t, tuesdayMorning)
	f.svc.UseQueue(&queueSpy{err: errBoom})

	report, err := f.svc.RunSweep(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Queued)
	assert.Equal(t, 1, report.Delivered)
}

func TestHandleJobRetriesWhenNobodyReached(t *testing.T) {
	f := newSweepFixture(t, tuesdayMorning)
	f.dispatch.broadcastErr = errBoom
	spy := &queueSpy{}
	f.svc.UseQueue(spy)

	_, err := f.svc.RunSweep(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, spy.jobs, 1)
	assert.Equal(t, JobUnfilledWarning, spy.jobs[0].Type)
	assert.Equal(t, "warning:1@2025-01-07", spy.jobs[0].ID)

	assert.Error(t, f.svc.HandleJob(context.Background(), spy.jobs[0]))
	assert.NoError(t, f.svc.HandleJob(context.Background(), jobs.Job{ID: "x", Payload: "garbage"}))
}
