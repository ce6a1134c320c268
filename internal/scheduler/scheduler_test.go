package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls       atomic.Int32
	hadDeadline atomic.Bool
	err         error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls.Add(1)
	_, ok := ctx.Deadline()
	r.hadDeadline.Store(ok)
	return r.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestScheduleRejectsInvalidExpression(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, quietLogger())

	_, err := s.ScheduleCalibrationRefresh("not a schedule", 0)
	assert.Error(t, err)
	assert.Empty(t, s.Entries())
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, quietLogger())
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, quietLogger())

	_, err := s.ScheduleCalibrationRefresh("@every 1h", time.Minute)
	require.NoError(t, err)
	assert.True(t, s.GetNextRun().IsZero(), "next run is unknown before start")

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.GetNextRun(), time.Minute)

	_, err = s.ScheduleCalibrationRefresh("@every 2h", 0)
	assert.Error(t, err, "jobs cannot be added while running")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop())
}

func TestRemoveJob(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, quietLogger())

	first, err := s.ScheduleCalibrationRefresh("0 6 * * *", 0)
	require.NoError(t, err)
	_, err = s.ScheduleCalibrationRefresh("0 18 * * *", 0)
	require.NoError(t, err)
	require.Len(t, s.Entries(), 2)

	require.NoError(t, s.RemoveJob(first))
	assert.Len(t, s.Entries(), 1)
}

func TestJobRunsRefresherWithTimeout(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("source unavailable")}
	s := NewScheduler(refresher, quietLogger())

	s.job(time.Minute)()
	s.job(time.Minute)()

	assert.Equal(t, int32(2), refresher.calls.Load())
	assert.True(t, refresher.hadDeadline.Load())
}
