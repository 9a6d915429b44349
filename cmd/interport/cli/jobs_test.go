package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/interport-cargo/interport/jobs"
)

func TestNewJobsCLIRequiresAddress(t *testing.T) {
	_, err := NewJobsCLI("", time.Hour)
	require.Error(t, err)
}

func TestBuildTaskCleanup(t *testing.T) {
	c := &JobsCLI{retention: 72 * time.Hour}
	task, err := c.buildTask(jobs.TaskIdempotencyCleanup)
	require.NoError(t, err)
	require.Equal(t, jobs.TaskIdempotencyCleanup, task.Type())
	require.JSONEq(t, `{"retention":259200000000000}`, string(task.Payload()))
}

func TestBuildTaskRejectsUnknownAndBadRetention(t *testing.T) {
	c := &JobsCLI{}
	_, err := c.buildTask(jobs.TaskIdempotencyCleanup)
	require.ErrorContains(t, err, "retention")

	_, err = c.buildTask(jobs.TaskNotificationEmail)
	require.ErrorContains(t, err, "unsupported job")
}

func TestNilCLIReportsMisconfiguration(t *testing.T) {
	var c *JobsCLI
	_, err := c.Trigger(context.Background(), jobs.TaskIdempotencyCleanup)
	require.Error(t, err)
	_, err = c.InspectQueue(context.Background())
	require.Error(t, err)
	_, err = c.ListRetry(context.Background(), 0)
	require.Error(t, err)
}
