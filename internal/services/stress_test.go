package services

import (
	"testing"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shCommand(script string) CommandBuilder {
	return func(models.StressClass, int) (string, []string) {
		return "/bin/sh", []string{"-c", script}
	}
}

func waitTerminal(t *testing.T, r *StressRunner) models.StressJob {
	t.Helper()
	var job models.StressJob
	require.Eventually(t, func() bool {
		j, ok := r.Status()
		if !ok {
			return false
		}
		job = j
		return j.State.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestStressJobCompletes(t *testing.T) {
	r := NewStressRunner("stress-ng", time.Second)
	r.SetCommand(shCommand("exit 0"))

	d := 1
	job, err := r.Start("cpu", &d)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.StressCPU, job.Class)
	assert.Equal(t, 1, job.DurationSeconds)

	done := waitTerminal(t, r)
	assert.Equal(t, models.JobCompleted, done.State)
	require.NotNil(t, done.ExitCode)
	assert.Equal(t, 0, *done.ExitCode)
	assert.False(t, done.EndTime.IsZero())
}

func TestStressJobFailureKeepsExitCode(t *testing.T) {
	r := NewStressRunner("stress-ng", time.Second)
	r.SetCommand(shCommand("exit 3"))

	d := 1
	_, err := r.Start("io", &d)
	require.NoError(t, err)

	done := waitTerminal(t, r)
	assert.Equal(t, models.JobFailed, done.State)
	require.NotNil(t, done.ExitCode)
	assert.Equal(t, 3, *done.ExitCode)
}

func TestStressStartRejectsInvalidInput(t *testing.T) {
	r := NewStressRunner("stress-ng", time.Second)
	r.SetCommand(shCommand("exit 0"))

	_, err := r.Start("flood", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))

	zero := 0
	_, err = r.Start("cpu", &zero)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))

	negative := -5
	_, err = r.Start("cpu", &negative)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))

	_, ok := r.Status()
	assert.False(t, ok, "rejected requests must not record a job")
}

func TestStressStartAppliesDefaultDuration(t *testing.T) {
	r := NewStressRunner("stress-ng", time.Second)
	r.SetCommand(shCommand("exit 0"))

	job, err := r.Start("cpu", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultStressDuration, job.DurationSeconds)
	waitTerminal(t, r)
}

func TestStressStartConflictsWhileRunning(t *testing.T) {
	r := NewStressRunner("stress-ng", time.Second)
	r.SetCommand(shCommand("sleep 30"))

	d := 30
	first, err := r.Start("cpu", &d)
	require.NoError(t, err)
	assert.Equal(t, models.JobRunning, first.State)

	_, err = r.Start("net", &d)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConflict))

	current, ok := r.Status()
	require.True(t, ok)
	assert.Equal(t, first.ID, current.ID, "conflicting request must not disturb the active job")
	assert.Equal(t, models.JobRunning, current.State)

	r.Shutdown()
}

func TestStressJobTimesOutOnceGraceExpires(t *testing.T) {
	r := NewStressRunner("stress-ng", 0)
	r.SetCommand(shCommand("sleep 30"))

	start := time.Now()
	d := 1
	_, err := r.Start("cpu", &d)
	require.NoError(t, err)

	done := waitTerminal(t, r)
	assert.Equal(t, models.JobTimedOut, done.State)
	assert.Nil(t, done.ExitCode, "a killed job has no exit code")
	assert.False(t, done.EndTime.IsZero())
	assert.Less(t, time.Since(start), 4*time.Second)

	// The reap after the kill must not rewrite the outcome.
	r.Shutdown()
	final, ok := r.Status()
	require.True(t, ok)
	assert.Equal(t, models.JobTimedOut, final.State)
}

func TestStressStopTerminatesMatchingClass(t *testing.T) {
	r := NewStressRunner("stress-ng", time.Second)
	r.SetCommand(shCommand("sleep 30"))

	d := 30
	_, err := r.Start("cpu", &d)
	require.NoError(t, err)

	_, err = r.Stop("io")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound), "class mismatch")

	stopped, err := r.Stop("cpu")
	require.NoError(t, err)
	assert.Equal(t, models.JobStopped, stopped.State)
	assert.False(t, stopped.EndTime.IsZero())

	_, err = r.Stop("cpu")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound), "nothing left to stop")

	r.Shutdown()
}

func TestStressStopRejectsUnknownClass(t *testing.T) {
	r := NewStressRunner("stress-ng", time.Second)

	_, err := r.Stop("flood")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalid))
}

func TestStressSpawnFailureRecordsFailedJob(t *testing.T) {
	r := NewStressRunner("/nonexistent/cloud-vitals-stress-helper", time.Second)

	d := 1
	_, err := r.Start("cpu", &d)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrJob))

	job, ok := r.Status()
	require.True(t, ok)
	assert.Equal(t, models.JobFailed, job.State)
	assert.Nil(t, job.ExitCode)

	// The slot is free again.
	r.SetCommand(shCommand("exit 0"))
	_, err = r.Start("cpu", &d)
	require.NoError(t, err)
	waitTerminal(t, r)
}

func TestStressShutdownReapsActiveJob(t *testing.T) {
	r := NewStressRunner("stress-ng", time.Second)
	r.SetCommand(shCommand("sleep 30"))

	d := 30
	_, err := r.Start("swap", &d)
	require.NoError(t, err)

	start := time.Now()
	r.Shutdown()
	assert.Less(t, time.Since(start), 3*time.Second, "shutdown must not wait out the sleep")

	job, ok := r.Status()
	require.True(t, ok)
	assert.Equal(t, models.JobStopped, job.State)

	r.Shutdown() // safe to call again
}

func TestStressArgsPerClass(t *testing.T) {
	for _, class := range models.StressClasses {
		args := stressArgs(class, 45)
		require.GreaterOrEqual(t, len(args), 3, class)
		assert.Equal(t, "--timeout", args[0], class)
		assert.Equal(t, "45s", args[1], class)
	}

	assert.Contains(t, stressArgs(models.StressCPU, 10), "--cpu")
	assert.Contains(t, stressArgs(models.StressIO, 10), "--io")
	assert.Contains(t, stressArgs(models.StressFilesystem, 10), "--hdd")
	assert.Contains(t, stressArgs(models.StressSwap, 10), "--vm")
	assert.Contains(t, stressArgs(models.StressNet, 10), "--sock")
}
