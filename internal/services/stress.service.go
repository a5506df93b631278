package services

import (
	stderrors "errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/telemetry"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/mem"
)

// DefaultStressDuration is applied when a stress request omits the
// duration, in seconds.
const DefaultStressDuration = 60

// CommandBuilder produces the argv for a stress process. Tests swap this
// out to run short shell commands instead of real load generators.
type CommandBuilder func(class models.StressClass, durationSeconds int) (string, []string)

// StressRunner spawns and supervises stress processes. At most one job
// may be active at a time; the last job is retained after it finishes so
// its outcome stays queryable.
type StressRunner struct {
	mu    sync.Mutex
	grace time.Duration
	build CommandBuilder

	job   *models.StressJob
	cmd   *exec.Cmd
	timer *time.Timer
	done  chan struct{} // closed when the active job's process is reaped
}

// NewStressRunner creates a runner that launches binary (normally
// stress-ng) and grants grace beyond the requested duration before
// killing an overrunning process.
func NewStressRunner(binary string, grace time.Duration) *StressRunner {
	return &StressRunner{
		grace: grace,
		build: func(class models.StressClass, durationSeconds int) (string, []string) {
			return binary, stressArgs(class, durationSeconds)
		},
	}
}

// SetCommand replaces the command builder. Call before the first Start.
func (r *StressRunner) SetCommand(build CommandBuilder) {
	r.build = build
}

// Start launches a stress job. duration is in seconds; nil selects
// DefaultStressDuration. Returns a conflict error while another job is
// still active and an invalid error for a bad class or duration, both
// before any process is spawned.
func (r *StressRunner) Start(class string, duration *int) (models.StressJob, error) {
	parsed, ok := models.ParseStressClass(class)
	if !ok {
		return models.StressJob{}, errors.New(errors.ErrInvalid,
			fmt.Sprintf("unknown stress class %q", class),
			"valid classes are: "+strings.Join(classNames(), ", "))
	}

	seconds := DefaultStressDuration
	if duration != nil {
		seconds = *duration
	}
	if seconds <= 0 {
		return models.StressJob{}, errors.New(errors.ErrInvalid,
			fmt.Sprintf("invalid duration %d", seconds),
			"duration must be a positive number of seconds")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.job != nil && !r.job.State.Terminal() {
		return models.StressJob{}, errors.New(errors.ErrConflict,
			fmt.Sprintf("a %s stress job is already %s", r.job.Class, r.job.State),
			"wait for it to finish or stop it with DELETE /stress/"+string(r.job.Class))
	}

	job := &models.StressJob{
		ID:              uuid.NewString(),
		Class:           parsed,
		DurationSeconds: seconds,
		State:           models.JobPending,
		StartTime:       time.Now(),
	}
	r.job = job

	name, args := r.build(parsed, seconds)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		job.State = models.JobFailed
		job.EndTime = time.Now()
		telemetry.JobsFinished.WithLabelValues(string(models.JobFailed)).Inc()
		return models.StressJob{}, errors.WrapWithCode(err, errors.ErrJob,
			fmt.Sprintf("could not start %s stress process", parsed),
			fmt.Sprintf("check that %s is installed and on PATH", name))
	}

	job.State = models.JobRunning
	r.cmd = cmd
	r.done = make(chan struct{})
	r.timer = time.AfterFunc(time.Duration(seconds)*time.Second+r.grace, func() {
		r.timeout(job.ID)
	})

	telemetry.JobsStarted.WithLabelValues(string(parsed)).Inc()
	log.Printf("[STRESS] started %s job %s (duration: %ds, pid: %d)", parsed, job.ID, seconds, cmd.Process.Pid)

	go r.wait(job.ID, cmd, r.done)

	return *job, nil
}

// wait reaps the process and records the outcome, unless a timeout or
// stop already resolved the job.
func (r *StressRunner) wait(jobID string, cmd *exec.Cmd, done chan struct{}) {
	defer close(done)
	err := cmd.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.job == nil || r.job.ID != jobID {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.cmd = nil

	if r.job.State != models.JobRunning {
		// Already timed out or stopped; this exit is just the kill landing.
		return
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
			log.Printf("[STRESS] Warning: could not reap job %s: %v", jobID, err)
		}
	}

	r.job.EndTime = time.Now()
	r.job.ExitCode = &exitCode
	if exitCode == 0 {
		r.job.State = models.JobCompleted
	} else {
		r.job.State = models.JobFailed
	}
	telemetry.JobsFinished.WithLabelValues(string(r.job.State)).Inc()
	log.Printf("[STRESS] job %s %s (exit code: %d)", jobID, r.job.State, exitCode)
}

// timeout fires once the duration plus grace has elapsed. The state guard
// makes the transition exactly once even if the process exits while the
// timer callback is in flight.
func (r *StressRunner) timeout(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.job == nil || r.job.ID != jobID || r.job.State != models.JobRunning {
		return
	}

	r.job.State = models.JobTimedOut
	r.job.EndTime = time.Now()
	telemetry.JobsFinished.WithLabelValues(string(models.JobTimedOut)).Inc()
	r.kill(jobID)
	log.Printf("[STRESS] job %s exceeded %ds plus %v grace, killed", jobID, r.job.DurationSeconds, r.grace)
}

// Stop terminates the active job of the given class. Returns a not found
// error when no job of that class is active.
func (r *StressRunner) Stop(class string) (models.StressJob, error) {
	parsed, ok := models.ParseStressClass(class)
	if !ok {
		return models.StressJob{}, errors.New(errors.ErrInvalid,
			fmt.Sprintf("unknown stress class %q", class),
			"valid classes are: "+strings.Join(classNames(), ", "))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.job == nil || r.job.State.Terminal() {
		return models.StressJob{}, errors.New(errors.ErrNotFound,
			"no active stress job", "start one with POST /stress")
	}
	if r.job.Class != parsed {
		return models.StressJob{}, errors.New(errors.ErrNotFound,
			fmt.Sprintf("no active %s stress job", parsed),
			fmt.Sprintf("the active job is class %s", r.job.Class))
	}

	r.resolveStopped()
	log.Printf("[STRESS] job %s stopped on request", r.job.ID)
	return *r.job, nil
}

// Status returns the current or last job. ok is false before the first
// Start call.
func (r *StressRunner) Status() (models.StressJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job == nil {
		return models.StressJob{}, false
	}
	return *r.job, true
}

// Shutdown stops any active job and blocks until its process is reaped.
func (r *StressRunner) Shutdown() {
	r.mu.Lock()
	done := r.done
	if r.job != nil && !r.job.State.Terminal() {
		r.resolveStopped()
		log.Printf("[STRESS] job %s stopped for shutdown", r.job.ID)
	}
	r.mu.Unlock()

	if done != nil {
		<-done
	}
}

// resolveStopped marks the active job stopped and kills its process.
// Callers must hold the lock.
func (r *StressRunner) resolveStopped() {
	r.job.State = models.JobStopped
	r.job.EndTime = time.Now()
	telemetry.JobsFinished.WithLabelValues(string(models.JobStopped)).Inc()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.kill(r.job.ID)
}

// kill sends SIGKILL to the active process, if any. Callers must hold
// the lock.
func (r *StressRunner) kill(jobID string) {
	if r.cmd == nil || r.cmd.Process == nil {
		return
	}
	if err := r.cmd.Process.Kill(); err != nil {
		log.Printf("[STRESS] Warning: could not kill job %s: %v", jobID, err)
	}
}

// stressArgs maps a class to stress-ng arguments. The process terminates
// itself via --timeout; the runner's timer only backstops a hung one.
func stressArgs(class models.StressClass, durationSeconds int) []string {
	args := []string{"--timeout", fmt.Sprintf("%ds", durationSeconds)}
	switch class {
	case models.StressCPU:
		args = append(args, "--cpu", "0")
	case models.StressIO:
		args = append(args, "--io", "4")
	case models.StressFilesystem:
		args = append(args, "--hdd", "2", "--hdd-bytes", "1g")
	case models.StressSwap:
		args = append(args, "--vm", "1", "--vm-bytes", swapPressureBytes())
	case models.StressNet:
		args = append(args, "--sock", "2")
	}
	return args
}

// swapPressureBytes sizes the swap workload slightly past physical memory
// so the kernel has to page.
func swapPressureBytes() string {
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Total == 0 {
		return "95%"
	}
	return fmt.Sprintf("%d", vm.Total+vm.Total/10)
}

func classNames() []string {
	names := make([]string, len(models.StressClasses))
	for i, class := range models.StressClasses {
		names[i] = string(class)
	}
	return names
}
