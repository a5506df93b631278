package models

import "time"

// StressClass identifies a load generator the agent can run
type StressClass string

const (
	StressCPU        StressClass = "cpu"
	StressIO         StressClass = "io"
	StressFilesystem StressClass = "filesystem"
	StressSwap       StressClass = "swap"
	StressNet        StressClass = "net"
)

// StressClasses lists every valid class in the order the API documents them
var StressClasses = []StressClass{StressCPU, StressIO, StressFilesystem, StressSwap, StressNet}

// ParseStressClass validates a class name from the API
func ParseStressClass(s string) (StressClass, bool) {
	for _, c := range StressClasses {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// JobState represents a stress job lifecycle state
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
	JobTimedOut  JobState = "timed_out"
	JobStopped   JobState = "stopped"
)

// Terminal reports whether the state admits no further transitions
func (s JobState) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobTimedOut, JobStopped:
		return true
	}
	return false
}

// StressJob represents one stress subprocess and its outcome
type StressJob struct {
	ID              string      `json:"job_id"`
	Class           StressClass `json:"class"`
	DurationSeconds int         `json:"duration_seconds"`
	State           JobState    `json:"state"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time,omitzero"`
	ExitCode        *int        `json:"exit_code,omitempty"`
}
