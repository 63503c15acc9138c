package helmfile

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultBinary       = "helmfile"
	DefaultContextLines = 3
)

var ErrBinaryNotFound = errors.New("helmfile binary not found")

// Request describes one `helmfile diff` invocation
type Request struct {
	KubeContext  string
	Environment  string
	Selector     string
	ContextLines int
	ExtraArgs    []string

	Workspace string
	Env       []string // added to the inherited environment, later entries win
	Timeout   time.Duration
}

// CommandError is returned when helmfile ran but did not succeed
type CommandError struct {
	ExitCode int // -1 when the process was killed or never produced a status
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("helmfile failed (exit code %d): %v", e.ExitCode, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
