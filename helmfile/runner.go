package helmfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vladimirvivien/gexe"
	"golang.org/x/sync/errgroup"
)

const (
	stderrTailLines = 20
	waitDelay       = 5 * time.Second
)

// Runner invokes the helmfile executable
type Runner struct {
	Binary string
}

// Args builds the helmfile command line for req
func Args(req Request) []string {
	args := []string{"-q", "--kube-context", req.KubeContext}
	if req.Environment != "" {
		args = append(args, "--environment", req.Environment)
	}
	if req.Selector != "" {
		args = append(args, "--selector", req.Selector)
	}

	lines := req.ContextLines
	if lines <= 0 {
		lines = DefaultContextLines
	}
	args = append(args, "diff", "--suppress-secrets", "--context", strconv.Itoa(lines))

	return append(args, req.ExtraArgs...)
}

// Resolve locates the executable. Names containing a path separator are used as-is.
func (r *Runner) Resolve() (string, error) {
	binary := r.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	if strings.ContainsRune(binary, filepath.Separator) {
		if _, err := os.Stat(binary); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
		}
		return binary, nil
	}

	path := gexe.Prog().Avail(binary)
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: %q is not on PATH", ErrBinaryNotFound, binary)
	}
	return path, nil
}

// Version reports `helmfile --version`
func (r *Runner) Version(ctx context.Context) (string, error) {
	binary, err := r.Resolve()
	if err != nil {
		return "", err
	}

	out, err := exec.CommandContext(ctx, binary, "--version").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Diff runs `helmfile diff` in req.Workspace. Stdout and stderr both go to out; stderr is also logged line by line.
func (r *Runner) Diff(ctx context.Context, req Request, out io.Writer) error {
	binary, err := r.Resolve()
	if err != nil {
		return err
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	args := Args(req)
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = req.Workspace
	cmd.Env = append(os.Environ(), req.Env...)
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	log.Debug().Str("binary", binary).Strs("args", args).Str("dir", req.Workspace).Msg("Starting helmfile")

	if err = cmd.Start(); err != nil {
		return fmt.Errorf("start helmfile: %w", err)
	}

	sink := &lockedWriter{w: out}
	tail := &lineTail{max: stderrTailLines}

	g := new(errgroup.Group)
	g.Go(func() error {
		if _, e := io.Copy(sink, stdout); e != nil {
			_, _ = io.Copy(io.Discard, stdout)
			return e
		}
		return nil
	})
	g.Go(func() error {
		reader := bufio.NewReader(stderr)
		for {
			line, readErr := reader.ReadString('\n')
			if line != "" {
				line = strings.TrimRight(line, "\r\n")
				log.Warn().Str("stream", "stderr").Msg(line)
				tail.add(line)
				if _, e := io.WriteString(sink, line+"\n"); e != nil {
					_, _ = io.Copy(io.Discard, stderr)
					return e
				}
			}
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			if readErr != nil {
				_, _ = io.Copy(io.Discard, stderr)
				return readErr
			}
		}
	})

	copyErr := g.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			waitErr = fmt.Errorf("%w: %v", ctxErr, waitErr)
		}
		return &CommandError{ExitCode: code, Stderr: tail.String(), Err: waitErr}
	}

	if copyErr != nil {
		return fmt.Errorf("write report: %w", copyErr)
	}
	return nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// lineTail keeps the last max lines
type lineTail struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func (t *lineTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
