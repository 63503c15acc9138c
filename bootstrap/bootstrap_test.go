package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GlintPay/helmfile-reporter/config"
	"github.com/GlintPay/helmfile-reporter/credentials"
	"github.com/GlintPay/helmfile-reporter/helmfile"
	"github.com/GlintPay/helmfile-reporter/internal/test"
	"github.com/GlintPay/helmfile-reporter/kubeconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	calls []helmfile.Request
	err   error
}

func (s *stubRunner) Diff(_ context.Context, req helmfile.Request, out io.Writer) error {
	s.calls = append(s.calls, req)
	_, _ = fmt.Fprintln(out, "stub diff")
	return s.err
}

func (s *stubRunner) Resolve() (string, error) {
	return "/usr/local/bin/helmfile", nil
}

func (s *stubRunner) Version(context.Context) (string, error) {
	return "stub", nil
}

func newBootstrapper(t *testing.T, environment map[string]string) *Bootstrapper {
	t.Helper()

	cfg, err := config.Load(environment)
	require.NoError(t, err)

	var environ []string
	for k, v := range environment {
		environ = append(environ, k+"="+v)
	}

	b := New(cfg, config.ApplicationConfiguration{}, environ)
	b.Root = t.TempDir()
	b.Now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	return b
}

func TestExecute_endToEnd(t *testing.T) {
	home := t.TempDir()
	ws := filepath.Join(t.TempDir(), "ws")
	content := test.Kubeconfig("prod", "dev")

	b := newBootstrapper(t, map[string]string{
		"REPORTER_HOME":   home,
		"WORKSPACE":       ws,
		"KUBE_CONFIG":     test.Encode(content),
		"KUBE_CONTEXT":    "prod",
		"HELMFILE_BINARY": test.FakeHelmfile(t, t.TempDir()),
	})

	require.NoError(t, b.Execute(context.Background()))

	kubeconfigPath := kubeconfig.Path(home)
	written, err := os.ReadFile(kubeconfigPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(written))

	info, err := os.Stat(kubeconfigPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.DirExists(t, filepath.Join(ws, "helmfile-report"))

	reportData, err := os.ReadFile(filepath.Join(ws, "helmfile-report", "report.txt"))
	require.NoError(t, err)

	report := string(reportData)
	assert.Contains(t, report, "args: -q --kube-context prod diff --suppress-secrets --context 3\n")
	assert.Contains(t, report, "kubeconfig: "+kubeconfigPath+"\n")
	assert.Contains(t, report, "pwd: "+ws+"\n")
	assert.Contains(t, report, "comparing release=nginx\n")
}

func TestExecute_missingKubeconfig(t *testing.T) {
	tests := []struct {
		name        string
		environment map[string]string
	}{
		{name: "nothing set", environment: map[string]string{}},
		{name: "context only", environment: map[string]string{"KUBE_CONTEXT": "prod", "AWS_REGION": "eu-west-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := filepath.Join(t.TempDir(), "ws")
			tt.environment["REPORTER_HOME"] = t.TempDir()
			tt.environment["WORKSPACE"] = ws

			b := newBootstrapper(t, tt.environment)
			runner := &stubRunner{}
			b.Runner = runner

			err := b.Execute(context.Background())

			assert.ErrorIs(t, err, credentials.ErrKubeconfigMissing)
			assert.True(t, IsKubeconfigError(err))
			assert.Equal(t, 1, ExitCode(err))
			assert.Empty(t, runner.calls)
			assert.NoDirExists(t, filepath.Join(ws, "helmfile-report"))
		})
	}
}

func TestExecute_missingKubeconfigNeverStartsHelmfile(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "invoked")
	t.Setenv("FAKE_HELMFILE_MARKER", marker)

	b := newBootstrapper(t, map[string]string{
		"REPORTER_HOME":   t.TempDir(),
		"HELMFILE_BINARY": test.FakeHelmfile(t, t.TempDir()),
	})
	b.Runner = &versionlessRunner{inner: b.Runner}

	err := b.Execute(context.Background())
	assert.Equal(t, 1, ExitCode(err))
	assert.NoFileExists(t, marker)
}

// versionlessRunner skips the version probe so that only a diff would touch the marker
type versionlessRunner struct {
	inner DiffRunner
}

func (v *versionlessRunner) Diff(ctx context.Context, req helmfile.Request, out io.Writer) error {
	return v.inner.Diff(ctx, req, out)
}

func (v *versionlessRunner) Resolve() (string, error) {
	return v.inner.Resolve()
}

func (v *versionlessRunner) Version(context.Context) (string, error) {
	return "", errors.New("skipped")
}

func TestExecute_malformedKubeconfig(t *testing.T) {
	b := newBootstrapper(t, map[string]string{
		"REPORTER_HOME": t.TempDir(),
		"KUBE_CONFIG":   "apiVersion: v1",
	})
	runner := &stubRunner{}
	b.Runner = runner

	err := b.Execute(context.Background())
	assert.ErrorIs(t, err, kubeconfig.ErrMalformed)
	assert.True(t, IsKubeconfigError(err))
	assert.Equal(t, 1, ExitCode(err))
	assert.Empty(t, runner.calls)
}

func TestExecute_requestFromCredentials(t *testing.T) {
	ws := t.TempDir()
	reportDir := filepath.Join(t.TempDir(), "reports")

	b := newBootstrapper(t, map[string]string{
		"REPORTER_HOME":        t.TempDir(),
		"GITHUB_WORKSPACE":     ws,
		"KUBE_CONFIG":          test.Encode(test.Kubeconfig("prod", "dev")),
		"HELMFILE_ENVIRONMENT": "production",
		"HELMFILE_SELECTOR":    "tier=frontend",
		"HELMFILE_TIMEOUT":     "2m",
		"AWS_DEFAULT_REGION":   "eu-west-1",
		"REPORT_DIR":           reportDir,
		"REPORT_FILENAME":      "diff.txt",
		"REPORT_HEADER":        "true",
	})
	b.AppConfig.Diff = config.Diff{ContextLines: 5, ExtraArgs: []string{"--skip-deps"}}
	runner := &stubRunner{}
	b.Runner = runner

	require.NoError(t, b.Execute(context.Background()))
	require.Len(t, runner.calls, 1)

	req := runner.calls[0]
	assert.Equal(t, "prod", req.KubeContext)
	assert.Equal(t, "production", req.Environment)
	assert.Equal(t, "tier=frontend", req.Selector)
	assert.Equal(t, 5, req.ContextLines)
	assert.Equal(t, []string{"--skip-deps"}, req.ExtraArgs)
	assert.Equal(t, ws, req.Workspace)
	assert.Equal(t, 2*time.Minute, req.Timeout)
	assert.Contains(t, req.Env, "AWS_REGION=eu-west-1")
	assert.Contains(t, req.Env, "KUBECONFIG="+kubeconfig.Path(b.Config.Home))

	data, err := os.ReadFile(filepath.Join(reportDir, "diff.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# helmfile diff report\n# generated: 2026-10-19T08:30:00Z\n# kube-context: prod\n"))
	assert.Contains(t, string(data), "stub diff\n")
}

func TestExecute_helmfileFailureIsFatal(t *testing.T) {
	t.Setenv("FAKE_HELMFILE_EXIT", "3")

	b := newBootstrapper(t, map[string]string{
		"REPORTER_HOME":   t.TempDir(),
		"WORKSPACE":       t.TempDir(),
		"KUBE_CONFIG":     test.Encode(test.Kubeconfig("prod")),
		"HELMFILE_BINARY": test.FakeHelmfile(t, t.TempDir()),
	})

	err := b.Execute(context.Background())

	var cmdErr *helmfile.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, ExitCode(err))
	assert.False(t, IsKubeconfigError(err))
}

func TestExecute_reportDirExists(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "helmfile-report"), 0o755))

	b := newBootstrapper(t, map[string]string{
		"REPORTER_HOME": t.TempDir(),
		"WORKSPACE":     ws,
		"KUBE_CONFIG":   test.Encode(test.Kubeconfig("prod")),
	})
	b.Runner = &stubRunner{}

	require.NoError(t, b.Execute(context.Background()))
	assert.FileExists(t, filepath.Join(ws, "helmfile-report", "report.txt"))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"missing kubeconfig", credentials.ErrKubeconfigMissing, 1},
		{"wrapped command error", fmt.Errorf("run: %w", &helmfile.CommandError{ExitCode: 2, Err: errors.New("exit status 2")}), 2},
		{"killed", &helmfile.CommandError{ExitCode: -1, Err: context.DeadlineExceeded}, 1},
		{"filesystem", errors.New("create report directory: permission denied"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExecute_missingBinaryKeepsPreviousReport(t *testing.T) {
	ws := t.TempDir()
	reportPath := filepath.Join(ws, "helmfile-report", "report.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(reportPath), 0o755))
	require.NoError(t, os.WriteFile(reportPath, []byte("previous diff\n"), 0o644))

	b := newBootstrapper(t, map[string]string{
		"REPORTER_HOME":   t.TempDir(),
		"WORKSPACE":       ws,
		"KUBE_CONFIG":     test.Encode(test.Kubeconfig("prod")),
		"HELMFILE_BINARY": filepath.Join(t.TempDir(), "missing-helmfile"),
	})

	err := b.Execute(context.Background())
	assert.ErrorIs(t, err, helmfile.ErrBinaryNotFound)
	assert.Equal(t, 1, ExitCode(err))

	data, readErr := os.ReadFile(reportPath)
	require.NoError(t, readErr)
	assert.Equal(t, "previous diff\n", string(data))
}
