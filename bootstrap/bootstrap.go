package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/GlintPay/helmfile-reporter/config"
	"github.com/GlintPay/helmfile-reporter/credentials"
	"github.com/GlintPay/helmfile-reporter/environment"
	"github.com/GlintPay/helmfile-reporter/helmfile"
	"github.com/GlintPay/helmfile-reporter/kubeconfig"
	gotel "github.com/GlintPay/helmfile-reporter/otel"
	"github.com/GlintPay/helmfile-reporter/report"
	"github.com/GlintPay/helmfile-reporter/sops"
	"github.com/GlintPay/helmfile-reporter/workspace"
	"github.com/rs/zerolog/log"
)

type DiffRunner interface {
	Resolve() (string, error)
	Diff(ctx context.Context, req helmfile.Request, out io.Writer) error
	Version(ctx context.Context) (string, error)
}

// Bootstrapper prepares credentials from the environment and runs the diff
type Bootstrapper struct {
	Config    config.Configuration
	AppConfig config.ApplicationConfiguration
	Environ   []string
	Root      string // filesystem root probed for container markers

	Runner    DiffRunner
	Decrypter kubeconfig.Decrypter
	Now       func() time.Time
}

func New(cfg config.Configuration, appConfig config.ApplicationConfiguration, environ []string) *Bootstrapper {
	return &Bootstrapper{
		Config:    cfg,
		AppConfig: appConfig,
		Environ:   environ,
		Root:      "/",
		Runner:    &helmfile.Runner{Binary: cfg.Helmfile.Binary},
		Decrypter: sops.Decrypter{},
		Now:       time.Now,
	}
}

// Plan is everything the diff needs, resolved before anything is run
type Plan struct {
	Context     environment.Context
	Credentials *credentials.Set
	Workspace   string
	Report      report.Target
	Revision    workspace.Revision
}

// Execute prepares and runs. Any error means the process should exit non-zero; see ExitCode.
func (b *Bootstrapper) Execute(ctx context.Context) error {
	ctx, span := gotel.GetTracer(ctx).Start(ctx, "helmfile-report", gotel.InternalOptions)
	defer span.End()

	plan, err := b.Prepare(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err = b.Run(ctx, plan); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (b *Bootstrapper) Prepare(ctx context.Context) (*Plan, error) {
	ctx, span := gotel.GetTracer(ctx).Start(ctx, "prepare", gotel.InternalOptions)
	defer span.End()

	envCtx := environment.Detect(b.Root)

	set, err := credentials.Builder{Config: b.Config, Decrypter: b.Decrypter}.Build(b.Environ)
	if err != nil {
		return nil, err
	}

	log.Info().EmbedObject(b.gatherFacts(ctx, envCtx, set)).Msg("Environment")
	log.Debug().EmbedObject(set).Msg("Credentials")

	if err = set.RequireKube(); err != nil {
		return nil, err
	}

	ws := set.Workspace(b.Config.Workspace)

	target, err := report.Resolve(b.Config.Report, ws)
	if err != nil {
		return nil, err
	}

	rev, err := workspace.Describe(ws)
	if err != nil {
		log.Warn().Err(err).Str("workspace", ws).Msg("Could not read workspace revision")
	}

	return &Plan{
		Context:     envCtx,
		Credentials: set,
		Workspace:   ws,
		Report:      target,
		Revision:    rev,
	}, nil
}

func (b *Bootstrapper) Run(ctx context.Context, plan *Plan) (err error) {
	ctx, span := gotel.GetTracer(ctx).Start(ctx, "diff", gotel.InternalOptions)
	defer span.End()

	if err = plan.Report.Ensure(); err != nil {
		return err
	}

	// a missing binary must not truncate the previous report
	if _, err = b.Runner.Resolve(); err != nil {
		return err
	}

	f, err := plan.Report.Create()
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("close report: %w", e)
		}
	}()

	req := b.request(plan)

	if b.Config.Report.Header {
		if err = report.WriteHeader(f, report.Header{
			Generated:   b.Now(),
			KubeContext: req.KubeContext,
			Environment: req.Environment,
			Selector:    req.Selector,
			Revision:    plan.Revision.String(),
		}); err != nil {
			return fmt.Errorf("write report header: %w", err)
		}
	}

	log.Info().Str("kube-context", req.KubeContext).Str("workspace", plan.Workspace).Str("revision", plan.Revision.String()).
		Msg("Starting helmfile command")

	if err = b.Runner.Diff(ctx, req, f); err != nil {
		return err
	}

	log.Info().Str("report", plan.Report.Path()).Msg("Done")
	return nil
}

func (b *Bootstrapper) request(plan *Plan) helmfile.Request {
	set := plan.Credentials

	req := helmfile.Request{
		KubeContext:  set.Kube.Context,
		ContextLines: b.AppConfig.Diff.ContextLines,
		ExtraArgs:    b.AppConfig.Diff.ExtraArgs,
		Workspace:    plan.Workspace,
		Env:          set.Env(),
		Timeout:      b.Config.Helmfile.Timeout,
	}
	if set.Helmfile != nil {
		req.Environment = set.Helmfile.Environment
		req.Selector = set.Helmfile.Selector
	}
	return req
}

// IsKubeconfigError reports whether err means the Kubernetes configuration is absent or unusable
func IsKubeconfigError(err error) bool {
	return errors.Is(err, credentials.ErrKubeconfigMissing) ||
		errors.Is(err, kubeconfig.ErrMalformed) ||
		errors.Is(err, kubeconfig.ErrUnknownContext)
}

// ExitCode maps the outcome of Execute to a process exit status: helmfile's own code when it failed with one, else 1
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var cmdErr *helmfile.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	return 1
}
