package bootstrap

import (
	"context"
	"os"
	"os/user"
	"path/filepath"

	"github.com/GlintPay/helmfile-reporter/credentials"
	"github.com/GlintPay/helmfile-reporter/environment"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Facts is the start-up summary of the run
type Facts struct {
	Version     string
	Command     string
	Helmfile    string
	User        string
	Kernel      string
	Context     environment.Context
	KubeContext string
}

func (f Facts) MarshalZerologObject(e *zerolog.Event) {
	e.Str("version", f.Version).
		Str("command", f.Command).
		Str("helmfile", f.Helmfile).
		Str("user", f.User).
		Str("kernel", f.Kernel).
		EmbedObject(f.Context)
	if f.KubeContext != "" {
		e.Str("kube-context", f.KubeContext)
	}
}

func (b *Bootstrapper) gatherFacts(ctx context.Context, envCtx environment.Context, set *credentials.Set) Facts {
	facts := Facts{
		Version: b.Config.Version,
		Kernel:  kernelRelease(),
		Context: envCtx,
	}

	if exe, err := os.Executable(); err == nil {
		facts.Command = filepath.Dir(exe)
	}

	if u, err := user.Current(); err == nil {
		facts.User = u.Username
	}

	if version, err := b.Runner.Version(ctx); err == nil {
		facts.Helmfile = version
	} else {
		log.Debug().Err(err).Msg("helmfile --version failed")
	}

	if set.Kube != nil {
		facts.KubeContext = set.Kube.Context
	}
	return facts
}
