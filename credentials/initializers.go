package credentials

import (
	"errors"

	"github.com/GlintPay/helmfile-reporter/config"
	"github.com/GlintPay/helmfile-reporter/kubeconfig"
	"github.com/rs/zerolog/log"
)

func initKubernetes(b Builder, s *Set) error {
	materialized, err := kubeconfig.Materialize(b.Config.Kube.Config, b.Config.Kube.Context, kubeconfig.Path(b.Config.Home), b.Decrypter)
	if errors.Is(err, kubeconfig.ErrMissing) {
		log.Warn().Msg("KUBE_CONFIG is not set")
		return nil
	}
	if err != nil {
		return err
	}

	s.Kube = &Kube{
		ConfigPath: materialized.Path,
		Context:    materialized.Context,
		Contexts:   materialized.Contexts,
	}
	return nil
}

func initHelmfile(b Builder, s *Set) error {
	s.Helmfile = &Helmfile{
		Environment: b.Config.Helmfile.Environment,
		Selector:    b.Config.Helmfile.Selector,
	}
	return nil
}

func initAWS(b Builder, s *Set) error {
	defaultRegion := b.Config.AWS.DefaultRegion
	if defaultRegion == "" {
		defaultRegion = config.DefaultAWSRegion
	}

	region := b.Config.AWS.Region
	if region == "" {
		region = defaultRegion
	}

	s.AWS = &AWS{
		AccessKeyId:     b.Config.AWS.AccessKeyId,
		SecretAccessKey: b.Config.AWS.SecretAccessKey,
		DefaultRegion:   defaultRegion,
		Region:          region,
	}
	return nil
}

func initGitlab(b Builder, s *Set) error {
	s.Gitlab = &Gitlab{
		Username: b.Config.Gitlab.Username,
		Token:    b.Config.Gitlab.Token,
	}
	return nil
}

func initGithub(b Builder, s *Set) error {
	s.Github = &Github{Workspace: b.Config.Github.Workspace}
	return nil
}

func initGitea(b Builder, s *Set) error {
	s.Gitea = &Gitea{
		Url:   b.Config.Gitea.Url,
		Token: b.Config.Gitea.Token,
	}
	return nil
}
