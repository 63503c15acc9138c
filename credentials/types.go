package credentials

import (
	"github.com/rs/zerolog"
)

// Set holds the credentials of every provider whose prefix was seen in the environment. Absent providers are nil.
type Set struct {
	Kube     *Kube
	Helmfile *Helmfile
	AWS      *AWS
	Gitlab   *Gitlab
	Github   *Github
	Gitea    *Gitea
}

type Kube struct {
	ConfigPath string
	Context    string
	Contexts   []string
}

type Helmfile struct {
	Environment string
	Selector    string
}

type AWS struct {
	AccessKeyId     string
	SecretAccessKey string
	DefaultRegion   string
	Region          string
}

type Gitlab struct {
	Username string
	Token    string
}

type Github struct {
	Workspace string
}

type Gitea struct {
	Url   string
	Token string
}

// Providers names the initialised providers, in table order
func (s *Set) Providers() []string {
	var names []string
	for _, each := range table {
		if each.present(s) {
			names = append(names, each.provider)
		}
	}
	return names
}

// Workspace returns the GitHub workspace when one was provided, otherwise fallback
func (s *Set) Workspace(fallback string) string {
	if s.Github != nil && s.Github.Workspace != "" {
		return s.Github.Workspace
	}
	return fallback
}

// Env lists the variables the external tool must see in addition to the inherited environment
func (s *Set) Env() []string {
	var env []string
	if s.Kube != nil {
		env = append(env, "KUBECONFIG="+s.Kube.ConfigPath)
	}
	if s.AWS != nil {
		env = append(env, "AWS_DEFAULT_REGION="+s.AWS.DefaultRegion, "AWS_REGION="+s.AWS.Region)
	}
	return env
}

// MarshalZerologObject logs the set with every secret masked
func (s *Set) MarshalZerologObject(e *zerolog.Event) {
	e.Strs("providers", s.Providers())
	if s.Kube != nil {
		e.Str("kube.config", s.Kube.ConfigPath).Str("kube.context", s.Kube.Context)
	}
	if s.Helmfile != nil {
		e.Str("helmfile.environment", s.Helmfile.Environment).Str("helmfile.selector", s.Helmfile.Selector)
	}
	if s.AWS != nil {
		e.Str("aws.accessKeyId", mask(s.AWS.AccessKeyId)).
			Str("aws.secretAccessKey", mask(s.AWS.SecretAccessKey)).
			Str("aws.region", s.AWS.Region)
	}
	if s.Gitlab != nil {
		e.Str("gitlab.username", s.Gitlab.Username).Str("gitlab.token", mask(s.Gitlab.Token))
	}
	if s.Github != nil {
		e.Str("github.workspace", s.Github.Workspace)
	}
	if s.Gitea != nil {
		e.Str("gitea.url", s.Gitea.Url).Str("gitea.token", mask(s.Gitea.Token))
	}
}

const maskVisible = 4

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 2*maskVisible {
		return "****"
	}
	return secret[:maskVisible] + "****"
}
