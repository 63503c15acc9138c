package credentials

import (
	"fmt"
	"slices"
	"strings"

	"github.com/GlintPay/helmfile-reporter/config"
	"github.com/GlintPay/helmfile-reporter/kubeconfig"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/rs/zerolog/log"
)

const separator = "_"

type Prefix string

const (
	PrefixKube     Prefix = "KUBE"
	PrefixHelmfile Prefix = "HELMFILE"
	PrefixAWS      Prefix = "AWS"
	PrefixGitlab   Prefix = "GITLAB"
	PrefixGithub   Prefix = "GITHUB"
	PrefixGitea    Prefix = "GITEA"
)

// Builder carries what the initialisers need beyond the configuration
type Builder struct {
	Config    config.Configuration
	Decrypter kubeconfig.Decrypter
}

type binding struct {
	prefix   Prefix
	provider string
	init     func(b Builder, s *Set) error
	present  func(s *Set) bool
}

// table fixes both the recognised prefixes and the order their initialisers run in
var table = []binding{
	{PrefixKube, "kube", initKubernetes, func(s *Set) bool { return s.Kube != nil }},
	{PrefixHelmfile, "helmfile", initHelmfile, func(s *Set) bool { return s.Helmfile != nil }},
	{PrefixAWS, "aws", initAWS, func(s *Set) bool { return s.AWS != nil }},
	{PrefixGitlab, "gitlab", initGitlab, func(s *Set) bool { return s.Gitlab != nil }},
	{PrefixGithub, "github", initGithub, func(s *Set) bool { return s.Github != nil }},
	{PrefixGitea, "gitea", initGitea, func(s *Set) bool { return s.Gitea != nil }},
}

// Scan returns the recognised prefixes among the variable names in environ (`KEY=value` pairs), in table order.
// The prefix of a name is the part before its first separator; names without one are skipped.
func Scan(environ []string) []Prefix {
	known, _ := scan(environ)
	return known
}

func scan(environ []string) ([]Prefix, []string) {
	seen := treeset.NewWithStringComparator()
	for _, each := range environ {
		name, _, _ := strings.Cut(each, "=")
		head, _, found := strings.Cut(name, separator)
		if !found || head == "" {
			continue
		}
		seen.Add(head)
	}

	var known []Prefix
	for _, each := range table {
		if seen.Contains(string(each.prefix)) {
			known = append(known, each.prefix)
			seen.Remove(string(each.prefix))
		}
	}

	ignored := make([]string, 0, seen.Size())
	for _, v := range seen.Values() {
		ignored = append(ignored, v.(string))
	}
	return known, ignored
}

// Build runs the initialiser of every recognised prefix found in environ.
// A missing kubeconfig leaves Kube nil; see RequireKube.
func (b Builder) Build(environ []string) (*Set, error) {
	known, ignored := scan(environ)
	log.Debug().Strs("prefixes", prefixNames(known)).Strs("ignored", ignored).Msg("Scanned environment")

	set := &Set{}
	for _, each := range table {
		if !slices.Contains(known, each.prefix) {
			continue
		}
		if err := each.init(b, set); err != nil {
			return nil, fmt.Errorf("init %s: %w", each.provider, err)
		}
	}
	return set, nil
}

// RequireKube fails unless the kubeconfig has been written
func (s *Set) RequireKube() error {
	if s.Kube == nil || s.Kube.ConfigPath == "" {
		return ErrKubeconfigMissing
	}
	return nil
}

func prefixNames(prefixes []Prefix) []string {
	names := make([]string, len(prefixes))
	for i, p := range prefixes {
		names[i] = string(p)
	}
	return names
}
