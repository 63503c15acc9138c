package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
)

const defaultWorkspaceDir = "tmp"

// Load parses the Configuration from the supplied variables, or from the process environment when nil.
// REPORTER_HOME falls back to the current working directory and WORKSPACE to `<home>/tmp`.
func Load(environment map[string]string) (Configuration, error) {
	cfg := Configuration{}

	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}

	if err := env.Parse(&cfg, opts); err != nil {
		return Configuration{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Home == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Configuration{}, fmt.Errorf("resolve home: %w", err)
		}
		cfg.Home = wd
	}

	if cfg.Workspace == "" {
		cfg.Workspace = filepath.Join(cfg.Home, defaultWorkspaceDir)
	}

	return cfg, nil
}

// EnvironMap turns `KEY=value` pairs, as returned by os.Environ, into a map
func EnvironMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, each := range environ {
		if k, v, ok := strings.Cut(each, "="); ok {
			m[k] = v
		}
	}
	return m
}
