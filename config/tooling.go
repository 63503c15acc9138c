package config

import "time"

type KubeConfig struct {
	Config  string `env:"KUBE_CONFIG"`  // base64-encoded kubeconfig, possibly SOPS-encrypted
	Context string `env:"KUBE_CONTEXT"` // empty = the kubeconfig's current-context
}

type HelmfileConfig struct {
	Environment string        `env:"HELMFILE_ENVIRONMENT"`
	Selector    string        `env:"HELMFILE_SELECTOR"`
	Binary      string        `env:"HELMFILE_BINARY" envDefault:"helmfile"`
	Timeout     time.Duration `env:"HELMFILE_TIMEOUT" envDefault:"0s"`
}

type ReportConfig struct {
	Dir      string `env:"REPORT_DIR"`
	Filename string `env:"REPORT_FILENAME" envDefault:"report.txt"`
	Header   bool   `env:"REPORT_HEADER" envDefault:"false"`
}
