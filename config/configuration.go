package config

// Configuration is parsed once from the process environment and never mutated afterwards.
type Configuration struct {
	ApplicationConfigFileYmlPath string `env:"APP_CONFIG_FILE_YML_PATH" envDefault:"reporter.yml"`

	Version   string `env:"VERSION"`
	Home      string `env:"REPORTER_HOME"`
	Workspace string `env:"WORKSPACE"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Kube     KubeConfig
	Helmfile HelmfileConfig
	AWS      AWSConfig
	Gitlab   GitlabConfig
	Github   GithubConfig
	Gitea    GiteaConfig
	Report   ReportConfig
}

// ApplicationConfiguration Must use full names for `sigs.k8s.io/yaml`
type ApplicationConfiguration struct {
	Prometheus Prometheus
	Tracing    Tracing
	Diff       Diff
}

type Tracing struct {
	Enabled         bool
	Endpoint        string
	SamplerFraction float64
}

type Prometheus struct {
	PushgatewayUrl string `json:"pushgatewayUrl"`
	Job            string
}

// Diff tunes the helmfile invocation beyond the fixed flags
type Diff struct {
	ContextLines int      `json:"contextLines"`
	ExtraArgs    []string `json:"extraArgs"`
}
