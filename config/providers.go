package config

const DefaultAWSRegion = "us-east-1"

type AWSConfig struct {
	AccessKeyId     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	DefaultRegion   string `env:"AWS_DEFAULT_REGION" envDefault:"us-east-1"`
	Region          string `env:"AWS_REGION"` // falls back to DefaultRegion
}

type GitlabConfig struct {
	Username string `env:"GITLAB_USERNAME"`
	Token    string `env:"GITLAB_TOKEN"`
}

type GithubConfig struct {
	Workspace string `env:"GITHUB_WORKSPACE"`
}

type GiteaConfig struct {
	Url   string `env:"GITEA_URL"`
	Token string `env:"GITEA_TOKEN"`
}
