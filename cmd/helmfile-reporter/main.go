package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GlintPay/helmfile-reporter/bootstrap"
	"github.com/GlintPay/helmfile-reporter/config"
	"github.com/GlintPay/helmfile-reporter/logging"
	"github.com/GlintPay/helmfile-reporter/metrics"
	gotel "github.com/GlintPay/helmfile-reporter/otel"
	"github.com/rs/zerolog/log"
	"sigs.k8s.io/yaml"
)

const serviceName = "helmfile-reporter"

func main() {
	os.Exit(run(os.Environ()))
}

// run parses configuration and scans prefixes from the same environ snapshot
func run(environ []string) int {
	envConfig, err := config.Load(config.EnvironMap(environ))
	if err != nil {
		logging.Setup(os.Stdout, "INFO", "json")
		log.Error().Err(err).Msg("Configuration loading failed")
		return 1
	}

	logging.Setup(os.Stdout, envConfig.LogLevel, envConfig.LogFormat)

	appConfig := config.ApplicationConfiguration{}
	if err = readConfig(envConfig.ApplicationConfigFileYmlPath, &appConfig); err != nil {
		log.Error().Err(err).Msg("Application config unreadable")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	traceShutdown, err := gotel.Setup(ctx, appConfig.Tracing, serviceName)
	if err != nil {
		log.Error().Err(err).Msg("Trace setup failed")
		return 1
	}
	defer traceShutdown()

	recorder := metrics.New(appConfig.Prometheus)
	start := time.Now()

	err = bootstrap.New(envConfig, appConfig, environ).Execute(ctx)
	code := bootstrap.ExitCode(err)

	switch {
	case err == nil:
	case bootstrap.IsKubeconfigError(err):
		log.Error().Err(err).Msg("something is wrong with the kubernetes config, exiting")
	default:
		log.Error().Err(err).Int("exitCode", code).Msg("helmfile report failed")
	}

	recorder.Observe(time.Since(start), code, time.Now())
	if pushErr := recorder.Push(context.WithoutCancel(ctx), map[string]string{
		"kube_context": envConfig.Kube.Context,
		"environment":  envConfig.Helmfile.Environment,
	}); pushErr != nil {
		log.Warn().Err(pushErr).Msg("Metrics push failed")
	}

	return code
}

func readConfig(filePath string, appConfig *config.ApplicationConfiguration) error {
	yamlFile, err := os.ReadFile(filePath)
	if err != nil {
		log.Debug().Msgf("No config file found: %s", filePath)
		return nil
	}

	log.Debug().Msgf("Loading YAML config from %s", filePath)
	return yaml.Unmarshal(yamlFile, appConfig)
}
