package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/GlintPay/helmfile-reporter/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

const (
	namespace  = "helmfile_reporter"
	defaultJob = "helmfile-reporter"
)

// Recorder holds the gauges of a single run. Nothing leaves the process unless a Pushgateway is configured.
type Recorder struct {
	cfg      config.Prometheus
	registry *prometheus.Registry

	duration    prometheus.Gauge
	exitCode    prometheus.Gauge
	lastSuccess prometheus.Gauge
}

func New(cfg config.Prometheus) *Recorder {
	r := &Recorder{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the last run.",
		}),
		exitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exit_code",
			Help:      "Exit code of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	r.registry.MustRegister(r.duration, r.exitCode, r.lastSuccess)
	return r
}

func (r *Recorder) Observe(d time.Duration, exitCode int, at time.Time) {
	r.duration.Set(d.Seconds())
	r.exitCode.Set(float64(exitCode))
	if exitCode == 0 {
		r.lastSuccess.Set(float64(at.Unix()))
	}
}

// Push sends the gauges to the configured Pushgateway, if any
func (r *Recorder) Push(ctx context.Context, grouping map[string]string) error {
	if r.cfg.PushgatewayUrl == "" {
		return nil
	}

	job := r.cfg.Job
	if job == "" {
		job = defaultJob
	}

	pusher := push.New(r.cfg.PushgatewayUrl, job).Gatherer(r.registry)
	for name, value := range grouping {
		if value != "" {
			pusher = pusher.Grouping(name, value)
		}
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}

	log.Debug().Str("url", r.cfg.PushgatewayUrl).Str("job", job).Msg("Pushed metrics")
	return nil
}
