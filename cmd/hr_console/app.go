package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/hr-console/internal/apiclient"
	"github.com/jonathan/hr-console/internal/candidates"
	"github.com/jonathan/hr-console/internal/config"
	"github.com/jonathan/hr-console/internal/interview"
	"github.com/jonathan/hr-console/internal/logging"
	"github.com/jonathan/hr-console/internal/observability"
	"github.com/jonathan/hr-console/internal/roles"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// app is the per-invocation wiring shared by every command.
type app struct {
	cfg      *config.Config
	client   *apiclient.Client
	printer  *observability.Printer
	registry *prometheus.Registry
	out      io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	logger := logging.NewLogger("apiclient")

	registry := prometheus.NewRegistry()
	client, err := apiclient.New(apiclient.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.RequestTimeout(),
		Tokens:  tokenSource(cfg),
		Metrics: apiclient.NewMetrics(registry),
		Logger:  &logger,
	})
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	return &app{
		cfg:      cfg,
		client:   client,
		printer:  observability.NewPrinter(out),
		registry: registry,
		out:      out,
	}, nil
}

// tokenSource picks the bearer token: a static token wins over a minted JWT.
func tokenSource(cfg *config.Config) apiclient.TokenSource {
	switch {
	case cfg.APIToken != "":
		return apiclient.StaticToken(cfg.APIToken)
	case cfg.JWT.Enabled():
		return apiclient.NewJWTSource(cfg.JWT.Secret, cfg.JWT.Subject, cfg.JWT.TTL())
	default:
		return nil
	}
}

func (a *app) candidates() *candidates.Controller {
	return candidates.New(a.client, a.printer,
		candidates.WithLogger(logging.NewLogger("candidates")),
		candidates.WithPageSize(a.cfg.PageSize))
}

func (a *app) roles() *roles.Registry {
	return roles.New(a.client, a.printer, logging.NewLogger("roles"))
}

func (a *app) generator(reg *roles.Registry) *interview.Generator {
	return interview.New(a.client, reg, a.printer, logging.NewLogger("interview"))
}

// reportMetrics prints the request counters and latency totals gathered
// during the command when --metrics is set.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (a *app) reportMetrics() {
	if !showMetrics {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		fmt.Fprintf(a.out, "failed to gather metrics: %v\n", err)
		return
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			name := fmt.Sprintf("%s{%s}", mf.GetName(), strings.Join(labels, ","))
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.3fs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	fmt.Fprintln(a.out, "API metrics:")
	for _, line := range lines {
		fmt.Fprintf(a.out, "  %s\n", line)
	}
}
