package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/sells-group/rnc-cli/internal/company"
	"github.com/sells-group/rnc-cli/internal/dgii"
	"github.com/sells-group/rnc-cli/internal/index"
	"github.com/sells-group/rnc-cli/internal/metrics"
	"github.com/sells-group/rnc-cli/internal/resilience"
	"github.com/sells-group/rnc-cli/internal/resolver"
)

// app bundles the long-lived pieces a command needs.
type app struct {
	Holder   *index.Holder
	Resolver *resolver.Service
	Store    company.Store
	Guard    *resilience.Guard
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

func datasetOptions() index.Options {
	return index.Options{
		Delimiter: cfg.Dataset.Delimiter,
		Encoding:  cfg.Dataset.Encoding,
	}
}

func newGuard() *resilience.Guard {
	return resilience.NewGuard("dgii", resilience.GuardConfig{
		RatePerSec:       cfg.DGII.RatePerSec,
		Burst:            cfg.DGII.Burst,
		BreakerThreshold: cfg.DGII.BreakerThreshold,
		BreakerReset:     time.Duration(cfg.DGII.BreakerResetSecs) * time.Second,
		ShouldTrip:       dgii.TripsBreaker,
	})
}

func newDGIIClient(guard *resilience.Guard, m *metrics.Metrics) *dgii.Client {
	return dgii.New(dgii.Options{
		BaseURL:   cfg.DGII.BaseURL,
		Timeout:   time.Duration(cfg.DGII.TimeoutSecs) * time.Second,
		UserAgent: cfg.DGII.UserAgent,
		Guard:     guard,
		Metrics:   m,
	})
}

// newApp loads the dataset and wires the resolver. When withStore is set the
// company store is opened; failing to open it only disables enrichment.
func newApp(ctx context.Context, withStore bool) *app {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	idx := index.LoadOrEmpty(ctx, cfg.Dataset.Path, datasetOptions())
	m.SetIndexRecords(idx.Len())
	zap.L().Info("local index ready",
		zap.String("path", cfg.Dataset.Path),
		zap.Int("records", idx.Len()),
	)

	a := &app{
		Holder:   index.NewHolder(idx, cfg.Dataset.Path, datasetOptions()),
		Guard:    newGuard(),
		Metrics:  m,
		Registry: reg,
	}

	opts := []resolver.Option{resolver.WithMetrics(m)}
	if withStore {
		st, err := initStore(ctx)
		if err != nil {
			zap.L().Warn("company store unavailable, enrichment disabled", zap.Error(err))
		} else {
			a.Store = st
			opts = append(opts, resolver.WithEntityFinder(st))
		}
	}

	a.Resolver = resolver.New(a.Holder, newDGIIClient(a.Guard, m), opts...)
	return a
}

// Close releases the company store.
func (a *app) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			zap.L().Warn("close company store", zap.Error(err))
		}
	}
}
