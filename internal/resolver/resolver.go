// Package resolver turns an RNC into a registry record: local index first,
// DGII web form on a miss.
package resolver

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/rnc-cli/internal/company"
	"github.com/sells-group/rnc-cli/internal/metrics"
	"github.com/sells-group/rnc-cli/internal/rnc"
)

// Local answers lookups from the in-memory dataset.
type Local interface {
	Lookup(raw string) (rnc.Record, bool)
}

// Remote queries the authoritative web source.
type Remote interface {
	Resolve(ctx context.Context, identifier string) (*rnc.Record, error)
}

// EntityFinder locates a persisted company by RNC. A nil company with a nil
// error means no match.
type EntityFinder interface {
	FindByRNC(ctx context.Context, rnc string) (*company.Company, error)
}

// Resolution is a resolved record plus its cross-reference against the
// company store.
type Resolution struct {
	Record       *rnc.Record      `json:"record" yaml:"record"`
	EntityLinked bool             `json:"company_in_db" yaml:"company_in_db"`
	Entity       *company.Company `json:"company_data" yaml:"company_data"`
}

// Service orchestrates local and remote resolution. It is safe for
// concurrent use when its collaborators are.
type Service struct {
	local    Local
	remote   Remote
	entities EntityFinder
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithEntityFinder enables ResolveWithEntity lookups.
func WithEntityFinder(f EntityFinder) Option {
	return func(s *Service) { s.entities = f }
}

// WithMetrics records outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service. local may be nil, in which case every lookup goes
// to remote.
func New(local Local, remote Remote, opts ...Option) *Service {
	s := &Service{local: local, remote: remote}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Resolve returns the registry record for identifier. A local hit never
// touches the network; a miss issues exactly one remote query and returns
// its result or error unchanged.
func (s *Service) Resolve(ctx context.Context, identifier string) (*rnc.Record, error) {
	log := zap.L().With(zap.String("component", "resolver"), zap.String("rnc", identifier))

	// A blank id can match neither source; DGII would only answer "no result".
	if strings.TrimSpace(identifier) == "" {
		err := rnc.NewError(rnc.KindNotFound, "empty identifier")
		s.metrics.IncFailure(err.Kind.String())
		return nil, err
	}

	if s.local != nil {
		if rec, ok := s.local.Lookup(identifier); ok {
			rec.Source = rnc.SourceLocal
			s.metrics.IncResolution(string(rnc.SourceLocal))
			log.Debug("resolved from local dataset")
			return &rec, nil
		}
	}

	if s.remote == nil {
		err := rnc.NewError(rnc.KindNotFound, "not in local dataset and no remote source configured")
		s.metrics.IncFailure(err.Kind.String())
		return nil, err
	}

	start := time.Now()
	rec, err := s.remote.Resolve(ctx, identifier)
	if err != nil {
		kind := rnc.KindOf(err)
		s.metrics.IncFailure(kind.String())
		log.Info("remote resolution failed",
			zap.String("kind", kind.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	rec.Source = rnc.SourceRemote
	s.metrics.IncResolution(string(rnc.SourceRemote))
	log.Debug("resolved from dgii", zap.Duration("elapsed", time.Since(start)))
	return rec, nil
}

// ResolveWithEntity resolves identifier and then looks it up in the company
// store. Store failures are logged and reported as not linked; they never
// fail the resolution.
func (s *Service) ResolveWithEntity(ctx context.Context, identifier string) (*Resolution, error) {
	rec, err := s.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	res := &Resolution{Record: rec}
	if s.entities == nil {
		return res, nil
	}

	c, err := s.entities.FindByRNC(ctx, identifier)
	if err != nil {
		s.metrics.IncEnrichmentFailure()
		zap.L().Warn("company lookup failed",
			zap.String("component", "resolver"),
			zap.String("rnc", identifier),
			zap.Error(err),
		)
		return res, nil
	}
	if c != nil {
		res.EntityLinked = true
		res.Entity = c
	}
	return res, nil
}
