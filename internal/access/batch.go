package access

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"cascade/internal/access/metrics"
	id "cascade/pkg/domain"
)

// DefaultBatchConcurrency bounds the per-request fan-out when no explicit
// limit is configured.
const DefaultBatchConcurrency = 8

// DecisionResolver evaluates one authorization check.
type DecisionResolver interface {
	Resolve(ctx context.Context, companyID id.CompanyID, userID id.UserID, projectID id.ProjectID, action string) (Decision, error)
}

// Batch fans authorization checks out to the resolver and collects decisions
// in input order. Checks are independent reads, so they run concurrently up
// to the configured limit; a malformed check is decided locally and never
// reaches the resolver, and one check's denial never affects another. Only a
// store failure aborts the whole batch.
type Batch struct {
	resolver    DecisionResolver
	concurrency int

	metrics *metrics.Metrics
	logger  *slog.Logger
}

type BatchOption func(b *Batch)

func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

func WithBatchMetrics(m *metrics.Metrics) BatchOption {
	return func(b *Batch) {
		b.metrics = m
	}
}

// WithBatchConcurrency caps how many checks resolve at once. Values below 1
// are ignored.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatch constructs a Batch over a resolver.
func NewBatch(resolver DecisionResolver, opts ...BatchOption) *Batch {
	b := &Batch{
		resolver:    resolver,
		concurrency: DefaultBatchConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ResolveBatch evaluates project-scoped checks for one caller. The returned
// slice always has exactly len(checks) decisions, positionally matching the
// input.
func (b *Batch) ResolveBatch(ctx context.Context, companyID id.CompanyID, userID id.UserID, checks []Check) ([]Decision, error) {
	ctx, span := tracer.Start(ctx, "access.resolve_batch",
		trace.WithAttributes(attribute.Int("check_count", len(checks))),
	)
	defer span.End()

	b.metrics.ObserveBatchSize(len(checks))

	prepared := make([]preparedCheck, len(checks))
	for i, check := range checks {
		prepared[i] = preparedCheck{
			projectID: check.ProjectID,
			action:    check.Action,
			invalid:   check.ProjectID == "" || check.Action == "",
		}
	}

	decisions, err := b.resolveAll(ctx, companyID, userID, prepared)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return decisions, nil
}

// ResolveFileBatch evaluates file-scoped checks. The file id must be present
// but is otherwise opaque: the decision is made against the project, and
// short caller-side action names are widened to catalog names first.
func (b *Batch) ResolveFileBatch(ctx context.Context, companyID id.CompanyID, userID id.UserID, checks []FileCheck) ([]Decision, error) {
	ctx, span := tracer.Start(ctx, "access.resolve_file_batch",
		trace.WithAttributes(attribute.Int("check_count", len(checks))),
	)
	defer span.End()

	b.metrics.ObserveBatchSize(len(checks))

	prepared := make([]preparedCheck, len(checks))
	for i, check := range checks {
		prepared[i] = preparedCheck{
			projectID: check.ProjectID,
			action:    normalizeFileAction(check.Action),
			invalid:   check.FileID == "" || check.ProjectID == "" || check.Action == "",
		}
	}

	decisions, err := b.resolveAll(ctx, companyID, userID, prepared)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return decisions, nil
}

// preparedCheck is a check after boundary validation and alias widening,
// ready for the resolver.
type preparedCheck struct {
	projectID string
	action    string
	invalid   bool
}

func (b *Batch) resolveAll(ctx context.Context, companyID id.CompanyID, userID id.UserID, checks []preparedCheck) ([]Decision, error) {
	decisions := make([]Decision, len(checks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, check := range checks {
		if check.invalid {
			b.metrics.IncrementInvalidChecks()
			b.metrics.RecordDecision(false, ReasonInvalidCheck)
			decisions[i] = denied(ReasonInvalidCheck)
			continue
		}

		projectID, err := id.ParseProjectID(check.projectID)
		if err != nil {
			// An unparseable id cannot name any project; same verdict as an
			// absent one.
			b.metrics.RecordDecision(false, ReasonProjectNotFound)
			decisions[i] = denied(ReasonProjectNotFound)
			continue
		}

		g.Go(func() error {
			decision, err := b.resolver.Resolve(gctx, companyID, userID, projectID, check.action)
			if err != nil {
				return err
			}
			decisions[i] = decision
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		b.logger.ErrorContext(ctx, "batch resolution aborted", "error", err)
		return nil, err
	}
	return decisions, nil
}
