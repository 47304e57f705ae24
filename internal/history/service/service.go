package service

import (
	"context"
	"log/slog"

	"cascade/internal/history/metrics"
	"cascade/internal/history/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/requestcontext"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Store interface {
	Append(ctx context.Context, entry *models.Entry) error
	ListByProject(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, limit, offset int) ([]*models.Entry, error)
}

// Service records immutable project history. Entries are append-only: there
// is no update or delete path, by construction. Record participates in the
// caller's ambient transaction, so a lifecycle change and its history land
// atomically.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends one history entry. A zero ID or ChangedAt is filled in here
// so callers building entries mid-transaction do not have to.
func (s *Service) Record(ctx context.Context, entry *models.Entry) error {
	if entry == nil {
		return dErrors.New(dErrors.CodeInternal, "history entry must not be nil")
	}
	if !entry.Action.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown history action: "+string(entry.Action))
	}
	if entry.ProjectID.IsNil() || entry.CompanyID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "history entry requires project and company")
	}
	if entry.ID.IsNil() {
		entry.ID = id.NewHistoryID()
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = requestcontext.Now(ctx)
	}

	if err := s.store.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append history entry")
	}
	s.metrics.IncrementAppended(string(entry.Action))
	return nil
}

// ListByProject returns entries for one project, newest first. Limit is
// clamped to [1, 200] with a default of 50; offset below zero is treated
// as zero.
func (s *Service) ListByProject(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, limit, offset int) ([]*models.Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.store.ListByProject(ctx, companyID, projectID, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list history")
	}
	return entries, nil
}
