package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/tracespace/internal/repository"
)

// DefaultListLimit caps journal listings without an explicit limit.
const DefaultListLimit = 50

// Service handles refresh journal operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new refresh service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record journals one attempt, filling the id and timestamp if missing.
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.Outcome == "" || entry.Endpoint == "" {
		return ErrInvalidInput
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging refresh: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("refresh journaled", "seq", entry.Seq, "outcome", entry.Outcome, "organisms", entry.OrganismCount)
	}
	return nil
}

// Recent lists journal entries, newest first.
func (s *Service) Recent(ctx context.Context, opts ListOptions) ([]Entry, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	return s.repo.List(ctx, opts)
}

// Remember stores body as the last-good document for endpoint.
func (s *Service) Remember(ctx context.Context, endpoint string, body []byte) error {
	if endpoint == "" || len(body) == 0 {
		return ErrInvalidInput
	}
	snap := &CachedSnapshot{Endpoint: endpoint, Body: body, FetchedAt: time.Now()}
	if err := s.repo.SaveLastGood(ctx, snap); err != nil {
		return fmt.Errorf("saving last-good snapshot: %w", err)
	}
	return nil
}

// LastGood returns the cached document for endpoint.
func (s *Service) LastGood(ctx context.Context, endpoint string) (*CachedSnapshot, error) {
	snap, err := s.repo.LastGood(ctx, endpoint)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoCachedSnapshot
		}
		return nil, fmt.Errorf("loading last-good snapshot: %w", err)
	}
	return snap, nil
}
