// Package follow toggles the directed follow edge between a viewer and an author.
package follow

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

var (
	// ErrNotFound is returned when the target username does not exist
	ErrNotFound = errors.New("author not found")

	// ErrUnauthenticated is returned for an anonymous viewer
	ErrUnauthenticated = errors.New("authentication required")
)

// Result is the outcome of a follow toggle. Callers redirect to Target's
// profile whether or not anything Changed.
type Result struct {
	Target  *models.User
	Changed bool
}

// Service follows and unfollows authors
type Service struct {
	users   *db.UserRepository
	follows *db.FollowRepository
	logger  *zap.Logger
}

// NewService creates a follow service
func NewService(repo *db.Repository) *Service {
	return &Service{
		users:   db.NewUserRepository(repo),
		follows: db.NewFollowRepository(repo),
		logger:  logging.WithComponent("follow"),
	}
}

// Follow makes viewer follow username. Following yourself or someone you
// already follow is a no-op.
func (s *Service) Follow(ctx context.Context, viewer *models.User, username string) (Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "follow.Follow")
	defer span.End()
	span.SetAttributes(attribute.String("author.username", username))

	target, err := s.resolve(ctx, viewer, username)
	if err != nil {
		return Result{}, err
	}

	if target.ID == viewer.ID {
		return Result{Target: target}, nil
	}

	created, err := s.follows.Create(ctx, viewer.ID, target.ID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent follow of the same author
		return Result{Target: target}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to follow %q: %w", username, err)
	}

	if created {
		s.logger.Info("Author followed",
			zap.Int64("user_id", viewer.ID),
			zap.Int64("author_id", target.ID))
	}
	return Result{Target: target, Changed: created}, nil
}

// Unfollow removes viewer's follow of username if there is one
func (s *Service) Unfollow(ctx context.Context, viewer *models.User, username string) (Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "follow.Unfollow")
	defer span.End()
	span.SetAttributes(attribute.String("author.username", username))

	target, err := s.resolve(ctx, viewer, username)
	if err != nil {
		return Result{}, err
	}

	removed, err := s.follows.Delete(ctx, viewer.ID, target.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to unfollow %q: %w", username, err)
	}

	if removed {
		s.logger.Info("Author unfollowed",
			zap.Int64("user_id", viewer.ID),
			zap.Int64("author_id", target.ID))
	}
	return Result{Target: target, Changed: removed}, nil
}

func (s *Service) resolve(ctx context.Context, viewer *models.User, username string) (*models.User, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	if target == nil {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return target, nil
}
