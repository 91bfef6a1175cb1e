// Package feed assembles the paginated post listings: global, per group,
// per author and from followed authors.
package feed

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/pagination"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

var (
	// ErrNotFound is returned when the requested group or author does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when an anonymous viewer asks for a
	// viewer-specific feed
	ErrUnauthenticated = errors.New("authentication required")
)

// PostPage is one page of posts, newest first
type PostPage = pagination.Page[models.Post]

// GroupFeed is the listing of one group
type GroupFeed struct {
	Group *models.Group
	Page  PostPage
}

// ProfileFeed is the listing of one author plus the viewer's relation to them
type ProfileFeed struct {
	Author    *models.User
	PostCount int64
	Following bool
	IsSelf    bool
	Page      PostPage
}

// FollowedFeed is the listing of posts by authors the viewer follows
type FollowedFeed struct {
	Page     PostPage
	HasPosts bool
}

// Service builds feeds. A nil viewer is anonymous.
type Service struct {
	users    *db.UserRepository
	groups   *db.GroupRepository
	posts    *db.PostRepository
	follows  *db.FollowRepository
	pageSize int
	logger   *zap.Logger
}

// NewService creates a feed service serving pageSize posts per page
func NewService(repo *db.Repository, pageSize int) *Service {
	return &Service{
		users:    db.NewUserRepository(repo),
		groups:   db.NewGroupRepository(repo),
		posts:    db.NewPostRepository(repo),
		follows:  db.NewFollowRepository(repo),
		pageSize: pageSize,
		logger:   logging.WithComponent("feed"),
	}
}

// Global returns every post
func (s *Service) Global(ctx context.Context, rawPage string) (PostPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.Global")
	defer span.End()

	return s.page(ctx, db.PostFilter{}, rawPage)
}

// Group returns the posts filed under the group with the given slug
func (s *Service) Group(ctx context.Context, slug, rawPage string) (*GroupFeed, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.Group")
	defer span.End()
	span.SetAttributes(attribute.String("group.slug", slug))

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get group %q: %w", slug, err)
	}
	if group == nil {
		return nil, fmt.Errorf("group %q: %w", slug, ErrNotFound)
	}

	page, err := s.page(ctx, db.PostFilter{GroupID: &group.ID}, rawPage)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: group, Page: page}, nil
}

// Profile returns the posts written by username
func (s *Service) Profile(ctx context.Context, viewer *models.User, username, rawPage string) (*ProfileFeed, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.Profile")
	defer span.End()
	span.SetAttributes(attribute.String("author.username", username))

	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	if author == nil {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}

	page, err := s.page(ctx, db.PostFilter{AuthorID: &author.ID}, rawPage)
	if err != nil {
		return nil, err
	}

	feed := &ProfileFeed{
		Author:    author,
		PostCount: page.Count,
		Page:      page,
	}
	if viewer != nil {
		feed.IsSelf = viewer.ID == author.ID
		if !feed.IsSelf {
			feed.Following, err = s.follows.Exists(ctx, viewer.ID, author.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check follow: %w", err)
			}
		}
	}
	return feed, nil
}

// Followed returns the posts by every author the viewer follows
func (s *Service) Followed(ctx context.Context, viewer *models.User, rawPage string) (*FollowedFeed, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.Followed")
	defer span.End()

	if viewer == nil {
		return nil, ErrUnauthenticated
	}

	authorIDs, err := s.follows.AuthorIDs(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get followed authors: %w", err)
	}
	if authorIDs == nil {
		authorIDs = []int64{}
	}
	span.SetAttributes(attribute.Int("follow.authors", len(authorIDs)))

	page, err := s.page(ctx, db.PostFilter{AuthorIDs: authorIDs}, rawPage)
	if err != nil {
		return nil, err
	}
	return &FollowedFeed{Page: page, HasPosts: page.Count > 0}, nil
}

func (s *Service) page(ctx context.Context, filter db.PostFilter, rawPage string) (PostPage, error) {
	count, err := s.posts.Count(ctx, filter)
	if err != nil {
		return PostPage{}, fmt.Errorf("failed to count posts: %w", err)
	}

	w := pagination.NewWindow(count, s.pageSize, rawPage)
	if w.Len() == 0 {
		return pagination.NewPage[models.Post](nil, w), nil
	}

	posts, err := s.posts.List(ctx, filter, w.Offset(), w.Limit())
	if err != nil {
		return PostPage{}, fmt.Errorf("failed to list posts: %w", err)
	}

	s.logger.Debug("Feed page built",
		zap.Int("page", w.Number),
		zap.Int("pages", w.NumPages),
		zap.Int64("count", count))

	return pagination.NewPage(posts, w), nil
}
