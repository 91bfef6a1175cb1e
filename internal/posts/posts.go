// Package posts implements post and comment writes and the post detail view.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

var (
	// ErrNotFound is returned when the post does not exist
	ErrNotFound = errors.New("post not found")

	// ErrForbidden is returned when a viewer edits a post they did not write
	ErrForbidden = errors.New("only the author can edit this post")

	// ErrUnauthenticated is returned for an anonymous viewer
	ErrUnauthenticated = errors.New("authentication required")
)

// Detail is a post with its comments and the viewer's edit right
type Detail struct {
	Post            *models.Post
	AuthorPostCount int64
	Comments        []models.Comment
	IsEdit          bool
}

// Service creates and edits posts and comments
type Service struct {
	groups   *db.GroupRepository
	posts    *db.PostRepository
	comments *db.CommentRepository
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a posts service
func NewService(repo *db.Repository) *Service {
	return &Service{
		groups:   db.NewGroupRepository(repo),
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logging.WithComponent("posts"),
	}
}

// Create publishes a new post by viewer
func (s *Service) Create(ctx context.Context, viewer *models.User, form PostForm) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.Create")
	defer span.End()

	if viewer == nil {
		return nil, ErrUnauthenticated
	}

	groupID, err := s.clean(ctx, &form)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     form.Text,
		PubDate:  s.now(),
		AuthorID: viewer.ID,
		GroupID:  groupID,
		Image:    form.Image,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.Author = viewer

	s.logger.Info("Post created",
		zap.Int64("post_id", post.ID),
		zap.Int64("author_id", viewer.ID))
	return post, nil
}

// Validate checks a post form without writing anything
func (s *Service) Validate(ctx context.Context, form PostForm) error {
	_, err := s.clean(ctx, &form)
	return err
}

// EditForm loads a post for its edit form
func (s *Service) EditForm(ctx context.Context, viewer *models.User, postID int64) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.EditForm")
	defer span.End()

	return s.editable(ctx, viewer, postID)
}

// Edit replaces the text, group and image of viewer's post. The publication
// date and author never change.
func (s *Service) Edit(ctx context.Context, viewer *models.User, postID int64, form PostForm) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.Edit")
	defer span.End()
	span.SetAttributes(attribute.Int64("post.id", postID))

	post, err := s.editable(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}

	groupID, err := s.clean(ctx, &form)
	if err != nil {
		return nil, err
	}

	post.Text = form.Text
	post.GroupID = groupID
	post.Group = nil
	if form.Image != "" {
		post.Image = form.Image
	}
	if err := s.posts.UpdateContent(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post %d: %w", postID, err)
	}

	s.logger.Info("Post edited", zap.Int64("post_id", postID))
	return post, nil
}

// Detail loads a post, its comments newest first, and the author's post count
func (s *Service) Detail(ctx context.Context, viewer *models.User, postID int64) (*Detail, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.Detail")
	defer span.End()
	span.SetAttributes(attribute.Int64("post.id", postID))

	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}

	count, err := s.posts.Count(ctx, db.PostFilter{AuthorID: &post.AuthorID})
	if err != nil {
		return nil, fmt.Errorf("failed to count author posts: %w", err)
	}

	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return &Detail{
		Post:            post,
		AuthorPostCount: count,
		Comments:        comments,
		IsEdit:          viewer != nil && viewer.ID == post.AuthorID,
	}, nil
}

// AddComment leaves a comment by viewer on the post
func (s *Service) AddComment(ctx context.Context, viewer *models.User, postID int64, form CommentForm) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.AddComment")
	defer span.End()
	span.SetAttributes(attribute.Int64("post.id", postID))

	if viewer == nil {
		return nil, ErrUnauthenticated
	}

	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}

	if verr := check(s.validate, form); verr != nil {
		return nil, verr
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: viewer.ID,
		Text:     strings.TrimSpace(form.Text),
		Created:  s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.Author = viewer

	s.logger.Info("Comment added",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("post_id", post.ID))
	return comment, nil
}

func (s *Service) get(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", postID, err)
	}
	if post == nil {
		return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
	}
	return post, nil
}

func (s *Service) editable(ctx context.Context, viewer *models.User, postID int64) (*models.Post, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != viewer.ID {
		return nil, fmt.Errorf("post %d: %w", postID, ErrForbidden)
	}
	return post, nil
}

// clean validates the form and resolves the optional group id
func (s *Service) clean(ctx context.Context, form *PostForm) (*int64, error) {
	verr := check(s.validate, *form)
	if verr == nil {
		verr = &ValidationError{}
	}
	form.Text = strings.TrimSpace(form.Text)

	var groupID *int64
	if raw := strings.TrimSpace(form.Group); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			verr.Add("group", MsgInvalidChoice)
		} else {
			group, err := s.groups.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to get group %d: %w", id, err)
			}
			if group == nil {
				verr.Add("group", MsgInvalidChoice)
			} else {
				groupID = &group.ID
			}
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return groupID, nil
}
