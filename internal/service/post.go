package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/manelromero/blog/internal/apperror"
	"github.com/manelromero/blog/internal/model"
	"github.com/manelromero/blog/internal/repository"
)

// upvoteValue is what every vote records.
//
// TODO: the vote form has a down direction, but it has always counted +1
// like an upvote. Switch to signed values (+1/−1) once product confirms
// that's the intended behavior; see the pinned test in post_test.go.
const upvoteValue = 1

// PostService handles posts, comments, and votes.
//
// Every mutating method takes the acting user and enforces the two
// authorization rules in one place rather than per-route:
//   - a nil user (anonymous request) → apperror.ErrUnauthorized
//   - acting on another user's post  → apperror.ErrForbidden
type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	votes    repository.VoteRepository
	logger   *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	votes repository.VoteRepository,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		votes:    votes,
		logger:   logger,
	}
}

// Create validates and saves a new post.
//
// Subject and content are both required; the form reports the two together
// as a single error, so that's how the validation fails too.
func (s *PostService) Create(ctx context.Context, author *model.User, subject, content string) (*model.Post, error) {
	if author == nil {
		return nil, apperror.Unauthorized("log in to create a post")
	}

	subject = strings.TrimSpace(subject)
	if subject == "" || strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("post", "Sorry, we need both, title and content.")
	}

	post := &model.Post{
		AuthorID: author.ID,
		Subject:  subject,
		Content:  content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("authorID", author.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("authorID", author.ID),
	)

	return post, nil
}

// ListNewestFirst returns all posts, newest first.
func (s *PostService) ListNewestFirst(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.ListNewestFirst(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// GetWithComments loads a post and its comment thread for the permalink page.
// Returns apperror.ErrNotFound for an unknown id.
func (s *PostService) GetWithComments(ctx context.Context, id string) (*model.Post, []model.Comment, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.comments.ListCommentsForPost(ctx, id)
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.String("postID", id),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("listing comments for post %s: %w", id, err)
	}

	return post, comments, nil
}

// Edit updates a post's subject and content and refreshes its last-edited
// timestamp. Only the post's author may edit it.
func (s *PostService) Edit(ctx context.Context, actor *model.User, postID, subject, content string) (*model.Post, error) {
	post, err := s.authorizeMutation(ctx, actor, postID, "edit")
	if err != nil {
		return nil, err
	}

	subject = strings.TrimSpace(subject)
	if subject == "" || strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("post", "Sorry, we need both, title and content.")
	}

	post.Subject = subject
	post.Content = content
	if err := s.posts.Update(ctx, post); err != nil {
		s.logger.Error("failed to update post",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating post %s: %w", postID, err)
	}

	s.logger.Info("post edited",
		slog.String("postID", post.ID),
		slog.String("authorID", actor.ID),
	)

	return post, nil
}

// Delete removes a post and its comments and votes. Only the post's author
// may delete it.
func (s *PostService) Delete(ctx context.Context, actor *model.User, postID string) error {
	if _, err := s.authorizeMutation(ctx, actor, postID, "delete"); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		s.logger.Error("failed to delete post",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting post %s: %w", postID, err)
	}

	s.logger.Info("post deleted",
		slog.String("postID", postID),
		slog.String("authorID", actor.ID),
	)

	return nil
}

// AddComment attaches a comment to a post. Any authenticated user may
// comment; the content just has to be non-empty.
func (s *PostService) AddComment(ctx context.Context, author *model.User, postID, content string) (*model.Comment, error) {
	if author == nil {
		return nil, apperror.Unauthorized("log in to comment")
	}

	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "Comments can't be empty")
	}

	// Confirm the parent exists — commenting on a deleted post is a 404,
	// not a dangling row.
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: author.ID,
		Content:  content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment on post %s: %w", postID, err)
	}

	s.logger.Info("comment added",
		slog.String("commentID", comment.ID),
		slog.String("postID", postID),
		slog.String("authorID", author.ID),
	)

	return comment, nil
}

// Vote records the voter's vote on a post.
//
// At most one vote per (voter, post) ever exists — the repository enforces
// it atomically. A duplicate submission returns apperror.ErrConflict, which
// callers treat as "already voted" rather than an error page.
//
// The direction parameter is accepted but both directions record +1 (see
// upvoteValue).
func (s *PostService) Vote(ctx context.Context, voter *model.User, postID string, direction int) error {
	if voter == nil {
		return apperror.Unauthorized("log in to vote")
	}

	// 404 guard before touching the votes table.
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return err
	}

	_ = direction // both directions count the same, see upvoteValue

	vote := &model.Vote{
		PostID:   postID,
		AuthorID: voter.ID,
		Value:    upvoteValue,
	}
	if err := s.votes.CreateVote(ctx, vote); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return err // already voted — caller decides how quietly to take it
		}
		s.logger.Error("failed to create vote",
			slog.String("postID", postID),
			slog.String("voterID", voter.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("voting on post %s: %w", postID, err)
	}

	s.logger.Info("vote recorded",
		slog.String("postID", postID),
		slog.String("voterID", voter.ID),
	)

	return nil
}

// authorizeMutation loads a post and checks the actor may mutate it.
// The ownership rule: acting user's id must equal the post's author id.
func (s *PostService) authorizeMutation(ctx context.Context, actor *model.User, postID, action string) (*model.Post, error) {
	if actor == nil {
		return nil, apperror.Unauthorized("log in to " + action + " a post")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != actor.ID {
		s.logger.Warn("refused "+action+" of another user's post",
			slog.String("postID", postID),
			slog.String("actorID", actor.ID),
			slog.String("authorID", post.AuthorID),
		)
		return nil, apperror.Forbidden("only the author can " + action + " this post")
	}

	return post, nil
}
