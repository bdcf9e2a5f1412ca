package repository

import (
	"context"

	"github.com/manelromero/blog/internal/model"
)

// The sqlite.DB type implements all four interfaces on one receiver, so
// method names are disambiguated per entity (CreateUser vs Create, etc.);
// posts keep the plain names as the primary entity.

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByName(ctx context.Context, name string) (*model.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListNewestFirst(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	// Delete removes the post and, in the same transaction, its comments
	// and votes.
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListCommentsForPost(ctx context.Context, postID string) ([]model.Comment, error)
}

type VoteRepository interface {
	// CreateVote inserts the vote only if the (post, author) pair has no
	// vote yet; a duplicate returns apperror.ErrConflict.
	CreateVote(ctx context.Context, vote *model.Vote) error
	ListVotesForPost(ctx context.Context, postID string) ([]model.Vote, error)
	CountVotesForPost(ctx context.Context, postID string) (int, error)
}
