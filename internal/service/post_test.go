package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/manelromero/blog/internal/apperror"
	"github.com/manelromero/blog/internal/model"
	"github.com/manelromero/blog/internal/repository/sqlite"
)

// The post service is tested against the real SQLite repository (in-memory)
// rather than a mock: the vote rule and the cascade delete live in SQL, and
// a mock would just restate the service's own assumptions back at it.

func newTestPostService(t *testing.T) (*PostService, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewPostService(db, db, db, logger), db
}

func newPostTestUser(t *testing.T, db *sqlite.DB, name string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Password: "salt,digest"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %q: %v", name, err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestPostCreate_Success(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")

	post, err := svc.Create(context.Background(), alice, "First post", "Hello, world.")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if post.ID == "" {
		t.Error("expected post to have an ID")
	}
	if post.AuthorID != alice.ID {
		t.Errorf("AuthorID = %q, want %q", post.AuthorID, alice.ID)
	}

	posts, err := svc.ListNewestFirst(context.Background())
	if err != nil {
		t.Fatalf("ListNewestFirst() error = %v", err)
	}
	if len(posts) != 1 || posts[0].ID != post.ID {
		t.Errorf("listing should contain the new post, got %v", posts)
	}
}

func TestPostCreate_RequiresBothFields(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")

	for _, tt := range []struct{ subject, content string }{
		{"", "content"},
		{"subject", ""},
		{"", ""},
		{"   ", "content"},
		{"subject", "   "},
	} {
		_, err := svc.Create(context.Background(), alice, tt.subject, tt.content)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Create(%q, %q) error = %v, want ErrValidation", tt.subject, tt.content, err)
		}
	}
}

func TestPostCreate_AnonymousIsUnauthorized(t *testing.T) {
	svc, _ := newTestPostService(t)

	_, err := svc.Create(context.Background(), nil, "subject", "content")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Create() error = %v, want ErrUnauthorized", err)
	}
}

// =========================================================================
// OWNERSHIP TESTS
// =========================================================================

func TestEdit_OnlyAuthorMayEdit(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")
	bob := newPostTestUser(t, db, "bob")

	post, err := svc.Create(context.Background(), alice, "Original", "Original content")
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	_, err = svc.Edit(context.Background(), bob, post.ID, "Hijacked", "Hijacked content")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Edit() by non-author error = %v, want ErrForbidden", err)
	}

	// The refusal must leave the post untouched.
	got, _, err := svc.GetWithComments(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetWithComments() error = %v", err)
	}
	if got.Subject != "Original" || got.Content != "Original content" {
		t.Errorf("post changed after refused edit: %+v", got)
	}
}

func TestEdit_ByAuthor(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")

	post, err := svc.Create(context.Background(), alice, "Original", "Original content")
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	edited, err := svc.Edit(context.Background(), alice, post.ID, "Updated", "Updated content")
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if edited.Subject != "Updated" {
		t.Errorf("Subject = %q, want %q", edited.Subject, "Updated")
	}
}

func TestDelete_OnlyAuthorMayDelete(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")
	bob := newPostTestUser(t, db, "bob")

	post, err := svc.Create(context.Background(), alice, "Keep me", "content")
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), bob, post.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Delete() by non-author error = %v, want ErrForbidden", err)
	}
	if _, _, err := svc.GetWithComments(context.Background(), post.ID); err != nil {
		t.Errorf("post should survive a refused delete, got %v", err)
	}

	if err := svc.Delete(context.Background(), alice, post.ID); err != nil {
		t.Fatalf("Delete() by author error = %v", err)
	}
	if _, _, err := svc.GetWithComments(context.Background(), post.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("deleted post lookup error = %v, want ErrNotFound", err)
	}
}

func TestEditAndDelete_AnonymousIsUnauthorized(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")

	post, err := svc.Create(context.Background(), alice, "subject", "content")
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	if _, err := svc.Edit(context.Background(), nil, post.ID, "x", "y"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Edit() error = %v, want ErrUnauthorized", err)
	}
	if err := svc.Delete(context.Background(), nil, post.ID); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Delete() error = %v, want ErrUnauthorized", err)
	}
}

// =========================================================================
// COMMENT TESTS
// =========================================================================

func TestAddComment(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")
	bob := newPostTestUser(t, db, "bob")

	post, err := svc.Create(context.Background(), alice, "subject", "content")
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	// Any logged-in user may comment, not just the author.
	comment, err := svc.AddComment(context.Background(), bob, post.ID, "nice post")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if comment.AuthorID != bob.ID {
		t.Errorf("AuthorID = %q, want %q", comment.AuthorID, bob.ID)
	}

	_, comments, err := svc.GetWithComments(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetWithComments() error = %v", err)
	}
	if len(comments) != 1 || comments[0].Content != "nice post" {
		t.Errorf("comments = %+v, want the one just added", comments)
	}
}

func TestAddComment_MissingPost(t *testing.T) {
	svc, db := newTestPostService(t)
	bob := newPostTestUser(t, db, "bob")

	_, err := svc.AddComment(context.Background(), bob, "no-such-post", "hello?")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddComment() error = %v, want ErrNotFound", err)
	}
}

func TestAddComment_EmptyContent(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")

	post, err := svc.Create(context.Background(), alice, "subject", "content")
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	if _, err := svc.AddComment(context.Background(), alice, post.ID, "   "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("AddComment() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// VOTE TESTS
// =========================================================================

func TestVote_AtMostOnePerUserPerPost(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")
	bob := newPostTestUser(t, db, "bob")

	post, err := svc.Create(context.Background(), alice, "subject", "content")
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	if err := svc.Vote(context.Background(), bob, post.ID, 1); err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if err := svc.Vote(context.Background(), bob, post.ID, 1); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Vote() error = %v, want ErrConflict", err)
	}

	total, err := db.CountVotesForPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("CountVotesForPost() error = %v", err)
	}
	if total != 1 {
		t.Errorf("vote total = %d, want 1", total)
	}
}

// Pins the current scoring rule: the form submits a direction, but both
// directions record +1. A post "downvoted" by everyone still climbs. If the
// rule ever becomes signed, this test is the one to flip.
func TestVote_BothDirectionsScorePlusOne(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")
	bob := newPostTestUser(t, db, "bob")
	carol := newPostTestUser(t, db, "carol")

	post, err := svc.Create(context.Background(), alice, "subject", "content")
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	if err := svc.Vote(context.Background(), bob, post.ID, 1); err != nil {
		t.Fatalf("upvote error = %v", err)
	}
	if err := svc.Vote(context.Background(), carol, post.ID, -1); err != nil {
		t.Fatalf("downvote error = %v", err)
	}

	total, err := db.CountVotesForPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("CountVotesForPost() error = %v", err)
	}
	if total != 2 {
		t.Errorf("vote total = %d, want 2 (one up, one down, both +1)", total)
	}
}

func TestVote_MissingPost(t *testing.T) {
	svc, db := newTestPostService(t)
	bob := newPostTestUser(t, db, "bob")

	if err := svc.Vote(context.Background(), bob, "no-such-post", 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Vote() error = %v, want ErrNotFound", err)
	}
}

func TestVote_AnonymousIsUnauthorized(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newPostTestUser(t, db, "alice")

	post, err := svc.Create(context.Background(), alice, "subject", "content")
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	if err := svc.Vote(context.Background(), nil, post.ID, 1); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Vote() error = %v, want ErrUnauthorized", err)
	}
}
