package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/manelromero/blog/internal/model"
)

// Tests run against ":memory:" — a fresh database per test, no disk I/O,
// destroyed when the connection closes.

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, name string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Password: "salt,digest"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %q: %v", name, err)
	}
	return user
}

func createTestPost(t *testing.T, db *DB, author *model.User, subject string) *model.Post {
	t.Helper()
	post := &model.Post{AuthorID: author.ID, Subject: subject, Content: "content of " + subject}
	if err := db.Create(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post %q: %v", subject, err)
	}
	return post
}

func createTestVote(t *testing.T, db *DB, post *model.Post, voter *model.User) *model.Vote {
	t.Helper()
	vote := &model.Vote{PostID: post.ID, AuthorID: voter.ID, Value: 1}
	if err := db.CreateVote(context.Background(), vote); err != nil {
		t.Fatalf("failed to create test vote: %v", err)
	}
	return vote
}

// nUsers creates n distinct users for tests that need a crowd.
func nUsers(t *testing.T, db *DB, n int) []*model.User {
	t.Helper()
	users := make([]*model.User, n)
	for i := range users {
		users[i] = createTestUser(t, db, fmt.Sprintf("user%d", i))
	}
	return users
}
