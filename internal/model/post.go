package model

import "time"

// Post is a blog entry authored by a single user.
//
// Content is stored as raw text. The newline→<br> conversion readers see is a
// presentation transform applied in the templates, never persisted.
//
// CreatedAt is set once at creation and drives the newest-first listing.
// LastEdited is refreshed on every mutation — "created" ordering is stable
// under edits, which is why the listing doesn't sort on LastEdited.
//
// VoteCount is a computed aggregate filled in when the post is loaded for
// rendering; it is not a column of its own.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	LastEdited time.Time `json:"lastEdited"`
	VoteCount  int       `json:"voteCount"`

	// AuthorName is joined in for display; empty when not loaded.
	AuthorName string `json:"authorName,omitempty"`
}

// Comment is a reader's response attached to a post. Comments are never
// edited or deleted individually — they only disappear when their post is
// deleted (cascade).
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	AuthorName string `json:"authorName,omitempty"`
}

// Vote records one user's vote on one post. The pair (PostID, AuthorID) is
// unique — the database enforces at most one vote per user per post, so a
// duplicate submission can never create a second row even under concurrent
// requests.
type Vote struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}
