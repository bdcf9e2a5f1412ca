package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/manelromero/blog/internal/apperror"
	"github.com/manelromero/blog/internal/model"
	"github.com/manelromero/blog/internal/repository"
)

var _ repository.PostRepository = (*DB)(nil)

// Create inserts a new post. ID and both timestamps are assigned here;
// created_at never changes afterwards, last_edited starts equal to it.
func (db *DB) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()

	now := time.Now()
	post.CreatedAt = now
	post.LastEdited = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, subject, content, created_at, last_edited)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Subject,
		post.Content,
		post.CreatedAt,
		post.LastEdited,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a single post with its author name and vote count.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post

	err := db.conn.QueryRowContext(ctx,
		`SELECT p.id, p.author_id, p.subject, p.content, p.created_at, p.last_edited,
		        u.name,
		        COALESCE((SELECT SUM(v.value) FROM votes v WHERE v.post_id = p.id), 0)
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = ?`,
		id,
	).Scan(
		&p.ID, &p.AuthorID, &p.Subject, &p.Content, &p.CreatedAt, &p.LastEdited,
		&p.AuthorName, &p.VoteCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return &p, nil
}

// ListNewestFirst returns all posts ordered by creation time descending.
//
// Ordering on created_at (not last_edited) keeps the front page stable under
// edits — touching an old post doesn't bump it to the top.
func (db *DB) ListNewestFirst(ctx context.Context) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.author_id, p.subject, p.content, p.created_at, p.last_edited,
		        u.name,
		        COALESCE((SELECT SUM(v.value) FROM votes v WHERE v.post_id = p.id), 0)
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC, p.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	// sql.Rows holds a pool connection — always close it.
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.AuthorID, &p.Subject, &p.Content, &p.CreatedAt, &p.LastEdited,
			&p.AuthorName, &p.VoteCount,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Update rewrites subject and content and refreshes last_edited.
// id, author_id, and created_at are immutable.
//
// RowsAffected==0 means the WHERE matched nothing → not found. (Ownership is
// the service layer's job; by the time we're called the caller has already
// been authorized.)
func (db *DB) Update(ctx context.Context, post *model.Post) error {
	post.LastEdited = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts
		 SET subject = ?, content = ?, last_edited = ?
		 WHERE id = ?`,
		post.Subject,
		post.Content,
		post.LastEdited,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// Delete removes a post together with its comments and votes.
//
// All three deletes run in one transaction: either the post and every child
// record disappear, or nothing does. Without this, deleting a post would
// leave orphaned comments and votes pointing at a missing parent.
func (db *DB) Delete(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op, so the defer is safe
	// on every path.
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting comments for post %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting votes for post %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of post %s: %w", id, err)
	}

	return nil
}
