package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/manelromero/blog/internal/apperror"
	"github.com/manelromero/blog/internal/model"
	"github.com/manelromero/blog/internal/repository"
)

var _ repository.VoteRepository = (*DB)(nil)

// CreateVote records a vote, enforcing at most one per (post, author).
//
// ON CONFLICT DO NOTHING makes the uniqueness check and the insert a single
// atomic statement. A scan-then-insert ("did this user vote already? no →
// insert") would race: two concurrent submissions could both see no vote and
// both insert. Here the UNIQUE(post_id, author_id) index arbitrates — the
// loser affects zero rows, which we surface as apperror.ErrConflict so the
// caller can treat it as "already voted".
func (db *DB) CreateVote(ctx context.Context, vote *model.Vote) error {
	vote.ID = xid.New().String()
	vote.CreatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO votes (id, post_id, author_id, value, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (post_id, author_id) DO NOTHING`,
		vote.ID,
		vote.PostID,
		vote.AuthorID,
		vote.Value,
		vote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating vote: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.Conflict("vote", vote.PostID)
	}

	return nil
}

// ListVotesForPost returns every vote on a post.
func (db *DB) ListVotesForPost(ctx context.Context, postID string) ([]model.Vote, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, author_id, value, created_at
		 FROM votes
		 WHERE post_id = ?
		 ORDER BY created_at ASC, id ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing votes for post %s: %w", postID, err)
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(&v.ID, &v.PostID, &v.AuthorID, &v.Value, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning vote row: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating votes: %w", err)
	}

	return votes, nil
}

// CountVotesForPost returns the vote total for a post.
// SUM(value) rather than COUNT(*) so the total keeps working if signed
// votes are ever introduced.
func (db *DB) CountVotesForPost(ctx context.Context, postID string) (int, error) {
	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(value), 0) FROM votes WHERE post_id = ?`,
		postID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting votes for post %s: %w", postID, err)
	}
	return total, nil
}
