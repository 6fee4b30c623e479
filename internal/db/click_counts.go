package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"awesomearcade/internal/models"
)

// IncrementClickCount upserts a repo's counter and returns the new value.
func (d *DB) IncrementClickCount(ctx context.Context, repo string) (int64, error) {
	var count int64
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO click_counts (repo, count, last_click_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (repo) DO UPDATE
		SET count = click_counts.count + 1, last_click_at = NOW()
		RETURNING count
	`, repo).Scan(&count)
	return count, err
}

// GetClickCount returns the counter for one repo.
func (d *DB) GetClickCount(ctx context.Context, repo string) (int64, error) {
	var count int64
	err := d.Pool.QueryRow(ctx, `SELECT count FROM click_counts WHERE repo = $1`, repo).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrClickCountNotFound
	}
	return count, err
}

// GetAllClickCounts returns every counter row.
func (d *DB) GetAllClickCounts(ctx context.Context) ([]models.ClickCount, error) {
	rows, err := d.Pool.Query(ctx, `SELECT repo, count FROM click_counts ORDER BY repo`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.ClickCount
	for rows.Next() {
		var c models.ClickCount
		if err := rows.Scan(&c.Repo, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// EnsureClickCounts inserts zero counters for repos that have none, so the
// bulk listing covers every catalog entry. Existing counters are kept.
func (d *DB) EnsureClickCounts(ctx context.Context, repos []string) error {
	if len(repos) == 0 {
		return nil
	}
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO click_counts (repo, count)
		SELECT unnest($1::text[]), 0
		ON CONFLICT (repo) DO NOTHING
	`, repos)
	return err
}
