package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/digest/internal/snapshot"
)

const changesTable = "snapshot_changes_ai"

const insertChangeQuery = `
	INSERT INTO snapshot_changes_ai (
		log_id, activity_duration, customer_id, project, subproject,
		description, control_sum, update_date
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// ReplaceChanges truncates the changes table and inserts records in one transaction.
// Nothing is visible to readers unless every insert succeeds.
func (s *Store) ReplaceChanges(ctx context.Context, records []snapshot.ChangeRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+changesTable); err != nil {
		return fmt.Errorf("truncate %s: %w", changesTable, err)
	}

	if len(records) > 0 {
		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(insertChangeQuery, changeArgs(rec)...)
		}

		br := tx.SendBatch(ctx, batch)
		for i := range records {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert change for log %s (%d of %d): %w", records[i].LogID, i+1, len(records), err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close insert batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// changeArgs orders rec for insertChangeQuery. Columns read through COALESCE go back as NULL.
func changeArgs(rec snapshot.ChangeRecord) []any {
	return []any{
		rec.LogID,
		nullable(rec.ActivityDuration),
		nullable(rec.CustomerID),
		nullable(rec.Project),
		nullable(rec.Subproject),
		rec.Description,
		rec.ControlSum,
		rec.UpdateDate,
	}
}

// CountChanges returns the number of rows currently in the changes table.
func (s *Store) CountChanges(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+changesTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", changesTable, err)
	}
	return n, nil
}
