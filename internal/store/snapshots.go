package store

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/digest/internal/snapshot"
)

// Strips the ticket number out of the description along with the separators around it.
// Every business column is read as text so keys stay opaque and the fingerprint input
// matches the database's own rendering.
const readSnapshotQuery = `
	SELECT
		log.log_id::text,
		COALESCE(s.activity_duration::text, ''),
		COALESCE(s.customer_id::text, ''),
		COALESCE(s.project::text, ''),
		COALESCE(s.subproject::text, ''),
		log.ticket_number,
		TRIM(BOTH ' -:>,' FROM REPLACE(s.description, log.ticket_number, '')) AS description
	FROM snapshot s
	INNER JOIN log ON s.log_id = log.log_id
	WHERE s.snapshot_id = $1
		AND log.ticket_number IS NOT NULL
		AND LENGTH(log.ticket_number) > 0
		AND UPPER(log.ticket_number) ~ '^[A-Z]'
		AND s.description IS NOT NULL
		AND LENGTH(s.description) > 5`

// ReadSnapshot returns the summarizable rows of a snapshot in database order.
func (s *Store) ReadSnapshot(ctx context.Context, snapshotID int64) ([]snapshot.LogRow, error) {
	rows, err := s.pool.Query(ctx, readSnapshotQuery, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot %d: %w", snapshotID, err)
	}
	defer rows.Close()

	var out []snapshot.LogRow
	for rows.Next() {
		var r snapshot.LogRow
		if err := rows.Scan(
			&r.LogID, &r.ActivityDuration, &r.CustomerID,
			&r.Project, &r.Subproject, &r.TicketNumber, &r.Description,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot rows: %w", err)
	}
	return out, nil
}
