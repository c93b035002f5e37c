package mysql

import (
	"context"

	"assetvault/internal/domain"
)

// RecordReveal appends one row to reveal_audit.
func (c *Client) RecordReveal(ctx context.Context, ev domain.RevealEvent) error {
	const q = `INSERT INTO reveal_audit (revealed_at, actor, asset_id, service_name, session_id) VALUES (?, ?, ?, ?, ?)`
	_, err := c.db.ExecContext(ctx, q, ev.At.UTC(), ev.Actor, ev.AssetID, ev.ServiceName, ev.SessionID)
	return err
}

// ListReveals returns the newest events first.
func (c *Client) ListReveals(ctx context.Context, limit int) ([]domain.RevealEvent, error) {
	if limit <= 0 {
		limit = 1000
	}
	const q = `SELECT revealed_at, actor, asset_id, service_name, session_id FROM reveal_audit ORDER BY revealed_at DESC, id DESC LIMIT ?`
	rows, err := c.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RevealEvent
	for rows.Next() {
		var ev domain.RevealEvent
		if err := rows.Scan(&ev.At, &ev.Actor, &ev.AssetID, &ev.ServiceName, &ev.SessionID); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
