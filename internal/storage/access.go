package storage

import "context"

// Ping checks that the table store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if r == nil || r.db == nil {
		return ErrClosed
	}
	return r.db.PingContext(ctx)
}
