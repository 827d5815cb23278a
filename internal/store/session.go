package store

import (
	"context"

	"github.com/pkg/errors"
)

// IncrementSessionVisits counts one more visit for the session, creating it
// on first sight, and returns the visits including this one.
func (s *Store) IncrementSessionVisits(ctx context.Context, sessionID string) (int, error) {
	stmt := `
		INSERT INTO session (id, num_visits)
		VALUES (?, 1)
		ON CONFLICT(id) DO UPDATE
		SET
			num_visits = num_visits + 1,
			updated_ts = strftime('%s', 'now')
		RETURNING num_visits
	`
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var visits int
	if err := s.db.QueryRowContext(ctx, stmt, sessionID).Scan(&visits); err != nil {
		return 0, errors.Wrap(err, "failed to count session visit")
	}
	return visits, nil
}
