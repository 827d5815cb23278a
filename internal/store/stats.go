package store

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Xunop/e-library/internal/model"
)

// GetCatalogCounts runs the home page counts concurrently.
func (s *Store) GetCatalogCounts(ctx context.Context) (*model.CatalogCounts, error) {
	counts := &model.CatalogCounts{}
	queries := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&counts.NumBooks, "SELECT COUNT(*) FROM book", nil},
		{&counts.NumInstances, "SELECT COUNT(*) FROM book_instance", nil},
		{&counts.NumInstancesAvailable, "SELECT COUNT(*) FROM book_instance WHERE status = ?", []any{model.LoanStatusAvailable.String()}},
		{&counts.NumAuthors, "SELECT COUNT(*) FROM author", nil},
		{&counts.NumFictionGenres, "SELECT COUNT(*) FROM genre WHERE instr(lower(name), lower(?)) > 0", []any{"fiction"}},
		{&counts.NumDragonBooks, "SELECT COUNT(*) FROM book WHERE instr(lower(title), lower(?)) > 0", []any{"dragon"}},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		q := q
		g.Go(func() error {
			if err := s.db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
				return errors.Wrapf(err, "failed to count: %s", q.query)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}
