package store // import "github.com/Xunop/e-library/internal/store"

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Xunop/e-library/internal/model"
)

var (
	// ErrNotFound is returned by mutations whose target row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a constraint refuses the write, such as
	// deleting a book that still has copies.
	ErrConflict = errors.New("store: conflict")
)

type Store struct {
	db                 *sql.DB
	dbLock             sync.Mutex // sqlite allows a single writer
	userCache          sync.Map   // map[int32]*model.User
	userSettingCache   sync.Map   // map[string]*model.UserSetting
	systemSettingCache sync.Map   // map[string]*model.SystemSetting
	bookCache          sync.Map   // map[int]*model.Book
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// invalidateBooks drops every cached book, used when a joined column such
// as the author name changes.
func (s *Store) invalidateBooks() {
	s.bookCache.Range(func(key, _ any) bool {
		s.bookCache.Delete(key)
		return true
	})
}

func mapConstraintError(err error) error {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return err
	}
	// The low byte is the primary result code, extended codes such as
	// SQLITE_CONSTRAINT_FOREIGNKEY share it.
	if serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return errors.Wrap(ErrConflict, serr.Error())
	}
	return err
}

func dateArg(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func intArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func int32Arg(v *int32) any {
	if v == nil {
		return nil
	}
	return *v
}

func scanDate(v sql.NullString) (*model.Date, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	d, err := model.ParseDate(v.String)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid stored date %q", v.String)
	}
	return &d, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func limitOffset(limit, offset *int) string {
	clause := ""
	if limit != nil {
		clause += fmt.Sprintf(" LIMIT %d", *limit)
		if offset != nil {
			clause += fmt.Sprintf(" OFFSET %d", *offset)
		}
	}
	return clause
}
