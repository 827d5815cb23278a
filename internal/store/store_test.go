package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/store/db"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	d, err := db.NewDB(filepath.Join(t.TempDir(), "e-library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(context.Background()))
	return store.NewStore(d.DB)
}

func createUser(t *testing.T, s *store.Store, username string, role model.Role) *model.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), &model.User{
		Username:     username,
		Role:         role,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func createBook(t *testing.T, s *store.Store, title string, genreIDs ...int) *model.Book {
	t.Helper()
	book, err := s.CreateBook(context.Background(), &model.Book{
		Title: title,
		ISBN:  "9780000000000",
	}, genreIDs)
	require.NoError(t, err)
	return book
}

func createInstance(t *testing.T, s *store.Store, bookID int, status model.LoanStatus) *model.BookInstance {
	t.Helper()
	instance, err := s.CreateBookInstance(context.Background(), &model.BookInstance{
		BookID:  bookID,
		Imprint: "First edition",
		Status:  status,
	})
	require.NoError(t, err)
	return instance
}
