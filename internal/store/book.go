package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
)

func (s *Store) GetBook(ctx context.Context, find *model.FindBook) (*model.Book, error) {
	if find.ID != nil {
		if cache, ok := s.bookCache.Load(*find.ID); ok {
			return cache.(*model.Book), nil
		}
	}

	list, err := s.ListBooks(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	book := list[0]
	s.bookCache.Store(book.ID, book)
	return book, nil
}

func (s *Store) ListBooks(ctx context.Context, find *model.FindBook) ([]*model.Book, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "book.id = ?"), append(args, *v)
	}
	if v := find.AuthorID; v != nil {
		where, args = append(where, "book.author_id = ?"), append(args, *v)
	}
	if v := find.TitleContains; v != nil {
		where, args = append(where, "instr(lower(book.title), lower(?)) > 0"), append(args, *v)
	}

	query := `
		SELECT
			book.id,
			book.title,
			book.author_id,
			book.summary,
			book.isbn,
			book.language_id,
			COALESCE(author.last_name || ', ' || author.first_name, ''),
			COALESCE(language.name, ''),
			COALESCE((
				SELECT display_genre(genre.id, genre.name)
				FROM book_genre_link
				JOIN genre ON genre.id = book_genre_link.genre_id
				WHERE book_genre_link.book_id = book.id
			), '')
		FROM book
		LEFT JOIN author ON author.id = book.author_id
		LEFT JOIN language ON language.id = book.language_id
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY book.title, book.id` + limitOffset(find.Limit, find.Offset)

	log.Debug("SQL query", zap.String("query", query), zap.Any("args", args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("Failed to query books", zap.Error(err))
		return nil, errors.Wrap(err, "failed to query books")
	}
	defer rows.Close()

	list := make([]*model.Book, 0)
	for rows.Next() {
		var book model.Book
		var authorID, languageID sql.NullInt64
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&authorID,
			&book.Summary,
			&book.ISBN,
			&languageID,
			&book.AuthorName,
			&book.LanguageName,
			&book.DisplayGenre,
		); err != nil {
			return nil, err
		}
		if authorID.Valid {
			v := int(authorID.Int64)
			book.AuthorID = &v
		}
		if languageID.Valid {
			v := int(languageID.Int64)
			book.LanguageID = &v
		}
		list = append(list, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateBook inserts the book and its genre links in one transaction.
func (s *Store) CreateBook(ctx context.Context, create *model.Book, genreIDs []int) (*model.Book, error) {
	s.dbLock.Lock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.dbLock.Unlock()
		return nil, err
	}

	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO book (title, author_id, summary, isbn, language_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		create.Title, intArg(create.AuthorID), create.Summary, create.ISBN, intArg(create.LanguageID),
	).Scan(&id)
	if err == nil {
		err = linkGenres(ctx, tx, id, genreIDs)
	}
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		tx.Rollback()
		s.dbLock.Unlock()
		return nil, errors.Wrap(mapConstraintError(err), "failed to create book")
	}
	s.dbLock.Unlock()

	return s.GetBook(ctx, &model.FindBook{ID: &id})
}

// UpdateBook replaces the book's fields and its genre set.
func (s *Store) UpdateBook(ctx context.Context, update *model.Book, genreIDs []int) (*model.Book, error) {
	s.dbLock.Lock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.dbLock.Unlock()
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE book
		SET title = ?, author_id = ?, summary = ?, isbn = ?, language_id = ?
		WHERE id = ?`,
		update.Title, intArg(update.AuthorID), update.Summary, update.ISBN, intArg(update.LanguageID), update.ID,
	)
	if err == nil {
		if n, _ := result.RowsAffected(); n == 0 {
			err = ErrNotFound
		}
	}
	if err == nil {
		_, err = tx.ExecContext(ctx, "DELETE FROM book_genre_link WHERE book_id = ?", update.ID)
	}
	if err == nil {
		err = linkGenres(ctx, tx, update.ID, genreIDs)
	}
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		tx.Rollback()
		s.dbLock.Unlock()
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(mapConstraintError(err), "failed to update book")
	}
	s.bookCache.Delete(update.ID)
	s.dbLock.Unlock()

	return s.GetBook(ctx, &model.FindBook{ID: &update.ID})
}

// DeleteBook refuses with ErrConflict while copies of the book exist.
func (s *Store) DeleteBook(ctx context.Context, id int) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM book WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(mapConstraintError(err), "failed to delete book")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.bookCache.Delete(id)
	return nil
}

func linkGenres(ctx context.Context, tx *sql.Tx, bookID int, genreIDs []int) error {
	for _, genreID := range genreIDs {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO book_genre_link (book_id, genre_id) VALUES (?, ?)", bookID, genreID); err != nil {
			return err
		}
	}
	return nil
}
