package v1

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/validator"
)

func (h *Handler) createAuthor(w http.ResponseWriter, r *http.Request) {
	var create model.AuthorRequest
	if err := decodeJSON(r, &create); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateAuthorRequest(&create); err != nil {
		handleError(w, r, err)
		return
	}

	author, err := h.store.CreateAuthor(r.Context(), &model.Author{
		FirstName:   create.FirstName,
		LastName:    create.LastName,
		DateOfBirth: create.DateOfBirth,
		DateOfDeath: create.DateOfDeath,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Author created", zap.Int("author_id", author.ID))
	response.Created(w, r, author)
}

func (h *Handler) updateAuthor(w http.ResponseWriter, r *http.Request) {
	var update model.AuthorRequest
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateAuthorRequest(&update); err != nil {
		handleError(w, r, err)
		return
	}

	author, err := h.store.UpdateAuthor(r.Context(), &model.Author{
		ID:          request.RouteIntParam(r, "id"),
		FirstName:   update.FirstName,
		LastName:    update.LastName,
		DateOfBirth: update.DateOfBirth,
		DateOfDeath: update.DateOfDeath,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.OK(w, r, author)
}

func (h *Handler) deleteAuthor(w http.ResponseWriter, r *http.Request) {
	id := request.RouteIntParam(r, "id")
	if err := h.store.DeleteAuthor(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Author deleted", zap.Int("author_id", id))
	response.NoContent(w, r)
}

func bookFromRequest(req *model.BookRequest) *model.Book {
	return &model.Book{
		Title:      req.Title,
		AuthorID:   req.AuthorID,
		Summary:    req.Summary,
		ISBN:       req.ISBN,
		LanguageID: req.LanguageID,
	}
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	var create model.BookRequest
	if err := decodeJSON(r, &create); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateBookRequest(r.Context(), h.store, &create); err != nil {
		handleError(w, r, err)
		return
	}

	book, err := h.store.CreateBook(r.Context(), bookFromRequest(&create), create.GenreIDs)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Book created", zap.Int("book_id", book.ID), zap.String("title", book.Title))
	response.Created(w, r, book)
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	var update model.BookRequest
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateBookRequest(r.Context(), h.store, &update); err != nil {
		handleError(w, r, err)
		return
	}

	book := bookFromRequest(&update)
	book.ID = request.RouteIntParam(r, "id")
	updated, err := h.store.UpdateBook(r.Context(), book, update.GenreIDs)
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.OK(w, r, updated)
}

// deleteBook answers 409 while copies of the book still exist.
func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	id := request.RouteIntParam(r, "id")
	if err := h.store.DeleteBook(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Book deleted", zap.Int("book_id", id))
	response.NoContent(w, r)
}

func (h *Handler) createBookInstance(w http.ResponseWriter, r *http.Request) {
	var create model.BookInstanceRequest
	if err := decodeJSON(r, &create); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateBookInstanceRequest(r.Context(), h.store, &create); err != nil {
		handleError(w, r, err)
		return
	}

	instance, err := h.store.CreateBookInstance(r.Context(), &model.BookInstance{
		BookID:  create.BookID,
		Imprint: create.Imprint,
		Status:  create.Status,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Book instance created", zap.String("instance_id", instance.ID), zap.Int("book_id", instance.BookID))
	response.Created(w, r, instance)
}

// updateBookInstance edits the book and imprint only. Status, borrower and
// due date belong to the lending actions.
func (h *Handler) updateBookInstance(w http.ResponseWriter, r *http.Request) {
	var update model.BookInstanceRequest
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateBookInstanceRequest(r.Context(), h.store, &update); err != nil {
		handleError(w, r, err)
		return
	}

	instance, err := h.store.UpdateBookInstance(r.Context(), request.RouteStringParam(r, "id"), func(bi *model.BookInstance) error {
		bi.BookID = update.BookID
		bi.Imprint = update.Imprint
		return nil
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.OK(w, r, instance)
}

func (h *Handler) deleteBookInstance(w http.ResponseWriter, r *http.Request) {
	id := request.RouteStringParam(r, "id")
	if err := h.store.DeleteBookInstance(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("Book instance deleted", zap.String("instance_id", id))
	response.NoContent(w, r)
}

func (h *Handler) createGenre(w http.ResponseWriter, r *http.Request) {
	var create model.GenreRequest
	if err := decodeJSON(r, &create); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateGenreRequest(r.Context(), h.store, &create); err != nil {
		handleError(w, r, err)
		return
	}

	genre, err := h.store.CreateGenre(r.Context(), &model.Genre{Name: create.Name})
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.Created(w, r, genre)
}

func (h *Handler) createLanguage(w http.ResponseWriter, r *http.Request) {
	var create model.LanguageRequest
	if err := decodeJSON(r, &create); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateLanguageRequest(r.Context(), h.store, &create); err != nil {
		handleError(w, r, err)
		return
	}

	language, err := h.store.CreateLanguage(r.Context(), &model.Language{Name: create.Name})
	if err != nil {
		handleError(w, r, err)
		return
	}
	response.Created(w, r, language)
}
