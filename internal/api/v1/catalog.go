package v1

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
)

// index answers the catalog counts and how often this session has seen them.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.GetCatalogCounts(r.Context())
	if err != nil {
		response.ServerError(w, r, err)
		return
	}

	visits, err := h.store.IncrementSessionVisits(r.Context(), request.GetSessionID(r))
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	log.Debug("Home visited", zap.String("session_id", request.GetSessionID(r)), zap.Int("num_visits", visits))

	response.OK(w, r, &model.Home{CatalogCounts: counts, NumVisits: visits})
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	page, size, limit, offset := h.pagination(r)
	find := &model.FindBook{Limit: &limit, Offset: &offset}
	if title := request.QueryStringParam(r, "title", ""); title != "" {
		find.TitleContains = &title
	}
	if authorID := request.QueryIntParam(r, "author", 0); authorID > 0 {
		find.AuthorID = &authorID
	}

	books, err := h.store.ListBooks(r.Context(), find)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, model.NewPage(books, page, size))
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	id := request.RouteIntParam(r, "id")
	cached, err := h.store.GetBook(r.Context(), &model.FindBook{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if cached == nil {
		response.NotFound(w, r)
		return
	}

	// The store hands out its cached value, decorate a copy.
	book := *cached
	if book.Genres, err = h.store.ListBookGenres(r.Context(), id); err != nil {
		response.ServerError(w, r, err)
		return
	}
	if book.Instances, err = h.store.ListBookInstances(r.Context(), &model.FindBookInstance{BookID: &id}); err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, &book)
}

func (h *Handler) listAuthors(w http.ResponseWriter, r *http.Request) {
	page, size, limit, offset := h.pagination(r)
	authors, err := h.store.ListAuthors(r.Context(), &model.FindAuthor{Limit: &limit, Offset: &offset})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, model.NewPage(authors, page, size))
}

func (h *Handler) getAuthor(w http.ResponseWriter, r *http.Request) {
	id := request.RouteIntParam(r, "id")
	author, err := h.store.GetAuthor(r.Context(), &model.FindAuthor{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if author == nil {
		response.NotFound(w, r)
		return
	}

	if author.Books, err = h.store.ListBooks(r.Context(), &model.FindBook{AuthorID: &id}); err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, author)
}

func (h *Handler) listGenres(w http.ResponseWriter, r *http.Request) {
	find := &model.FindGenre{}
	if name := request.QueryStringParam(r, "name", ""); name != "" {
		find.NameContains = &name
	}
	genres, err := h.store.ListGenres(r.Context(), find)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, genres)
}

func (h *Handler) listLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.store.ListLanguages(r.Context(), &model.FindLanguage{})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, languages)
}
