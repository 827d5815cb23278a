package v1

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xunop/e-library/internal/api/auth"
	"github.com/Xunop/e-library/internal/model"
)

func TestIndexCountsVisits(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	fantasy, err := ts.store.CreateGenre(ctx, &model.Genre{Name: "Science Fiction"})
	require.NoError(t, err)
	book := ts.createBook("How to Train Your Dragon", fantasy.ID)
	ts.createBook("Plain Title")
	ts.createInstance(book.ID, model.LoanStatusAvailable)
	ts.createInstance(book.ID, model.LoanStatusMaintenance)

	rec := ts.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	home := decode[model.Home](t, rec)
	assert.Equal(t, 1, home.NumVisits)
	assert.Equal(t, 2, home.NumBooks)
	assert.Equal(t, 2, home.NumInstances)
	assert.Equal(t, 1, home.NumInstancesAvailable)
	assert.Equal(t, 1, home.NumFictionGenres)
	assert.Equal(t, 1, home.NumDragonBooks)

	var session *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookieName {
			session = cookie
		}
	}
	require.NotNil(t, session)

	for want := 2; want <= 3; want++ {
		rec = ts.do(http.MethodGet, "/", nil, "", session)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, decode[model.Home](t, rec).NumVisits)
	}

	// Another browser starts over.
	rec = ts.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, 1, decode[model.Home](t, rec).NumVisits)
}

func TestCatalogEdits(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(ts.createUser("librarian", "password", model.RoleLibrarian))

	rec := ts.do(http.MethodPost, "/author/create/", map[string]string{"first_name": "Ursula", "last_name": "Le Guin", "date_of_birth": "1929-10-21"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	author := decode[model.Author](t, rec)

	rec = ts.do(http.MethodPost, "/author/create/", map[string]string{"first_name": "No", "last_name": "Body", "date_of_birth": "2000-01-02", "date_of_death": "2000-01-01"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Fields, "date_of_death")

	rec = ts.do(http.MethodPost, "/genre/create/", map[string]string{"name": "Fantasy"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	genre := decode[model.Genre](t, rec)
	rec = ts.do(http.MethodPost, "/genre/create/", map[string]string{"name": "FANTASY"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/language/create/", map[string]string{"name": "English"}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	language := decode[model.Language](t, rec)

	rec = ts.do(http.MethodPost, "/book/create/", map[string]any{
		"title":       "A Wizard of Earthsea",
		"author_id":   author.ID,
		"summary":     "A boy becomes a mage.",
		"isbn":        "9780547773742",
		"genre_ids":   []int{genre.ID},
		"language_id": language.ID,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	book := decode[model.Book](t, rec)
	assert.Equal(t, "Fantasy", book.DisplayGenre)
	assert.Equal(t, "Le Guin, Ursula", book.AuthorName)

	rec = ts.do(http.MethodPost, "/book/create/", map[string]any{"title": "Bad", "isbn": "123", "genre_ids": []int{999}}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Fields, "isbn")

	rec = ts.do(http.MethodPost, "/bookinstance/create/", map[string]any{"book_id": book.ID, "imprint": "Parnassus, 1968", "status": "available"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	instance := decode[model.BookInstance](t, rec)
	assert.True(t, len(instance.ID) == 36)

	rec = ts.do(http.MethodPost, "/bookinstance/"+instance.ID+"/update/", map[string]any{"book_id": book.ID, "imprint": "Puffin, 1971", "status": "on_loan"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPost, "/bookinstance/"+instance.ID+"/update/", map[string]any{"book_id": book.ID, "imprint": "Puffin, 1971"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Puffin, 1971", decode[model.BookInstance](t, rec).Imprint)
	assert.Equal(t, model.LoanStatusAvailable, ts.getInstance(instance.ID).Status)

	rec = ts.do(http.MethodGet, "/book/"+itoa(book.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[model.Book](t, rec)
	require.Len(t, detail.Instances, 1)
	require.Len(t, detail.Genres, 1)
	assert.Equal(t, "Fantasy", detail.Genres[0].Name)

	rec = ts.do(http.MethodGet, "/author/"+itoa(author.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[model.Author](t, rec).Books, 1)
	derived := decode[struct {
		DisplayName string `json:"display_name"`
		Lifespan    string `json:"lifespan"`
	}](t, rec)
	assert.Equal(t, "Le Guin, Ursula", derived.DisplayName)
	assert.Equal(t, "1929-10-21 -", derived.Lifespan)

	rec = ts.do(http.MethodGet, "/authors/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"display_name":"Le Guin, Ursula"`)

	rec = ts.do(http.MethodPost, "/book/"+itoa(book.ID)+"/update/", map[string]any{"title": "Earthsea", "isbn": "9780547773742"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Book](t, rec)
	assert.Equal(t, "Earthsea", updated.Title)
	assert.Nil(t, updated.AuthorID)
	assert.Empty(t, updated.DisplayGenre)

	// Copies keep the book alive.
	rec = ts.do(http.MethodPost, "/book/"+itoa(book.ID)+"/delete/", nil, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/bookinstance/"+instance.ID+"/delete/", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodPost, "/book/"+itoa(book.ID)+"/delete/", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodGet, "/book/"+itoa(book.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/author/"+itoa(author.ID)+"/update/", map[string]string{"first_name": "Ursula K.", "last_name": "Le Guin"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ursula K.", decode[model.Author](t, rec).FirstName)
	rec = ts.do(http.MethodPost, "/author/"+itoa(author.ID)+"/delete/", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodPost, "/author/"+itoa(author.ID)+"/delete/", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogEditsForbidden(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(ts.createUser("member", "password", model.RoleMember))

	rec := ts.do(http.MethodPost, "/author/create/", map[string]string{"first_name": "A", "last_name": "B"}, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(http.MethodPost, "/genre/create/", map[string]string{"name": "Horror"}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	genres, err := ts.store.ListGenres(context.Background(), &model.FindGenre{})
	require.NoError(t, err)
	assert.Empty(t, genres)
}

func TestPublicListings(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 12; i++ {
		ts.createBook("Book " + itoa(i))
	}

	rec := ts.do(http.MethodGet, "/books/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[model.Page[*model.Book]](t, rec)
	assert.Len(t, page.Items, 10)
	assert.True(t, page.HasNext)

	rec = ts.do(http.MethodGet, "/books/?page=2", nil, "")
	page = decode[model.Page[*model.Book]](t, rec)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasNext)

	// An absurd page number falls back to the first page.
	rec = ts.do(http.MethodGet, "/books/?page=1000000000000000000", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[model.Page[*model.Book]](t, rec)
	assert.Equal(t, 1, page.Page)
	assert.True(t, page.HasNext)

	for _, path := range []string{"/authors/", "/genres/", "/languages/"} {
		assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, path, nil, "").Code, path)
	}
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/author/42", nil, "").Code)
}
