package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Xunop/e-library/internal/api/auth"
	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/store/db"
	"github.com/Xunop/e-library/internal/worker"
)

// 2024-01-10 is "today" for every handler test.
var testToday = model.NewDate(2024, time.January, 10)

type testServer struct {
	t      *testing.T
	store  *store.Store
	router *mux.Router
	secret []byte
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	d, err := db.NewDB(filepath.Join(t.TempDir(), "e-library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(ctx))
	s := store.NewStore(d.DB)

	clock := func() model.Date { return testToday }
	pool := worker.NewOverduePool(s, 1, clock)
	t.Cleanup(pool.Stop)

	handler := NewHandler(s, pool, config.GetDefaultOptions(), clock)
	router := mux.NewRouter()
	require.NoError(t, Server(ctx, router, handler))

	return &testServer{t: t, store: s, router: router, secret: handler.secret}
}

func (ts *testServer) createUser(username, password string, role model.Role) *model.User {
	ts.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(ts.t, err)
	user, err := ts.store.CreateUser(context.Background(), &model.User{
		Username:     username,
		Role:         role,
		PasswordHash: string(hash),
	})
	require.NoError(ts.t, err)
	return user
}

// login issues and registers a token the way sign in does.
func (ts *testServer) login(user *model.User) string {
	ts.t.Helper()
	token, err := auth.GenerateAccessToken(user.Username, user.ID, time.Now().Add(time.Hour), ts.secret)
	require.NoError(ts.t, err)
	require.NoError(ts.t, ts.store.UpsertUserAccessTokens(context.Background(), user.ID, []*model.AccessToken{{AccessToken: token}}))
	return token
}

func (ts *testServer) do(method, path string, body any, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	ErrorMessage string            `json:"error_message"`
	Fields       map[string]string `json:"fields"`
}

func (ts *testServer) createBook(title string, genreIDs ...int) *model.Book {
	ts.t.Helper()
	book, err := ts.store.CreateBook(context.Background(), &model.Book{Title: title, ISBN: "9781234567897"}, genreIDs)
	require.NoError(ts.t, err)
	return book
}

func (ts *testServer) createInstance(bookID int, status model.LoanStatus) *model.BookInstance {
	ts.t.Helper()
	instance, err := ts.store.CreateBookInstance(context.Background(), &model.BookInstance{
		BookID:  bookID,
		Imprint: "Test imprint",
		Status:  status,
	})
	require.NoError(ts.t, err)
	return instance
}

func (ts *testServer) lend(bookID int, borrower *model.User, due model.Date) *model.BookInstance {
	ts.t.Helper()
	instance, err := ts.store.CreateBookInstance(context.Background(), &model.BookInstance{
		BookID:     bookID,
		Imprint:    "Test imprint",
		Status:     model.LoanStatusOnLoan,
		BorrowerID: &borrower.ID,
		DueBack:    &due,
	})
	require.NoError(ts.t, err)
	return instance
}

func (ts *testServer) getInstance(id string) *model.BookInstance {
	ts.t.Helper()
	instance, err := ts.store.GetBookInstance(context.Background(), &model.FindBookInstance{ID: &id})
	require.NoError(ts.t, err)
	require.NotNil(ts.t, instance)
	return instance
}
