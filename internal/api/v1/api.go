package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/middleware"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/worker"
)

type Handler struct {
	store  *store.Store
	pool   worker.WorkPool
	today  model.Clock
	router *mux.Router

	loanMaxWeeks        int
	renewalDefaultWeeks int
	pageSize            int
	tokenTTL            time.Duration
	// For JWT
	secret []byte
}

// NewHandler is a constructor for the v1.Handler
func NewHandler(store *store.Store, pool worker.WorkPool, opts *config.Options, today model.Clock) *Handler {
	return &Handler{
		store:               store,
		pool:                pool,
		today:               today,
		loanMaxWeeks:        opts.LoanMaxWeeks,
		renewalDefaultWeeks: opts.RenewalDefaultWeeks,
		pageSize:            opts.PageSize,
		tokenTTL:            time.Duration(opts.AccessTokenHours) * time.Hour,
	}
}

// Server registers every route on router. The JWT secret is loaded, or
// generated on first start, from the system settings.
func Server(ctx context.Context, router *mux.Router, handler *Handler) error {
	sSetting, err := handler.store.GetOrUpsertSecuritySetting(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load security setting")
	}
	handler.secret = []byte(sSetting.JWTSecret)
	handler.router = router

	middleware := middleware.NewMiddleware(false)
	router.Use(middleware.RequestID)
	router.Use(middleware.HandleCORS)
	router.Use(middleware.LoggingRequest)
	router.Use(middleware.Session)
	router.Use(NewAuthInterceptor(handler.store, handler.secret).AuthenticationInterceptor)
	router.Use(authorize)

	// Catalog
	router.HandleFunc("/", handler.index).Methods(http.MethodGet).Name("index")
	router.HandleFunc("/books/", handler.listBooks).Methods(http.MethodGet).Name("books")
	router.HandleFunc("/book/{id:[0-9]+}", handler.getBook).Methods(http.MethodGet).Name("book-detail")
	router.HandleFunc("/authors/", handler.listAuthors).Methods(http.MethodGet).Name("authors")
	router.HandleFunc("/author/{id:[0-9]+}", handler.getAuthor).Methods(http.MethodGet).Name("author-detail")
	router.HandleFunc("/genres/", handler.listGenres).Methods(http.MethodGet).Name("genres")
	router.HandleFunc("/languages/", handler.listLanguages).Methods(http.MethodGet).Name("languages")

	// Loans
	router.HandleFunc("/mybooks/", handler.listMyLoans).Methods(http.MethodGet).Name("my-borrowed")
	router.HandleFunc("/on-loan/", handler.listAllLoans).Methods(http.MethodGet).Name("all-borrowed")
	router.HandleFunc("/reservations/", handler.listReservations).Methods(http.MethodGet).Name("reservations")
	router.HandleFunc("/bookinstances/", handler.listBookInstances).Methods(http.MethodGet).Name("bookinstances")
	router.HandleFunc("/book/{id:"+uuidPattern+"}/renew/", handler.renewBookForm).Methods(http.MethodGet).Name("renew-book-librarian")
	router.HandleFunc("/book/{id:"+uuidPattern+"}/renew/", handler.renewBook).Methods(http.MethodPost).Name("renew-book-librarian-post")
	router.HandleFunc("/book/{id:"+uuidPattern+"}/return/", handler.returnBookForm).Methods(http.MethodGet).Name("return-book-librarian")
	router.HandleFunc("/book/{id:"+uuidPattern+"}/return/", handler.returnBook).Methods(http.MethodPost).Name("return-book-librarian-post")
	router.HandleFunc("/book/{id:"+uuidPattern+"}/checkout/", handler.checkoutBook).Methods(http.MethodPost).Name("checkout-book")
	router.HandleFunc("/book/{id:"+uuidPattern+"}/reserve/", handler.reserveBook).Methods(http.MethodPost).Name("reserve-book")

	// Catalog edits
	router.HandleFunc("/author/create/", handler.createAuthor).Methods(http.MethodPost).Name("author-create")
	router.HandleFunc("/author/{id:[0-9]+}/update/", handler.updateAuthor).Methods(http.MethodPost).Name("author-update")
	router.HandleFunc("/author/{id:[0-9]+}/delete/", handler.deleteAuthor).Methods(http.MethodPost).Name("author-delete")
	router.HandleFunc("/book/create/", handler.createBook).Methods(http.MethodPost).Name("book-create")
	router.HandleFunc("/book/{id:[0-9]+}/update/", handler.updateBook).Methods(http.MethodPost).Name("book-update")
	router.HandleFunc("/book/{id:[0-9]+}/delete/", handler.deleteBook).Methods(http.MethodPost).Name("book-delete")
	router.HandleFunc("/bookinstance/create/", handler.createBookInstance).Methods(http.MethodPost).Name("bookinstance-create")
	router.HandleFunc("/bookinstance/{id:"+uuidPattern+"}/update/", handler.updateBookInstance).Methods(http.MethodPost).Name("bookinstance-update")
	router.HandleFunc("/bookinstance/{id:"+uuidPattern+"}/delete/", handler.deleteBookInstance).Methods(http.MethodPost).Name("bookinstance-delete")
	router.HandleFunc("/genre/create/", handler.createGenre).Methods(http.MethodPost).Name("genre-create")
	router.HandleFunc("/language/create/", handler.createLanguage).Methods(http.MethodPost).Name("language-create")

	// Accounts
	router.HandleFunc("/accounts/signup/", handler.signUp).Methods(http.MethodPost).Name("signup")
	router.HandleFunc("/accounts/signin/", handler.signIn).Methods(http.MethodPost).Name("signin")
	router.HandleFunc("/accounts/signout/", handler.signOut).Methods(http.MethodPost).Name("signout")
	router.HandleFunc("/accounts/users/", handler.listUsers).Methods(http.MethodGet).Name("users")
	router.HandleFunc("/accounts/users/{id:[0-9]+}/role/", handler.setUserRole).Methods(http.MethodPost).Name("user-role")

	// Jobs
	router.HandleFunc("/jobs/overdue-scan/", handler.enqueueOverdueScan).Methods(http.MethodPost).Name("overdue-scan")
	router.HandleFunc("/jobs/{id:[0-9]+}", handler.getJob).Methods(http.MethodGet).Name("job-detail")

	router.Methods(http.MethodOptions)
	return nil
}
