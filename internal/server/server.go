package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	v1 "github.com/Xunop/e-library/internal/api/v1"
	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/version"
	"github.com/Xunop/e-library/internal/worker"
)

type Server struct {
	httpServer *http.Server
}

// NewServer wires the routes; nothing listens until Start.
func NewServer(ctx context.Context, store *store.Store, pool worker.WorkPool, opts *config.Options, today model.Clock) (*Server, error) {
	handler, err := setupHandler(ctx, store, pool, opts, today)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.httpServer.Addr)
	}
	return s.Serve(listener)
}

func (s *Server) Serve(listener net.Listener) error {
	log.Info("Starting HTTP server", zap.String("addr", listener.Addr().String()))
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "HTTP server error")
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func setupHandler(ctx context.Context, store *store.Store, pool worker.WorkPool, opts *config.Options, today model.Clock) (http.Handler, error) {
	router := mux.NewRouter()

	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Error("Database connection error", zap.Error(err))
			http.Error(w, "Database Connection Error", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet).Name("healthcheck")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(version.GetCurrentVersion()))
	}).Methods(http.MethodGet).Name("version")

	apiHandler := v1.NewHandler(store, pool, opts, today)
	if err := v1.Server(ctx, router, apiHandler); err != nil {
		return nil, err
	}
	return router, nil
}
