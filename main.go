package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/scheduler"
	"github.com/Xunop/e-library/internal/server"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/store/db"
	"github.com/Xunop/e-library/internal/version"
	"github.com/Xunop/e-library/internal/worker"
)

const (
	greetingBanner = `
███████       ██      ██ ██████  ██████   █████  ██████  ██    ██
██            ██      ██ ██   ██ ██   ██ ██   ██ ██   ██  ██  ██
█████   █████ ██      ██ ██████  ██████  ███████ ██████    ████
██            ██      ██ ██   ██ ██   ██ ██   ██ ██   ██    ██
███████       ███████ ██ ██████  ██   ██ ██   ██ ██   ██    ██
`
)

var (
	configFile  string
	databaseURL string
	host        string
	port        int
	data        string
	seed        bool

	rootCmd = &cobra.Command{
		Use:     "e-library",
		Short:   "E-Library is a library catalog with lending",
		Version: version.GetCurrentVersion(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server, the worker pool and the overdue scan schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()
			if seed {
				if err := d.Seed(cmd.Context()); err != nil {
					return err
				}
				log.Info("Database seeded")
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (toml, yaml or json)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "dsn", "", "sqlite database path, defaults to <data>/e-library.db")
	rootCmd.PersistentFlags().StringVar(&data, "data", "", "data directory")
	serveCmd.Flags().StringVar(&host, "host", "", "host to listen on")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on")
	migrateCmd.Flags().BoolVar(&seed, "seed", false, "load the demo catalog after migrating")

	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// loadConfig layers the command line flags over the environment, so they
// win over the config file and go through the same data dir resolution.
func loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	overrides := map[string]string{
		"data": data,
		"dsn":  databaseURL,
		"host": host,
		"port": strconv.Itoa(port),
	}
	envKeys := map[string]string{
		"data": "ELIBRARY_DATA",
		"dsn":  "ELIBRARY_DSN_URI",
		"host": "ELIBRARY_HOST",
		"port": "ELIBRARY_PORT",
	}
	for flag, value := range overrides {
		if flags.Changed(flag) {
			if err := os.Setenv(envKeys[flag], value); err != nil {
				return err
			}
		}
	}

	var err error
	if configFile != "" {
		_, err = config.ParseFile(configFile)
	} else {
		_, err = config.GetConfig()
	}
	if err != nil {
		return err
	}

	log.Logger = log.NewLogger()
	return nil
}

func openDB(ctx context.Context) (*db.DB, error) {
	d, err := db.NewDB(config.Opts.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to database")
	}
	if err := d.Migrate(ctx); err != nil {
		d.Close()
		return nil, errors.Wrap(err, "error migrating database")
	}
	return d, nil
}

func serve(ctx context.Context) error {
	opts := config.Opts
	loc, err := opts.Location()
	if err != nil {
		return err
	}

	d, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	s := store.NewStore(d.DB)
	if err := s.Ping(ctx); err != nil {
		return errors.Wrap(err, "error pinging database")
	}

	today := model.NewClock(loc, nil)
	pool := worker.NewOverduePool(s, opts.WorkerPoolSize, today)
	defer pool.Stop()

	sched, err := scheduler.New(opts.OverdueScanCron, loc, s, pool)
	if err != nil {
		return err
	}
	srv, err := server.NewServer(ctx, s, pool, opts, today)
	if err != nil {
		return err
	}

	fmt.Print(greetingBanner)
	log.Info("E-Library started",
		zap.String("version", version.GetCurrentVersion()),
		zap.String("addr", opts.Addr()),
		zap.String("dsn", opts.DSN),
		zap.String("time_zone", loc.String()),
	)

	g, gctx := errgroup.WithContext(ctx)
	sched.Start()
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("HTTP server did not shut down cleanly", zap.Error(err))
		}
		return sched.Stop(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	defer log.Logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		log.Error("Command failed", zap.Error(err))
		os.Exit(1)
	}
}
