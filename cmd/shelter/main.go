package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/shelter/internal/config"
	"github.com/deppfellow/shelter/internal/handler"
	"github.com/deppfellow/shelter/internal/logger"
	"github.com/deppfellow/shelter/internal/repository"
	"github.com/deppfellow/shelter/internal/router"
	"github.com/deppfellow/shelter/internal/server"
	"github.com/deppfellow/shelter/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownTimeout = 30 * time.Second

// app is everything a command needs once config is loaded and MongoDB is
// reachable.
type app struct {
	server   *server.Server
	services *service.Services
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "shelter",
		Short: "Shelter - animal outcome records on MongoDB",
		Long: `Shelter stores animal outcome records in the "animals" collection of the
"AAC" MongoDB database. It serves them over HTTP and offers the same
operations from the command line. The connection string is read from ATLAS_URI.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		createCmd(),
		readCmd(),
		updateCmd(),
		deleteCmd(),
		analyticsCmd(),
		exportCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "shelter %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config, builds the logger writing to logOut and connects
// to MongoDB. The caller must call server.Close.
func bootstrap(logOut io.Writer) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLogger(logOut, cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, err
	}

	repos := repository.NewRepositories(srv)

	return &app{
		server:   srv,
		services: service.NewServices(srv, repos),
	}, nil
}

// withApp runs fn against a connected app and closes it afterwards. Logs go
// to stderr so stdout carries only the command's JSON output.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := bootstrap(os.Stderr)
	if err != nil {
		return err
	}
	defer closeResources(a.server, a.server.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(a.server.Logger.WithContext(ctx), a)
}

// closeResources closes c and logs a failure; the caller is already exiting.
func closeResources(c io.Closer, log *zerolog.Logger) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close server resources")
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(os.Stdout)
			if err != nil {
				return err
			}
			return serve(a)
		},
	}
}

func serve(a *app) error {
	log := a.server.Logger

	handlers := handler.NewHandlers(a.server, a.services)
	a.server.SetupHTTPServer(router.NewRouter(a.server, handlers))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			closeResources(a.server, log)
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
