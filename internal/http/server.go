package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/courier/internal/observability/logger"
)

// shutdownGrace es cuánto esperamos a que drenen los requests en vuelo.
const shutdownGrace = 10 * time.Second

// ServerConfig agrupa los parámetros del servidor HTTP.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Serve levanta el servidor y lo apaga de forma ordenada cuando el
// contexto se cancela. Bloquea hasta que el servidor termina.
func Serve(ctx context.Context, cfg ServerConfig, handler stdhttp.Handler) error {
	srv := &stdhttp.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L().Info("http server listening", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.L().Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
