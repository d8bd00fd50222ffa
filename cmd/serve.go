package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/rnc-cli/internal/api"
)

var servePort int

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the RNC lookup API",
	Long:  "Serves GET /company/rnc/{rnc}. Send SIGHUP to reload the dataset without restarting.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := newApp(ctx, true)
		defer a.Close()

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(a),
			ReadHeaderTimeout: 10 * time.Second,
		}

		return runServer(ctx, srv, a, hup)
	},
}

func buildRouter(a *app) http.Handler {
	return api.NewRouter(api.Options{
		Resolver:    a.Resolver,
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		Index:       a.Holder,
		Breaker:     func() string { return a.Guard.BreakerState().String() },
	})
}

// runServer serves until ctx ends, reloading the dataset on each value from
// reload.
func runServer(ctx context.Context, srv *http.Server, a *app, reload <-chan os.Signal) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	g.Go(func() error {
		reloadLoop(gctx, a, reload)
		return nil
	})

	return g.Wait()
}

func reloadLoop(ctx context.Context, a *app, reload <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
			idx, err := a.Holder.Reload(ctx)
			if err != nil {
				zap.L().Error("dataset reload failed, keeping current index", zap.Error(err))
				continue
			}
			a.Metrics.SetIndexRecords(idx.Len())
			zap.L().Info("dataset reloaded", zap.Int("records", idx.Len()))
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
