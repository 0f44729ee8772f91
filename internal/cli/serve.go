package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/tm-roles/internal/logger"
	"github.com/pfrederiksen/tm-roles/internal/server"
	"github.com/pfrederiksen/tm-roles/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr         string
		syncInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(a.svc, a.metrics, server.Options{
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Club:           a.cfg.Club.Name,
			})

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(ctx, addr)
			})
			if syncInterval > 0 {
				g.Go(func() error {
					syncLoop(ctx, a.svc, syncInterval)
					return nil
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, or :$PORT)")
	cmd.Flags().DurationVar(&syncInterval, "sync-interval", 0, "Sync agendas periodically (0 disables)")
	return cmd
}

// syncLoop runs a sync every interval until ctx is done. Failures are logged and
// the loop carries on.
func syncLoop(ctx context.Context, svc *service.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.SyncAgendas(ctx, time.Time{}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Scheduled sync failed", logger.Fields{"error": err.Error()})
			}
		}
	}
}
