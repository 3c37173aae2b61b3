package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/media-luna/sonica/internal/logging"
	"github.com/media-luna/sonica/internal/server"
	"github.com/media-luna/sonica/internal/watcher"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP recognition API",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		p, err := buildPipeline(cfg)
		if err != nil {
			fatalf("serve: %v", err)
		}
		defer p.Index.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Tracks.Watch {
			w, err := watcher.New(cfg.Tracks.Dir, p)
			if err != nil {
				logging.Warn("serve: watcher disabled", "err", err)
			} else {
				go func() {
					if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						logging.Warn("serve: watcher stopped", "err", err)
					}
				}()
			}
		}

		if _, err := p.LoadDirectory(ctx, cfg.Tracks.Dir); err != nil {
			logging.Warn("serve: initial load failed", "err", err)
		}

		srv := &http.Server{
			Addr:    ":" + strconv.Itoa(cfg.Server.Port),
			Handler: server.New(p, cfg.Tracks.Dir).Handler(),
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Warn("serve: shutdown error", "err", err)
			}
		}()

		logging.Info("serving", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatalf("serve: %v", err)
		}
	},
}

