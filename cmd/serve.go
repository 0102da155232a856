package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-fin-novel-kit/internal/builder"
	"github.com/shouni/go-fin-novel-kit/internal/server"
)

const shutdownTimeout = 10 * time.Second

var servePort string

// serveCmd は HTTP API サーバーを起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "ビジュアルノベル生成APIを起動するのだ。",
	RunE:  serveCommand,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "待ち受けポート（未指定なら PORT）なのだ。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	setupLogger(os.Stdout, cfg.LogLevel, true)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := builder.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("クライアントのクローズに失敗しました", "error", err)
		}
	}()

	router := server.NewRouter(server.NewHandler(app.Orchestrator), server.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		MediaDir:       app.MediaDir,
	})
	// 生成は長時間かかるので WriteTimeout は設定しないのだ
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting server", "port", cfg.Port, "media_dir", app.MediaDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}
