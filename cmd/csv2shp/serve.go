// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/csv2shp/internal/credentials"
	"github.com/pdiddy/csv2shp/internal/crs"
	"github.com/pdiddy/csv2shp/internal/logging"
	"github.com/pdiddy/csv2shp/internal/observability"
	"github.com/pdiddy/csv2shp/internal/webform"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion form over HTTP",
	Long: `Serve offers the conversion form in a browser: upload a table, enter the
prefix and batch, pick a naming tag, and download the archive. Status lines
accumulate under the form. Prometheus metrics are exposed at /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :9595)")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	log := newLogger(cfg.Log)

	ref, err := crs.Parse(cfg.Conversion.CRS)
	if err != nil {
		return fmt.Errorf("config crs: %w", err)
	}
	accounts, err := credentials.Load(cfg.Serve.AccountsFile)
	if err != nil {
		return err
	}
	metrics, err := observability.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	srv, err := webform.New(webform.Config{
		DataDir:        cfg.Serve.DataDir,
		NamingTags:     cfg.Conversion.NamingTags,
		CRS:            ref,
		WorkDir:        cfg.Conversion.WorkDir,
		MaxUploadBytes: int64(cfg.Serve.MaxUploadMB) << 20,
		MaxArchives:    cfg.Serve.MaxArchives,
		Accounts:       accounts,
	}, log, metrics)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- httpSrv.ListenAndServe() }()

	auth := "off"
	if len(accounts) > 0 {
		auth = fmt.Sprintf("%d account(s)", len(accounts))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "csv2shp serving on %s (data %s, auth %s)\n", cfg.Serve.Addr, cfg.Serve.DataDir, auth)
	log.Info(ctx, "server started", logging.String("addr", cfg.Serve.Addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}
