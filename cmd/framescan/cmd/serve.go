package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/scanner"
	"github.com/MeKo-Tech/framescan/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the barcode scanning API",
	Long: `Start an HTTP server that scans uploaded frames and documents.

The server provides the following endpoints:
  POST /scan       - Scan an uploaded frame (multipart field "frame")
  POST /scan/pdf   - Scan the images of an uploaded PDF (multipart field "pdf")
  GET  /ws/frames  - WebSocket stream of frames, one reply per frame
  GET  /formats    - List supported barcode formats
  GET  /health     - Health check endpoint
  GET  /metrics    - Prometheus metrics

Examples:
  framescan serve
  framescan serve --port 8080
  framescan serve --host 0.0.0.0 --port 3000 --formats qr,datamatrix`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := applyServeFlags(cmd, cfg); err != nil {
			return err
		}
		serverConfig, err := serverConfigFrom(cfg)
		if err != nil {
			return err
		}

		processor := pipeline.NewProcessor(
			pipeline.WithCache(scanner.NewCache(barcode.NewEngine(cfg.ToEngineOptions()))),
			pipeline.WithLogger(slog.Default()),
		)
		scanServer, err := server.NewServer(serverConfig, processor)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		mux := http.NewServeMux()
		scanServer.SetupRoutes(mux)

		timeout := time.Duration(cfg.Server.TimeoutSec) * time.Second
		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       timeout,
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		go func() {
			slog.Info("Starting barcode server", "host", cfg.Server.Host, "port", cfg.Server.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		slog.Info("Starting graceful shutdown", "timeout", shutdownTimeout)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
			return err
		}
		slog.Info("Graceful shutdown completed")
		return nil
	},
}

// applyServeFlags overlays explicitly set flags on the loaded configuration.
func applyServeFlags(c *cobra.Command, cfg *config.Config) error {
	flags := c.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("cors-origin") {
		cfg.Server.CORSOrigin, _ = flags.GetString("cors-origin")
	}
	if flags.Changed("max-upload-size") {
		cfg.Server.MaxUploadMB, _ = flags.GetInt("max-upload-size")
	}
	if flags.Changed("timeout") {
		cfg.Server.TimeoutSec, _ = flags.GetInt("timeout")
	}
	if flags.Changed("shutdown-timeout") {
		cfg.Server.ShutdownTimeout, _ = flags.GetInt("shutdown-timeout")
	}
	if flags.Changed("rate-limit") {
		cfg.Server.RateLimitPerMinute, _ = flags.GetInt("rate-limit")
	}
	if flags.Changed("max-upload-per-day") {
		cfg.Server.MaxUploadMBPerDay, _ = flags.GetInt("max-upload-per-day")
	}
	if flags.Changed("formats") {
		cfg.Scanner.Formats, _ = flags.GetStringSlice("formats")
	}
	if flags.Changed("check-inverted") {
		cfg.Scanner.CheckInverted, _ = flags.GetBool("check-inverted")
	}
	if flags.Changed("try-harder") {
		cfg.Scanner.TryHarder, _ = flags.GetBool("try-harder")
	}
	if flags.Changed("overlay-color") {
		cfg.Output.OverlayColor, _ = flags.GetString("overlay-color")
	}
	return cfg.Validate()
}

// serverConfigFrom converts the loaded configuration into server settings.
func serverConfigFrom(cfg *config.Config) (server.Config, error) {
	formats, err := cfg.FormatSet()
	if err != nil {
		return server.Config{}, err
	}
	provider, err := cfg.OrientationProvider()
	if err != nil {
		return server.Config{}, err
	}
	return server.Config{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		CORSOrigin:         cfg.Server.CORSOrigin,
		MaxUploadMB:        int64(cfg.Server.MaxUploadMB),
		TimeoutSec:         cfg.Server.TimeoutSec,
		Formats:            formats,
		CheckInverted:      cfg.Scanner.CheckInverted,
		Orientation:        provider,
		OverlayColor:       cfg.Output.OverlayColor,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		MaxUploadMBPerDay:  int64(cfg.Server.MaxUploadMBPerDay),
		Logger:             slog.Default(),
	}, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 20, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().Int("rate-limit", 0, "maximum frames per minute per client (0 = unlimited)")
	serveCmd.Flags().Int("max-upload-per-day", 0, "maximum upload MB per day per client (0 = unlimited)")
	// Scanner defaults for requests that do not name their own
	serveCmd.Flags().StringSlice("formats", []string{"all"}, "default barcode formats")
	serveCmd.Flags().Bool("check-inverted", false, "scan the colour-inverted frame by default")
	serveCmd.Flags().Bool("try-harder", false, "spend more time looking for barcodes")
	serveCmd.Flags().String("overlay-color", "#FF0000", "overlay polygon color (hex)")
}
