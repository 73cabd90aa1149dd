package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Polyte/OMS-OCR/internal/api"
	"github.com/Polyte/OMS-OCR/internal/audit"
	"github.com/Polyte/OMS-OCR/internal/config"
	"github.com/Polyte/OMS-OCR/internal/extract"
	"github.com/Polyte/OMS-OCR/internal/extract/pdftext"
	"github.com/Polyte/OMS-OCR/internal/extract/tesseract"
	"github.com/Polyte/OMS-OCR/internal/logging"
	"github.com/Polyte/OMS-OCR/internal/pipeline"
	"github.com/Polyte/OMS-OCR/internal/storage"
	"github.com/Polyte/OMS-OCR/internal/upload"
	"github.com/labstack/echo/v4"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config.yaml"
	}
	configPath := flag.String("config", defaultPath, "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepOrphans(ctx, fileStore, cfg.Storage, logger)

	ocr, err := newRecognizer(cfg.OCR, logger)
	if err != nil {
		return err
	}
	extractor := extract.NewExtractor(ocr, pdftext.NewReader(),
		extract.WithLanguage(cfg.OCR.Language),
		extract.WithLogger(logger),
	)

	pipelineOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	var stats api.StatsSource
	if cfg.ProcessingLog.Enabled {
		duckLog, err := audit.NewDuckLog(cfg.ProcessingLog.Path, logger)
		if err != nil {
			return fmt.Errorf("failed to open processing log: %w", err)
		}
		defer duckLog.Close()
		pipelineOpts = append(pipelineOpts, pipeline.WithRecorder(duckLog))
		stats = duckLog
	}

	receiver := upload.NewReceiver(fileStore,
		upload.WithMaxMB(cfg.Storage.MaxUploadMB),
		upload.WithAllowedTypes(cfg.Storage.AllowedMimeTypes),
		upload.WithLogger(logger),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareConfig{
		AllowOrigins:   cfg.Server.AllowOrigins,
		BodyLimit:      cfg.Server.BodyLimit,
		RequestLogging: cfg.Server.EnableRequestLogging,
		SizeMessage:    receiver.SizeMessage(),
		Logger:         logger,
	})
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Receiver: receiver,
		Pipeline: pipeline.New(fileStore, extractor, pipelineOpts...),
		Stats:    stats,
		Logger:   logger,
	}))

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(*configPath, cfg)

	errCh := make(chan error, 1)
	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newRecognizer(cfg config.OCRConfig, logger *slog.Logger) (extract.ImageRecognizer, error) {
	switch cfg.Engine {
	case config.EngineTesseractCLI:
		cli := extract.NewCommandOCR(cfg.TesseractBinary, cfg.TessdataDir, nil)
		if err := cli.LookPath(); err != nil {
			logger.Warn("image OCR will fail until tesseract is installed", "error", err)
		}
		return cli, nil
	case config.EngineGosseract:
		return tesseract.NewEngine(cfg.TessdataDir), nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}

// sweepOrphans removes upload files a crashed process left behind.
func sweepOrphans(ctx context.Context, store storage.Store, cfg config.StorageConfig, logger *slog.Logger) {
	if cfg.StaleFileMinutes <= 0 || cfg.SweepIntervalMinutes <= 0 {
		return
	}
	maxAge := time.Duration(cfg.StaleFileMinutes) * time.Minute

	sweep := func() {
		n, err := store.SweepOlderThan(maxAge)
		if err != nil {
			logger.Error("orphan sweep failed", "error", err)
		}
		if n > 0 {
			logger.Info("removed orphaned uploads", "count", n)
		}
	}

	sweep()
	ticker := time.NewTicker(time.Duration(cfg.SweepIntervalMinutes) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			return
		}
	}
}

func printBanner(configPath string, cfg *config.AppConfig) {
	logPath := "disabled"
	if cfg.ProcessingLog.Enabled {
		logPath = cfg.ProcessingLog.Path
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Document Intake Server                          ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  OCR Engine: %-45s║\n", cfg.OCR.Engine)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Uploads:   %-46s║\n", cfg.GetUploadDir())
	fmt.Printf("║  Stats DB:  %-46s║\n", logPath)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}
