package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lehagrefabien-commits/fatca-application/internal/api"
	"github.com/lehagrefabien-commits/fatca-application/internal/catalog"
	"github.com/lehagrefabien-commits/fatca-application/internal/config"
	"github.com/lehagrefabien-commits/fatca-application/internal/counter"
	"github.com/lehagrefabien-commits/fatca-application/internal/letter"
	"github.com/lehagrefabien-commits/fatca-application/internal/output"
	"github.com/lehagrefabien-commits/fatca-application/internal/pipeline"
	"github.com/lehagrefabien-commits/fatca-application/internal/templates"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Every placeholder in every template must be fillable.
	tpl, err := templates.NewStore(cfg.TemplateDir, letter.Langs...)
	if err != nil {
		log.Error("load templates", "error", err)
		os.Exit(1)
	}
	if err := tpl.Validate(letter.Vocabulary()); err != nil {
		log.Error("template validation failed", "error", err)
		os.Exit(1)
	}

	outputs, err := output.NewStore(cfg.OutputDir)
	if err != nil {
		log.Error("open output store", "error", err)
		os.Exit(1)
	}
	cnt, err := counter.Open(cfg.CounterPath)
	if err != nil {
		log.Error("open counter", "error", err)
		os.Exit(1)
	}
	cat, err := catalog.Load()
	if err != nil {
		log.Error("load catalog", "error", err)
		os.Exit(1)
	}

	gen := pipeline.NewGenerator(tpl, outputs, cnt, pipeline.NewStats(cfg.StatsWindow), log)
	janitor := pipeline.NewJanitor(outputs, cfg.OutputTTL, cfg.SweepInterval, log)
	janitor.Start(ctx)

	srv, err := api.NewServer(gen, outputs, cnt, cat, log, cfg)
	if err != nil {
		log.Error("build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		janitor.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting fatca letter service",
		"port", cfg.Port,
		"template_dir", cfg.TemplateDir,
		"output_dir", cfg.OutputDir,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
