// tkc-chatbot-server runs the HTTP API for the Teilleistungs interview
// orchestrator: configuration, catalog, session, knowledge and oracle
// wiring live here.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JeWeidn/tkc-Chatbot/pkg/api"
	"github.com/JeWeidn/tkc-Chatbot/pkg/catalog"
	"github.com/JeWeidn/tkc-Chatbot/pkg/config"
	"github.com/JeWeidn/tkc-Chatbot/pkg/dialogue"
	"github.com/JeWeidn/tkc-Chatbot/pkg/evaluation"
	"github.com/JeWeidn/tkc-Chatbot/pkg/knowledge"
	"github.com/JeWeidn/tkc-Chatbot/pkg/oracle"
	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
	"github.com/JeWeidn/tkc-Chatbot/pkg/version"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "config"), "path to configuration directory")
	flag.Parse()

	log := slog.Default()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		log.Info("loaded environment file", "path", envPath)
	}

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		log.Error("failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	idx := catalog.Load(cfg.Store.CatalogFile)
	log.Info("catalog loaded", "courses", idx.Len(), "path", cfg.Store.CatalogFile)

	knowledgeStore := knowledge.NewStore(idx, cfg.Store.JSONLDFile, cfg.Store.TurtleFile)

	sessionStore := session.NewStore(cfg.Store.SessionsFile)
	if err := sessionStore.Load(); err != nil {
		log.Error("failed to load sessions", "error", err)
		os.Exit(1)
	}

	oracleClient := oracle.NewClient(oracle.Config{
		BaseURL:       cfg.LLM.BaseURL,
		Model:         cfg.LLM.Model,
		FallbackModel: cfg.LLM.FallbackModel,
		APIKey:        cfg.APIKey(),
		Timeout:       cfg.LLM.Timeout,
		BackoffMin:    cfg.Oracle.BackoffMin,
		BackoffMax:    cfg.Oracle.BackoffMax,
	}, cfg.Store.TracesDir)

	ctl := dialogue.New(idx, knowledgeStore, sessionStore, oracleClient, cfg.Pools, cfg.Session.MaxInTLRounds)
	evalSvc := evaluation.NewService(sessionStore, knowledgeStore, oracleClient, cfg.Store.EvaluationsFile)

	server := api.NewServer(ctl, evalSvc, idx, cfg.Store.TracesDir, log)

	log.Info("starting "+version.AppName, "version", version.Full(), "port", cfg.HTTP.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(":" + cfg.HTTP.Port); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		log.Error("server failed", "error", err)
		os.Exit(1)
	case <-ctx.Done():
		log.Info("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
