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

	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/config"
	dbMongo "github.com/kailas-cloud/plasmidq/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/plasmidq/internal/db/redis"
	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/example"
	"github.com/kailas-cloud/plasmidq/internal/domain/schema"
	logpkg "github.com/kailas-cloud/plasmidq/internal/logger"
	"github.com/kailas-cloud/plasmidq/internal/metrics"
	budgetrepo "github.com/kailas-cloud/plasmidq/internal/repository/budget"
	"github.com/kailas-cloud/plasmidq/internal/repository/replycache"
	savedqueryrepo "github.com/kailas-cloud/plasmidq/internal/repository/savedquery"
	sessionrepo "github.com/kailas-cloud/plasmidq/internal/repository/session"
	chiTransport "github.com/kailas-cloud/plasmidq/internal/transport/chi"
	openaiLLM "github.com/kailas-cloud/plasmidq/internal/transport/openai"
	executionuc "github.com/kailas-cloud/plasmidq/internal/usecase/execution"
	healthuc "github.com/kailas-cloud/plasmidq/internal/usecase/health"
	llmuc "github.com/kailas-cloud/plasmidq/internal/usecase/llm"
	savedqueryuc "github.com/kailas-cloud/plasmidq/internal/usecase/savedquery"
	synthesisuc "github.com/kailas-cloud/plasmidq/internal/usecase/synthesis"
	usageuc "github.com/kailas-cloud/plasmidq/internal/usecase/usage"
	"github.com/kailas-cloud/plasmidq/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting plasmidq API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("mongo_database", cfg.Mongo.Database),
		zap.Strings("session_addrs", cfg.Session.Addrs),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterLLMMetrics()
	metrics.RegisterQueryMetrics()
	metrics.RegisterHTTPMetrics()

	// Prompt inputs are checked before any connection is opened.
	catalog := schema.DefaultCatalog()
	corpus, err := example.LoadCorpus(cfg.Synthesis.ExampleFile)
	if err != nil {
		logger.Fatal("Invalid example corpus", zap.Error(err))
	}
	prompts, err := synthesisuc.NewPromptBuilder(catalog, corpus)
	if err != nil {
		logger.Fatal("Invalid prompt inputs", zap.Error(err))
	}
	logger.Info("Prompt ready",
		zap.Strings("collections", catalog.Names()),
		zap.Int("examples", corpus.Len()),
	)

	ctx := context.Background()

	// Plasmid database
	mongoClient, err := dbMongo.NewClient(ctx, dbMongo.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: time.Duration(cfg.Mongo.ConnectTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create mongo client", zap.Error(err))
	}
	defer func() { _ = mongoClient.Close(context.Background()) }()

	if err := mongoClient.WaitForReady(ctx, time.Duration(cfg.Mongo.ConnectTimeoutSec)*time.Second); err != nil {
		logger.Fatal("Mongo not ready", zap.Error(err))
	}
	logger.Info("Connected to mongo")

	// Session store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Session.Addrs,
		Password: cfg.Session.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create session store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Session.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Session store not ready", zap.Error(err))
	}
	logger.Info("Connected to session store")

	// Completer chain: openai, then reply cache, then budget
	base := openaiLLM.NewCompleter(&openaiLLM.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.RequestTimeoutSec) * time.Second,
		Provider:    cfg.LLM.Provider,
		Logger:      logger,
	})

	// Single BudgetTracker shared by the completer chain and the usage service.
	var budget *llmuc.BudgetTracker
	budgetCfg := cfg.LLM.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := llmuc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = llmuc.BudgetActionReject
		}
		budget = llmuc.NewBudgetTracker(
			cfg.LLM.Provider, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		// Connect persistence store; loads current counters from Redis.
		budget.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetChecker llmuc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	var inner domain.Completer = base
	if cfg.LLM.ReplyCacheHours > 0 {
		inner = replycache.New(
			base, store, time.Duration(cfg.LLM.ReplyCacheHours)*time.Hour, cfg.LLM.Model,
			func(reply string) bool {
				_, err := synthesisuc.Parse(reply)
				return err == nil
			},
			metrics.LLMReplyCacheTotal, logger,
		)
	}
	completer := llmuc.NewInstrumentedCompleter(inner, cfg.LLM.Provider, cfg.LLM.Model, budgetChecker, logger)

	// Use case services
	synthesisSvc := synthesisuc.New(prompts, completer, logger)
	executionSvc := executionuc.New(
		mongoClient,
		sessionrepo.New(store, time.Duration(cfg.Session.TTLHours)*time.Hour),
		executionuc.Limits{
			DisplayLimit:   cfg.Projection.DisplayLimit,
			MaxExportRows:  cfg.Projection.MaxExportRows,
			MaxFieldLength: cfg.Projection.MaxFieldLength,
		},
		logger,
	)
	savedSvc := savedqueryuc.New(
		savedqueryrepo.New(mongoClient, cfg.Mongo.SavedQueryCollection),
		cfg.Projection.MaxQueryLength,
		logger,
	)
	usageSvc := usageuc.New(budgetReader, cfg.LLM.Model)
	healthSvc := healthuc.New(mongoClient, store, base)

	server := chiTransport.NewServer(synthesisSvc, executionSvc, savedSvc, usageSvc, healthSvc, catalog, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
