package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/config"
	"github.com/brightpath-aba/platform/pkg/common/database"
	"github.com/brightpath-aba/platform/pkg/common/kafka"
	"github.com/brightpath-aba/platform/pkg/common/logger"
	"github.com/brightpath-aba/platform/pkg/common/middleware"
	"github.com/brightpath-aba/platform/pkg/generation"
	"github.com/brightpath-aba/platform/pkg/notes"
	"github.com/brightpath-aba/platform/pkg/registry"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}

	registryRepo := registry.NewRepository(db)
	if err := registryRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate registry tables")
	}
	notesRepo := notes.NewRepository(db)
	if err := notesRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate session note tables")
	}

	registryService := registry.NewService(registryRepo)

	producer := kafka.NewProducer(cfg.KafkaNoteTopic)
	defer producer.Close()

	cache := notes.NewListCache(database.GetRedis(), cfg.NoteListCacheTTL)
	notesService := notes.NewService(notesRepo, registryRepo, producer, cache)

	template, err := generation.LoadTemplate(cfg.NoteTemplatePath)
	if err != nil {
		logger.Log.WithError(err).Warn("Falling back to built-in note template")
		template = generation.DefaultTemplate()
	}
	provider := generation.NewOpenAIClient(cfg.LLMAPIKey, cfg.LLMBaseURL)
	generationService := generation.NewService(provider, template, cfg.LLMModelName, cfg.LLMRequestTimeout)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	notes.NewHandler(notesService).Register(api)
	registry.NewHandler(registryService).Register(api)
	generation.NewHandler(generationService, registryService).Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Notes Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Notes Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("Failed to close database connection")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("Failed to close redis connection")
	}

	logger.Log.Info("Notes Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
