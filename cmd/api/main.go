package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lexibook/api/internal/app"
	"lexibook/api/internal/cache"
	"lexibook/api/internal/config"
	"lexibook/api/internal/enrich"
	"lexibook/api/internal/export"
	"lexibook/api/internal/files"
	"lexibook/api/internal/history"
	"lexibook/api/internal/search"
	"lexibook/api/internal/store"
	"lexibook/api/internal/textdoc"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		log.Fatalf("failed to create history dir: %v", err)
	}

	libStore := store.NewPostgresStore(db)
	historySvc := history.New(cfg.HistoryDir)

	var wordCache enrich.WordCache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		wc, err := cache.NewWordCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Printf("redis unavailable, word cache disabled: %v", err)
		} else {
			defer wc.Close()
			wordCache = wc
		}
	}

	var fileStore app.FileStore
	if cfg.MinioAccessKey != "" {
		fs, err := files.New(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Printf("minio unavailable, source file storage disabled: %v", err)
		} else {
			fileStore = fs
		}
	}

	var collab enrich.Collaborator
	if strings.TrimSpace(cfg.OpenAIKey) != "" {
		oa, err := enrich.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.TargetLang)
		if err != nil {
			log.Printf("language service disabled: %v", err)
		} else {
			collab = oa
		}
	} else {
		log.Printf("OPENAI_API_KEY not set, language service disabled")
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}

	// The scanner reads the service's library, so it closes over a variable
	// that is assigned right after. No search request arrives before then.
	var service *app.Service
	scanner := search.NewScanner(func() []textdoc.Document {
		if service == nil {
			return nil
		}
		return service.LibrarySnapshot()
	})
	searchSvc := search.NewService(meiliClient, scanner)

	service = app.NewService(
		libStore,
		textdoc.NewDefaultTokenizer(),
		collab,
		wordCache,
		searchSvc,
		fileStore,
		historySvc,
		export.NewService(),
	)
	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (will retry on next restart): %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Lexibook API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
