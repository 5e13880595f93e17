package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"videosearch-backend/internal/config"
	"videosearch-backend/internal/corpus"
	"videosearch-backend/internal/database"
	"videosearch-backend/internal/handlers"
	"videosearch-backend/internal/playback"
	"videosearch-backend/internal/repository"
	"videosearch-backend/internal/router"
	"videosearch-backend/internal/search"
	"videosearch-backend/internal/services"
	"videosearch-backend/internal/websocket"
	"videosearch-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting VideoSearch Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	searchTimeout := time.Duration(cfg.SearchTimeoutSeconds) * time.Second

	// ──── Step 2: Initialize PostgreSQL (optional) ────
	var videoRepo *repository.VideoRepo
	var jobRepo *repository.JobRepo
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool, "migrations"); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		videoRepo = repository.NewVideoRepo(pool)
		jobRepo = repository.NewJobRepo(pool)
	} else {
		log.Println("• DATABASE_URL not set, running with the in-memory engine only")
	}

	// ──── Step 3: Initialize Redis (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		var err error
		redisClients, err = database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		log.Println("✓ Redis connected")
	} else {
		log.Println("• REDIS_URL not set, uploads will be processed inline")
	}

	// ──── Step 4: Build the Transcript Corpus ────
	videoCorpus := corpus.New()

	if videoRepo != nil {
		videos, err := videoRepo.ListVideos(context.Background())
		if err != nil {
			log.Fatalf("✗ Failed to load video metadata: %v", err)
		}
		videoCorpus.ReplaceAll(videos)
		log.Printf("✓ Loaded metadata for %d videos from the database", len(videos))
	}

	if cfg.CorpusURL != "" {
		n, err := services.FetchCorpus(context.Background(), videoCorpus, cfg.CorpusURL)
		if err != nil {
			log.Printf("✗ Corpus bootstrap failed: %v", err)
		} else {
			log.Printf("✓ Bootstrapped %d videos from CORPUS_URL", n)
		}
	}

	// ──── Step 5: Initialize Gemini Backend (optional) ────
	var aiBackend search.ReasoningBackend
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiBackend(cfg.GeminiAPIKey, videoCorpus)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		aiBackend = gemini
		log.Println("✓ Gemini Flash client initialized")
	} else {
		log.Println("• GEMINI_API_KEY not set, AI search degrades to keyword fallback")
	}

	// ──── Step 6: Assemble the Search Engines ────
	localEngine := search.NewLocalEngine(videoCorpus)

	var remoteAdapter *search.RemoteAdapter
	var loader handlers.SegmentLoader
	var playbackLoader playback.SegmentLoader
	if videoRepo != nil {
		remoteAdapter = search.NewRemoteAdapter(videoRepo, videoCorpus, searchTimeout)
		loader = videoRepo
		playbackLoader = videoRepo
	}

	aiMapper := search.NewAIMapper(aiBackend, videoCorpus, localEngine, searchTimeout)
	orchestrator := search.NewOrchestrator(localEngine, remoteAdapter, aiMapper)
	syncIndex := playback.NewSyncIndex(videoCorpus, playbackLoader)

	// ──── Step 7: Services and Worker Pool ────
	var videoStore services.VideoStore
	if videoRepo != nil {
		videoStore = videoRepo
	}
	ingestService := services.NewIngestService(videoCorpus, videoStore)
	youtubeService := services.NewYouTubeService()

	var workerPool *worker.Pool
	if redisClients != nil && jobRepo != nil {
		if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
			log.Fatalf("✗ Failed to create storage directory: %v", err)
		}
		workerPool = worker.NewPool(redisClients.Queue, ingestService, jobRepo, cfg.WorkerCount)
		workerPool.Start()
		log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)
	}

	// ──── Step 8: WebSocket Hub ────
	var wsHub *websocket.Hub
	if redisClients != nil {
		wsHub = websocket.NewHub(redisClients.PubSub, orchestrator)
	} else {
		wsHub = websocket.NewHub(nil, orchestrator)
	}
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go wsHub.Run(hubCtx)
	log.Println("✓ WebSocket hub started")

	// ──── Step 9: HTTP Server ────
	searchHandler := handlers.NewSearchHandler(orchestrator)
	videoHandler := handlers.NewVideoHandler(videoCorpus, loader)
	playbackHandler := handlers.NewPlaybackHandler(syncIndex)
	ingestHandler := handlers.NewIngestHandler(ingestService, youtubeService, workerPool, cfg.StoragePath)
	var jobHandler *handlers.JobHandler
	if jobRepo != nil {
		jobHandler = handlers.NewJobHandler(jobRepo)
	}

	r := router.New(
		searchHandler,
		videoHandler,
		playbackHandler,
		ingestHandler,
		jobHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		if workerPool != nil {
			workerPool.Stop()
		}
		hubCancel()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ VideoSearch Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
