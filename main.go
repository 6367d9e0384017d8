package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/cropsysbackend/config"
	"github.com/camden-git/cropsysbackend/database"
	"github.com/camden-git/cropsysbackend/handlers"
	"github.com/camden-git/cropsysbackend/ingest"
	"github.com/camden-git/cropsysbackend/media"
	"github.com/camden-git/cropsysbackend/repository"
	"github.com/camden-git/cropsysbackend/services"
	"github.com/camden-git/cropsysbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.UploadsPath, cfg.ThumbnailsPath, cfg.ArchivesPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	gormDB, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(gormDB); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	statsDB, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to open stats database handle: %v", err)
	}
	defer statsDB.Close()

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeUpload:    filepath.Base(cfg.UploadsPath),
		media.AssetTypeThumbnail: filepath.Base(cfg.ThumbnailsPath),
		media.AssetTypeArchive:   filepath.Base(cfg.ArchivesPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore)

	imageRepo := repository.NewImageRepository(gormDB)

	log.Printf("Initializing thumbnail worker pool (Workers: %d, Queue Size: %d)...", cfg.NumThumbnailWorkers, cfg.ThumbnailQueueSize)
	thumbGen := workers.NewThumbnailProcessor(imageRepo, mediaStore, mediaProcessor, cfg.ThumbnailMaxSize, cfg.ThumbnailQueueSize, cfg.NumThumbnailWorkers)
	thumbGen.EnqueuePendingOnStartup()

	var recordSource ingest.Source
	if cfg.RecordsAPIURL != "" {
		log.Printf("Ingesting records from remote API: %s", cfg.RecordsAPIURL)
		recordSource = ingest.NewAPISource(cfg.RecordsAPIURL, nil)
	} else {
		log.Printf("Ingesting records from local database: %s", cfg.DatabasePath)
		recordSource = ingest.NewStoreSource(imageRepo, mediaStore, "/api")
	}

	catalogService := services.NewCatalogService(recordSource)
	if err := catalogService.Refresh(context.Background()); err != nil {
		// transient: the catalog starts empty and clients retry via the
		// refresh endpoint
		log.Printf("WARNING: initial catalog load failed: %v", err)
	}
	bulkService := services.NewBulkService(recordSource, catalogService)
	archiveService := services.NewArchiveService(recordSource, mediaStore, cfg.NumArchiveWorkers)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	folderHandler := &handlers.FolderHandler{Catalog: catalogService}
	bulkHandler := &handlers.BulkHandler{Bulk: bulkService}
	archiveHandler := &handlers.ArchiveHandler{Catalog: catalogService, Archive: archiveService}
	uploadHandler := &handlers.UploadHandler{Repo: imageRepo, Store: mediaStore, ThumbGen: thumbGen}
	statsHandler := &handlers.StatsHandler{DB: statsDB}

	r.Route("/api", func(r chi.Router) {
		r.Route("/folders", func(r chi.Router) {
			r.Get("/", folderHandler.ListFolders)
			r.Get("/{category}", folderHandler.GetFolder)
		})
		r.Post("/catalog/refresh", folderHandler.Refresh)

		r.Route("/images", func(r chi.Router) {
			r.Post("/", uploadHandler.Upload)
			r.Post("/bulk", bulkHandler.Execute)
		})

		r.Post("/archives", archiveHandler.Create)
		r.Get("/stats", statsHandler.GetStats)

		for _, assetPath := range []string{cfg.UploadsPath, cfg.ThumbnailsPath, cfg.ArchivesPath} {
			subDir := filepath.Base(assetPath)
			r.Get(fmt.Sprintf("/%s/*", subDir), handlers.AssetServer(cfg.MediaStoragePath, subDir))
			log.Printf("Registered asset server at /%s/*", subDir)
		}
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
