package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"masta/cache"
	"masta/config"
	"masta/core/auth"
	"masta/core/library"
	"masta/db"
	"masta/logger"
	"masta/model"
	"masta/repository"

	"github.com/gorilla/mux"
)

const listenFlushInterval = 30 * time.Second

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
	})
	auth.Init(cfg.JWTSecret)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	// Connect to Redis
	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()
	log.Println("Successfully connected to Redis")

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.AutoMigrateModels(
		&model.Genre{},
		&model.Artist{},
		&model.Album{},
		&model.Track{},
		&model.ListeningHistory{},
		&model.SavedAlbum{},
		&model.FollowedArtist{},
		&model.FavoriteTrack{},
	); err != nil {
		log.Fatalf("Failed to migrate models: %v", err)
	}

	ensureDirExists(cfg.MediaRoot)
	ensureDirExists(cfg.TempDir)

	userRepo := repository.NewMySQLUserRepository(db.DB)
	artistRepo := repository.NewArtistRepository(db.GormDB)
	albumRepo := repository.NewAlbumRepository(db.GormDB)
	trackRepo := repository.NewTrackRepository(db.GormDB)
	genreRepo := repository.NewGenreRepository(db.GormDB)
	libraryRepo := repository.NewLibraryRepository(db.GormDB)

	listenCache := cache.NewListenCache(db.RedisClient)
	hub := NewActivityHub()

	apiHandler := NewAPIHandler(userRepo, artistRepo, albumRepo, trackRepo, genreRepo, libraryRepo, listenCache, hub, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Watch the media tree so deleted audio files get re-queued for
	// download.
	watcher := library.NewWatcher(trackRepo, cfg.MediaRoot)
	if err := watcher.Start(ctx); err != nil {
		log.Fatalf("Failed to start media watcher: %v", err)
	}

	// Periodically drain buffered play counts into the tracks table.
	go func() {
		ticker := time.NewTicker(listenFlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := listenCache.FlushListens(ctx, trackRepo.IncrementListens)
				if err != nil {
					logger.Warn("listen flush failed", logger.ErrorField(err))
				}
			}
		}
	}()

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Authentication
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", apiHandler.AuthMiddleware(apiHandler.MeHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/me/preferences", apiHandler.AuthMiddleware(apiHandler.UpdatePreferencesHandler)).Methods(http.MethodPut)

	// Catalog browsing
	router.HandleFunc("/api/artists", apiHandler.ListArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{slug}", apiHandler.GetArtistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums", apiHandler.ListAlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums/{slug}", apiHandler.GetAlbumHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/genres", apiHandler.ListGenresHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/search", apiHandler.SearchHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", apiHandler.ListTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", apiHandler.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}/stream", apiHandler.StreamTrackHandler).Methods(http.MethodGet)

	// Playback
	router.HandleFunc("/api/tracks/{id}/play", apiHandler.AuthMiddleware(apiHandler.RecordPlayHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/me/recent", apiHandler.AuthMiddleware(apiHandler.RecentTracksHandler)).Methods(http.MethodGet)

	// Per-user library
	router.HandleFunc("/api/me/history", apiHandler.AuthMiddleware(apiHandler.HistoryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/me/history", apiHandler.AuthMiddleware(apiHandler.ClearHistoryHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/me/albums", apiHandler.AuthMiddleware(apiHandler.SavedAlbumsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/me/albums/{id}", apiHandler.AuthMiddleware(apiHandler.SaveAlbumHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/me/albums/{id}", apiHandler.AuthMiddleware(apiHandler.UnsaveAlbumHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/me/artists", apiHandler.AuthMiddleware(apiHandler.FollowedArtistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/me/artists/{id}", apiHandler.AuthMiddleware(apiHandler.FollowArtistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/me/artists/{id}", apiHandler.AuthMiddleware(apiHandler.UnfollowArtistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/me/tracks", apiHandler.AuthMiddleware(apiHandler.FavoriteTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/me/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.FavoriteTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/me/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.UnfavoriteTrackHandler)).Methods(http.MethodDelete)

	// Live activity feed
	router.HandleFunc("/api/ws/activity", hub.HandleWS)

	// Static media serving (covers, nfo sidecars, audio)
	mediaFileServer := http.FileServer(http.Dir(cfg.MediaRoot))
	router.PathPrefix("/media/").Handler(http.StripPrefix("/media/", mediaFileServer))

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	cancel()
	hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Creating directory: %s", path)
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", path, err)
		}
	} else if err != nil {
		log.Fatalf("Failed to check directory %s: %v", path, err)
	}
}
