package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"gorm.io/driver/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default ./config.yaml if present)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := initDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise database")
	}

	api, err := buildAPI(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build api")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      initRouter(api, cfg.Server),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		color.Green("Running on http://localhost%s", cfg.Server.Addr)
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("delete_policy", cfg.Guestbook.DeletePolicy).
			Bool("cache", cfg.Cache.Enabled).
			Bool("smtp", cfg.SMTP.Enabled).
			Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn().Err(err).Msg("closing database failed")
		}
	}
}

func initDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Migrate the schema
	if err := db.AutoMigrate(&SheetRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

func buildAPI(cfg *Config, db *gorm.DB) (*API, error) {
	var cache *ReadCache
	if cfg.Cache.Enabled {
		var err error
		cache, err = NewReadCache(cfg.Cache.Size, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
	}

	var notifier Notifier = noopNotifier{}
	if cfg.SMTP.Enabled {
		notifier = NewMailNotifier(cfg.SMTP, cfg.Site.Location())
	}

	sheets := NewSheetStore(db)
	return NewAPI(
		NewGuestbookService(sheets, cache, notifier, cfg.Guestbook),
		NewAttendanceService(sheets, notifier),
		db,
		cfg.Site.Location(),
	), nil
}

// requestTimeout bounds handler work by the server write timeout.
func requestTimeout(cfg ServerConfig) time.Duration {
	if cfg.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return cfg.WriteTimeout
}

func initRouter(api *API, cfg ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout(cfg)))

	origins := parseAllowedOrigins(cfg.AllowedOrigins)
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	for _, path := range []string{"/exec", "/api"} {
		r.Get(path, api.HandleGet)
		r.Post(path, api.HandlePost)
	}
	r.Get("/healthz", api.HandleHealth)

	return r
}
