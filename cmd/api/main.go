package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotelbook/internal/adapters/auth"
	"hotelbook/internal/adapters/geocoder"
	server "hotelbook/internal/adapters/http_server"
	"hotelbook/internal/adapters/observability"
	"hotelbook/internal/adapters/photostore"
	redisad "hotelbook/internal/adapters/redis"
	"hotelbook/internal/app"
	"hotelbook/internal/domain"
	"hotelbook/internal/shared"
	"hotelbook/internal/storage/memory"
	mysqlrepo "hotelbook/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	var closers []io.Closer

	// cache
	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, running without cache")
		_ = rc.Close()
	} else {
		cache = rc
		closers = append(closers, rc)
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
	}
	cancel()

	// deps
	store := openStore(ctx, cfg, &closers)
	geo := openGeocoder(cfg, cache)
	photos, uploadDir := openPhotos(cfg)

	policy := app.NewPhotoPolicy(photos, cfg.MaxUpload)
	agg := app.NewAggregator(store, store, store, cache)
	if cfg.StoreDriver == "memory" {
		seedMemory(ctx, cfg, store, agg)
	}

	// http
	srv := server.New()
	if metricsSrv == nil {
		srv.Mount("/metrics", observability.MetricsHandler(reg))
	}
	if uploadDir != "" {
		srv.Mount("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	}
	srv.MountHandlers(&server.Handlers{
		Hotels:    app.NewHotelService(store, geo, cache, cfg.CacheTTL, policy),
		Rooms:     app.NewRoomService(store, store, agg, policy),
		Reviews:   app.NewReviewService(store, store, agg),
		Auth:      server.NewAuthenticator(auth.NewTokens(cfg.JWTSecret), store),
		MaxUpload: cfg.MaxUpload,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

func openStore(ctx context.Context, cfg shared.Config, closers *[]io.Closer) domain.Store {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.New()
	case "mysql":
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("unknown STORE_DRIVER")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	*closers = append(*closers, db)
	return mysqlrepo.New(db)
}

func openGeocoder(cfg shared.Config, cache domain.Cache) domain.Geocoder {
	var g domain.Geocoder
	switch cfg.GeocoderProvider {
	case "offline":
		off, err := geocoder.NewOffline(cfg.GeobedDataDir, cfg.GeobedCacheDir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load offline geocoder")
		}
		g = off
	case "mapquest":
		mq, err := geocoder.NewMapQuest(cfg.GeocoderBase, cfg.GeocoderKey, cfg.GeocoderRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize MapQuest client")
		}
		g = mq
	default:
		log.Fatal().Str("provider", cfg.GeocoderProvider).Msg("unknown GEOCODER_PROVIDER")
	}
	if cache == nil {
		return g
	}
	return geocoder.NewCached(g, cache, int(cfg.CacheTTL.Seconds()))
}

// openPhotos returns the photo store and, for disk storage, the directory
// to serve under /uploads.
func openPhotos(cfg shared.Config) (domain.PhotoStore, string) {
	switch cfg.PhotoStore {
	case "cloudinary":
		c, err := photostore.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Cloudinary")
		}
		return c, ""
	case "disk":
		d, err := photostore.NewDisk(cfg.UploadPath)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.UploadPath).Msg("upload dir unusable")
		}
		return d, d.Dir()
	}
	log.Fatal().Str("store", cfg.PhotoStore).Msg("unknown PHOTO_STORE")
	return nil, ""
}

// seedMemory fills a fresh in-memory store from the fixture directory so
// the API is usable without a database.
func seedMemory(ctx context.Context, cfg shared.Config, store domain.Store, agg *app.Aggregator) {
	fx, err := app.LoadFixtures(cfg.SeedDataDir)
	if err != nil {
		log.Warn().Err(err).Str("dir", cfg.SeedDataDir).Msg("fixtures not loaded")
		return
	}
	st, err := app.NewSeedService(store, agg, cfg.SeedWorkers).Import(ctx, fx)
	if err != nil {
		log.Warn().Err(err).Msg("fixture import incomplete")
	}
	log.Info().
		Int("users", st.Users).
		Int("hotels", st.Hotels).
		Int("rooms", st.Rooms).
		Int("reviews", st.Reviews).
		Msg("memory store seeded")
}
