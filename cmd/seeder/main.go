package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotelbook/internal/adapters/auth"
	"hotelbook/internal/adapters/observability"
	redisad "hotelbook/internal/adapters/redis"
	"hotelbook/internal/app"
	"hotelbook/internal/domain"
	"hotelbook/internal/shared"
	mysqlrepo "hotelbook/internal/storage/mysql"
)

func main() {
	var (
		importData  = flag.Bool("i", false, "import the JSON fixtures")
		destroyData = flag.Bool("d", false, "delete all users, hotels, rooms and reviews")
		dir         = flag.String("dir", "", "fixture directory (default SEED_DATA_DIR)")
		tokens      = flag.Bool("tokens", false, "print a bearer token for every seeded user")
	)
	flag.Parse()
	if *importData == *destroyData {
		fmt.Fprintln(os.Stderr, "usage: seeder -i | -d [-dir path] [-tokens]")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	// hotel entries cached by a running API must not outlive the data
	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rc.Close()
	if err := rc.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, cached hotels are not evicted")
	} else {
		cache = rc
	}

	seed := app.NewSeedService(repo, app.NewAggregator(repo, repo, repo, cache), cfg.SeedWorkers)

	if *destroyData {
		if err := seed.Destroy(ctx); err != nil {
			log.Fatal().Err(err).Msg("destroy failed")
		}
		log.Info().Msg("data destroyed")
		return
	}

	src := cfg.SeedDataDir
	if *dir != "" {
		src = *dir
	}
	fx, err := app.LoadFixtures(src)
	if err != nil {
		log.Fatal().Err(err).Str("dir", src).Msg("read fixtures failed")
	}
	log.Info().
		Str("dir", src).
		Int("workers", cfg.SeedWorkers).
		Int("hotels", len(fx.Hotels)).
		Msg("seeder starting")

	st, err := seed.Import(ctx, fx)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
	log.Info().
		Int("users", st.Users).
		Int("hotels", st.Hotels).
		Int("rooms", st.Rooms).
		Int("reviews", st.Reviews).
		Msg("data imported")

	if *tokens {
		t := auth.NewTokens(cfg.JWTSecret)
		for _, u := range fx.Users {
			tok, err := t.Sign(u.ID, 30*24*time.Hour)
			if err != nil {
				log.Fatal().Err(err).Msg("sign token failed")
			}
			fmt.Printf("%-10s %-28s %s\n", u.Role, u.Email, tok)
		}
	}
}
