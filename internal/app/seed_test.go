package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"hotelbook/internal/app"
	"hotelbook/internal/domain"
	"hotelbook/internal/storage/memory"
)

func TestSeed_ImportAndDestroy(t *testing.T) {
	fx, err := app.LoadFixtures(filepath.Join("..", "..", "seed"))
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	store := memory.New()
	ctx := context.Background()
	agg := app.NewAggregator(store, store, store, nil)
	seed := app.NewSeedService(store, agg, 3)

	st, err := seed.Import(ctx, fx)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	want := app.SeedStats{Users: len(fx.Users), Hotels: len(fx.Hotels), Rooms: len(fx.Rooms), Reviews: len(fx.Reviews)}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}

	u, err := store.GetUser(ctx, fx.Users[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(fx.Users[0].Password)); err != nil {
		t.Fatalf("password not hashed with bcrypt: %v", err)
	}

	// Harbor View Inn: rooms 89/149/289, reviews 9/6
	h, err := store.GetHotel(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if h.AverageCost == nil || *h.AverageCost != 180 {
		t.Fatalf("averageCost = %v", h.AverageCost)
	}
	if h.AverageRating == nil || *h.AverageRating != 7.5 {
		t.Fatalf("averageRating = %v", h.AverageRating)
	}

	if _, err := seed.Import(ctx, fx); err == nil {
		t.Fatalf("importing twice should fail on duplicate users")
	}

	if err := seed.Destroy(ctx); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	page, err := store.ListHotels(ctx, domain.ListQuery{Page: 1, Limit: 10})
	if err != nil || page.Total != 0 {
		t.Fatalf("hotels after destroy: %d, %v", page.Total, err)
	}
}

func TestSeed_RejectsInvalidFixtures(t *testing.T) {
	store := memory.New()
	seed := app.NewSeedService(store, app.NewAggregator(store, store, store, nil), 1)
	_, err := seed.Import(context.Background(), app.Fixtures{
		Hotels: []domain.Hotel{{ID: 1, UserID: 1, Description: "missing a name"}},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSeed_DestroyEvictsCachedHotels(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	cache := &fakeCache{}
	for _, k := range []string{"hotel:1", "hotel:42", "geocode:02108"} {
		if err := cache.Set(ctx, k, map[string]string{"stale": "yes"}, 60); err != nil {
			t.Fatal(err)
		}
	}
	seed := app.NewSeedService(store, app.NewAggregator(store, store, store, cache), 1)

	if err := seed.Destroy(ctx); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	for _, k := range []string{"hotel:1", "hotel:42"} {
		if _, ok := cache.store[k]; ok {
			t.Fatalf("%s survived destroy", k)
		}
	}
	if _, ok := cache.store["geocode:02108"]; !ok {
		t.Fatalf("geocode entries are not hotel data and should stay")
	}
}

func TestSeed_ImportEvictsStaleHotelEntries(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	cache := &fakeCache{}
	_ = cache.Set(ctx, "hotel:1", domain.Hotel{ID: 1, Name: "From a previous run"}, 60)
	seed := app.NewSeedService(store, app.NewAggregator(store, store, store, cache), 1)

	_, err := seed.Import(ctx, app.Fixtures{
		Users:  []app.SeedUser{{User: domain.User{ID: 1, Name: "Owner", Email: "owner@example.com", Role: domain.RolePublisher}, Password: "123456"}},
		Hotels: []domain.Hotel{{ID: 1, UserID: 1, Name: "Fresh", Description: "d"}},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, ok := cache.store["hotel:1"]; ok {
		t.Fatalf("stale hotel:1 entry survived import")
	}
}
