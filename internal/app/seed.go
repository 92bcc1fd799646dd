package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"hotelbook/internal/domain"
)

// SeedUser is a fixture user; Password is hashed before it is stored.
type SeedUser struct {
	domain.User
	Password string `json:"password"`
}

type Fixtures struct {
	Users   []SeedUser
	Hotels  []domain.Hotel
	Rooms   []domain.Room
	Reviews []domain.Review
}

// LoadFixtures reads users.json, hotels.json, rooms.json and reviews.json
// from dir. A missing file contributes nothing.
func LoadFixtures(dir string) (Fixtures, error) {
	var fx Fixtures
	for name, dst := range map[string]any{
		"users.json":   &fx.Users,
		"hotels.json":  &fx.Hotels,
		"rooms.json":   &fx.Rooms,
		"reviews.json": &fx.Reviews,
	} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Fixtures{}, err
		}
		if err := json.Unmarshal(b, dst); err != nil {
			return Fixtures{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return fx, nil
}

type SeedStats struct {
	Users, Hotels, Rooms, Reviews int
}

type SeedService struct {
	store      domain.Store
	agg        *Aggregator
	workers    int64
	bcryptCost int
}

func NewSeedService(store domain.Store, agg *Aggregator, workers int) *SeedService {
	if workers < 1 {
		workers = 1
	}
	return &SeedService{store: store, agg: agg, workers: int64(workers), bcryptCost: bcrypt.DefaultCost}
}

// Import stores fx. Users and hotels go first since rooms and reviews
// reference them; each hotel's rooms and reviews are then loaded by a
// bounded pool of workers, after which its averages are recomputed.
func (s *SeedService) Import(ctx context.Context, fx Fixtures) (SeedStats, error) {
	var st SeedStats

	hashes := make([]string, len(fx.Users))
	if err := s.each(ctx, len(fx.Users), func(i int) error {
		h, err := bcrypt.GenerateFromPassword([]byte(fx.Users[i].Password), s.bcryptCost)
		hashes[i] = string(h)
		return err
	}); err != nil {
		return st, fmt.Errorf("hash passwords: %w", err)
	}
	for i, su := range fx.Users {
		u := su.User
		u.PasswordHash = hashes[i]
		if err := u.Validate(); err != nil {
			return st, fmt.Errorf("user %q: %w", u.Email, err)
		}
		if err := s.store.CreateUser(ctx, &u); err != nil {
			return st, fmt.Errorf("user %q: %w", u.Email, err)
		}
		st.Users++
	}

	for _, h := range fx.Hotels {
		if err := h.Validate(); err != nil {
			return st, fmt.Errorf("hotel %q: %w", h.Name, err)
		}
		if err := s.store.CreateHotel(ctx, &h); err != nil {
			return st, fmt.Errorf("hotel %q: %w", h.Name, err)
		}
		evictHotel(ctx, s.agg.cache, h.ID)
		st.Hotels++
	}

	rooms := map[int64][]domain.Room{}
	for _, r := range fx.Rooms {
		rooms[r.HotelID] = append(rooms[r.HotelID], r)
	}
	reviews := map[int64][]domain.Review{}
	for _, rv := range fx.Reviews {
		reviews[rv.HotelID] = append(reviews[rv.HotelID], rv)
	}
	hotelIDs := make([]int64, 0, len(fx.Hotels))
	seen := map[int64]bool{}
	for _, r := range fx.Rooms {
		if !seen[r.HotelID] {
			seen[r.HotelID] = true
			hotelIDs = append(hotelIDs, r.HotelID)
		}
	}
	for _, rv := range fx.Reviews {
		if !seen[rv.HotelID] {
			seen[rv.HotelID] = true
			hotelIDs = append(hotelIDs, rv.HotelID)
		}
	}

	var mu sync.Mutex
	err := s.each(ctx, len(hotelIDs), func(i int) error {
		id := hotelIDs[i]
		nr, nv, err := s.importHotelChildren(ctx, id, rooms[id], reviews[id])
		mu.Lock()
		st.Rooms += nr
		st.Reviews += nv
		mu.Unlock()
		if err != nil {
			log.Warn().Int64("hotel", id).Err(err).Msg("seed hotel failed")
			return err
		}
		log.Debug().Int64("hotel", id).Int("rooms", nr).Int("reviews", nv).Msg("seed hotel ok")
		return nil
	})
	return st, err
}

func (s *SeedService) importHotelChildren(ctx context.Context, hotelID int64, rooms []domain.Room, reviews []domain.Review) (int, int, error) {
	var nr, nv int
	for _, r := range rooms {
		if r.Photo == "" {
			r.Photo = domain.DefaultPhoto
		}
		if err := r.Validate(); err != nil {
			return nr, nv, fmt.Errorf("room %q: %w", r.Title, err)
		}
		if err := s.store.CreateRoom(ctx, &r); err != nil {
			return nr, nv, fmt.Errorf("room %q: %w", r.Title, err)
		}
		nr++
	}
	for _, rv := range reviews {
		if err := rv.Validate(); err != nil {
			return nr, nv, fmt.Errorf("review %q: %w", rv.Title, err)
		}
		if err := s.store.CreateReview(ctx, &rv); err != nil {
			return nr, nv, fmt.Errorf("review %q: %w", rv.Title, err)
		}
		nv++
	}
	if nr > 0 {
		s.agg.RefreshAverageCost(ctx, hotelID)
	}
	if nv > 0 {
		s.agg.RefreshAverageRating(ctx, hotelID)
	}
	return nr, nv, nil
}

// prefixEvicter is implemented by caches that can drop a whole key family.
type prefixEvicter interface {
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

// Destroy removes every user, hotel, room and review, then drops cached
// hotels when the cache supports it.
func (s *SeedService) Destroy(ctx context.Context) error {
	if err := s.store.Purge(ctx); err != nil {
		return err
	}
	pe, ok := s.agg.cache.(prefixEvicter)
	if !ok {
		return nil
	}
	n, err := pe.DelPrefix(ctx, hotelKeyPrefix)
	if err != nil {
		return fmt.Errorf("evict cached hotels: %w", err)
	}
	log.Info().Int("keys", n).Msg("cached hotels evicted")
	return nil
}

// each runs fn(0..n-1) with at most s.workers in flight and joins the
// errors.
func (s *SeedService) each(ctx context.Context, n int, fn func(i int) error) error {
	sem := semaphore.NewWeighted(s.workers)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < n; i++ {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			if err := fn(i); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	return errors.Join(errs...)
}
