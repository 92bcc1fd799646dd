package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hotelbook/internal/app"
	"hotelbook/internal/domain"
	"hotelbook/internal/storage/memory"
)

// ---- fakes ----

type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

func (c *fakeCache) DelPrefix(ctx context.Context, prefix string) (int, error) {
	n := 0
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
			n++
		}
	}
	return n, nil
}

type fakeGeocoder struct {
	points map[string][]domain.GeoPoint
	err    error
	calls  int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, q string) ([]domain.GeoPoint, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.points[q], nil
}

type memPhotos struct {
	files map[string][]byte
	err   error
}

func (p *memPhotos) Save(ctx context.Context, name string, r io.Reader) error {
	if p.err != nil {
		return p.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if p.files == nil {
		p.files = map[string][]byte{}
	}
	p.files[name] = b
	return nil
}

// ---- fixture ----

type fixture struct {
	store   *memory.Store
	cache   *fakeCache
	geo     *fakeGeocoder
	photos  *memPhotos
	hotels  *app.HotelService
	rooms   *app.RoomService
	reviews *app.ReviewService
}

const maxUpload = 1000

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.New(),
		cache:  &fakeCache{},
		geo:    &fakeGeocoder{points: map[string][]domain.GeoPoint{}},
		photos: &memPhotos{},
	}
	policy := app.NewPhotoPolicy(f.photos, maxUpload)
	agg := app.NewAggregator(f.store, f.store, f.store, f.cache)
	f.hotels = app.NewHotelService(f.store, f.geo, f.cache, 10*time.Minute, policy)
	f.rooms = app.NewRoomService(f.store, f.store, agg, policy)
	f.reviews = app.NewReviewService(f.store, f.store, agg)
	return f
}

var userSeq atomic.Int64

func (f *fixture) user(t *testing.T, role domain.Role) domain.Actor {
	t.Helper()
	u := domain.User{
		Name:  string(role),
		Email: fmt.Sprintf("%s%d@example.com", role, userSeq.Add(1)),
		Role:  role,
	}
	if err := f.store.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.Actor()
}

func (f *fixture) hotel(t *testing.T, owner domain.Actor, name string, loc *domain.Location) domain.Hotel {
	t.Helper()
	h, err := f.hotels.CreateHotel(context.Background(), owner, domain.Hotel{
		Name:        name,
		Description: "A place to stay",
		Location:    loc,
	})
	if err != nil {
		t.Fatalf("create hotel %q: %v", name, err)
	}
	return h
}

func (f *fixture) room(t *testing.T, owner domain.Actor, hotelID int64, cost float64) domain.Room {
	t.Helper()
	occ := 2
	r, err := f.rooms.AddRoom(context.Background(), owner, hotelID, domain.RoomInput{
		Title:            "Room",
		Description:      "Comfortable",
		Cost:             &cost,
		RoomType:         []domain.RoomType{domain.RoomDouble},
		MinimumOccupancy: &occ,
	})
	if err != nil {
		t.Fatalf("add room: %v", err)
	}
	return r
}

func imageUpload(name string, size int) *domain.Upload {
	// PNG signature followed by padding
	body := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, max(size-8, 0))...)
	return &domain.Upload{Filename: name, ContentType: "image/png", Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func textUpload(name string) *domain.Upload {
	body := "just some text"
	return &domain.Upload{Filename: name, ContentType: "text/plain", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func wantKind(t *testing.T, err error, k domain.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", k)
	}
	if got := domain.KindOf(err); got != k {
		t.Fatalf("expected %s error, got %s (%v)", k, got, err)
	}
}

func wantMsg(t *testing.T, err error, msg string) {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) || de.Msg != msg {
		t.Fatalf("expected message %q, got %v", msg, err)
	}
}

func ptr[T any](v T) *T { return &v }
