// Package memory is a process-local domain.Store. It backs unit tests and
// STORE_DRIVER=memory for running the API without MySQL.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"hotelbook/internal/domain"
)

type Store struct {
	mu      sync.RWMutex
	seq     int64
	users   map[int64]domain.User
	hotels  map[int64]domain.Hotel
	rooms   map[int64]domain.Room
	reviews map[int64]domain.Review
	now     func() time.Time
}

func New() *Store {
	return &Store{
		users:   map[int64]domain.User{},
		hotels:  map[int64]domain.Hotel{},
		rooms:   map[int64]domain.Room{},
		reviews: map[int64]domain.Review{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) nextID(want int64) int64 {
	if want > 0 {
		s.seq = max(s.seq, want)
		return want
	}
	s.seq++
	return s.seq
}

func (s *Store) stamp(t *time.Time) {
	if t.IsZero() {
		*t = s.now()
	}
}

func sortedValues[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func summary(h domain.Hotel) *domain.HotelSummary {
	return &domain.HotelSummary{ID: h.ID, Name: h.Name, Description: h.Description}
}

// ---- users ----

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	u.ID = s.nextID(u.ID)
	s.stamp(&u.CreatedAt)
	s.users[u.ID] = *u
	return nil
}

// ---- hotels ----

func (s *Store) ListHotels(_ context.Context, q domain.ListQuery) (domain.Page[domain.Hotel], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, err := list(sortedValues(s.hotels), hotelFields, func(h domain.Hotel) int64 { return h.ID }, q)
	if err != nil {
		return page, err
	}
	items := make([]domain.Hotel, len(page.Items))
	for i, h := range page.Items {
		h.Rooms = s.roomsOf(h.ID)
		items[i] = h
	}
	page.Items = items
	return page, nil
}

func (s *Store) GetHotel(_ context.Context, id int64) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (s *Store) FindHotelByOwner(_ context.Context, userID int64) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range sortedValues(s.hotels) {
		if h.UserID == userID {
			return h, nil
		}
	}
	return domain.Hotel{}, domain.ErrNotFound
}

func (s *Store) HotelsInBounds(_ context.Context, b domain.Bounds) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Hotel
	for _, h := range sortedValues(s.hotels) {
		if h.Location != nil && b.Contains(h.Location.Lat, h.Location.Lng) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *Store) CreateHotel(_ context.Context, h *domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(h.Name, 0) {
		return domain.ErrDuplicate
	}
	h.ID = s.nextID(h.ID)
	s.stamp(&h.CreatedAt)
	if h.Photo == "" {
		h.Photo = domain.DefaultPhoto
	}
	stored := *h
	stored.Rooms = nil
	s.hotels[h.ID] = stored
	return nil
}

func (s *Store) UpdateHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.hotels[h.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if s.nameTaken(h.Name, h.ID) {
		return domain.ErrDuplicate
	}
	// derived and owner fields are not client writable
	h.UserID, h.Photo, h.CreatedAt = cur.UserID, cur.Photo, cur.CreatedAt
	h.AverageCost, h.AverageRating = cur.AverageCost, cur.AverageRating
	h.Rooms = nil
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) nameTaken(name string, except int64) bool {
	for id, other := range s.hotels {
		if id != except && other.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) DeleteHotel(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	for rid, r := range s.rooms {
		if r.HotelID == id {
			delete(s.rooms, rid)
		}
	}
	for rid, r := range s.reviews {
		if r.HotelID == id {
			delete(s.reviews, rid)
		}
	}
	delete(s.hotels, id)
	return nil
}

func (s *Store) updateHotel(id int64, fn func(*domain.Hotel)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&h)
	s.hotels[id] = h
	return nil
}

func (s *Store) SetHotelPhoto(_ context.Context, id int64, photo string) error {
	return s.updateHotel(id, func(h *domain.Hotel) { h.Photo = photo })
}

func (s *Store) SetAverageCost(_ context.Context, id int64, cost float64) error {
	return s.updateHotel(id, func(h *domain.Hotel) { h.AverageCost = &cost })
}

func (s *Store) SetAverageRating(_ context.Context, id int64, rating float64) error {
	return s.updateHotel(id, func(h *domain.Hotel) { h.AverageRating = &rating })
}

// ---- rooms ----

func (s *Store) roomsOf(hotelID int64) []domain.Room {
	var out []domain.Room
	for _, r := range sortedValues(s.rooms) {
		if r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) ListRooms(_ context.Context, q domain.ListQuery) (domain.Page[domain.Room], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, err := list(sortedValues(s.rooms), roomFields, func(r domain.Room) int64 { return r.ID }, q)
	if err != nil {
		return page, err
	}
	items := make([]domain.Room, len(page.Items))
	for i, r := range page.Items {
		if h, ok := s.hotels[r.HotelID]; ok {
			r.Hotel = summary(h)
		}
		items[i] = r
	}
	page.Items = items
	return page, nil
}

func (s *Store) ListRoomsByHotel(_ context.Context, hotelID int64) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomsOf(hotelID), nil
}

func (s *Store) GetRoom(_ context.Context, id int64) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	if h, ok := s.hotels[r.HotelID]; ok {
		r.Hotel = summary(h)
	}
	return r, nil
}

func (s *Store) CreateRoom(_ context.Context, r *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[r.HotelID]; !ok {
		return domain.ErrNotFound
	}
	r.ID = s.nextID(r.ID)
	s.stamp(&r.CreatedAt)
	if r.Photo == "" {
		r.Photo = domain.DefaultPhoto
	}
	stored := *r
	stored.Hotel = nil
	s.rooms[r.ID] = stored
	return nil
}

func (s *Store) UpdateRoom(_ context.Context, r domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rooms[r.ID]
	if !ok {
		return domain.ErrNotFound
	}
	r.HotelID, r.UserID, r.Photo, r.CreatedAt, r.Hotel = cur.HotelID, cur.UserID, cur.Photo, cur.CreatedAt, nil
	s.rooms[r.ID] = r
	return nil
}

func (s *Store) DeleteRoom(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

func (s *Store) SetRoomPhoto(_ context.Context, id int64, photo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Photo = photo
	s.rooms[id] = r
	return nil
}

func (s *Store) AverageRoomCost(_ context.Context, hotelID int64) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	var n int
	for _, r := range s.rooms {
		if r.HotelID == hotelID {
			sum += r.Cost
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

// ---- reviews ----

func (s *Store) ListReviews(_ context.Context, q domain.ListQuery) (domain.Page[domain.Review], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, err := list(sortedValues(s.reviews), reviewFields, func(r domain.Review) int64 { return r.ID }, q)
	if err != nil {
		return page, err
	}
	items := make([]domain.Review, len(page.Items))
	for i, r := range page.Items {
		if h, ok := s.hotels[r.HotelID]; ok {
			r.Hotel = summary(h)
		}
		items[i] = r
	}
	page.Items = items
	return page, nil
}

func (s *Store) ListReviewsByHotel(_ context.Context, hotelID int64) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Review
	for _, r := range sortedValues(s.reviews) {
		if r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) GetReview(_ context.Context, id int64) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	if h, ok := s.hotels[r.HotelID]; ok {
		r.Hotel = summary(h)
	}
	return r, nil
}

func (s *Store) CreateReview(_ context.Context, r *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[r.HotelID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range s.reviews {
		if other.HotelID == r.HotelID && other.UserID == r.UserID {
			return domain.ErrDuplicate
		}
	}
	r.ID = s.nextID(r.ID)
	s.stamp(&r.CreatedAt)
	stored := *r
	stored.Hotel = nil
	s.reviews[r.ID] = stored
	return nil
}

func (s *Store) UpdateReview(_ context.Context, r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.reviews[r.ID]
	if !ok {
		return domain.ErrNotFound
	}
	r.HotelID, r.UserID, r.CreatedAt, r.Hotel = cur.HotelID, cur.UserID, cur.CreatedAt, nil
	s.reviews[r.ID] = r
	return nil
}

func (s *Store) DeleteReview(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *Store) AverageRating(_ context.Context, hotelID int64) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum, n int
	for _, r := range s.reviews {
		if r.HotelID == hotelID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return float64(sum) / float64(n), true, nil
}

func (s *Store) Purge(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.users)
	clear(s.hotels)
	clear(s.rooms)
	clear(s.reviews)
	return nil
}

var _ domain.Store = (*Store)(nil)
