package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"hotelbook/internal/domain"
)

type HotelService struct {
	repo     domain.HotelRepository
	geo      domain.Geocoder
	cache    domain.Cache
	cacheTTL time.Duration
	photos   *PhotoPolicy
}

func NewHotelService(r domain.HotelRepository, g domain.Geocoder, c domain.Cache, ttl time.Duration, p *PhotoPolicy) *HotelService {
	return &HotelService{repo: r, geo: g, cache: c, cacheTTL: ttl, photos: p}
}

const hotelKeyPrefix = "hotel:"

func hotelKey(id int64) string { return fmt.Sprintf("%s%d", hotelKeyPrefix, id) }

func evictHotel(ctx context.Context, c domain.Cache, id int64) {
	if c == nil {
		return
	}
	if err := c.Del(ctx, hotelKey(id)); err != nil {
		log.Warn().Err(err).Int64("hotel", id).Msg("cache evict failed")
	}
}

func (s *HotelService) ListHotels(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Hotel], error) {
	return s.repo.ListHotels(ctx, q)
}

func (s *HotelService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &h); ok {
			return h, nil
		}
	}
	h, err := s.find(ctx, id, "Hotel not found with id of %d")
	if err != nil {
		return domain.Hotel{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, nil
}

func (s *HotelService) find(ctx context.Context, id int64, notFound string) (domain.Hotel, error) {
	h, err := s.repo.GetHotel(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Hotel{}, domain.NotFoundf(notFound, id)
	}
	return h, err
}

// CreateHotel stores a new hotel owned by actor. Non-admins may own one.
func (s *HotelService) CreateHotel(ctx context.Context, actor domain.Actor, in domain.Hotel) (domain.Hotel, error) {
	_, err := s.repo.FindHotelByOwner(ctx, actor.ID)
	switch {
	case err == nil && !actor.IsAdmin():
		return domain.Hotel{}, domain.AlreadyExists("The user with ID:%d has already published a hotel", actor.ID)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return domain.Hotel{}, err
	}

	h := domain.Hotel{
		UserID:      actor.ID,
		Name:        in.Name,
		Description: in.Description,
		Website:     in.Website,
		Phone:       in.Phone,
		Email:       in.Email,
		Address:     in.Address,
		Location:    in.Location,
		Photo:       domain.DefaultPhoto,
	}
	if h.Location == nil && h.Address != "" {
		if err := s.locate(ctx, &h); err != nil {
			return domain.Hotel{}, err
		}
	}
	if err := h.Validate(); err != nil {
		return domain.Hotel{}, err
	}
	if err := s.repo.CreateHotel(ctx, &h); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func (s *HotelService) UpdateHotel(ctx context.Context, actor domain.Actor, id int64, p domain.HotelPatch) (domain.Hotel, error) {
	h, err := s.find(ctx, id, "Hotel with id of %d not found")
	if err != nil {
		return domain.Hotel{}, err
	}
	if err := authorize(actor, h.UserID, "User %d is not authorized to update this hotel", actor.ID); err != nil {
		return domain.Hotel{}, err
	}
	p.Apply(&h)
	if p.Address != nil && p.Location == nil && h.Address != "" {
		if err := s.locate(ctx, &h); err != nil {
			return domain.Hotel{}, err
		}
	}
	if err := h.Validate(); err != nil {
		return domain.Hotel{}, err
	}
	if err := s.repo.UpdateHotel(ctx, h); err != nil {
		return domain.Hotel{}, err
	}
	evictHotel(ctx, s.cache, id)
	return h, nil
}

func (s *HotelService) DeleteHotel(ctx context.Context, actor domain.Actor, id int64) error {
	h, err := s.find(ctx, id, "Hotel not found with id of %d")
	if err != nil {
		return err
	}
	if err := authorize(actor, h.UserID, "User %d is not authorized to delete this hotel", actor.ID); err != nil {
		return err
	}
	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		return err
	}
	evictHotel(ctx, s.cache, id)
	return nil
}

// HotelsInRadius returns the hotels within miles of the geocoded zipcode.
func (s *HotelService) HotelsInRadius(ctx context.Context, zipcode string, miles float64) ([]domain.Hotel, error) {
	if math.IsNaN(miles) || math.IsInf(miles, 0) || miles < 0 {
		return nil, domain.BadRequestf("Distance must be a non-negative number")
	}
	pts, err := s.geo.Geocode(ctx, zipcode)
	if err != nil {
		return nil, domain.Internal("Geocoding failed", err)
	}
	if len(pts) == 0 {
		return nil, domain.NotFoundf("no location found for zipcode %s", zipcode)
	}
	center := pts[0]

	c := SearchCap(center.Lat, center.Lng, miles)
	candidates, err := s.repo.HotelsInBounds(ctx, CapBounds(c))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hotel, 0, len(candidates))
	for _, h := range candidates {
		if h.Location != nil && CapContains(c, h.Location.Lat, h.Location.Lng) {
			out = append(out, h)
		}
	}
	return out, nil
}

// AuthorizePhoto checks that the hotel exists and actor may replace its photo.
func (s *HotelService) AuthorizePhoto(ctx context.Context, actor domain.Actor, id int64) error {
	h, err := s.find(ctx, id, "Hotel not found with id of %d")
	if err != nil {
		return err
	}
	return authorize(actor, h.UserID, "User %d is not authorized to update this hotel", actor.ID)
}

func (s *HotelService) UploadPhoto(ctx context.Context, actor domain.Actor, id int64, up *domain.Upload) (string, error) {
	if err := s.AuthorizePhoto(ctx, actor, id); err != nil {
		return "", err
	}
	name, err := s.photos.Save(ctx, id, up)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetHotelPhoto(ctx, id, name); err != nil {
		return "", err
	}
	evictHotel(ctx, s.cache, id)
	return name, nil
}

// locate fills h.Location from h.Address.
func (s *HotelService) locate(ctx context.Context, h *domain.Hotel) error {
	pts, err := s.geo.Geocode(ctx, h.Address)
	if err != nil {
		return domain.Internal("Geocoding failed", err)
	}
	if len(pts) == 0 {
		return domain.BadRequestf("Could not geocode address %q", h.Address)
	}
	p := pts[0]
	h.Location = &domain.Location{
		Lat:              p.Lat,
		Lng:              p.Lng,
		FormattedAddress: p.FormattedAddress,
		Zipcode:          p.Zipcode,
	}
	return nil
}
