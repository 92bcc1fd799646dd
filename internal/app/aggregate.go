package app

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"hotelbook/internal/domain"
)

// Aggregator keeps a hotel's derived averages in step with its rooms and
// reviews. It is best effort: failures are logged, never returned.
type Aggregator struct {
	hotels  domain.HotelRepository
	rooms   domain.RoomRepository
	reviews domain.ReviewRepository
	cache   domain.Cache
}

func NewAggregator(h domain.HotelRepository, r domain.RoomRepository, rv domain.ReviewRepository, c domain.Cache) *Aggregator {
	return &Aggregator{hotels: h, rooms: r, reviews: rv, cache: c}
}

// RoundCost rounds an average room cost up to the next multiple of 10.
func RoundCost(avg float64) float64 {
	return math.Ceil(avg/10) * 10
}

// RoundRating keeps one decimal.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func (a *Aggregator) RefreshAverageCost(ctx context.Context, hotelID int64) {
	avg, ok, err := a.rooms.AverageRoomCost(ctx, hotelID)
	if err != nil {
		log.Error().Err(err).Int64("hotel", hotelID).Msg("average cost query failed")
		return
	}
	if !ok {
		log.Debug().Int64("hotel", hotelID).Msg("no rooms left, average cost unchanged")
		return
	}
	if err := a.hotels.SetAverageCost(ctx, hotelID, RoundCost(avg)); err != nil {
		log.Error().Err(err).Int64("hotel", hotelID).Msg("average cost update failed")
		return
	}
	evictHotel(ctx, a.cache, hotelID)
}

func (a *Aggregator) RefreshAverageRating(ctx context.Context, hotelID int64) {
	avg, ok, err := a.reviews.AverageRating(ctx, hotelID)
	if err != nil {
		log.Error().Err(err).Int64("hotel", hotelID).Msg("average rating query failed")
		return
	}
	if !ok {
		return
	}
	if err := a.hotels.SetAverageRating(ctx, hotelID, RoundRating(avg)); err != nil {
		log.Error().Err(err).Int64("hotel", hotelID).Msg("average rating update failed")
		return
	}
	evictHotel(ctx, a.cache, hotelID)
}
