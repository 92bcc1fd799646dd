package domain

import (
	"context"
	"io"
)

type HotelRepository interface {
	ListHotels(ctx context.Context, q ListQuery) (Page[Hotel], error)
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	FindHotelByOwner(ctx context.Context, userID int64) (Hotel, error)
	HotelsInBounds(ctx context.Context, b Bounds) ([]Hotel, error)
	CreateHotel(ctx context.Context, h *Hotel) error
	UpdateHotel(ctx context.Context, h Hotel) error
	// DeleteHotel removes the hotel together with its rooms and reviews.
	DeleteHotel(ctx context.Context, id int64) error
	SetHotelPhoto(ctx context.Context, id int64, photo string) error
	SetAverageCost(ctx context.Context, id int64, cost float64) error
	SetAverageRating(ctx context.Context, id int64, rating float64) error
}

type RoomRepository interface {
	ListRooms(ctx context.Context, q ListQuery) (Page[Room], error)
	ListRoomsByHotel(ctx context.Context, hotelID int64) ([]Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	CreateRoom(ctx context.Context, r *Room) error
	UpdateRoom(ctx context.Context, r Room) error
	DeleteRoom(ctx context.Context, id int64) error
	SetRoomPhoto(ctx context.Context, id int64, photo string) error
	// AverageRoomCost reports ok=false when the hotel has no rooms.
	AverageRoomCost(ctx context.Context, hotelID int64) (avg float64, ok bool, err error)
}

type ReviewRepository interface {
	ListReviews(ctx context.Context, q ListQuery) (Page[Review], error)
	ListReviewsByHotel(ctx context.Context, hotelID int64) ([]Review, error)
	GetReview(ctx context.Context, id int64) (Review, error)
	CreateReview(ctx context.Context, r *Review) error
	UpdateReview(ctx context.Context, r Review) error
	DeleteReview(ctx context.Context, id int64) error
	AverageRating(ctx context.Context, hotelID int64) (avg float64, ok bool, err error)
}

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, u *User) error
}

// Store is everything the persistence layer provides.
type Store interface {
	HotelRepository
	RoomRepository
	ReviewRepository
	UserRepository
	Purge(ctx context.Context) error
}

type GeoPoint struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	Zipcode          string  `json:"zipcode,omitempty"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Country          string  `json:"country,omitempty"`
}

// Geocoder resolves a free-form location (postal code, address, city) to
// candidate points, best match first. Zero results is not an error.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]GeoPoint, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type PhotoStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
}

// Upload is an incoming photo file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}
