package app

import (
	"context"
	"errors"

	"hotelbook/internal/domain"
)

type RoomService struct {
	rooms  domain.RoomRepository
	hotels domain.HotelRepository
	agg    *Aggregator
	photos *PhotoPolicy
}

func NewRoomService(r domain.RoomRepository, h domain.HotelRepository, agg *Aggregator, p *PhotoPolicy) *RoomService {
	return &RoomService{rooms: r, hotels: h, agg: agg, photos: p}
}

func (s *RoomService) ListRooms(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Room], error) {
	return s.rooms.ListRooms(ctx, q)
}

func (s *RoomService) ListHotelRooms(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	if _, err := s.hotel(ctx, hotelID); err != nil {
		return nil, err
	}
	return s.rooms.ListRoomsByHotel(ctx, hotelID)
}

func (s *RoomService) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	r, err := s.rooms.GetRoom(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Room{}, domain.NotFoundf("No room with the id of %d", id)
	}
	return r, err
}

func (s *RoomService) AddRoom(ctx context.Context, actor domain.Actor, hotelID int64, in domain.RoomInput) (domain.Room, error) {
	h, err := s.hotel(ctx, hotelID)
	if err != nil {
		return domain.Room{}, err
	}
	if err := authorize(actor, h.UserID, "User %d is not authorized to add a room to %d", actor.ID, h.ID); err != nil {
		return domain.Room{}, err
	}
	r, err := in.Room(hotelID, actor.ID)
	if err != nil {
		return domain.Room{}, err
	}
	if err := s.rooms.CreateRoom(ctx, &r); err != nil {
		return domain.Room{}, err
	}
	s.agg.RefreshAverageCost(ctx, hotelID)
	return r, nil
}

func (s *RoomService) UpdateRoom(ctx context.Context, actor domain.Actor, id int64, p domain.RoomPatch) (domain.Room, error) {
	r, err := s.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	if err := authorize(actor, r.UserID, "User %d is not authorized to update room %d", actor.ID, r.ID); err != nil {
		return domain.Room{}, err
	}
	p.Apply(&r)
	if err := r.Validate(); err != nil {
		return domain.Room{}, err
	}
	if err := s.rooms.UpdateRoom(ctx, r); err != nil {
		return domain.Room{}, err
	}
	s.agg.RefreshAverageCost(ctx, r.HotelID)
	return r, nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, actor domain.Actor, id int64) error {
	r, err := s.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, r.UserID, "User %d is not authorized to delete room %d", actor.ID, r.ID); err != nil {
		return err
	}
	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.agg.RefreshAverageCost(ctx, r.HotelID)
	return nil
}

// AuthorizePhoto reports whether actor may replace the room's photo.
func (s *RoomService) AuthorizePhoto(ctx context.Context, actor domain.Actor, id int64) error {
	r, err := s.rooms.GetRoom(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFoundf("Room not found with id of %d", id)
	}
	if err != nil {
		return err
	}
	return authorize(actor, r.UserID, "User %d is not authorized to update this room", actor.ID)
}

func (s *RoomService) UploadPhoto(ctx context.Context, actor domain.Actor, id int64, up *domain.Upload) (string, error) {
	if err := s.AuthorizePhoto(ctx, actor, id); err != nil {
		return "", err
	}
	name, err := s.photos.Save(ctx, id, up)
	if err != nil {
		return "", err
	}
	if err := s.rooms.SetRoomPhoto(ctx, id, name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *RoomService) hotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := s.hotels.GetHotel(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Hotel{}, domain.NotFoundf("No hotel with the id of %d", id)
	}
	return h, err
}
