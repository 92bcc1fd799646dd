package app

import (
	"context"
	"errors"

	"hotelbook/internal/domain"
)

type ReviewService struct {
	reviews domain.ReviewRepository
	hotels  domain.HotelRepository
	agg     *Aggregator
}

func NewReviewService(r domain.ReviewRepository, h domain.HotelRepository, agg *Aggregator) *ReviewService {
	return &ReviewService{reviews: r, hotels: h, agg: agg}
}

func (s *ReviewService) ListReviews(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Review], error) {
	return s.reviews.ListReviews(ctx, q)
}

func (s *ReviewService) ListHotelReviews(ctx context.Context, hotelID int64) ([]domain.Review, error) {
	if _, err := s.hotel(ctx, hotelID); err != nil {
		return nil, err
	}
	return s.reviews.ListReviewsByHotel(ctx, hotelID)
}

func (s *ReviewService) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	r, err := s.reviews.GetReview(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Review{}, domain.NotFoundf("No review found with the id of %d", id)
	}
	return r, err
}

// AddReview lets any authenticated user review an existing hotel once.
func (s *ReviewService) AddReview(ctx context.Context, actor domain.Actor, hotelID int64, in domain.Review) (domain.Review, error) {
	if _, err := s.hotel(ctx, hotelID); err != nil {
		return domain.Review{}, err
	}
	r := domain.Review{
		HotelID: hotelID,
		UserID:  actor.ID,
		Title:   in.Title,
		Text:    in.Text,
		Rating:  in.Rating,
	}
	if err := r.Validate(); err != nil {
		return domain.Review{}, err
	}
	if err := s.reviews.CreateReview(ctx, &r); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Review{}, domain.BadRequestf("User %d has already reviewed hotel %d", actor.ID, hotelID)
		}
		return domain.Review{}, err
	}
	s.agg.RefreshAverageRating(ctx, hotelID)
	return r, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, actor domain.Actor, id int64, p domain.ReviewPatch) (domain.Review, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	if err := authorize(actor, r.UserID, "Not authorized to update review"); err != nil {
		return domain.Review{}, err
	}
	p.Apply(&r)
	if err := r.Validate(); err != nil {
		return domain.Review{}, err
	}
	if err := s.reviews.UpdateReview(ctx, r); err != nil {
		return domain.Review{}, err
	}
	s.agg.RefreshAverageRating(ctx, r.HotelID)
	return r, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, actor domain.Actor, id int64) error {
	r, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, r.UserID, "Not authorized to delete review"); err != nil {
		return err
	}
	if err := s.reviews.DeleteReview(ctx, id); err != nil {
		return err
	}
	s.agg.RefreshAverageRating(ctx, r.HotelID)
	return nil
}

func (s *ReviewService) find(ctx context.Context, id int64) (domain.Review, error) {
	r, err := s.reviews.GetReview(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Review{}, domain.NotFoundf("No review with the id of %d", id)
	}
	return r, err
}

func (s *ReviewService) hotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := s.hotels.GetHotel(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Hotel{}, domain.NotFoundf("No hotel with the id of %d", id)
	}
	return h, err
}
