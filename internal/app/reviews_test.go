package app_test

import (
	"context"
	"fmt"
	"testing"

	"hotelbook/internal/app"
	"hotelbook/internal/domain"
)

func TestRoundRating(t *testing.T) {
	if got := app.RoundRating(7.666); got != 7.7 {
		t.Fatalf("RoundRating = %v", got)
	}
}

func TestReviews_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, domain.RolePublisher)
	alice := f.user(t, domain.RoleUser)
	bob := f.user(t, domain.RoleUser)
	admin := f.user(t, domain.RoleAdmin)
	h := f.hotel(t, owner, "Reviewed", nil)

	a, err := f.reviews.AddReview(ctx, alice, h.ID, domain.Review{Title: "Great", Text: "Loved it", Rating: 9})
	if err != nil {
		t.Fatalf("alice review: %v", err)
	}
	if a.UserID != alice.ID || a.HotelID != h.ID {
		t.Fatalf("unexpected review: %+v", a)
	}

	_, err = f.reviews.AddReview(ctx, alice, h.ID, domain.Review{Title: "Again", Text: "x", Rating: 1})
	wantKind(t, err, domain.KindBadRequest)
	wantMsg(t, err, fmt.Sprintf("User %d has already reviewed hotel %d", alice.ID, h.ID))

	b, err := f.reviews.AddReview(ctx, bob, h.ID, domain.Review{Title: "Meh", Text: "ok", Rating: 4})
	if err != nil {
		t.Fatalf("bob review: %v", err)
	}
	hotel, _ := f.store.GetHotel(ctx, h.ID)
	if hotel.AverageRating == nil || *hotel.AverageRating != 6.5 {
		t.Fatalf("averageRating = %v", hotel.AverageRating)
	}

	// only the author or an admin may change a review
	_, err = f.reviews.UpdateReview(ctx, bob, a.ID, domain.ReviewPatch{Rating: ptr(1)})
	wantKind(t, err, domain.KindUnauthorized)
	wantMsg(t, err, "Not authorized to update review")

	err = f.reviews.DeleteReview(ctx, bob, a.ID)
	wantKind(t, err, domain.KindUnauthorized)
	wantMsg(t, err, "Not authorized to delete review")

	upd, err := f.reviews.UpdateReview(ctx, admin, b.ID, domain.ReviewPatch{Rating: ptr(10)})
	if err != nil || upd.Rating != 10 || upd.Title != "Meh" {
		t.Fatalf("admin update: %+v, %v", upd, err)
	}

	if err := f.reviews.DeleteReview(ctx, alice, a.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	hotel, _ = f.store.GetHotel(ctx, h.ID)
	if *hotel.AverageRating != 10 {
		t.Fatalf("averageRating after delete = %v", *hotel.AverageRating)
	}
}

func TestReviews_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, domain.RolePublisher)
	u := f.user(t, domain.RoleUser)
	h := f.hotel(t, owner, "Strict", nil)

	for name, in := range map[string]domain.Review{
		"no title":    {Text: "t", Rating: 5},
		"rating high": {Title: "t", Text: "t", Rating: 11},
		"no rating":   {Title: "t", Text: "t"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.reviews.AddReview(ctx, u, h.ID, in)
			wantKind(t, err, domain.KindBadRequest)
		})
	}

	_, err := f.reviews.AddReview(ctx, u, 999, domain.Review{Title: "t", Text: "t", Rating: 5})
	wantKind(t, err, domain.KindNotFound)
}

func TestReviews_ReadPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, domain.RolePublisher)
	u := f.user(t, domain.RoleUser)
	h := f.hotel(t, owner, "Readable", nil)
	rv, err := f.reviews.AddReview(ctx, u, h.ID, domain.Review{Title: "t", Text: "t", Rating: 5})
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.reviews.GetReview(ctx, rv.ID)
	if err != nil || got.Hotel == nil || got.Hotel.Name != "Readable" {
		t.Fatalf("GetReview = %+v, %v", got, err)
	}
	_, err = f.reviews.GetReview(ctx, 999)
	wantMsg(t, err, "No review found with the id of 999")

	list, err := f.reviews.ListHotelReviews(ctx, h.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListHotelReviews = %v, %v", list, err)
	}
}
