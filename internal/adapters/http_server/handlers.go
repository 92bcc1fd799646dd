// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotelbook/internal/app"
	"hotelbook/internal/domain"
)

type Handlers struct {
	Hotels    *app.HotelService
	Rooms     *app.RoomService
	Reviews   *app.ReviewService
	Auth      *Authenticator
	MaxUpload int64
}

func (s *Server) MountHandlers(h *Handlers) {
	protect := h.Auth.Protect
	publisher := Authorize(domain.RolePublisher, domain.RoleAdmin)

	s.mux.Route("/api/v1", func(r chi.Router) {
		r.Route("/hotels", func(r chi.Router) {
			r.Get("/", h.listHotels)
			r.With(protect, publisher).Post("/", h.createHotel)
			r.Get("/radius/{zipcode}/{distance}", h.hotelsInRadius)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getHotel)
				r.With(protect, publisher).Put("/", h.updateHotel)
				r.With(protect, publisher).Delete("/", h.deleteHotel)
				r.With(protect, publisher).Put("/photo", h.hotelPhoto)

				r.Get("/rooms", h.listHotelRooms)
				r.With(protect, publisher).Post("/rooms", h.addRoom)

				r.Get("/reviews", h.listHotelReviews)
				r.With(protect).Post("/reviews", h.addReview)
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.listRooms)
			r.Get("/{id}", h.getRoom)
			r.With(protect, publisher).Put("/{id}", h.updateRoom)
			r.With(protect, publisher).Delete("/{id}", h.deleteRoom)
			r.With(protect, publisher).Post("/{id}/photo", h.roomPhoto)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.listReviews)
			r.Get("/{id}", h.getReview)
			r.With(protect).Put("/{id}", h.updateReview)
			r.With(protect).Delete("/{id}", h.deleteReview)
		})
	})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	q := domain.ParseListQuery(r.URL.Query())
	page, err := h.Hotels.ListHotels(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := project(page.Items, q.Select)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okPage(w, data, len(page.Items), domain.Paginate(q, page.Total))
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Hotels.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag, body := calcETagAndBody(envelope{Success: true, Data: hotel})
	if body == nil {
		writeError(w, r, errors.New("encode hotel"))
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.Hotel
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Hotels.CreateHotel(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, hotel)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p domain.HotelPatch
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Hotels.UpdateHotel(r.Context(), actor(r), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, hotel)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Hotels.DeleteHotel(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, struct{}{})
}

func (h *Handlers) hotelsInRadius(w http.ResponseWriter, r *http.Request) {
	miles, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil {
		writeError(w, r, domain.BadRequestf("Distance must be a non-negative number"))
		return
	}
	hotels, err := h.Hotels.HotelsInRadius(r.Context(), chi.URLParam(r, "zipcode"), miles)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okCount(w, hotels, len(hotels))
}

func (h *Handlers) hotelPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	// refuse strangers before their body is read
	if err := h.Hotels.AuthorizePhoto(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	up, closeFn, err := h.upload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFn()
	name, err := h.Hotels.UploadPhoto(r.Context(), actor(r), id, up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, name)
}

// upload reads the "file" part of a multipart body. A request without
// one yields a nil upload so the photo policy reports it.
func (h *Handlers) upload(w http.ResponseWriter, r *http.Request) (*domain.Upload, func(), error) {
	noop := func() {}
	// allow the multipart envelope on top of the largest accepted file
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.MaxUpload+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, noop, domain.BadRequestf("Please upload an image less than %d", h.MaxUpload)
		}
		return nil, noop, nil
	}
	f, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, domain.BadRequestf("Please upload a file")
	}
	return &domain.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        f,
	}, closer(f, r.MultipartForm), nil
}

func closer(f multipart.File, form *multipart.Form) func() {
	return func() {
		_ = f.Close()
		if form != nil {
			_ = form.RemoveAll()
		}
	}
}

// ---- rooms ----

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	q := domain.ParseListQuery(r.URL.Query())
	page, err := h.Rooms.ListRooms(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := project(page.Items, q.Select)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okPage(w, data, len(page.Items), domain.Paginate(q, page.Total))
}

func (h *Handlers) listHotelRooms(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rooms, err := h.Rooms.ListHotelRooms(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okCount(w, nonNil(rooms), len(rooms))
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.Rooms.GetRoom(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, room)
}

func (h *Handlers) addRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.RoomInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.Rooms.AddRoom(r.Context(), actor(r), hotelID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, room)
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p domain.RoomPatch
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.Rooms.UpdateRoom(r.Context(), actor(r), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, room)
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Rooms.DeleteRoom(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, struct{}{})
}

func (h *Handlers) roomPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	// refuse strangers before their body is read
	if err := h.Rooms.AuthorizePhoto(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	up, closeFn, err := h.upload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeFn()
	name, err := h.Rooms.UploadPhoto(r.Context(), actor(r), id, up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, name)
}

// ---- reviews ----

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q := domain.ParseListQuery(r.URL.Query())
	page, err := h.Reviews.ListReviews(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := project(page.Items, q.Select)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okPage(w, data, len(page.Items), domain.Paginate(q, page.Total))
}

func (h *Handlers) listHotelReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviews, err := h.Reviews.ListHotelReviews(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okCount(w, nonNil(reviews), len(reviews))
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.Reviews.GetReview(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, rv)
}

func (h *Handlers) addReview(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.Review
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.Reviews.AddReview(r.Context(), actor(r), hotelID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, rv)
}

func (h *Handlers) updateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p domain.ReviewPatch
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.Reviews.UpdateReview(r.Context(), actor(r), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, rv)
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Reviews.DeleteReview(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, struct{}{})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
