package domain

import "time"

const DefaultPhoto = "no-photo.jpg"

type Hotel struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user"`
	Name          string    `json:"name" validate:"required,max=50"`
	Description   string    `json:"description" validate:"required,max=500"`
	Website       string    `json:"website,omitempty" validate:"omitempty,url"`
	Phone         string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email"`
	Address       string    `json:"address,omitempty"`
	Location      *Location `json:"location,omitempty" validate:"omitempty"`
	Photo         string    `json:"photo"`
	AverageCost   *float64  `json:"averageCost,omitempty"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	Rooms         []Room    `json:"rooms,omitempty"`
}

type Location struct {
	Lat              float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng              float64 `json:"lng" validate:"gte=-180,lte=180"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	Zipcode          string  `json:"zipcode,omitempty"`
}

// HotelSummary is the populated view of a hotel embedded in rooms and reviews.
type HotelSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HotelPatch carries the fields of an update request; nil means unchanged.
type HotelPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Website     *string   `json:"website"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
	Address     *string   `json:"address"`
	Location    *Location `json:"location"`
}

func (p HotelPatch) Apply(h *Hotel) {
	setIf(&h.Name, p.Name)
	setIf(&h.Description, p.Description)
	setIf(&h.Website, p.Website)
	setIf(&h.Phone, p.Phone)
	setIf(&h.Email, p.Email)
	setIf(&h.Address, p.Address)
	if p.Location != nil {
		loc := *p.Location
		h.Location = &loc
	}
}

func (h *Hotel) Validate() error { return validateStruct(h) }

// Bounds is a lat/lng rectangle in degrees used to pre-filter a radius query.
// When WrapsLng is set the longitude range crosses the antimeridian and
// matches lng >= MinLng OR lng <= MaxLng. AllLng disables the lng filter.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
	WrapsLng       bool
	AllLng         bool
}

func (b Bounds) Contains(lat, lng float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	switch {
	case b.AllLng:
		return true
	case b.WrapsLng:
		return lng >= b.MinLng || lng <= b.MaxLng
	}
	return lng >= b.MinLng && lng <= b.MaxLng
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
