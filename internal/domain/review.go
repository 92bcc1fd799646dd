package domain

import "time"

type Review struct {
	ID        int64         `json:"id"`
	HotelID   int64         `json:"hotel"`
	UserID    int64         `json:"user"`
	Title     string        `json:"title" validate:"required,max=100"`
	Text      string        `json:"text" validate:"required"`
	Rating    int           `json:"rating" validate:"required,min=1,max=10"`
	CreatedAt time.Time     `json:"createdAt"`
	Hotel     *HotelSummary `json:"hotelInfo,omitempty"`
}

type ReviewPatch struct {
	Title  *string `json:"title"`
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}

func (p ReviewPatch) Apply(r *Review) {
	setIf(&r.Title, p.Title)
	setIf(&r.Text, p.Text)
	setIf(&r.Rating, p.Rating)
}

func (r *Review) Validate() error { return validateStruct(r) }
