package domain

import (
	"strings"
	"time"
)

type RoomType string

const (
	RoomSingle   RoomType = "Single"
	RoomDouble   RoomType = "Double"
	RoomTriple   RoomType = "Triple"
	RoomKingSize RoomType = "KingSize"
)

type Room struct {
	ID               int64         `json:"id"`
	HotelID          int64         `json:"hotel"`
	UserID           int64         `json:"user"`
	Title            string        `json:"title" validate:"required"`
	Description      string        `json:"description" validate:"required"`
	Available        bool          `json:"available"`
	Cost             float64       `json:"cost" validate:"gte=0"`
	RoomType         []RoomType    `json:"roomType" validate:"required,min=1,dive,oneof=Single Double Triple KingSize"`
	MinimumOccupancy int           `json:"minimumOccupancy" validate:"min=1,max=5"`
	Photo            string        `json:"photo"`
	CreatedAt        time.Time     `json:"createdAt"`
	Hotel            *HotelSummary `json:"hotelInfo,omitempty"`
}

// RoomInput is the create payload. Pointers distinguish "absent" from zero
// so required fields and defaults can be told apart.
type RoomInput struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Available        *bool      `json:"available"`
	Cost             *float64   `json:"cost"`
	RoomType         []RoomType `json:"roomType"`
	MinimumOccupancy *int       `json:"minimumOccupancy"`
}

func (in RoomInput) Room(hotelID, userID int64) (Room, error) {
	r := Room{
		HotelID:     hotelID,
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Available:   true,
		RoomType:    in.RoomType,
		Photo:       DefaultPhoto,
	}
	if in.Available != nil {
		r.Available = *in.Available
	}
	missing := ValidationErrors{}
	if in.Cost == nil {
		missing["cost"] = "Please add room cost"
	} else {
		r.Cost = *in.Cost
	}
	if in.MinimumOccupancy == nil {
		missing["minimumOccupancy"] = "Please add number occupants between 1 and 5"
	} else {
		r.MinimumOccupancy = *in.MinimumOccupancy
	}
	if err := r.Validate(); err != nil {
		ve, ok := err.(ValidationErrors)
		if !ok {
			return Room{}, err
		}
		for k, v := range ve {
			if _, dup := missing[k]; !dup {
				missing[k] = v
			}
		}
	}
	if len(missing) > 0 {
		return Room{}, missing
	}
	return r, nil
}

type RoomPatch struct {
	Title            *string     `json:"title"`
	Description      *string     `json:"description"`
	Available        *bool       `json:"available"`
	Cost             *float64    `json:"cost"`
	RoomType         *[]RoomType `json:"roomType"`
	MinimumOccupancy *int        `json:"minimumOccupancy"`
}

func (p RoomPatch) Apply(r *Room) {
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	setIf(&r.Description, p.Description)
	setIf(&r.Available, p.Available)
	setIf(&r.Cost, p.Cost)
	setIf(&r.RoomType, p.RoomType)
	setIf(&r.MinimumOccupancy, p.MinimumOccupancy)
}

func (r *Room) Validate() error { return validateStruct(r) }
