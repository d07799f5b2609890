package model

import (
	"strconv"
	"time"
)

const (
	BookingActive    = "ACTIVA"
	BookingCancelled = "CANCELADA"
)

// SeatRef identifies one seat by row label and column number.
type SeatRef struct {
	Row    string `json:"row"`
	Column int    `json:"column"`
}

func (s SeatRef) String() string {
	return s.Row + strconv.Itoa(s.Column)
}

// BookingRequest is the outbound payload for creating a booking. TotalPrice
// is always derived from the seat count and per-seat price at build time.
type BookingRequest struct {
	ScreeningID  int64     `json:"screeningId"`
	RoomID       string    `json:"roomId"`
	Seats        []SeatRef `json:"seats"`
	PricePerSeat float64   `json:"pricePerSeat"`
	TotalPrice   float64   `json:"totalPrice"`
}

type Booking struct {
	ID        int64            `json:"id"`
	Folio     string           `json:"folio"`
	Screening BookingScreening `json:"screening"`
	Seats     []SeatRef        `json:"seats"`
	Status    string           `json:"status"`
}

type BookingScreening struct {
	Movie     BookingMovie `json:"movie"`
	StartTime time.Time    `json:"startTime"`
	Room      BookingRoom  `json:"room"`
}

type BookingMovie struct {
	Title string `json:"title"`
}

type BookingRoom struct {
	Name string `json:"name"`
}
