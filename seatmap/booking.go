package seatmap

import "cineclic-tui/model"

// BuildBookingRequest assembles the outbound booking payload from the
// current selection, preserving seat order. The total is recomputed here
// from the live selection and per-seat price; no cached total is trusted.
func BuildBookingRequest(screeningID int64, roomID string, seats []Coord, pricePerSeat float64) model.BookingRequest {
	refs := make([]model.SeatRef, 0, len(seats))
	for _, c := range seats {
		refs = append(refs, model.SeatRef{Row: c.Row, Column: c.Column})
	}
	return model.BookingRequest{
		ScreeningID:  screeningID,
		RoomID:       roomID,
		Seats:        refs,
		PricePerSeat: pricePerSeat,
		TotalPrice:   float64(len(refs)) * pricePerSeat,
	}
}
