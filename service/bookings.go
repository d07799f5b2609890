package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"cineclic-tui/model"
)

var folioPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// ValidFolio reports whether a folio matches the NNNN-NNNN reservation
// number format.
func ValidFolio(folio string) bool {
	return folioPattern.MatchString(strings.TrimSpace(folio))
}

// CreateBooking submits a booking request. The request must carry at least
// one seat; the backend revalidates the selection and the derived total.
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	if len(req.Seats) == 0 {
		return model.Booking{}, errors.New("at least one seat is required")
	}
	var out struct {
		Booking model.Booking `json:"booking"`
	}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/bookings"), req, &out); err != nil {
		return model.Booking{}, err
	}
	return out.Booking, nil
}

// GetUserBookings lists the authenticated user's bookings.
func (c *Client) GetUserBookings(ctx context.Context) ([]model.Booking, error) {
	var out struct {
		Bookings []model.Booking `json:"bookings"`
	}
	if err := c.getJSON(ctx, c.endpoint("/bookings/user"), &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

// GetBookingByFolio looks one booking up by its reservation number.
func (c *Client) GetBookingByFolio(ctx context.Context, folio string) (model.Booking, error) {
	folio = strings.TrimSpace(folio)
	if !ValidFolio(folio) {
		return model.Booking{}, errors.New("folio must match NNNN-NNNN")
	}
	var out struct {
		Booking model.Booking `json:"booking"`
	}
	if err := c.getJSON(ctx, c.endpoint("/bookings/folio/"+url.PathEscape(folio)), &out); err != nil {
		return model.Booking{}, err
	}
	return out.Booking, nil
}

// CancelBooking cancels a booking. Cancelling an already-cancelled booking
// is reported via IsAlreadyCancelled so callers can treat it as a local
// status update rather than a failure.
func (c *Client) CancelBooking(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("booking id is required")
	}
	body := map[string]bool{"confirm": true}
	return c.doJSON(ctx, http.MethodPatch, c.endpoint(fmt.Sprintf("/bookings/%d/cancel", id)), body, nil)
}

// IsAlreadyCancelled reports whether a cancel attempt failed because the
// booking was cancelled before.
func IsAlreadyCancelled(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusConflict ||
		strings.Contains(strings.ToLower(apiErr.Message()), "cancelada")
}
