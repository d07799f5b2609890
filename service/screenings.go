package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cineclic-tui/model"
)

// ScreeningInput carries the fields for scheduling a screening.
type ScreeningInput struct {
	MovieID   int64     `json:"movieId"`
	RoomID    string    `json:"roomId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Price     float64   `json:"price"`
}

// GetScreenings lists every scheduled screening.
func (c *Client) GetScreenings(ctx context.Context) ([]model.Screening, error) {
	var out struct {
		Screenings []model.Screening `json:"screenings"`
	}
	if err := c.getJSON(ctx, c.endpoint("/screening"), &out); err != nil {
		return nil, err
	}
	return out.Screenings, nil
}

func (c *Client) CreateScreening(ctx context.Context, in ScreeningInput) (model.Screening, error) {
	if in.MovieID <= 0 || in.RoomID == "" {
		return model.Screening{}, errors.New("movie id and room id are required")
	}
	if !in.StartTime.Before(in.EndTime) {
		return model.Screening{}, errors.New("screening must end after it starts")
	}
	var out struct {
		Screening model.Screening `json:"screening"`
	}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/screening"), in, &out); err != nil {
		return model.Screening{}, err
	}
	return out.Screening, nil
}

func (c *Client) DeleteScreening(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("screening id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, c.endpoint(fmt.Sprintf("/screening/%d", id)), nil, nil)
}
