package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cineclic-tui/model"
)

// MovieInput carries the editable movie fields for create and update.
// Posters are referenced by URL; image hosting is the CDN's concern.
type MovieInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	Rating      float64 `json:"rating"`
	PosterURL   string  `json:"posterurl"`
}

// GetMovies returns the full catalog.
func (c *Client) GetMovies(ctx context.Context) ([]model.Movie, error) {
	var out struct {
		Movies []model.Movie `json:"movies"`
	}
	if err := c.getJSON(ctx, c.endpoint("/movies"), &out); err != nil {
		return nil, err
	}
	return out.Movies, nil
}

// GetMovie returns one movie with its screenings.
func (c *Client) GetMovie(ctx context.Context, id int64) (model.Movie, error) {
	if id <= 0 {
		return model.Movie{}, errors.New("movie id is required")
	}
	var out struct {
		Movie model.Movie `json:"movie"`
	}
	if err := c.getJSON(ctx, c.endpoint(fmt.Sprintf("/movies/%d", id)), &out); err != nil {
		return model.Movie{}, err
	}
	return out.Movie, nil
}

func (c *Client) CreateMovie(ctx context.Context, in MovieInput) (model.Movie, error) {
	if in.Title == "" {
		return model.Movie{}, errors.New("movie title is required")
	}
	var out struct {
		Movie model.Movie `json:"movie"`
	}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/movies"), in, &out); err != nil {
		return model.Movie{}, err
	}
	return out.Movie, nil
}

func (c *Client) UpdateMovie(ctx context.Context, id int64, in MovieInput) (model.Movie, error) {
	if id <= 0 {
		return model.Movie{}, errors.New("movie id is required")
	}
	var out struct {
		Movie model.Movie `json:"movie"`
	}
	if err := c.doJSON(ctx, http.MethodPut, c.endpoint(fmt.Sprintf("/movies/%d", id)), in, &out); err != nil {
		return model.Movie{}, err
	}
	return out.Movie, nil
}

func (c *Client) DeleteMovie(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("movie id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, c.endpoint(fmt.Sprintf("/movies/%d", id)), nil, nil)
}

// RateMovie submits the user's 1-5 star rating.
func (c *Client) RateMovie(ctx context.Context, id int64, rating int) error {
	if id <= 0 {
		return errors.New("movie id is required")
	}
	if rating < 1 || rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	body := map[string]int{"rating": rating}
	return c.doJSON(ctx, http.MethodPost, c.endpoint(fmt.Sprintf("/movies/%d/rating", id)), body, nil)
}

// GetMyRating returns the user's saved rating for a movie, or 0 when none
// is recorded.
func (c *Client) GetMyRating(ctx context.Context, id int64) (int, error) {
	if id <= 0 {
		return 0, errors.New("movie id is required")
	}
	var out struct {
		Rating int `json:"rating"`
	}
	err := c.getJSON(ctx, c.endpoint(fmt.Sprintf("/movies/%d/rating", id)), &out)
	if err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return out.Rating, nil
}
