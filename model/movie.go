package model

import "time"

type Movie struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    int         `json:"duration"`
	Rating      float64     `json:"rating"`
	PosterURL   string      `json:"posterurl"`
	Screenings  []Screening `json:"screenings,omitempty"`
}

type Screening struct {
	ID        int64     `json:"id"`
	MovieID   int64     `json:"movieId"`
	RoomID    string    `json:"roomId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Price     float64   `json:"price"`
}
