package model

import (
	"encoding/json"
	"fmt"
)

type Room struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Capacity int        `json:"capacity"`
	Layout   RoomLayout `json:"layout"`
}

// RoomLayout is the seat grid as the backend serves it: ordered row labels,
// ordered column numbers, and a sparse per-seat status map keyed by row then
// column. Cells absent from the map are available.
type RoomLayout struct {
	Rows    []string                       `json:"rows"`
	Columns []int                          `json:"columns"`
	Seats   map[string]map[string]SeatCell `json:"seats"`
}

// SeatCell tolerates both wire encodings of a seat status: a bare string
// ("occupied") or an object ({"state":"occupied"}).
type SeatCell struct {
	State string
}

func (c *SeatCell) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.State)
	}
	var obj struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("seat cell: %w", err)
	}
	c.State = obj.State
	return nil
}

func (c SeatCell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.State)
}
