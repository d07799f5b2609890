package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cineclic-tui/model"
)

// GetRoom fetches a room and its seat layout. A 2xx response without a
// seats map is a ShapeError: the seat map screen cannot render a layout it
// cannot trust, so no defaults are substituted.
func (c *Client) GetRoom(ctx context.Context, roomID string) (model.Room, error) {
	if roomID == "" {
		return model.Room{}, errors.New("room id is required")
	}
	endpoint := c.endpoint("/rooms/" + url.PathEscape(roomID))

	var out struct {
		Room model.Room `json:"room"`
	}
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return model.Room{}, err
	}
	if out.Room.Layout.Seats == nil {
		return model.Room{}, &ShapeError{Endpoint: endpoint, Missing: "room.layout.seats"}
	}
	return out.Room, nil
}

// CreateRoom registers a new room with its layout.
func (c *Client) CreateRoom(ctx context.Context, name string, capacity int, layout model.RoomLayout) (model.Room, error) {
	if name == "" {
		return model.Room{}, errors.New("room name is required")
	}
	body := struct {
		Name     string           `json:"name"`
		Capacity int              `json:"capacity"`
		Layout   model.RoomLayout `json:"layout"`
	}{Name: name, Capacity: capacity, Layout: layout}

	var out struct {
		Room model.Room `json:"room"`
	}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/rooms"), body, &out); err != nil {
		return model.Room{}, err
	}
	if out.Room.ID == "" {
		return model.Room{}, &ShapeError{Endpoint: c.endpoint("/rooms"), Missing: "room.id"}
	}
	return out.Room, nil
}

// DefaultLayout builds the standard 7x13 grid used for auto-created rooms.
// A deterministic hash of the seed marks roughly one seat in ten occupied so
// new rooms do not all look identical.
func DefaultLayout(seed string) model.RoomLayout {
	rows := []string{"A", "B", "C", "D", "E", "F", "G"}
	columns := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}

	seats := make(map[string]map[string]model.SeatCell, len(rows))
	for _, row := range rows {
		seats[row] = make(map[string]model.SeatCell, len(columns))
		for _, column := range columns {
			state := "available"
			if seatSeedHash(fmt.Sprintf("%s-%s-%d", seed, row, column)) < 10 {
				state = "occupied"
			}
			seats[row][strconv.Itoa(column)] = model.SeatCell{State: state}
		}
	}
	return model.RoomLayout{Rows: rows, Columns: columns, Seats: seats}
}

func seatSeedHash(s string) int {
	sum := 0
	for _, r := range s {
		sum += int(r)
	}
	return sum % 100
}
