// Package seatmap implements the seat-selection session: the normalized
// room layout, the reconciliation of live seat events onto it, the
// capped local selection, and the reservation countdown. It is pure state;
// fetching, realtime transport, and rendering live elsewhere.
package seatmap

import (
	"errors"
	"strconv"
	"strings"

	"cineclic-tui/model"
)

// MaxColumns is the widest grid the seat-map screen renders. Layouts that
// report more columns are truncated to this width on purpose; the extra
// columns are dropped, not an error.
const MaxColumns = 11

// SeatState is the status of one cell as this client understands it.
type SeatState int

const (
	SeatAvailable SeatState = iota
	SeatSelected            // mid-selection by another client
	SeatReserved
	SeatOccupied
)

func (s SeatState) String() string {
	switch s {
	case SeatAvailable:
		return "available"
	case SeatSelected:
		return "selected"
	case SeatReserved:
		return "reserved"
	case SeatOccupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// Interactive reports whether this client may select the seat.
func (s SeatState) Interactive() bool {
	return s == SeatAvailable
}

// ParseState maps a wire status onto a SeatState. The empty string means
// available (sparse layouts omit open seats). Unknown statuses are treated
// as reserved: the server said the seat is not open, so it is not.
func ParseState(raw string) SeatState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "available":
		return SeatAvailable
	case "selected":
		return SeatSelected
	case "occupied":
		return SeatOccupied
	default:
		return SeatReserved
	}
}

// Coord identifies a seat by row label and column number.
type Coord struct {
	Row    string
	Column int
}

func (c Coord) String() string {
	return c.Row + strconv.Itoa(c.Column)
}

// ErrNoSeats is returned when a layout payload carries no seats map at all.
// The session must abort rather than render a grid it cannot trust.
var ErrNoSeats = errors.New("room layout has no seats map")

// Layout is the normalized seat grid at fetch time.
type Layout struct {
	rows    []string
	columns []int
	status  map[Coord]SeatState
}

// BuildLayout normalizes a fetched room layout. Columns beyond MaxColumns
// are sliced off; statuses for dropped columns are discarded with them.
// Cells the seats map leaves out default to available.
func BuildLayout(raw model.RoomLayout) (*Layout, error) {
	if raw.Seats == nil {
		return nil, ErrNoSeats
	}

	columns := raw.Columns
	if len(columns) > MaxColumns {
		columns = columns[:MaxColumns]
	}
	kept := make(map[int]bool, len(columns))
	for _, col := range columns {
		kept[col] = true
	}

	status := make(map[Coord]SeatState)
	for _, row := range raw.Rows {
		for colKey, cell := range raw.Seats[row] {
			col, err := strconv.Atoi(colKey)
			if err != nil || !kept[col] {
				continue
			}
			if st := ParseState(cell.State); st != SeatAvailable {
				status[Coord{Row: row, Column: col}] = st
			}
		}
	}

	return &Layout{
		rows:    append([]string(nil), raw.Rows...),
		columns: append([]int(nil), columns...),
		status:  status,
	}, nil
}

// Rows returns the row labels in rendering order.
func (l *Layout) Rows() []string {
	return l.rows
}

// Columns returns the column numbers in rendering order.
func (l *Layout) Columns() []int {
	return l.columns
}

// Status returns the fetch-time state of a cell. Absent cells are available.
func (l *Layout) Status(row string, column int) SeatState {
	return l.status[Coord{Row: row, Column: column}]
}
