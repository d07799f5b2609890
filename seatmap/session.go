package seatmap

// Intent is the realtime message a toggle asks the caller to emit.
type Intent int

const (
	IntentNone Intent = iota
	IntentSelect
	IntentDeselect
)

// Session is the live state of one seat-map visit. It layers two sources:
// the authoritative grid (fetched layout patched by realtime events) and
// the local selection overlay (seats this client intends to book). The
// overlay is optimistic; authoritative non-available events for a cell
// evict any stale local mark on that same cell.
type Session struct {
	layout      *Layout
	patches     map[Coord]SeatState
	selection   []Coord
	ticketCount int
}

// NewSession starts a session over a normalized layout. ticketCount is the
// selection cap, fixed for the session's lifetime.
func NewSession(layout *Layout, ticketCount int) *Session {
	if ticketCount < 1 {
		ticketCount = 1
	}
	return &Session{
		layout:      layout,
		patches:     make(map[Coord]SeatState),
		ticketCount: ticketCount,
	}
}

func (s *Session) Rows() []string  { return s.layout.Rows() }
func (s *Session) Columns() []int  { return s.layout.Columns() }
func (s *Session) TicketCount() int { return s.ticketCount }

// Status returns the authoritative state of a cell: the latest realtime
// patch if one arrived, otherwise the fetch-time status.
func (s *Session) Status(row string, column int) SeatState {
	if st, ok := s.patches[Coord{Row: row, Column: column}]; ok {
		return st
	}
	return s.layout.Status(row, column)
}

// Mine reports whether the cell is in this client's own selection.
func (s *Session) Mine(row string, column int) bool {
	return s.indexOf(Coord{Row: row, Column: column}) >= 0
}

// Toggle applies the local selection rules for one cell and reports which
// intent, if any, the caller should emit upstream. It never fails: a toggle
// against a non-interactive seat or past the cap is absorbed as a no-op.
func (s *Session) Toggle(row string, column int) Intent {
	coord := Coord{Row: row, Column: column}

	if i := s.indexOf(coord); i >= 0 {
		s.selection = append(s.selection[:i], s.selection[i+1:]...)
		return IntentDeselect
	}
	if !s.Status(row, column).Interactive() {
		return IntentNone
	}
	if len(s.selection) >= s.ticketCount {
		return IntentNone
	}
	s.selection = append(s.selection, coord)
	return IntentSelect
}

// Apply patches one cell from a realtime event. Events are applied in
// receipt order, last wins, and touch only the targeted cell. A
// non-available state evicts the cell from the local selection: the server
// overrode this client, so the slot is freed without a deselect intent.
func (s *Session) Apply(row string, column int, state SeatState) {
	coord := Coord{Row: row, Column: column}
	s.patches[coord] = state

	if state != SeatAvailable {
		if i := s.indexOf(coord); i >= 0 {
			s.selection = append(s.selection[:i], s.selection[i+1:]...)
		}
	}
}

// Selected returns the local selection in insertion order.
func (s *Session) Selected() []Coord {
	return append([]Coord(nil), s.selection...)
}

// Count returns how many seats are currently selected.
func (s *Session) Count() int {
	return len(s.selection)
}

// AtCap reports whether the selection has reached the ticket count.
func (s *Session) AtCap() bool {
	return len(s.selection) >= s.ticketCount
}

// Clear wipes the local selection and returns the seats that were held, so
// the caller can emit best-effort deselect intents for each.
func (s *Session) Clear() []Coord {
	cleared := s.selection
	s.selection = nil
	return cleared
}

func (s *Session) indexOf(coord Coord) int {
	for i, c := range s.selection {
		if c == coord {
			return i
		}
	}
	return -1
}
