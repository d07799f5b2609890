package seatmap

import (
	"testing"

	"cineclic-tui/model"
)

func openLayout(t *testing.T, rows []string, columns []int) *Layout {
	t.Helper()
	layout, err := BuildLayout(model.RoomLayout{
		Rows:    rows,
		Columns: columns,
		Seats:   map[string]map[string]model.SeatCell{},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	return layout
}

func TestToggle_SelectThenDeselect(t *testing.T) {
	s := NewSession(openLayout(t, []string{"A"}, []int{1, 2}), 2)

	if got := s.Toggle("A", 1); got != IntentSelect {
		t.Fatalf("expected select intent, got %v", got)
	}
	if !s.Mine("A", 1) {
		t.Fatal("expected A1 in local selection")
	}
	if got := s.Toggle("A", 1); got != IntentDeselect {
		t.Fatalf("expected deselect intent, got %v", got)
	}
	if s.Mine("A", 1) || s.Count() != 0 {
		t.Fatalf("expected empty selection, got %v", s.Selected())
	}
}

func TestToggle_CapIsSilentNoOp(t *testing.T) {
	s := NewSession(openLayout(t, []string{"A"}, []int{1, 2, 3}), 2)

	s.Toggle("A", 1)
	s.Toggle("A", 2)
	if !s.AtCap() {
		t.Fatal("expected selection at cap")
	}

	if got := s.Toggle("A", 3); got != IntentNone {
		t.Fatalf("expected no-op past the cap, got %v", got)
	}
	if s.Count() != 2 {
		t.Fatalf("expected count to stay 2, got %d", s.Count())
	}

	// Deselecting below the cap reopens the slot.
	if got := s.Toggle("A", 1); got != IntentDeselect {
		t.Fatalf("expected deselect, got %v", got)
	}
	if got := s.Toggle("A", 3); got != IntentSelect {
		t.Fatalf("expected select after freeing a slot, got %v", got)
	}
}

func TestToggle_NonInteractiveSeats(t *testing.T) {
	layout, err := BuildLayout(model.RoomLayout{
		Rows:    []string{"A"},
		Columns: []int{1, 2, 3},
		Seats: map[string]map[string]model.SeatCell{
			"A": {
				"1": {State: "occupied"},
				"2": {State: "reserved"},
			},
		},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	s := NewSession(layout, 3)

	if got := s.Toggle("A", 1); got != IntentNone {
		t.Fatalf("expected occupied seat to be a no-op, got %v", got)
	}
	if got := s.Toggle("A", 2); got != IntentNone {
		t.Fatalf("expected reserved seat to be a no-op, got %v", got)
	}
	if s.Count() != 0 {
		t.Fatalf("expected empty selection, got %v", s.Selected())
	}
}

func TestApply_LastEventWins(t *testing.T) {
	s := NewSession(openLayout(t, []string{"A"}, []int{1, 2}), 2)

	s.Apply("A", 1, SeatOccupied)
	if got := s.Status("A", 1); got != SeatOccupied {
		t.Fatalf("expected occupied, got %v", got)
	}

	s.Apply("A", 1, SeatAvailable)
	if got := s.Status("A", 1); got != SeatAvailable {
		t.Fatalf("expected available event to override occupied, got %v", got)
	}
	if got := s.Toggle("A", 1); got != IntentSelect {
		t.Fatalf("expected freed seat to be selectable, got %v", got)
	}
	// Only the targeted cell moved.
	if got := s.Status("A", 2); got != SeatAvailable {
		t.Fatalf("expected untouched cell to stay available, got %v", got)
	}
}

func TestApply_EvictsOverriddenSelection(t *testing.T) {
	s := NewSession(openLayout(t, []string{"A"}, []int{1, 2}), 2)

	s.Toggle("A", 1)
	s.Toggle("A", 2)

	// Another client won the race for A1; our hold on A2 is untouched.
	s.Apply("A", 1, SeatOccupied)

	if s.Mine("A", 1) {
		t.Fatal("expected A1 evicted from local selection")
	}
	if !s.Mine("A", 2) {
		t.Fatal("expected A2 still held")
	}
	if got := s.Status("A", 1); got != SeatOccupied {
		t.Fatalf("expected A1 occupied, got %v", got)
	}
	// The freed slot can be reused.
	if got := s.Toggle("A", 1); got != IntentNone {
		t.Fatalf("expected occupied A1 to stay untoggleable, got %v", got)
	}
}

func TestApply_AvailableEventKeepsSelection(t *testing.T) {
	s := NewSession(openLayout(t, []string{"A"}, []int{1}), 1)
	s.Toggle("A", 1)

	// A stray available broadcast for a seat we hold leaves the local
	// overlay in place; Mine wins over the authoritative grid in rendering.
	s.Apply("A", 1, SeatAvailable)
	if !s.Mine("A", 1) {
		t.Fatal("expected selection kept on available event")
	}
}

func TestClear_ReturnsHeldSeats(t *testing.T) {
	s := NewSession(openLayout(t, []string{"A", "B"}, []int{1}), 2)
	s.Toggle("A", 1)
	s.Toggle("B", 1)

	cleared := s.Clear()
	if len(cleared) != 2 || cleared[0] != (Coord{"A", 1}) || cleared[1] != (Coord{"B", 1}) {
		t.Fatalf("expected cleared seats in insertion order, got %v", cleared)
	}
	if s.Count() != 0 {
		t.Fatalf("expected empty selection, got %d", s.Count())
	}
}

func TestSelected_InsertionOrderAndCopy(t *testing.T) {
	s := NewSession(openLayout(t, []string{"A"}, []int{1, 2, 3}), 3)
	s.Toggle("A", 3)
	s.Toggle("A", 1)

	got := s.Selected()
	if len(got) != 2 || got[0] != (Coord{"A", 3}) || got[1] != (Coord{"A", 1}) {
		t.Fatalf("expected insertion order, got %v", got)
	}

	got[0] = Coord{"Z", 99}
	if s.Selected()[0] != (Coord{"A", 3}) {
		t.Fatal("expected Selected to return a copy")
	}
}

func TestNewSession_TicketCountFloor(t *testing.T) {
	s := NewSession(openLayout(t, []string{"A"}, []int{1, 2}), 0)
	if s.TicketCount() != 1 {
		t.Fatalf("expected ticket count floored to 1, got %d", s.TicketCount())
	}
}

// Walks the selection flow end to end the way the screen drives it.
func TestSession_BookingFlow(t *testing.T) {
	layout, err := BuildLayout(model.RoomLayout{
		Rows:    []string{"A", "B"},
		Columns: []int{1, 2},
		Seats: map[string]map[string]model.SeatCell{
			"B": {"1": {State: "occupied"}},
		},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	s := NewSession(layout, 2)

	if got := s.Toggle("A", 1); got != IntentSelect {
		t.Fatalf("step 1: got %v", got)
	}
	if got := s.Toggle("A", 2); got != IntentSelect {
		t.Fatalf("step 2: got %v", got)
	}
	if got := s.Toggle("B", 2); got != IntentNone {
		t.Fatalf("step 3: expected cap no-op, got %v", got)
	}
	if got := s.Toggle("A", 1); got != IntentDeselect {
		t.Fatalf("step 4: got %v", got)
	}
	if got := s.Toggle("B", 1); got != IntentNone {
		t.Fatalf("step 5: expected occupied no-op, got %v", got)
	}

	req := BuildBookingRequest(7, "room-1", s.Selected(), 50)
	if len(req.Seats) != 1 || req.Seats[0] != (model.SeatRef{Row: "A", Column: 2}) {
		t.Fatalf("expected only A2 in request, got %v", req.Seats)
	}
	if req.TotalPrice != 50 {
		t.Fatalf("expected total 50, got %v", req.TotalPrice)
	}
}

func TestBuildBookingRequest_DerivesTotal(t *testing.T) {
	seats := []Coord{{"A", 1}, {"A", 2}, {"C", 5}}
	req := BuildBookingRequest(3, "room-9", seats, 85.5)

	if req.ScreeningID != 3 || req.RoomID != "room-9" {
		t.Fatalf("unexpected identity fields: %+v", req)
	}
	if req.PricePerSeat != 85.5 {
		t.Fatalf("expected per-seat price kept, got %v", req.PricePerSeat)
	}
	if req.TotalPrice != 256.5 {
		t.Fatalf("expected total 256.5, got %v", req.TotalPrice)
	}
	for i, coord := range seats {
		if req.Seats[i] != (model.SeatRef{Row: coord.Row, Column: coord.Column}) {
			t.Fatalf("expected seat order preserved, got %v", req.Seats)
		}
	}
}

func TestBuildBookingRequest_Empty(t *testing.T) {
	req := BuildBookingRequest(1, "room-1", nil, 100)
	if len(req.Seats) != 0 || req.TotalPrice != 0 {
		t.Fatalf("expected empty request with zero total, got %+v", req)
	}
}
