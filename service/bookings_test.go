package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cineclic-tui/model"
)

func TestValidFolio(t *testing.T) {
	valid := []string{"0001-0042", "9999-0000", " 1234-5678 "}
	for _, folio := range valid {
		if !ValidFolio(folio) {
			t.Fatalf("expected %q valid", folio)
		}
	}
	invalid := []string{"", "12345678", "123-45678", "abcd-efgh", "1234-567", "1234-56789"}
	for _, folio := range invalid {
		if ValidFolio(folio) {
			t.Fatalf("expected %q invalid", folio)
		}
	}
}

func TestCreateBooking_SendsDerivedPayload(t *testing.T) {
	var got model.BookingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bookings" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"booking": map[string]any{"id": 1, "folio": "0001-0001", "status": model.BookingActive},
		})
	}))
	defer server.Close()

	req := model.BookingRequest{
		ScreeningID:  9,
		RoomID:       "room-9",
		Seats:        []model.SeatRef{{Row: "A", Column: 1}, {Row: "A", Column: 2}},
		PricePerSeat: 50,
		TotalPrice:   100,
	}
	booking, err := fastClient(server.URL).CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if booking.Folio != "0001-0001" {
		t.Fatalf("expected folio from response, got %q", booking.Folio)
	}
	if got.TotalPrice != 100 || len(got.Seats) != 2 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestCreateBooking_RequiresSeats(t *testing.T) {
	_, err := fastClient("http://localhost:0").CreateBooking(context.Background(), model.BookingRequest{})
	if err == nil {
		t.Fatal("expected error for empty seat list")
	}
}

func TestGetBookingByFolio_RejectsBadFolio(t *testing.T) {
	_, err := fastClient("http://localhost:0").GetBookingByFolio(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for malformed folio")
	}
}

func TestCancelBooking_SendsConfirm(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := fastClient(server.URL).CancelBooking(context.Background(), 42); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/bookings/42/cancel" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if !gotBody["confirm"] {
		t.Fatalf("expected confirm flag, got %+v", gotBody)
	}
}

func TestIsAlreadyCancelled(t *testing.T) {
	if !IsAlreadyCancelled(&APIError{StatusCode: http.StatusConflict}) {
		t.Fatal("expected 409 to read as already cancelled")
	}
	if !IsAlreadyCancelled(&APIError{StatusCode: http.StatusBadRequest, Body: `{"error":"la reserva ya fue CANCELADA"}`}) {
		t.Fatal("expected cancelada message to read as already cancelled")
	}
	if IsAlreadyCancelled(&APIError{StatusCode: http.StatusBadRequest, Body: `{"error":"other"}`}) {
		t.Fatal("expected unrelated 400 to not read as already cancelled")
	}
	if IsAlreadyCancelled(nil) {
		t.Fatal("expected nil error to not read as already cancelled")
	}
}
