package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetMovies_UnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movies" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"movies":[
			{"id":1,"title":"Dune","duration":155,"rating":4.5},
			{"id":2,"title":"Heat","duration":170}
		]}`))
	}))
	defer server.Close()

	movies, err := fastClient(server.URL).GetMovies(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(movies) != 2 || movies[0].Title != "Dune" || movies[1].ID != 2 {
		t.Fatalf("unexpected movies: %+v", movies)
	}
}

func TestGetMovie_ParsesScreenings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"movie":{"id":7,"title":"Dune","screenings":[
			{"id":11,"movieId":7,"roomId":"room-1","startTime":"2026-09-14T19:30:00Z","price":85}
		]}}`))
	}))
	defer server.Close()

	movie, err := fastClient(server.URL).GetMovie(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(movie.Screenings) != 1 {
		t.Fatalf("expected one screening, got %+v", movie.Screenings)
	}
	s := movie.Screenings[0]
	if s.ID != 11 || s.RoomID != "room-1" || s.Price != 85 {
		t.Fatalf("unexpected screening: %+v", s)
	}
}

func TestRateMovie_ValidatesRange(t *testing.T) {
	client := fastClient("http://localhost:0")
	if err := client.RateMovie(context.Background(), 1, 0); err == nil {
		t.Fatal("expected error for rating 0")
	}
	if err := client.RateMovie(context.Background(), 1, 6); err == nil {
		t.Fatal("expected error for rating 6")
	}
}

func TestGetMyRating_NotFoundMeansUnrated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	stars, err := fastClient(server.URL).GetMyRating(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected 404 swallowed, got %v", err)
	}
	if stars != 0 {
		t.Fatalf("expected 0 stars, got %d", stars)
	}
}

func TestLogin_RequiresTokenInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"name":"Ana","email":"ana@example.com"}}`))
	}))
	defer server.Close()

	_, err := fastClient(server.URL).Login(context.Background(), "ana@example.com", "Secret123")
	if err == nil {
		t.Fatal("expected error for tokenless login response")
	}
}

func TestCreateScreening_ValidatesWindow(t *testing.T) {
	client := fastClient("http://localhost:0")
	_, err := client.CreateScreening(context.Background(), ScreeningInput{MovieID: 1, RoomID: "room-1"})
	if err == nil {
		t.Fatal("expected error for zero-length screening window")
	}
}
