package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const maxRecentFolios = 8

// Session is the locally persisted sign-in state. The token is stored as
// issued; the server remains the authority on its validity.
type Session struct {
	Token   string    `json:"token"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	SavedAt time.Time `json:"saved_at"`
}

func (s Session) IsAdmin() bool {
	return strings.EqualFold(s.Role, "admin")
}

// Expired reports whether the stored token carries an exp claim that has
// already passed. Tokens without an exp claim are treated as live.
func (s Session) Expired() bool {
	exp, ok := tokenExpiry(s.Token)
	if !ok {
		return false
	}
	return time.Now().After(exp)
}

func LoadSession() (Session, error) {
	path, err := configPath("session.json")
	if err != nil {
		return Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, errors.New("invalid session format")
	}
	return session, nil
}

func SaveSession(token string, name string, email string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is required")
	}
	session := Session{
		Token:   token,
		Name:    name,
		Email:   email,
		Role:    tokenRole(token),
		SavedAt: time.Now(),
	}
	return writeJSON("session.json", session)
}

func ClearSession() error {
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

type ratingHistory struct {
	ByMovie map[string]int `json:"by_movie"`
}

// SaveMovieRating remembers the star rating this user gave a movie so the
// detail screen can show it without a round trip.
func SaveMovieRating(movieID int64, stars int) error {
	if movieID <= 0 {
		return errors.New("movie id is required")
	}
	if stars < 1 || stars > 5 {
		return errors.New("rating must be between 1 and 5")
	}

	history, err := loadRatingHistory()
	if err != nil {
		return err
	}
	history.ByMovie[strconv.FormatInt(movieID, 10)] = stars
	return writeJSON("ratings.json", history)
}

func LoadMovieRating(movieID int64) (int, error) {
	history, err := loadRatingHistory()
	if err != nil {
		return 0, err
	}
	return history.ByMovie[strconv.FormatInt(movieID, 10)], nil
}

type folioHistory struct {
	Folios []string `json:"folios"`
}

// RememberFolio puts a booking folio at the front of the lookup history,
// deduplicated and capped.
func RememberFolio(folio string) error {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return errors.New("folio is required")
	}

	history, _ := LoadRecentFolios()
	next := []string{folio}
	for _, existing := range history {
		if existing == folio {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentFolios {
			break
		}
	}
	return writeJSON("folios.json", folioHistory{Folios: next})
}

func LoadRecentFolios() ([]string, error) {
	path, err := configPath("folios.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history folioHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid folio history format")
	}
	return history.Folios, nil
}

func loadRatingHistory() (ratingHistory, error) {
	path, err := configPath("ratings.json")
	if err != nil {
		return ratingHistory{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ratingHistory{ByMovie: map[string]int{}}, nil
		}
		return ratingHistory{}, err
	}

	var history ratingHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return ratingHistory{}, errors.New("invalid rating history format")
	}
	if history.ByMovie == nil {
		history.ByMovie = map[string]int{}
	}
	return history, nil
}

// tokenRole pulls the role claim without verifying the signature. The
// client has no signing key; the value only gates which screens are shown
// and the server re-checks every privileged call.
func tokenRole(token string) string {
	claims := parseClaims(token)
	if claims == nil {
		return ""
	}
	if role, ok := claims["role"].(string); ok {
		return role
	}
	return ""
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := parseClaims(token)
	if claims == nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func parseClaims(token string) jwt.MapClaims {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

func writeJSON(name string, data any) error {
	path, err := configPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cineclic-tui", name), nil
}
