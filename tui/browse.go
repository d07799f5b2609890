package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cineclic-tui/model"
)

const (
	scheduleDays   = 7
	maxTickets     = 5
	defaultTickets = 1
)

type movieItem struct {
	movie model.Movie
}

func (i movieItem) Title() string {
	return i.movie.Title
}

func (i movieItem) Description() string {
	parts := []string{}
	if i.movie.Duration > 0 {
		parts = append(parts, fmt.Sprintf("%d min", i.movie.Duration))
	}
	if i.movie.Rating > 0 {
		parts = append(parts, fmt.Sprintf("%.1f/5", i.movie.Rating))
	}
	if len(i.movie.Screenings) > 0 {
		parts = append(parts, fmt.Sprintf("%d showtimes", len(i.movie.Screenings)))
	}
	return strings.Join(parts, " | ")
}

func (i movieItem) FilterValue() string {
	return strings.ToLower(i.movie.Title + " " + i.movie.Description)
}

func buildMovieItems(movies []model.Movie) []list.Item {
	sorted := append([]model.Movie{}, movies...)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
	})
	items := make([]list.Item, 0, len(sorted))
	for _, movie := range sorted {
		items = append(items, movieItem{movie: movie})
	}
	return items
}

func (m appModel) handleDetailKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		model, cmd := m.goBack()
		return model, cmd, true
	case "left", "h":
		if m.dayOffset > 0 {
			m.dayOffset--
			m.dayIndex = 0
		}
		return m, nil, true
	case "right", "l":
		if m.dayOffset < scheduleDays-1 {
			m.dayOffset++
			m.dayIndex = 0
		}
		return m, nil, true
	case "up", "k":
		if m.dayIndex > 0 {
			m.dayIndex--
		}
		return m, nil, true
	case "down", "j":
		if m.dayIndex < len(m.screeningsForDay())-1 {
			m.dayIndex++
		}
		return m, nil, true
	case "1", "2", "3", "4", "5":
		stars := int(msg.String()[0] - '0')
		return m, m.rateMovieCmd(m.movie.ID, stars), true
	case "ctrl+e":
		if m.session.IsAdmin() {
			m.admin.startEditMovie(m.movie)
			m.state = stateAdminMovieForm
			return m, m.admin.focusField(stateAdminMovieForm), true
		}
		return m, nil, true
	case "ctrl+s":
		if m.session.IsAdmin() {
			m.admin.startSchedule(m.movie)
			m.state = stateAdminSchedule
			return m, m.admin.focusField(stateAdminSchedule), true
		}
		return m, nil, true
	case "ctrl+x":
		if m.session.IsAdmin() {
			if screening, ok := m.selectedScreening(); ok {
				return m, m.deleteScreeningCmd(screening.ID), true
			}
		}
		return m, nil, true
	case "enter":
		screening, ok := m.selectedScreening()
		if !ok {
			return m, nil, true
		}
		m.screening = screening
		if m.ticketCount < 1 || m.ticketCount > maxTickets {
			m.ticketCount = defaultTickets
		}
		m.state = statePickTickets
		return m, nil, true
	}
	return m, nil, true
}

// screeningsForDay filters the movie's screenings to the day the strip has
// focused, soonest first.
func (m appModel) screeningsForDay() []model.Screening {
	day := startOfDay(time.Now()).AddDate(0, 0, m.dayOffset)
	next := day.AddDate(0, 0, 1)

	var out []model.Screening
	for _, s := range m.screenings {
		local := s.StartTime.Local()
		if !local.Before(day) && local.Before(next) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (m appModel) selectedScreening() (model.Screening, bool) {
	day := m.screeningsForDay()
	if len(day) == 0 || m.dayIndex < 0 || m.dayIndex >= len(day) {
		return model.Screening{}, false
	}
	return day[m.dayIndex], true
}

func (m appModel) movieDetailView() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Render(m.movie.Title)
	b.WriteString(title)
	if m.movie.Duration > 0 {
		b.WriteString(hint(fmt.Sprintf("  %d min", m.movie.Duration)))
	}
	b.WriteString("\n")

	stars := renderStars(m.myRating)
	avg := ""
	if m.movie.Rating > 0 {
		avg = fmt.Sprintf("  avg %.1f/5", m.movie.Rating)
	}
	b.WriteString(fmt.Sprintf("Your rating: %s%s\n\n", stars, avg))

	if m.movie.Description != "" {
		b.WriteString(m.movie.Description)
		b.WriteString("\n\n")
	}

	b.WriteString(m.dayStripView())
	b.WriteString("\n\n")

	day := m.screeningsForDay()
	if len(day) == 0 {
		b.WriteString(hint("No showtimes on this day."))
		return b.String()
	}

	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	for i, s := range day {
		line := fmt.Sprintf("%s  Room %s  $%.2f", s.StartTime.Local().Format("15:04"), s.RoomID, s.Price)
		if i == m.dayIndex {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) dayStripView() string {
	chip := lipgloss.NewStyle().Padding(0, 1)
	active := chip.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("212")).Bold(true)

	base := startOfDay(time.Now())
	parts := make([]string, 0, scheduleDays)
	for i := 0; i < scheduleDays; i++ {
		day := base.AddDate(0, 0, i)
		label := day.Format("Mon 02")
		if i == 0 {
			label = "Today"
		}
		if i == m.dayOffset {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, chip.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func renderStars(stars int) string {
	if stars <= 0 {
		return hint("not rated")
	}
	if stars > 5 {
		stars = 5
	}
	return strings.Repeat("*", stars) + strings.Repeat(".", 5-stars)
}

func (m appModel) handleTicketKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		m.state = stateMovieDetail
		return m, nil, true
	case "up", "k", "+":
		if m.ticketCount < maxTickets {
			m.ticketCount++
		}
		return m, nil, true
	case "down", "j", "-":
		if m.ticketCount > 1 {
			m.ticketCount--
		}
		return m, nil, true
	case "1", "2", "3", "4", "5":
		m.ticketCount = int(msg.String()[0] - '0')
		return m, nil, true
	case "enter":
		return m.openSeatMap()
	}
	return m, nil, true
}

func (m appModel) ticketPickerView() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Showtime %s, Room %s\n\n", m.screening.StartTime.Local().Format("Mon 02 Jan 15:04"), m.screening.RoomID))
	b.WriteString("How many tickets?\n\n")

	chip := lipgloss.NewStyle().Padding(0, 1)
	active := chip.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("212")).Bold(true)
	parts := make([]string, 0, maxTickets)
	for i := 1; i <= maxTickets; i++ {
		label := fmt.Sprintf("%d", i)
		if i == m.ticketCount {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, chip.Render(label))
		}
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Total: $%.2f", float64(m.ticketCount)*m.screening.Price))
	return b.String()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
