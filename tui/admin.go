package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cineclic-tui/model"
	"cineclic-tui/service"
)

type movieSavedMsg struct {
	movie model.Movie
	err   error
}

type movieDeletedMsg struct {
	err error
}

type screeningSavedMsg struct {
	movieID int64
	err     error
}

type screeningDeletedMsg struct {
	movieID int64
	err     error
}

// adminForm backs both admin screens: the movie editor and the screening
// scheduler. Which one is live follows from the app state.
type adminForm struct {
	editing bool
	movieID int64

	title       textinput.Model
	description textinput.Model
	duration    textinput.Model
	rating      textinput.Model
	poster      textinput.Model

	date    textinput.Model
	showAt  textinput.Model
	price   textinput.Model
	movie   model.Movie

	focus  int
	notice string
}

func newAdminForm() adminForm {
	f := adminForm{}
	f.title = textinput.New()
	f.title.Placeholder = "Title"
	f.title.CharLimit = 120
	f.description = textinput.New()
	f.description.Placeholder = "Description"
	f.description.CharLimit = 500
	f.duration = textinput.New()
	f.duration.Placeholder = "Duration (minutes)"
	f.rating = textinput.New()
	f.rating.Placeholder = "Rating 0-5"
	f.poster = textinput.New()
	f.poster.Placeholder = "Poster URL"
	f.poster.CharLimit = 300

	f.date = textinput.New()
	f.date.Placeholder = "YYYY-MM-DD"
	f.showAt = textinput.New()
	f.showAt.Placeholder = "HH:MM"
	f.price = textinput.New()
	f.price.Placeholder = "Price per seat"
	return f
}

func (f *adminForm) startCreateMovie() {
	f.editing = false
	f.movieID = 0
	f.notice = ""
	f.focus = 0
	f.title.SetValue("")
	f.description.SetValue("")
	f.duration.SetValue("")
	f.rating.SetValue("")
	f.poster.SetValue("")
}

func (f *adminForm) startEditMovie(movie model.Movie) {
	f.editing = true
	f.movieID = movie.ID
	f.notice = ""
	f.focus = 0
	f.title.SetValue(movie.Title)
	f.description.SetValue(movie.Description)
	f.duration.SetValue(strconv.Itoa(movie.Duration))
	f.rating.SetValue(fmt.Sprintf("%.1f", movie.Rating))
	f.poster.SetValue(movie.PosterURL)
}

func (f *adminForm) startSchedule(movie model.Movie) {
	f.movie = movie
	f.notice = ""
	f.focus = 0
	f.date.SetValue(time.Now().Format(time.DateOnly))
	f.showAt.SetValue("")
	f.price.SetValue("")
}

func (f *adminForm) fieldsFor(state appState) []*textinput.Model {
	switch state {
	case stateAdminMovieForm:
		return []*textinput.Model{&f.title, &f.description, &f.duration, &f.rating, &f.poster}
	case stateAdminSchedule:
		return []*textinput.Model{&f.date, &f.showAt, &f.price}
	default:
		return nil
	}
}

func (f *adminForm) focusField(state appState) tea.Cmd {
	fields := f.fieldsFor(state)
	if len(fields) == 0 {
		return nil
	}
	if f.focus < 0 || f.focus >= len(fields) {
		f.focus = 0
	}
	var cmd tea.Cmd
	for i, field := range fields {
		if i == f.focus {
			cmd = field.Focus()
		} else {
			field.Blur()
		}
	}
	return cmd
}

func (f *adminForm) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, 8)
	var cmd tea.Cmd
	for _, field := range []*textinput.Model{
		&f.title, &f.description, &f.duration, &f.rating, &f.poster,
		&f.date, &f.showAt, &f.price,
	} {
		*field, cmd = field.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m appModel) handleAdminKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "down":
		fields := m.admin.fieldsFor(m.state)
		m.admin.focus = (m.admin.focus + 1) % len(fields)
		return m, m.admin.focusField(m.state), true
	case "shift+tab", "up":
		fields := m.admin.fieldsFor(m.state)
		m.admin.focus = (m.admin.focus - 1 + len(fields)) % len(fields)
		return m, m.admin.focusField(m.state), true
	case "esc":
		if m.state == stateAdminMovieForm && !m.admin.editing {
			m.state = stateBrowseMovies
		} else {
			m.state = stateMovieDetail
		}
		return m, nil, true
	case "ctrl+d":
		if m.state == stateAdminMovieForm && m.admin.editing {
			return m, m.deleteMovieCmd(m.admin.movieID), true
		}
		return m, nil, true
	case "enter":
		if m.state == stateAdminMovieForm {
			return m.submitMovieForm()
		}
		return m.submitScheduleForm()
	}
	return m, nil, false
}

func (m appModel) submitMovieForm() (appModel, tea.Cmd, bool) {
	title := strings.TrimSpace(m.admin.title.Value())
	if title == "" {
		m.admin.notice = "title is required"
		return m, nil, true
	}
	duration, err := strconv.Atoi(strings.TrimSpace(m.admin.duration.Value()))
	if err != nil || duration <= 0 {
		m.admin.notice = "duration must be a positive number of minutes"
		return m, nil, true
	}
	rating := 0.0
	if raw := strings.TrimSpace(m.admin.rating.Value()); raw != "" {
		rating, err = strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > 5 {
			m.admin.notice = "rating must be between 0 and 5"
			return m, nil, true
		}
	}

	in := service.MovieInput{
		Title:       title,
		Description: strings.TrimSpace(m.admin.description.Value()),
		Duration:    duration,
		Rating:      rating,
		PosterURL:   strings.TrimSpace(m.admin.poster.Value()),
	}
	if m.admin.editing {
		return m, m.updateMovieCmd(m.admin.movieID, in), true
	}
	return m, m.createMovieCmd(in), true
}

func (m appModel) submitScheduleForm() (appModel, tea.Cmd, bool) {
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(m.admin.date.Value()), time.Local)
	if err != nil {
		m.admin.notice = "date must look like 2026-09-14"
		return m, nil, true
	}
	clock, err := time.Parse("15:04", strings.TrimSpace(m.admin.showAt.Value()))
	if err != nil {
		m.admin.notice = "time must look like 19:30"
		return m, nil, true
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(m.admin.price.Value()), 64)
	if err != nil || price <= 0 {
		m.admin.notice = "price must be a positive amount"
		return m, nil, true
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local)
	if start.Before(time.Now()) {
		m.admin.notice = "showtime is in the past"
		return m, nil, true
	}
	duration := m.admin.movie.Duration
	if duration <= 0 {
		duration = 120
	}
	end := start.Add(time.Duration(duration) * time.Minute)
	return m, m.createScreeningCmd(m.admin.movie, start, end, price), true
}

func (m appModel) createMovieCmd(in service.MovieInput) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		movie, err := client.CreateMovie(commandContext(), in)
		return movieSavedMsg{movie: movie, err: err}
	}
}

func (m appModel) updateMovieCmd(id int64, in service.MovieInput) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		movie, err := client.UpdateMovie(commandContext(), id, in)
		return movieSavedMsg{movie: movie, err: err}
	}
}

func (m appModel) deleteMovieCmd(id int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.DeleteMovie(commandContext(), id)
		return movieDeletedMsg{err: err}
	}
}

// createScreeningCmd provisions a fresh room for the showtime and then
// registers the screening in it. Every screening gets its own seat grid.
func (m appModel) createScreeningCmd(movie model.Movie, start time.Time, end time.Time, price float64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := commandContext()
		seed := fmt.Sprintf("%d-%s", movie.ID, start.Format(time.RFC3339))
		layout := service.DefaultLayout(seed)
		capacity := len(layout.Rows) * len(layout.Columns)
		name := fmt.Sprintf("%s %s", movie.Title, start.Format("Jan 02 15:04"))
		room, err := client.CreateRoom(ctx, name, capacity, layout)
		if err != nil {
			return screeningSavedMsg{movieID: movie.ID, err: err}
		}
		_, err = client.CreateScreening(ctx, service.ScreeningInput{
			MovieID:   movie.ID,
			RoomID:    room.ID,
			StartTime: start,
			EndTime:   end,
			Price:     price,
		})
		return screeningSavedMsg{movieID: movie.ID, err: err}
	}
}

func (m appModel) deleteScreeningCmd(id int64) tea.Cmd {
	client := m.client
	movieID := m.movie.ID
	return func() tea.Msg {
		err := client.DeleteScreening(commandContext(), id)
		return screeningDeletedMsg{movieID: movieID, err: err}
	}
}

func (m appModel) updateAdmin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case movieSavedMsg:
		if msg.err != nil {
			m.admin.notice = errorText(msg.err)
			return m, nil
		}
		if m.admin.editing {
			return m, m.fetchMovieDetailCmd(msg.movie.ID)
		}
		m.state = stateLoadingMovies
		return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick)

	case movieDeletedMsg:
		if msg.err != nil {
			m.admin.notice = errorText(msg.err)
			return m, nil
		}
		m.movie = model.Movie{}
		m.state = stateLoadingMovies
		return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick)

	case screeningSavedMsg:
		if msg.err != nil {
			m.admin.notice = errorText(msg.err)
			return m, nil
		}
		return m, m.fetchMovieDetailCmd(msg.movieID)

	case screeningDeletedMsg:
		if msg.err != nil {
			return m, errWithReturnCmd(msg.err, stateMovieDetail)
		}
		return m, m.fetchMovieDetailCmd(msg.movieID)
	}
	return m, nil
}

func (m appModel) adminView() string {
	var b strings.Builder

	title := "New movie"
	switch {
	case m.state == stateAdminSchedule:
		title = "Schedule showtime: " + m.admin.movie.Title
	case m.admin.editing:
		title = "Edit movie"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")

	labels := map[*textinput.Model]string{
		&m.admin.title:       "Title",
		&m.admin.description: "Description",
		&m.admin.duration:    "Duration",
		&m.admin.rating:      "Rating",
		&m.admin.poster:      "Poster URL",
		&m.admin.date:        "Date",
		&m.admin.showAt:      "Time",
		&m.admin.price:       "Price",
	}
	for _, field := range m.admin.fieldsFor(m.state) {
		b.WriteString(labels[field])
		b.WriteString("\n")
		b.WriteString(field.View())
		b.WriteString("\n\n")
	}

	if m.state == stateAdminMovieForm && m.admin.editing {
		b.WriteString(hint("ctrl+d deletes this movie"))
		b.WriteString("\n")
	}
	if m.admin.notice != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.admin.notice))
		b.WriteString("\n")
	}
	return b.String()
}
