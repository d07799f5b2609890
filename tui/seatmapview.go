package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cineclic-tui/model"
	"cineclic-tui/realtime"
	"cineclic-tui/seatmap"
	"cineclic-tui/store"
)

type roomMsg struct {
	room model.Room
	err  error
}

type subscribedMsg struct {
	sub *realtime.Subscription
	err error
}

type seatEventMsg struct {
	event realtime.Message
}

type seatStreamClosedMsg struct{}

type countdownTickMsg struct {
	gen int
}

type bookingMsg struct {
	booking model.Booking
	err     error
}

func (m appModel) openSeatMap() (appModel, tea.Cmd, bool) {
	m.seatNote = ""
	m.state = stateLoadingSeatMap
	return m, tea.Batch(m.fetchRoomCmd(m.screening.RoomID), m.spinner.Tick), true
}

func (m appModel) fetchRoomCmd(roomID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		room, err := client.GetRoom(commandContext(), roomID)
		return roomMsg{room: room, err: err}
	}
}

// seatMapOpen reports whether the seat-map session is still on screen.
// Async results that land after the user left must not touch it.
func (m appModel) seatMapOpen() bool {
	return m.state == stateSeatMap || m.state == stateSubmitting
}

func (m appModel) updateSeatMap(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case roomMsg:
		// A refetch that outlived the session must not resurrect it.
		if m.state != stateLoadingSeatMap && !m.seatMapOpen() {
			return m, nil
		}
		return m.handleRoom(msg)

	case subscribedMsg:
		if msg.err != nil {
			if m.seatMapOpen() {
				// The seat map still works on fetched state; it just will
				// not move until the next refetch.
				m.seatNote = "live seat updates unavailable"
			}
			return m, nil
		}
		if !m.seatMapOpen() {
			sub := msg.sub
			return m, func() tea.Msg {
				_ = sub.Close()
				return nil
			}
		}
		m.sub = msg.sub
		m.seatNote = ""
		return m, waitForSeatEventCmd(msg.sub)

	case seatEventMsg:
		if m.seats != nil && msg.event.ScreeningID == m.screening.ID {
			m.seats.Apply(msg.event.Seat.Row, msg.event.Seat.Column, msg.event.SeatState())
		}
		if m.sub != nil {
			return m, waitForSeatEventCmd(m.sub)
		}
		return m, nil

	case seatStreamClosedMsg:
		if m.sub == nil || !m.seatMapOpen() {
			return m, nil
		}
		// Dropped stream: events may have been missed, so refetch the
		// authoritative layout before resubscribing.
		dead := m.sub
		m.sub = nil
		m.seatNote = "reconnecting live updates"
		closeDead := func() tea.Msg {
			_ = dead.Close()
			return nil
		}
		return m, tea.Batch(closeDead, m.fetchRoomCmd(m.screening.RoomID), m.subscribeCmd())

	case countdownTickMsg:
		if msg.gen != m.timerGen || m.countdown == nil {
			return m, nil
		}
		if m.countdown.Tick() {
			teardown := m.abandonSeatsCmd()
			return m, tea.Batch(teardown, errWithReturnCmd(errors.New("your seat hold expired, pick a showtime again"), stateMovieDetail))
		}
		return m, tickCmd(m.timerGen)

	case bookingMsg:
		return m.handleBookingResult(msg)
	}
	return m, nil
}

func (m appModel) handleRoom(msg roomMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, errWithReturnCmd(msg.err, stateMovieDetail)
	}
	layout, err := seatmap.BuildLayout(msg.room.Layout)
	if err != nil {
		return m, errWithReturnCmd(err, stateMovieDetail)
	}
	m.room = msg.room

	if m.state == stateLoadingSeatMap {
		m.seats = seatmap.NewSession(layout, m.ticketCount)
		m.cursorRow = 0
		m.cursorCol = 0
		m.countdown = seatmap.NewCountdown(seatmap.DefaultBudget)
		m.timerGen++
		m.state = stateSeatMap
		return m, tea.Batch(m.subscribeCmd(), tickCmd(m.timerGen))
	}
	if m.seats == nil {
		// Torn down (expiry) while the refetch was in flight.
		return m, nil
	}

	// Rejoin after a dropped stream: the fresh layout is authoritative,
	// then reclaim whichever held seats it still shows as open.
	fresh := seatmap.NewSession(layout, m.ticketCount)
	var cmds []tea.Cmd
	for _, coord := range m.seats.Selected() {
		if fresh.Status(coord.Row, coord.Column) != seatmap.SeatAvailable {
			continue
		}
		if fresh.Toggle(coord.Row, coord.Column) == seatmap.IntentSelect {
			cmds = append(cmds, m.publishSelectCmd(coord))
		}
	}
	m.seats = fresh
	m.clampCursor()
	return m, tea.Batch(cmds...)
}

func (m appModel) handleBookingResult(msg bookingMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// The hold stays live: selection and countdown are untouched so the
		// user can retry or adjust seats.
		m.seatNote = errorText(msg.err)
		m.state = stateSeatMap
		return m, nil
	}
	m.booking = msg.booking
	if msg.booking.Folio != "" {
		_ = store.RememberFolio(msg.booking.Folio)
	}
	// Deselects let other clients see the seats freed right away; the
	// server's own occupied broadcast follows and wins.
	teardown := m.abandonSeatsCmd()
	m.state = stateConfirmation
	return m, teardown
}

func (m appModel) handleSeatMapKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	if m.seats == nil {
		return m, nil, true
	}
	rows := m.seats.Rows()
	cols := m.seats.Columns()

	switch msg.String() {
	case "esc":
		teardown := m.abandonSeatsCmd()
		m.state = stateMovieDetail
		return m, teardown, true
	case "up", "k":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
		return m, nil, true
	case "down", "j":
		if m.cursorRow < len(rows)-1 {
			m.cursorRow++
		}
		return m, nil, true
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
		return m, nil, true
	case "right", "l":
		if m.cursorCol < len(cols)-1 {
			m.cursorCol++
		}
		return m, nil, true
	case "enter", " ":
		coord := seatmap.Coord{Row: rows[m.cursorRow], Column: cols[m.cursorCol]}
		switch m.seats.Toggle(coord.Row, coord.Column) {
		case seatmap.IntentSelect:
			return m, m.publishSelectCmd(coord), true
		case seatmap.IntentDeselect:
			return m, m.publishDeselectCmd(coord), true
		}
		return m, nil, true
	case "c":
		if m.seats.Count() == 0 {
			m.seatNote = "pick at least one seat first"
			return m, nil, true
		}
		m.state = stateSubmitting
		return m, tea.Batch(m.submitBookingCmd(), m.spinner.Tick), true
	}
	return m, nil, true
}

func (m *appModel) clampCursor() {
	if m.seats == nil {
		return
	}
	if rows := m.seats.Rows(); m.cursorRow >= len(rows) {
		m.cursorRow = len(rows) - 1
	}
	if cols := m.seats.Columns(); m.cursorCol >= len(cols) {
		m.cursorCol = len(cols) - 1
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
	if m.cursorCol < 0 {
		m.cursorCol = 0
	}
}

// abandonSeatsCmd releases held seats and the live subscription. It covers
// every exit path that does not end in a booking.
func (m *appModel) abandonSeatsCmd() tea.Cmd {
	var cmds []tea.Cmd
	if m.seats != nil {
		for _, coord := range m.seats.Clear() {
			cmds = append(cmds, m.publishDeselectCmd(coord))
		}
	}
	cmds = append(cmds, m.releaseSeatMap())
	return tea.Batch(cmds...)
}

// releaseSeatMap stops the countdown and closes the subscription without
// touching seat holds. Safe to call when no seat map is open.
func (m *appModel) releaseSeatMap() tea.Cmd {
	m.timerGen++
	m.countdown = nil
	m.seats = nil
	sub := m.sub
	m.sub = nil
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		_ = sub.Close()
		return nil
	}
}

func (m appModel) subscribeCmd() tea.Cmd {
	live := m.live
	id := m.screening.ID
	return func() tea.Msg {
		if live == nil {
			return subscribedMsg{err: errors.New("no realtime channel configured")}
		}
		sub, err := live.Subscribe(context.Background(), id)
		return subscribedMsg{sub: sub, err: err}
	}
}

func waitForSeatEventCmd(sub *realtime.Subscription) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub.Events()
		if !ok {
			return seatStreamClosedMsg{}
		}
		return seatEventMsg{event: event}
	}
}

// Seat intents are best effort: a lost publish only delays what the next
// layout fetch reconciles anyway.
func (m appModel) publishSelectCmd(coord seatmap.Coord) tea.Cmd {
	live := m.live
	id := m.screening.ID
	return func() tea.Msg {
		if live != nil {
			_ = live.PublishSelect(context.Background(), id, model.SeatRef{Row: coord.Row, Column: coord.Column})
		}
		return nil
	}
}

func (m appModel) publishDeselectCmd(coord seatmap.Coord) tea.Cmd {
	live := m.live
	id := m.screening.ID
	return func() tea.Msg {
		if live != nil {
			_ = live.PublishDeselect(context.Background(), id, model.SeatRef{Row: coord.Row, Column: coord.Column})
		}
		return nil
	}
}

func (m appModel) submitBookingCmd() tea.Cmd {
	client := m.client
	req := seatmap.BuildBookingRequest(m.screening.ID, m.screening.RoomID, m.seats.Selected(), m.screening.Price)
	return func() tea.Msg {
		booking, err := client.CreateBooking(commandContext(), req)
		return bookingMsg{booking: booking, err: err}
	}
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownTickMsg{gen: gen}
	})
}

func (m appModel) seatMapView() string {
	if m.seats == nil {
		return "No seat map loaded."
	}
	rows := m.seats.Rows()
	cols := m.seats.Columns()

	styleAvailable := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleMine := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	styleReserved := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleOccupied := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleCursor := lipgloss.NewStyle().Reverse(true)

	var b strings.Builder

	gridWidth := len(cols)*4 - 1
	b.WriteString("   ")
	b.WriteString(screenBar(gridWidth))
	b.WriteString("\n\n")

	b.WriteString("   ")
	for _, col := range cols {
		b.WriteString(fmt.Sprintf(" %2d ", col))
	}
	b.WriteString("\n")

	for ri, row := range rows {
		b.WriteString(fmt.Sprintf("%2s ", row))
		for ci, col := range cols {
			token := "[ ]"
			style := styleAvailable
			switch {
			case m.seats.Mine(row, col):
				token = "[*]"
				style = styleMine
			default:
				switch m.seats.Status(row, col) {
				case seatmap.SeatSelected, seatmap.SeatReserved:
					token = "[x]"
					style = styleReserved
				case seatmap.SeatOccupied:
					token = " X "
					style = styleOccupied
				}
			}
			cell := style.Render(token)
			if ri == m.cursorRow && ci == m.cursorCol {
				cell = styleCursor.Render(token)
			}
			b.WriteString(" " + cell)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hint("[ ] open  [*] yours  [x] held elsewhere  X sold"))
	b.WriteString("\n\n")

	selected := m.seats.Selected()
	labels := make([]string, 0, len(selected))
	for _, coord := range selected {
		labels = append(labels, coord.String())
	}
	seatLine := "none yet"
	if len(labels) > 0 {
		seatLine = strings.Join(labels, ", ")
	}
	b.WriteString(fmt.Sprintf("Seats: %s (%d of %d)\n", seatLine, m.seats.Count(), m.seats.TicketCount()))
	b.WriteString(fmt.Sprintf("Total: $%.2f\n", float64(len(selected))*m.screening.Price))
	if m.seatNote != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render(m.seatNote) + "\n")
	}
	return b.String()
}

func screenBar(width int) string {
	label := " SCREEN "
	if width < len(label)+2 {
		width = len(label) + 2
	}
	padding := width - len(label)
	left := padding / 2
	right := padding - left
	bar := strings.Repeat("=", left) + label + strings.Repeat("=", right)
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214")).
		Render(bar)
}

func (m appModel) confirmationView() string {
	ok := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	var b strings.Builder
	b.WriteString(ok.Render("Booking confirmed"))
	b.WriteString("\n\n")
	if m.booking.Folio != "" {
		b.WriteString(fmt.Sprintf("Folio: %s\n", m.booking.Folio))
	}
	title := m.booking.Screening.Movie.Title
	if title == "" {
		title = m.movie.Title
	}
	b.WriteString(fmt.Sprintf("Movie: %s\n", title))
	when := m.booking.Screening.StartTime
	if when.IsZero() {
		when = m.screening.StartTime
	}
	b.WriteString(fmt.Sprintf("When:  %s\n", when.Local().Format("Mon 02 Jan 15:04")))
	seats := make([]string, 0, len(m.booking.Seats))
	for _, seat := range m.booking.Seats {
		seats = append(seats, seat.String())
	}
	if len(seats) > 0 {
		b.WriteString(fmt.Sprintf("Seats: %s\n", strings.Join(seats, ", ")))
	}
	b.WriteString("\n")
	b.WriteString(hint("Keep the folio to look this booking up later."))
	return b.String()
}
