package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cineclic-tui/model"
	"cineclic-tui/service"
	"cineclic-tui/store"
)

type bookingsMsg struct {
	bookings []model.Booking
	err      error
}

type folioMsg struct {
	booking model.Booking
	err     error
}

type cancelMsg struct {
	id  int64
	err error
}

type bookingItem struct {
	booking model.Booking
}

func (i bookingItem) Title() string {
	title := i.booking.Screening.Movie.Title
	if title == "" {
		title = "Unknown movie"
	}
	if i.booking.Folio != "" {
		return fmt.Sprintf("%s  (%s)", title, i.booking.Folio)
	}
	return title
}

func (i bookingItem) Description() string {
	parts := []string{}
	if !i.booking.Screening.StartTime.IsZero() {
		parts = append(parts, i.booking.Screening.StartTime.Local().Format("Mon 02 Jan 15:04"))
	}
	if room := i.booking.Screening.Room.Name; room != "" {
		parts = append(parts, "Room "+room)
	}
	if len(i.booking.Seats) > 0 {
		seats := make([]string, 0, len(i.booking.Seats))
		for _, seat := range i.booking.Seats {
			seats = append(seats, seat.String())
		}
		parts = append(parts, strings.Join(seats, " "))
	}
	if i.booking.Status == model.BookingCancelled {
		parts = append(parts, "CANCELLED")
	}
	return strings.Join(parts, " | ")
}

func (i bookingItem) FilterValue() string {
	return strings.ToLower(i.booking.Screening.Movie.Title + " " + i.booking.Folio)
}

func buildBookingItems(bookings []model.Booking) []list.Item {
	sorted := append([]model.Booking{}, bookings...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Screening.StartTime.After(sorted[j].Screening.StartTime)
	})
	items := make([]list.Item, 0, len(sorted))
	for _, booking := range sorted {
		items = append(items, bookingItem{booking: booking})
	}
	return items
}

func (m appModel) fetchBookingsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		bookings, err := client.GetUserBookings(commandContext())
		return bookingsMsg{bookings: bookings, err: err}
	}
}

func (m appModel) lookupFolioCmd(folio string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		booking, err := client.GetBookingByFolio(commandContext(), folio)
		return folioMsg{booking: booking, err: err}
	}
}

func (m appModel) cancelBookingCmd(id int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.CancelBooking(commandContext(), id)
		return cancelMsg{id: id, err: err}
	}
}

func (m appModel) updateBookings(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case bookingsMsg:
		if msg.err != nil {
			if service.IsUnauthorized(msg.err) {
				next, cmd := m.forceLogin()
				return next, cmd
			}
			return m, errWithReturnCmd(msg.err, stateBrowseMovies)
		}
		m.bookings = msg.bookings
		m.bookingList.SetItems(buildBookingItems(msg.bookings))
		m.cancelAsk = false
		m.state = stateBookings
		return m, nil

	case folioMsg:
		m.folioActive = false
		m.folioInput.Blur()
		if msg.err != nil {
			if service.IsNotFound(msg.err) {
				return m, errWithReturnCmd(fmt.Errorf("no booking with folio %s", m.folioInput.Value()), stateBookings)
			}
			return m, errWithReturnCmd(msg.err, stateBookings)
		}
		_ = store.RememberFolio(msg.booking.Folio)
		m.focusBooking(msg.booking)
		return m, nil

	case cancelMsg:
		m.cancelAsk = false
		if msg.err != nil && !service.IsAlreadyCancelled(msg.err) {
			return m, errWithReturnCmd(msg.err, stateBookings)
		}
		// Cancelled upstream or just now: either way the local copy flips.
		m.markCancelled(msg.id)
		return m, nil
	}
	return m, nil
}

// focusBooking makes sure the looked-up booking is in the list and selected.
func (m *appModel) focusBooking(booking model.Booking) {
	for i, existing := range m.bookings {
		if existing.ID == booking.ID {
			m.bookings[i] = booking
			m.bookingList.SetItems(buildBookingItems(m.bookings))
			m.selectBooking(booking.ID)
			return
		}
	}
	m.bookings = append(m.bookings, booking)
	m.bookingList.SetItems(buildBookingItems(m.bookings))
	m.selectBooking(booking.ID)
}

func (m *appModel) selectBooking(id int64) {
	for i, item := range m.bookingList.Items() {
		if bi, ok := item.(bookingItem); ok && bi.booking.ID == id {
			m.bookingList.Select(i)
			return
		}
	}
}

func (m *appModel) markCancelled(id int64) {
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			m.bookings[i].Status = model.BookingCancelled
		}
	}
	index := m.bookingList.Index()
	m.bookingList.SetItems(buildBookingItems(m.bookings))
	if index < len(m.bookingList.Items()) {
		m.bookingList.Select(index)
	}
}

func (m appModel) handleBookingsKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	if m.cancelAsk {
		switch msg.String() {
		case "y", "Y":
			m.cancelAsk = false
			item, ok := m.bookingList.SelectedItem().(bookingItem)
			if !ok {
				return m, nil, true
			}
			return m, m.cancelBookingCmd(item.booking.ID), true
		case "n", "N", "esc":
			m.cancelAsk = false
			return m, nil, true
		}
		return m, nil, true
	}

	if m.folioActive {
		switch msg.String() {
		case "esc":
			m.folioActive = false
			m.folioInput.Blur()
			return m, nil, true
		case "enter":
			folio := strings.TrimSpace(m.folioInput.Value())
			if !service.ValidFolio(folio) {
				return m, errWithReturnCmd(fmt.Errorf("folio must look like 0000-0000"), stateBookings), true
			}
			return m, m.lookupFolioCmd(folio), true
		}
		return m, nil, false
	}

	switch msg.String() {
	case "esc":
		model, cmd := m.goBack()
		return model, cmd, true
	case "f", "/":
		m.folioActive = true
		m.folioInput.SetValue("")
		return m, m.folioInput.Focus(), true
	case "x":
		item, ok := m.bookingList.SelectedItem().(bookingItem)
		if !ok || item.booking.Status == model.BookingCancelled {
			return m, nil, true
		}
		m.cancelAsk = true
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) bookingsView() string {
	var b strings.Builder
	b.WriteString(m.bookingList.View())
	if m.folioActive {
		b.WriteString("\n\nFolio lookup\n")
		b.WriteString(m.folioInput.View())
		if recent, _ := store.LoadRecentFolios(); len(recent) > 0 {
			b.WriteString("\n" + hint("Recent: "+strings.Join(recent, "  ")))
		}
	}
	if m.cancelAsk {
		if item, ok := m.bookingList.SelectedItem().(bookingItem); ok {
			warn := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
			b.WriteString("\n\n")
			b.WriteString(warn.Render(fmt.Sprintf("Cancel booking %s? (y/n)", item.booking.Folio)))
		}
	}
	return b.String()
}
