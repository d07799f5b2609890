package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cineclic-tui/config"
	"cineclic-tui/model"
	"cineclic-tui/realtime"
	"cineclic-tui/seatmap"
	"cineclic-tui/service"
	"cineclic-tui/store"
)

func newTestModel(t *testing.T) appModel {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	m := New(config.Config{APIBaseURL: "http://localhost:0", HTTPTimeout: time.Second}).(appModel)
	m.live = nil
	return m
}

func apply(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(appModel)
	if !ok {
		t.Fatalf("Update returned %T, want appModel", next)
	}
	return out, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testRoom() model.Room {
	return model.Room{
		ID: "r1",
		Layout: model.RoomLayout{
			Rows:    []string{"A", "B"},
			Columns: []int{1, 2, 3},
			Seats: map[string]map[string]model.SeatCell{
				"A": {"3": {State: "occupied"}},
			},
		},
	}
}

// seatMapModel walks a model through the loading-seat-map transition so seat
// tests start on a live session.
func seatMapModel(t *testing.T, tickets int) appModel {
	t.Helper()
	m := newTestModel(t)
	m.session = store.Session{Token: "token", Name: "Ana"}
	m.screening = model.Screening{ID: 7, RoomID: "r1", Price: 80}
	m.ticketCount = tickets
	m.state = stateLoadingSeatMap
	m, _ = apply(t, m, roomMsg{room: testRoom()})
	if m.state != stateSeatMap {
		t.Fatalf("expected seat map state, got %d", m.state)
	}
	if m.seats == nil || m.countdown == nil {
		t.Fatal("expected seat session and countdown to exist")
	}
	return m
}

func browseModel(t *testing.T) appModel {
	t.Helper()
	m := newTestModel(t)
	m.state = stateBrowseMovies
	m.movieList.SetItems(buildMovieItems([]model.Movie{
		{ID: 1, Title: "Barbarella"},
		{ID: 2, Title: "Solaris"},
	}))
	return m
}

func TestHandleFilterInput_SlashOpensThenRunesExtend(t *testing.T) {
	m := browseModel(t)

	if m.handleFilterInput(keyRunes("b")) {
		t.Fatal("a letter with no open filter is a shortcut, not filter input")
	}
	if !m.handleFilterInput(keyRunes("/")) {
		t.Fatal("expected slash to open the filter")
	}
	if !m.handleFilterInput(keyRunes("b")) {
		t.Fatal("expected rune to extend the open filter")
	}
	if !m.handleFilterInput(keyRunes("a")) {
		t.Fatal("expected rune to extend the open filter")
	}
	if got := m.movieList.FilterValue(); got != "ba" {
		t.Fatalf("expected filter value %q, got %q", "ba", got)
	}
}

func TestHandleFilterInput_SpaceAndBackspace(t *testing.T) {
	m := browseModel(t)

	if m.handleFilterInput(tea.KeyMsg{Type: tea.KeySpace}) {
		t.Fatal("space with no open filter is not filter input")
	}

	_ = m.handleFilterInput(keyRunes("/"))
	_ = m.handleFilterInput(keyRunes("s"))
	_ = m.handleFilterInput(keyRunes("o"))
	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeySpace}) {
		t.Fatal("expected space to be handled")
	}
	if got := m.movieList.FilterValue(); got != "so " {
		t.Fatalf("expected filter value %q, got %q", "so ", got)
	}

	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.movieList.FilterValue(); got != "so" {
		t.Fatalf("expected filter value %q, got %q", "so", got)
	}
}

func TestHandleFilterInput_BackspaceOnLastRuneClosesFilter(t *testing.T) {
	m := browseModel(t)

	_ = m.handleFilterInput(keyRunes("/"))
	_ = m.handleFilterInput(keyRunes("s"))
	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyBackspace}) {
		t.Fatal("expected backspace to be handled")
	}
	if m.filterOpen() {
		t.Fatal("expected filter to close after its last rune was removed")
	}
	if m.handleFilterInput(keyRunes("b")) {
		t.Fatal("letters should be shortcuts again once the filter is closed")
	}
}

func TestStartup_NoSessionGoesToLogin(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, startupMsg{})
	if m.state != stateLogin {
		t.Fatalf("expected login state, got %d", m.state)
	}
}

func TestStartup_SavedSessionLoadsMovies(t *testing.T) {
	m := newTestModel(t)
	m, cmd := apply(t, m, startupMsg{session: store.Session{Token: "token", Name: "Ana"}})
	if m.state != stateLoadingMovies {
		t.Fatalf("expected loading-movies state, got %d", m.state)
	}
	if m.session.Name != "Ana" {
		t.Fatalf("expected session to be adopted, got %q", m.session.Name)
	}
	if cmd == nil {
		t.Fatal("expected a fetch command")
	}
}

func TestMoviesMsg_PopulatesBrowseList(t *testing.T) {
	m := newTestModel(t)
	m.state = stateLoadingMovies
	m, _ = apply(t, m, moviesMsg{movies: []model.Movie{{ID: 1, Title: "Solaris"}}})
	if m.state != stateBrowseMovies {
		t.Fatalf("expected browse state, got %d", m.state)
	}
	if len(m.movieList.Items()) != 1 {
		t.Fatalf("expected 1 list item, got %d", len(m.movieList.Items()))
	}
}

func TestMoviesMsg_UnauthorizedForcesLogin(t *testing.T) {
	m := newTestModel(t)
	m.session = store.Session{Token: "stale"}
	m.state = stateLoadingMovies
	m, _ = apply(t, m, moviesMsg{err: &service.APIError{StatusCode: 401, Endpoint: "/movies"}})
	if m.state != stateLogin {
		t.Fatalf("expected login state, got %d", m.state)
	}
	if m.session.Token != "" {
		t.Fatal("expected session to be dropped")
	}
}

func TestErrMsg_RecoversToSensibleState(t *testing.T) {
	m := newTestModel(t)
	m.state = stateLoadingMovies
	m, _ = apply(t, m, errMsg{err: errors.New("backend down")})
	if m.state != stateError {
		t.Fatalf("expected error state, got %d", m.state)
	}
	if m.lastState != stateBrowseMovies {
		t.Fatalf("expected recovery target browse, got %d", m.lastState)
	}

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateBrowseMovies {
		t.Fatalf("expected esc to leave the error screen, got %d", m.state)
	}
}

func TestTicketPicker_Bounds(t *testing.T) {
	m := newTestModel(t)
	m.state = statePickTickets
	m.ticketCount = 1

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.ticketCount != 1 {
		t.Fatalf("expected floor of 1 ticket, got %d", m.ticketCount)
	}

	for i := 0; i < 7; i++ {
		m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	if m.ticketCount != maxTickets {
		t.Fatalf("expected cap of %d tickets, got %d", maxTickets, m.ticketCount)
	}

	m, _ = apply(t, m, keyRunes("3"))
	if m.ticketCount != 3 {
		t.Fatalf("expected 3 tickets, got %d", m.ticketCount)
	}
}

func TestSeatMap_RoomWithoutSeatsAborts(t *testing.T) {
	m := newTestModel(t)
	m.screening = model.Screening{ID: 7, RoomID: "r1"}
	m.state = stateLoadingSeatMap

	m, cmd := apply(t, m, roomMsg{room: model.Room{ID: "r1"}})
	if cmd == nil {
		t.Fatal("expected an error command")
	}
	m, _ = apply(t, m, cmd())
	if m.state != stateError {
		t.Fatalf("expected error state, got %d", m.state)
	}
	if m.lastState != stateMovieDetail {
		t.Fatalf("expected recovery to movie detail, got %d", m.lastState)
	}
}

func TestSeatMap_ToggleSelectsAndDeselects(t *testing.T) {
	m := seatMapModel(t, 2)

	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.seats.Mine("A", 1) {
		t.Fatal("expected A1 to be selected")
	}
	if cmd == nil {
		t.Fatal("expected a publish command for the select intent")
	}

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.seats.Mine("A", 1) {
		t.Fatal("expected A1 to be deselected by the second toggle")
	}
}

func TestSeatMap_CapIsSilentNoOp(t *testing.T) {
	m := seatMapModel(t, 1)

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.seats.Count() != 1 {
		t.Fatalf("expected cap to hold selection at 1, got %d", m.seats.Count())
	}
	if !m.seats.Mine("A", 1) || m.seats.Mine("A", 2) {
		t.Fatal("expected only the first seat to stay selected")
	}
	if m.state != stateSeatMap {
		t.Fatal("a capped toggle must not leave the seat map")
	}
}

func TestSeatMap_OccupiedSeatIgnoresToggle(t *testing.T) {
	m := seatMapModel(t, 2)

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.seats.Count() != 0 {
		t.Fatal("expected the occupied seat to stay unselected")
	}
}

func TestSeatMap_ConfirmNeedsSelection(t *testing.T) {
	m := seatMapModel(t, 2)

	m, _ = apply(t, m, keyRunes("c"))
	if m.state != stateSeatMap {
		t.Fatalf("expected to stay on the seat map, got %d", m.state)
	}
	if m.seatNote == "" {
		t.Fatal("expected a note asking for a seat")
	}
}

func TestSeatMap_EventPatchesAndEvicts(t *testing.T) {
	m := seatMapModel(t, 2)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = apply(t, m, seatEventMsg{event: realtime.Message{
		Type:        realtime.TypeUpdate,
		ScreeningID: 7,
		Seat:        model.SeatRef{Row: "A", Column: 1},
		State:       "occupied",
	}})
	if m.seats.Mine("A", 1) {
		t.Fatal("expected the occupied event to evict the local selection")
	}
	if m.seats.Status("A", 1) != seatmap.SeatOccupied {
		t.Fatal("expected the cell to show occupied")
	}
}

func TestSeatMap_EventForOtherScreeningIgnored(t *testing.T) {
	m := seatMapModel(t, 2)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = apply(t, m, seatEventMsg{event: realtime.Message{
		Type:        realtime.TypeSelect,
		ScreeningID: 99,
		Seat:        model.SeatRef{Row: "A", Column: 1},
	}})
	if !m.seats.Mine("A", 1) {
		t.Fatal("an event for another screening must not touch this session")
	}
}

func TestSeatMap_CountdownTicks(t *testing.T) {
	m := seatMapModel(t, 1)
	before := m.countdown.Remaining()

	m, _ = apply(t, m, countdownTickMsg{gen: m.timerGen - 1})
	if m.countdown.Remaining() != before {
		t.Fatal("a stale-generation tick must be ignored")
	}

	m, cmd := apply(t, m, countdownTickMsg{gen: m.timerGen})
	if m.countdown.Remaining() != before-1 {
		t.Fatalf("expected remaining %d, got %d", before-1, m.countdown.Remaining())
	}
	if cmd == nil {
		t.Fatal("expected the tick to re-arm")
	}
}

func TestSeatMap_ExpiryTearsDownOnce(t *testing.T) {
	m := seatMapModel(t, 1)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.countdown = seatmap.NewCountdown(1)

	m, cmd := apply(t, m, countdownTickMsg{gen: m.timerGen})
	if m.seats != nil || m.countdown != nil {
		t.Fatal("expected the seat session to be torn down on expiry")
	}
	if cmd == nil {
		t.Fatal("expected teardown and error commands")
	}

	// Any tick still in flight after teardown must be a no-op.
	m, _ = apply(t, m, countdownTickMsg{gen: m.timerGen})
	if m.seats != nil {
		t.Fatal("a post-expiry tick must not revive the session")
	}
}

func TestSeatMap_EscAbandonsSeats(t *testing.T) {
	m := seatMapModel(t, 2)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateMovieDetail {
		t.Fatalf("expected movie detail, got %d", m.state)
	}
	if m.seats != nil || m.countdown != nil {
		t.Fatal("expected the seat session to be released")
	}
}

func TestSeatMap_BookingFailureKeepsHold(t *testing.T) {
	m := seatMapModel(t, 2)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.state = stateSubmitting

	m, _ = apply(t, m, bookingMsg{err: errors.New("seat already taken")})
	if m.state != stateSeatMap {
		t.Fatalf("expected to return to the seat map, got %d", m.state)
	}
	if m.seats == nil || m.seats.Count() != 1 {
		t.Fatal("expected the selection to survive a failed booking")
	}
	if m.countdown == nil {
		t.Fatal("expected the countdown to keep running")
	}
	if m.seatNote == "" {
		t.Fatal("expected the failure to be surfaced")
	}
}

func TestSeatMap_BookingSuccessConfirms(t *testing.T) {
	m := seatMapModel(t, 2)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.state = stateSubmitting

	m, _ = apply(t, m, bookingMsg{booking: model.Booking{
		ID:    42,
		Folio: "1234-5678",
		Seats: []model.SeatRef{{Row: "A", Column: 1}},
	}})
	if m.state != stateConfirmation {
		t.Fatalf("expected confirmation, got %d", m.state)
	}
	if m.booking.Folio != "1234-5678" {
		t.Fatalf("expected the booking to be kept, got folio %q", m.booking.Folio)
	}
	if m.seats != nil || m.countdown != nil || m.sub != nil {
		t.Fatal("expected the seat session to be released on success")
	}

	folios, err := store.LoadRecentFolios()
	if err != nil || len(folios) != 1 || folios[0] != "1234-5678" {
		t.Fatalf("expected the folio to be remembered, got %v (%v)", folios, err)
	}
}

func TestSeatMap_StreamDropRefetchesRoom(t *testing.T) {
	m := seatMapModel(t, 2)
	m.sub = &realtime.Subscription{}

	m, cmd := apply(t, m, seatStreamClosedMsg{})
	if m.sub != nil {
		t.Fatal("expected the dead subscription to be dropped")
	}
	if m.seatNote == "" {
		t.Fatal("expected a reconnect note")
	}
	if cmd == nil {
		t.Fatal("expected a refetch and resubscribe command")
	}
}

func TestSeatMap_RejoinReclaimsOpenSeats(t *testing.T) {
	m := seatMapModel(t, 2)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// The refetched layout now shows A2 as taken, so only A1 comes back.
	room := testRoom()
	room.Layout.Seats["A"]["2"] = model.SeatCell{State: "occupied"}
	m, _ = apply(t, m, roomMsg{room: room})

	if !m.seats.Mine("A", 1) {
		t.Fatal("expected the still-open seat to be reclaimed")
	}
	if m.seats.Mine("A", 2) {
		t.Fatal("expected the taken seat to be dropped")
	}
}

func TestSeatMap_LateRoomAfterExitIgnored(t *testing.T) {
	m := seatMapModel(t, 2)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	// A refetch issued before the exit lands now.
	m, cmd := apply(t, m, roomMsg{room: testRoom()})
	if m.state != stateMovieDetail {
		t.Fatalf("expected to stay on movie detail, got %d", m.state)
	}
	if m.seats != nil || m.countdown != nil {
		t.Fatal("a late room fetch must not resurrect the session")
	}
	if cmd != nil {
		t.Fatal("a dropped room fetch must not arm new commands")
	}
}

func TestSeatMap_LateRoomAfterExpiryIgnored(t *testing.T) {
	m := seatMapModel(t, 1)
	m.countdown = seatmap.NewCountdown(1)
	m, _ = apply(t, m, countdownTickMsg{gen: m.timerGen})

	// The expiry error message is still in flight; a refetched room landing
	// in this window must not restart the session.
	m, cmd := apply(t, m, roomMsg{room: testRoom()})
	if m.seats != nil || m.countdown != nil {
		t.Fatal("a late room fetch must not restart an expired session")
	}
	if cmd != nil {
		t.Fatal("a dropped room fetch must not arm new commands")
	}
}

func TestSeatMap_LateSubscriptionAfterExitIsClosed(t *testing.T) {
	m := seatMapModel(t, 2)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m, cmd := apply(t, m, subscribedMsg{sub: &realtime.Subscription{}})
	if m.sub != nil {
		t.Fatal("a subscription arriving after exit must not be kept")
	}
	if cmd == nil {
		t.Fatal("expected a command closing the orphaned subscription")
	}

	m, _ = apply(t, m, subscribedMsg{err: errors.New("broker down")})
	if m.seatNote != "" {
		t.Fatalf("a late subscribe failure must not leave a note, got %q", m.seatNote)
	}
}

func TestSeatMap_ErrorExitReleasesHeldSeats(t *testing.T) {
	m := seatMapModel(t, 2)
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, cmd := apply(t, m, errMsg{err: errors.New("backend down")})
	if m.state != stateError {
		t.Fatalf("expected error state, got %d", m.state)
	}
	if m.seats != nil || m.countdown != nil {
		t.Fatal("expected the seat session to be torn down")
	}
	if cmd == nil {
		t.Fatal("expected deselect publishes for the held seat")
	}
}

func TestSeatMap_ResubscribeClearsReconnectNote(t *testing.T) {
	m := seatMapModel(t, 2)
	m.sub = &realtime.Subscription{}

	m, cmd := apply(t, m, seatStreamClosedMsg{})
	if m.seatNote == "" {
		t.Fatal("expected a reconnect note while the stream is down")
	}
	if cmd == nil {
		t.Fatal("expected the dead subscription to be closed and replaced")
	}

	m, _ = apply(t, m, subscribedMsg{sub: &realtime.Subscription{}})
	if m.sub == nil {
		t.Fatal("expected the fresh subscription to be adopted")
	}
	if m.seatNote != "" {
		t.Fatalf("expected the reconnect note to clear, got %q", m.seatNote)
	}
}

func TestAuth_LoginRequiresCredentials(t *testing.T) {
	m := newTestModel(t)
	m.state = stateLogin

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.auth.notice == "" {
		t.Fatal("expected a validation notice")
	}
	if m.state != stateLogin {
		t.Fatalf("expected to stay on login, got %d", m.state)
	}
}

func TestAuth_RegisterValidatesFields(t *testing.T) {
	m := newTestModel(t)
	m.state = stateRegister
	m.auth.name.SetValue("Ana Torres")
	m.auth.email.SetValue("not-an-email")
	m.auth.password.SetValue("Sup3rSecret")
	m.auth.confirm.SetValue("Sup3rSecret")

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.auth.notice == "" {
		t.Fatal("expected an email validation notice")
	}

	m.auth.email.SetValue("ana@example.com")
	m.auth.confirm.SetValue("different")
	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.auth.notice != "passwords do not match" {
		t.Fatalf("unexpected notice %q", m.auth.notice)
	}
}

func TestDetailKey_EnterPicksScreening(t *testing.T) {
	m := newTestModel(t)
	m.state = stateMovieDetail
	m.movie = model.Movie{ID: 1, Title: "Solaris"}
	m.screenings = []model.Screening{{
		ID:        7,
		RoomID:    "r1",
		StartTime: time.Now().Add(2 * time.Hour),
		Price:     80,
	}}

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != statePickTickets {
		t.Fatalf("expected ticket picker, got %d", m.state)
	}
	if m.screening.ID != 7 {
		t.Fatalf("expected screening 7, got %d", m.screening.ID)
	}
}
