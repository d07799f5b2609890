package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cineclic-tui/config"
	"cineclic-tui/model"
	"cineclic-tui/realtime"
	"cineclic-tui/seatmap"
	"cineclic-tui/service"
	"cineclic-tui/store"
)

type appState int

const (
	stateStartup appState = iota
	stateLogin
	stateRegister
	stateForgotPassword
	stateResetPassword
	stateLoadingMovies
	stateBrowseMovies
	stateMovieDetail
	statePickTickets
	stateLoadingSeatMap
	stateSeatMap
	stateSubmitting
	stateConfirmation
	stateLoadingBookings
	stateBookings
	stateAdminMovieForm
	stateAdminSchedule
	stateError
)

type appModel struct {
	client *service.Client
	live   *realtime.Client

	state     appState
	lastState appState
	err       error

	width  int
	height int

	session store.Session

	movies     []model.Movie
	movieList  list.Model
	movie      model.Movie
	screenings []model.Screening
	myRating   int
	dayOffset  int
	dayIndex   int

	screening   model.Screening
	ticketCount int

	room      model.Room
	seats     *seatmap.Session
	cursorRow int
	cursorCol int
	countdown *seatmap.Countdown
	timerGen  int
	sub       *realtime.Subscription
	seatNote  string

	booking     model.Booking
	bookings    []model.Booking
	bookingList list.Model
	folioInput  textinput.Model
	folioActive bool
	cancelAsk   bool

	auth  authForm
	admin adminForm

	spinner spinner.Model
}

type errMsg struct {
	err            error
	returnState    appState
	returnStateSet bool
}

type startupMsg struct {
	session store.Session
}

type moviesMsg struct {
	movies []model.Movie
	err    error
}

type movieDetailMsg struct {
	movie    model.Movie
	myRating int
	err      error
}

type ratedMsg struct {
	movieID int64
	stars   int
	err     error
}

// New builds the root model. The realtime client may be nil in tests; the
// seat map then runs on fetched state alone.
func New(cfg config.Config) tea.Model {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	m := appModel{
		client:      service.NewClient(cfg.APIBaseURL, httpClient),
		live:        realtime.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB),
		state:       stateStartup,
		ticketCount: 1,
	}

	m.movieList = newList("Cartelera")
	m.bookingList = newList("My Bookings")

	m.folioInput = textinput.New()
	m.folioInput.Placeholder = "0000-0000"
	m.folioInput.CharLimit = 9

	m.auth = newAuthForm()
	m.admin = newAdminForm()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(loadSessionCmd(), m.spinner.Tick)
}

func loadSessionCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := store.LoadSession()
		if err != nil || session.Expired() {
			return startupMsg{}
		}
		return startupMsg{session: session}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.handleFilterInput(msg) {
			return m, nil
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
		// fallthrough to component update

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		if msg.returnStateSet {
			m.lastState = msg.returnState
		} else {
			m.lastState = recoverStateFrom(m.state)
		}
		m.state = stateError
		return m, m.abandonSeatsCmd()

	case startupMsg:
		if msg.session.Token == "" {
			m.state = stateLogin
			return m, m.auth.focusCmd()
		}
		m.session = msg.session
		m.client.SetToken(msg.session.Token)
		m.state = stateLoadingMovies
		return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick)

	case loginMsg, registeredMsg, resetRequestedMsg, resetDoneMsg:
		return m.updateAuth(msg)

	case moviesMsg:
		if msg.err != nil {
			if service.IsUnauthorized(msg.err) {
				next, cmd := m.forceLogin()
				return next, cmd
			}
			return m, errCmd(msg.err)
		}
		m.movies = msg.movies
		m.movieList.SetItems(buildMovieItems(msg.movies))
		m.state = stateBrowseMovies
		return m, nil

	case movieDetailMsg:
		if msg.err != nil {
			return m, errWithReturnCmd(msg.err, stateBrowseMovies)
		}
		m.movie = msg.movie
		m.myRating = msg.myRating
		m.dayOffset = 0
		m.dayIndex = 0
		m.screenings = msg.movie.Screenings
		m.state = stateMovieDetail
		return m, nil

	case ratedMsg:
		if msg.err != nil {
			return m, errWithReturnCmd(msg.err, stateMovieDetail)
		}
		if m.movie.ID == msg.movieID {
			m.myRating = msg.stars
		}
		_ = store.SaveMovieRating(msg.movieID, msg.stars)
		return m, nil

	case roomMsg, subscribedMsg, seatEventMsg, seatStreamClosedMsg, countdownTickMsg, bookingMsg:
		return m.updateSeatMap(msg)

	case bookingsMsg, folioMsg, cancelMsg:
		return m.updateBookings(msg)

	case movieSavedMsg, movieDeletedMsg, screeningSavedMsg, screeningDeletedMsg:
		return m.updateAdmin(msg)
	}

	var cmd tea.Cmd
	switch m.state {
	case stateBrowseMovies:
		m.movieList, cmd = m.movieList.Update(msg)
	case stateBookings:
		if m.folioActive {
			m.folioInput, cmd = m.folioInput.Update(msg)
		} else {
			m.bookingList, cmd = m.bookingList.Update(msg)
		}
	case stateLogin, stateRegister, stateForgotPassword, stateResetPassword:
		cmd = m.auth.updateInputs(msg)
	case stateAdminMovieForm, stateAdminSchedule:
		cmd = m.admin.updateInputs(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateStartup, stateLoadingMovies, stateLoadingSeatMap, stateSubmitting, stateLoadingBookings:
		return header + "\n\n" + m.loadingView()
	case stateLogin, stateRegister, stateForgotPassword, stateResetPassword:
		return header + "\n\n" + m.authView()
	case stateBrowseMovies:
		return header + "\n\n" + m.movieList.View()
	case stateMovieDetail:
		return header + "\n\n" + m.movieDetailView()
	case statePickTickets:
		return header + "\n\n" + m.ticketPickerView()
	case stateSeatMap:
		return header + "\n\n" + m.seatMapView()
	case stateConfirmation:
		return header + "\n\n" + m.confirmationView()
	case stateBookings:
		return header + "\n\n" + m.bookingsView()
	case stateAdminMovieForm, stateAdminSchedule:
		return header + "\n\n" + m.adminView()
	case stateError:
		return header + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(errorText(m.err)) + "\n\n" + hint("Press enter to retry, esc to go back, ctrl+c to quit.")
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("CineClic")
	sub := []string{}
	if m.session.Name != "" {
		who := m.session.Name
		if m.session.IsAdmin() {
			who += " (admin)"
		}
		sub = append(sub, who)
	}
	if m.movie.Title != "" && m.state != stateBrowseMovies {
		sub = append(sub, m.movie.Title)
	}
	if m.state == stateSeatMap || m.state == stateSubmitting {
		sub = append(sub, fmt.Sprintf("Tickets: %d", m.ticketCount))
		if m.countdown != nil {
			sub = append(sub, "Time left: "+m.countdown.String())
		}
	}
	meta := strings.Join(sub, " | ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}
	return title + meta + "\n" + hint(m.hintsForState())
}

func (m appModel) hintsForState() string {
	switch m.state {
	case stateLogin:
		return "enter sign in | ctrl+n create account | ctrl+f forgot password | ctrl+c quit"
	case stateRegister:
		return "enter create account | esc back to sign in | ctrl+c quit"
	case stateForgotPassword:
		return "enter send reset code | esc back | ctrl+c quit"
	case stateResetPassword:
		return "enter set new password | esc back | ctrl+c quit"
	case stateBrowseMovies:
		if m.session.IsAdmin() {
			return "enter open movie | ctrl+n new movie | type to filter | b my bookings | ctrl+o sign out | ctrl+c quit"
		}
		return "enter open movie | type to filter | b my bookings | ctrl+o sign out | ctrl+c quit"
	case stateMovieDetail:
		if m.session.IsAdmin() {
			return "left/right day | up/down showtime | enter pick tickets | 1-5 rate | ctrl+e edit | ctrl+s schedule | ctrl+x remove showtime | esc back"
		}
		return "left/right day | up/down showtime | enter pick tickets | 1-5 rate | esc back"
	case statePickTickets:
		return "up/down or 1-5 tickets | enter choose seats | esc back"
	case stateSeatMap:
		return "arrows move | enter/space toggle seat | c confirm booking | esc leave"
	case stateConfirmation:
		return "enter back to movies | b my bookings | ctrl+c quit"
	case stateBookings:
		if m.cancelAsk {
			return "y cancel booking | n keep it"
		}
		if m.folioActive {
			return "enter look up folio | esc close search"
		}
		return "f find by folio | x cancel booking | esc back | ctrl+c quit"
	case stateAdminMovieForm, stateAdminSchedule:
		return "tab next field | enter save | esc discard"
	default:
		return "ctrl+c quit | esc back"
	}
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Sequence(m.releaseSeatMap(), tea.Quit), true
	}

	switch m.state {
	case stateLogin, stateRegister, stateForgotPassword, stateResetPassword:
		return m.handleAuthKey(msg)
	case stateBrowseMovies:
		return m.handleBrowseKey(msg)
	case stateMovieDetail:
		return m.handleDetailKey(msg)
	case statePickTickets:
		return m.handleTicketKey(msg)
	case stateSeatMap:
		return m.handleSeatMapKey(msg)
	case stateConfirmation:
		return m.handleConfirmationKey(msg)
	case stateBookings:
		return m.handleBookingsKey(msg)
	case stateAdminMovieForm, stateAdminSchedule:
		return m.handleAdminKey(msg)
	case stateError:
		switch msg.String() {
		case "enter":
			return m.retryFromError()
		case "esc":
			m.state = m.lastState
			return m, nil, true
		}
	}

	if msg.String() == "esc" {
		model, cmd := m.goBack()
		return model, cmd, true
	}
	return m, nil, false
}

func (m appModel) handleBrowseKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		if m.movieList.SettingFilter() || m.movieList.IsFiltered() {
			m.movieList.ResetFilter()
			return m, nil, true
		}
		return m, nil, true
	case "b":
		m.state = stateLoadingBookings
		return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
	case "ctrl+o":
		return m.signOut()
	case "ctrl+n":
		if m.session.IsAdmin() {
			m.admin.startCreateMovie()
			m.state = stateAdminMovieForm
			return m, m.admin.focusField(stateAdminMovieForm), true
		}
	case "enter":
		item, ok := m.movieList.SelectedItem().(movieItem)
		if !ok {
			return m, nil, true
		}
		return m, m.fetchMovieDetailCmd(item.movie.ID), true
	}
	return m, nil, false
}

func (m appModel) handleConfirmationKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "enter", "esc":
		m.state = stateLoadingMovies
		return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick), true
	case "b":
		m.state = stateLoadingBookings
		return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
	}
	return m, nil, true
}

func (m appModel) retryFromError() (appModel, tea.Cmd, bool) {
	switch m.lastState {
	case stateBrowseMovies:
		m.state = stateLoadingMovies
		return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick), true
	case stateBookings:
		m.state = stateLoadingBookings
		return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
	case statePickTickets, stateMovieDetail:
		m.state = m.lastState
		return m, nil, true
	default:
		m.state = m.lastState
		return m, nil, true
	}
}

func (m appModel) goBack() (appModel, tea.Cmd) {
	switch m.state {
	case stateMovieDetail:
		m.movie = model.Movie{}
		m.state = stateBrowseMovies
	case statePickTickets:
		m.state = stateMovieDetail
	case stateBookings:
		m.folioActive = false
		m.cancelAsk = false
		m.folioInput.Blur()
		m.state = stateBrowseMovies
	case stateError:
		m.state = m.lastState
	default:
		return m, nil
	}
	return m, nil
}

func (m appModel) forceLogin() (appModel, tea.Cmd) {
	_ = store.ClearSession()
	m.session = store.Session{}
	m.client.SetToken("")
	m.auth = newAuthForm()
	m.state = stateLogin
	return m, tea.Batch(m.releaseSeatMap(), m.auth.focusCmd())
}

func (m appModel) signOut() (appModel, tea.Cmd, bool) {
	model, cmd := m.forceLogin()
	return model, cmd, true
}

func (m appModel) fetchMoviesCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		movies, err := client.GetMovies(commandContext())
		return moviesMsg{movies: movies, err: err}
	}
}

func (m appModel) fetchMovieDetailCmd(id int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := commandContext()
		movie, err := client.GetMovie(ctx, id)
		if err != nil {
			return movieDetailMsg{err: err}
		}
		stars, err := client.GetMyRating(ctx, id)
		if err != nil {
			// The local copy is good enough when the rating endpoint is down.
			stars, _ = store.LoadMovieRating(id)
		}
		return movieDetailMsg{movie: movie, myRating: stars}
	}
}

func (m appModel) rateMovieCmd(id int64, stars int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.RateMovie(commandContext(), id, stars)
		return ratedMsg{movieID: id, stars: stars, err: err}
	}
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	if m.state != stateBrowseMovies {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		// Single letters double as shortcuts in browse; "/" opens the filter
		// and runes only extend one that is already open.
		if !m.filterOpen() && len(msg.Runes) == 1 && !msg.Alt {
			if msg.Runes[0] == '/' {
				m.movieList.SetFilterText("")
				return true
			}
			return false
		}
		m.movieList.SetFilterText(m.movieList.FilterValue() + string(msg.Runes))
		return true
	case tea.KeySpace:
		if !m.filterOpen() {
			return false
		}
		m.movieList.SetFilterText(m.movieList.FilterValue() + " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if !m.filterOpen() {
			return false
		}
		runes := []rune(m.movieList.FilterValue())
		if len(runes) <= 1 {
			m.movieList.ResetFilter()
			return true
		}
		m.movieList.SetFilterText(string(runes[:len(runes)-1]))
		return true
	default:
		return false
	}
}

func (m *appModel) filterOpen() bool {
	return m.movieList.SettingFilter() || m.movieList.IsFiltered()
}

func (m appModel) isLoadingState() bool {
	return m.state == stateStartup ||
		m.state == stateLoadingMovies ||
		m.state == stateLoadingSeatMap ||
		m.state == stateSubmitting ||
		m.state == stateLoadingBookings
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateStartup:
		title = "Starting up"
	case stateLoadingMovies:
		title = "Loading movies"
	case stateLoadingSeatMap:
		title = "Loading seat map"
	case stateSubmitting:
		title = "Submitting booking"
	case stateLoadingBookings:
		title = "Loading bookings"
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), title)
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.movieList.SetSize(m.width, h)
	m.bookingList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errorText(err error) string {
	if err == nil {
		return "something went wrong"
	}
	if service.IsShape(err) {
		return "the server sent an unusable seat layout, try another showtime"
	}
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}

func commandContext() context.Context {
	return context.Background()
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

func errWithReturnCmd(err error, returnState appState) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err, returnState: returnState, returnStateSet: true}
	}
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateStartup, stateLoadingMovies:
		return stateBrowseMovies
	case stateLoadingSeatMap, stateSeatMap, stateSubmitting:
		return stateMovieDetail
	case stateLoadingBookings:
		return stateBrowseMovies
	case stateError:
		return stateBrowseMovies
	default:
		return state
	}
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}
