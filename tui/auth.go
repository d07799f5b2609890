package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cineclic-tui/model"
	"cineclic-tui/store"
)

type loginMsg struct {
	resp model.LoginResponse
	err  error
}

type registeredMsg struct {
	email string
	err   error
}

type resetRequestedMsg struct {
	email string
	err   error
}

type resetDoneMsg struct {
	err error
}

var (
	namePattern  = regexp.MustCompile(`^[a-zA-ZÀ-ÿ ]{2,60}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// passwordOK requires at least 8 characters mixing upper, lower and digit.
func passwordOK(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

type authForm struct {
	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	confirm  textinput.Model
	code     textinput.Model

	focus      int
	notice     string
	noticeGood bool
	resetEmail string
}

func newAuthForm() authForm {
	f := authForm{}
	f.name = textinput.New()
	f.name.Placeholder = "Full name"
	f.name.CharLimit = 60
	f.email = textinput.New()
	f.email.Placeholder = "email@example.com"
	f.email.CharLimit = 120
	f.password = textinput.New()
	f.password.Placeholder = "Password"
	f.password.EchoMode = textinput.EchoPassword
	f.confirm = textinput.New()
	f.confirm.Placeholder = "Repeat password"
	f.confirm.EchoMode = textinput.EchoPassword
	f.code = textinput.New()
	f.code.Placeholder = "Reset code"
	return f
}

// fieldsFor gives the tab order for each auth screen.
func (f *authForm) fieldsFor(state appState) []*textinput.Model {
	switch state {
	case stateLogin:
		return []*textinput.Model{&f.email, &f.password}
	case stateRegister:
		return []*textinput.Model{&f.name, &f.email, &f.password, &f.confirm}
	case stateForgotPassword:
		return []*textinput.Model{&f.email}
	case stateResetPassword:
		return []*textinput.Model{&f.code, &f.password, &f.confirm}
	default:
		return nil
	}
}

func (f *authForm) focusField(state appState) tea.Cmd {
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

func (f *authForm) focusCmd() tea.Cmd {
	f.focus = 0
	return f.email.Focus()
}

func (f *authForm) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, 5)
	var cmd tea.Cmd
	f.name, cmd = f.name.Update(msg)
	cmds = append(cmds, cmd)
	f.email, cmd = f.email.Update(msg)
	cmds = append(cmds, cmd)
	f.password, cmd = f.password.Update(msg)
	cmds = append(cmds, cmd)
	f.confirm, cmd = f.confirm.Update(msg)
	cmds = append(cmds, cmd)
	f.code, cmd = f.code.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (f *authForm) clearSecrets() {
	f.password.SetValue("")
	f.confirm.SetValue("")
}

func (m appModel) handleAuthKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "down":
		fields := m.auth.fieldsFor(m.state)
		m.auth.focus = (m.auth.focus + 1) % len(fields)
		return m, m.auth.focusField(m.state), true
	case "shift+tab", "up":
		fields := m.auth.fieldsFor(m.state)
		m.auth.focus = (m.auth.focus - 1 + len(fields)) % len(fields)
		return m, m.auth.focusField(m.state), true
	case "esc":
		if m.state != stateLogin {
			m.auth.notice = ""
			m.auth.focus = 0
			m.auth.clearSecrets()
			m.state = stateLogin
			return m, m.auth.focusField(stateLogin), true
		}
		return m, nil, true
	case "ctrl+n":
		if m.state == stateLogin {
			m.auth.notice = ""
			m.auth.focus = 0
			m.state = stateRegister
			return m, m.auth.focusField(stateRegister), true
		}
		return m, nil, true
	case "ctrl+f":
		if m.state == stateLogin {
			m.auth.notice = ""
			m.auth.focus = 0
			m.state = stateForgotPassword
			return m, m.auth.focusField(stateForgotPassword), true
		}
		return m, nil, true
	case "enter":
		return m.submitAuth()
	}
	return m, nil, false
}

func (m appModel) submitAuth() (appModel, tea.Cmd, bool) {
	switch m.state {
	case stateLogin:
		email := strings.TrimSpace(m.auth.email.Value())
		password := m.auth.password.Value()
		if email == "" || password == "" {
			m.auth.setError("email and password are required")
			return m, nil, true
		}
		return m, m.loginCmd(email, password), true

	case stateRegister:
		name := strings.TrimSpace(m.auth.name.Value())
		email := strings.TrimSpace(m.auth.email.Value())
		password := m.auth.password.Value()
		switch {
		case !namePattern.MatchString(name):
			m.auth.setError("name must be 2-60 letters")
		case !emailPattern.MatchString(email):
			m.auth.setError("that email does not look valid")
		case !passwordOK(password):
			m.auth.setError("password needs 8+ chars with upper, lower and a digit")
		case password != m.auth.confirm.Value():
			m.auth.setError("passwords do not match")
		default:
			return m, m.registerCmd(name, email, password), true
		}
		return m, nil, true

	case stateForgotPassword:
		email := strings.TrimSpace(m.auth.email.Value())
		if !emailPattern.MatchString(email) {
			m.auth.setError("that email does not look valid")
			return m, nil, true
		}
		return m, m.requestResetCmd(email), true

	case stateResetPassword:
		code := strings.TrimSpace(m.auth.code.Value())
		password := m.auth.password.Value()
		switch {
		case code == "":
			m.auth.setError("enter the code from the reset email")
		case !passwordOK(password):
			m.auth.setError("password needs 8+ chars with upper, lower and a digit")
		case password != m.auth.confirm.Value():
			m.auth.setError("passwords do not match")
		default:
			return m, m.resetPasswordCmd(code, password), true
		}
		return m, nil, true
	}
	return m, nil, true
}

func (f *authForm) setError(text string) {
	f.notice = text
	f.noticeGood = false
}

func (f *authForm) setNotice(text string) {
	f.notice = text
	f.noticeGood = true
}

func (m appModel) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginMsg:
		if msg.err != nil {
			m.auth.setError(errorText(msg.err))
			m.auth.password.SetValue("")
			return m, nil
		}
		if err := store.SaveSession(msg.resp.Token, msg.resp.User.Name, msg.resp.User.Email); err != nil {
			m.auth.setError(err.Error())
			return m, nil
		}
		session, err := store.LoadSession()
		if err != nil {
			m.auth.setError(err.Error())
			return m, nil
		}
		m.session = session
		m.client.SetToken(session.Token)
		m.auth.clearSecrets()
		m.state = stateLoadingMovies
		return m, tea.Batch(m.fetchMoviesCmd(), m.spinner.Tick)

	case registeredMsg:
		if msg.err != nil {
			m.auth.setError(errorText(msg.err))
			return m, nil
		}
		m.auth.clearSecrets()
		m.auth.focus = 0
		m.auth.setNotice("account created, sign in with " + msg.email)
		m.state = stateLogin
		return m, m.auth.focusField(stateLogin)

	case resetRequestedMsg:
		if msg.err != nil {
			m.auth.setError(errorText(msg.err))
			return m, nil
		}
		m.auth.resetEmail = msg.email
		m.auth.focus = 0
		m.auth.clearSecrets()
		m.auth.setNotice("reset code sent to " + msg.email)
		m.state = stateResetPassword
		return m, m.auth.focusField(stateResetPassword)

	case resetDoneMsg:
		if msg.err != nil {
			m.auth.setError(errorText(msg.err))
			return m, nil
		}
		m.auth.clearSecrets()
		m.auth.code.SetValue("")
		m.auth.focus = 0
		m.auth.setNotice("password updated, sign in again")
		m.state = stateLogin
		return m, m.auth.focusField(stateLogin)
	}
	return m, nil
}

func (m appModel) loginCmd(email string, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		resp, err := client.Login(commandContext(), email, password)
		return loginMsg{resp: resp, err: err}
	}
}

func (m appModel) registerCmd(name string, email string, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.Register(commandContext(), name, email, password)
		return registeredMsg{email: email, err: err}
	}
}

func (m appModel) requestResetCmd(email string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.RequestPasswordReset(commandContext(), email)
		return resetRequestedMsg{email: email, err: err}
	}
}

func (m appModel) resetPasswordCmd(code string, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.ResetPassword(commandContext(), code, password)
		return resetDoneMsg{err: err}
	}
}

func (m appModel) authView() string {
	var b strings.Builder

	title := "Sign in"
	switch m.state {
	case stateRegister:
		title = "Create account"
	case stateForgotPassword:
		title = "Forgot password"
	case stateResetPassword:
		title = "Set a new password"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")

	labels := map[*textinput.Model]string{
		&m.auth.name:     "Name",
		&m.auth.email:    "Email",
		&m.auth.password: "Password",
		&m.auth.confirm:  "Confirm",
		&m.auth.code:     "Code",
	}
	for _, field := range m.auth.fieldsFor(m.state) {
		b.WriteString(labels[field])
		b.WriteString("\n")
		b.WriteString(field.View())
		b.WriteString("\n\n")
	}

	if m.state == stateResetPassword && m.auth.resetEmail != "" {
		b.WriteString(hint("Code was sent to " + m.auth.resetEmail))
		b.WriteString("\n")
	}
	if m.auth.notice != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		if m.auth.noticeGood {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		}
		b.WriteString(style.Render(m.auth.notice))
		b.WriteString("\n")
	}
	return b.String()
}
