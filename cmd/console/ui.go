package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/life-engine/internal/handlers"
	"github.com/jwebster45206/life-engine/pkg/finance"
	"github.com/jwebster45206/life-engine/pkg/life"
)

const savingsRateStep = 5.0

type inputMode int

const (
	modeNone inputMode = iota
	modeOccupation
	modeHome
	modeCity
)

func (m inputMode) placeholder() string {
	switch m {
	case modeOccupation:
		return "Describe the job you would like..."
	case modeHome:
		return "Describe the home you would like to rent..."
	case modeCity:
		return "Which city should we search for listings?"
	}
	return ""
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api          *apiClient
	profileName  string
	game         *handlers.GameResponse
	timeline     []string
	mainViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	spinner      spinner.Model
	mode         inputMode
	ready        bool
	width        int
	height       int
	loading      bool
	status       string
	failed       bool

	// Pending advisory answers the player can act on
	estimate        *life.OccupationEstimate
	homes           []life.Living
	recommendations []string

	showQuitModal bool
}

type turnMsg struct {
	turn *handlers.TurnResponse
	err  error
}

type gameMsg struct {
	game *handlers.GameResponse
	err  error
}

type stateMsg struct {
	state *life.LifeState
	note  string
	err   error
}

type occupationMsg struct {
	estimate *life.OccupationEstimate
	err      error
}

type homesMsg struct {
	homes []life.Living
	err   error
}

type recommendationsMsg struct {
	recommendations []string
	err             error
}

type listingsMsg struct {
	city     string
	listings []life.Listing
	err      error
}

var (
	mainPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	yearStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Bold(true)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(api *apiClient, profileName string, game *handlers.GameResponse) ConsoleUI {
	ta := textarea.New()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 300
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.Blur()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	mainVp := viewport.New(50, 20)
	mainVp.MouseWheelEnabled = true

	m := ConsoleUI{
		api:          api,
		profileName:  profileName,
		game:         game,
		textarea:     ta,
		spinner:      sp,
		mainViewport: mainVp,
		metaViewport: viewport.New(20, 20),
	}
	m.addEntry(titleStyle.Render("LIFE ENGINE") + "\n\n" +
		"Save up for your dream home. Every turn is one year of your life.\n" +
		"Press Enter to start the first year.")
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *ConsoleUI) addEntry(entry string) {
	m.timeline = append(m.timeline, entry)
}

func (m *ConsoleUI) note(s string) {
	m.status = s
	m.failed = false
}

func (m *ConsoleUI) fail(err error) {
	m.status = "Error: " + err.Error()
	m.failed = true
}

func (m *ConsoleUI) resize() {
	mainWidth := int(float64(m.width)*0.68) - 4
	metaWidth := m.width - mainWidth - 6

	m.mainViewport.Width = mainWidth - 2
	m.mainViewport.Height = m.height - 8
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 3
	m.textarea.SetWidth(mainWidth - 4)
}

// render rebuilds both panels for the current width.
func (m *ConsoleUI) render() {
	width := m.mainViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	for _, entry := range m.timeline {
		content.WriteString(wordwrap.String(entry, width))
		content.WriteString("\n\n")
		content.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
		content.WriteString("\n\n")
	}
	m.mainViewport.SetContent(content.String())
	m.mainViewport.GotoBottom()

	if m.game != nil {
		m.metaViewport.SetContent(writeMetadata(m.profileName, m.game))
	}
}

func writeMetadata(profileName string, g *handlers.GameResponse) string {
	s := g.State
	var content strings.Builder
	content.WriteString(titleStyle.Render("YOUR LIFE") + "\n\n")
	if profileName != "" {
		content.WriteString(profileName + "\n\n")
	}

	fmt.Fprintf(&content, "Year %d, age %d\n", s.Year, s.Age)
	fmt.Fprintf(&content, "Status: %s\n\n", g.Status)

	fmt.Fprintf(&content, "Job: %s\n", s.Occupation.Title)
	fmt.Fprintf(&content, "Salary: %s\n", finance.FormatEuro(s.Occupation.YearlySalary))
	fmt.Fprintf(&content, "Stress: %.0f/100\n\n", s.Occupation.StressLevel)

	fmt.Fprintf(&content, "Home: %s (%.0f m²)\n", s.Living.Name, s.Living.Size)
	fmt.Fprintf(&content, "Rent: %s\n", finance.FormatEuro(s.Living.YearlyRent))
	fmt.Fprintf(&content, "Savings rate: %.0f%%\n", s.SavingsRatePercent)
	fmt.Fprintf(&content, "Children: %d, married: %t\n\n", s.AmountOfChildren, s.Married)

	total := s.Portfolio.Total()
	fmt.Fprintf(&content, "Cash: %s\n", finance.FormatEuro(s.Portfolio.Cash))
	fmt.Fprintf(&content, "ETF: %s\n", finance.FormatEuro(s.Portfolio.ETF))
	fmt.Fprintf(&content, "Crypto: %s\n", finance.FormatEuro(s.Portfolio.Crypto))
	fmt.Fprintf(&content, "Total: %s\n\n", finance.FormatEuro(total))

	fmt.Fprintf(&content, "Goal: %s %s\n", g.Goal.EstateType, finance.FormatEuro(g.Goal.BuyingPrice))
	if g.Goal.BuyingPrice > 0 {
		fmt.Fprintf(&content, "Progress: %.0f%%\n", min(100, 100*total/g.Goal.BuyingPrice))
	}
	fmt.Fprintf(&content, "Satisfaction: %.0f/100\n", s.LifeSatisfaction)
	if lc := s.LoanConditions; lc != nil {
		word := "needed"
		if s.CreditWorthiness {
			word = "offered"
		}
		fmt.Fprintf(&content, "Loan %s: %s over %d years, %s/month\n",
			word, finance.FormatEuro(lc.LoanAmount), lc.DurationYears, finance.FormatEuro(lc.MonthlyPayment))
	}

	content.WriteString("\nCommands:\n")
	content.WriteString("• Enter: Next year\n")
	content.WriteString("• y / x: Accept / decline\n")
	content.WriteString("• + / -: Savings rate\n")
	content.WriteString("• o: New job  a: Take it\n")
	content.WriteString("• h: New home  1-3: Move\n")
	content.WriteString("• l: Listings\n")
	content.WriteString("• r: Evaluation  c: Copy\n")
	content.WriteString("• Esc: Quit\n")
	return content.String()
}

func yearSummary(s life.LifeState) string {
	credit := "not creditworthy"
	if s.CreditWorthiness {
		credit = "creditworthy"
	}
	return fmt.Sprintf("%s  wealth %s, satisfaction %.0f, %s",
		yearStyle.Render(fmt.Sprintf("%d (age %d)", s.Year, s.Age)),
		finance.FormatEuro(s.Portfolio.Total()), s.LifeSatisfaction, credit)
}

func formatEvent(ev *life.Event) string {
	var b strings.Builder
	b.WriteString(eventStyle.Render(ev.Emoji + " " + ev.Description))
	if ev.IsInteractive() {
		b.WriteString("\n" + questionStyle.Render(*ev.Question))
		b.WriteString("\n" + promptStyle.Render("[y] accept   [x] decline"))
	} else {
		b.WriteString("\n" + promptStyle.Render("[y] continue"))
	}
	return b.String()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.render()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode != modeNone {
			return m.updateInput(msg)
		}
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.showQuitModal = true
			return m, nil
		}
		if m.loading {
			return m, nil
		}
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}

	case turnMsg:
		if msg.err != nil {
			m.loading = false
			m.fail(msg.err)
			break
		}
		// Stay busy until the refreshed game arrives with the pending event.
		m.addEntry(yearSummary(msg.turn.State))
		if msg.turn.State.Terminated {
			m.addEntry(titleStyle.Render("🏡 You can afford your dream home!") + "\nPress r for your life evaluation.")
		}
		if msg.turn.Event != nil {
			m.addEntry(formatEvent(msg.turn.Event))
		}
		m.render()
		return m, m.refreshGame()

	case gameMsg:
		m.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			break
		}
		m.game = msg.game
		m.render()

	case stateMsg:
		m.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			break
		}
		m.note(msg.note)
		m.game.State = *msg.state
		m.render()

	case occupationMsg:
		m.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			break
		}
		m.estimate = msg.estimate
		m.addEntry(fmt.Sprintf("💼 %s: about %s a year, stress %.0f/100.\n%s\n%s",
			msg.estimate.Title, finance.FormatEuro(msg.estimate.YearlySalary),
			msg.estimate.StressLevel, msg.estimate.Explanation,
			promptStyle.Render("[a] take this job")))
		m.render()

	case homesMsg:
		m.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			break
		}
		m.homes = msg.homes
		if len(msg.homes) == 0 {
			m.addEntry("🏠 No homes found. Try a different description.")
		} else {
			var b strings.Builder
			b.WriteString("🏠 Homes you could rent:")
			for i, h := range msg.homes {
				fmt.Fprintf(&b, "\n[%d] %s, %s, %.0f m², %s a year", i+1, h.Name, h.Zip, h.Size, finance.FormatEuro(h.YearlyRent))
			}
			m.addEntry(b.String())
		}
		m.render()

	case recommendationsMsg:
		m.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			break
		}
		m.recommendations = msg.recommendations
		m.addEntry(titleStyle.Render("Your life evaluation") + "\n\n" + strings.Join(msg.recommendations, "\n\n") +
			"\n\n" + promptStyle.Render("[c] copy to clipboard"))
		m.render()

	case listingsMsg:
		m.loading = false
		if msg.err != nil {
			m.fail(msg.err)
			break
		}
		if len(msg.listings) == 0 {
			m.addEntry(fmt.Sprintf("🔎 No listings matching your goal in %s.", msg.city))
		} else {
			var b strings.Builder
			fmt.Fprintf(&b, "🔎 Listings in %s:", msg.city)
			for _, l := range msg.listings {
				fmt.Fprintf(&b, "\n• %s, %.0f m², %.0f rooms, %s", l.Title, l.Size, l.Rooms, finance.FormatEuro(l.BuyingPrice))
			}
			m.addEntry(b.String())
		}
		m.render()
	}

	var vpCmd, mvCmd tea.Cmd
	m.mainViewport, vpCmd = m.mainViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	cmds = append(cmds, vpCmd, mvCmd)
	return m, tea.Batch(cmds...)
}

// handleKey runs the single-key commands of the main screen.
func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	pending := m.game != nil && m.game.PendingEvent != nil

	switch msg.String() {
	case "enter", "n":
		if pending {
			m.note("Decide on the current event first (y/x).")
			return m, nil, true
		}
		return m.startLoading(m.nextYear())
	case "y", "x":
		if !pending {
			return m, nil, true
		}
		return m.startLoading(m.decide(m.game.PendingEvent.ID, msg.String() == "y"))
	case "+", "=", "-":
		rate := m.game.State.SavingsRatePercent + savingsRateStep
		if msg.String() == "-" {
			rate = m.game.State.SavingsRatePercent - savingsRateStep
		}
		rate = max(0, min(100, rate))
		note := fmt.Sprintf("Savings rate set to %.0f%%.", rate)
		return m.startLoading(m.applyActions(life.UserInput{NewSavingsRate: &rate}, note))
	case "a":
		if m.estimate == nil {
			return m, nil, true
		}
		occ := m.estimate.Occupation
		m.estimate = nil
		return m.startLoading(m.applyActions(life.UserInput{NewOccupation: &occ}, "You started as "+occ.Title+"."))
	case "1", "2", "3":
		i := int(msg.String()[0] - '1')
		if i >= len(m.homes) {
			return m, nil, true
		}
		home := m.homes[i]
		m.homes = nil
		return m.startLoading(m.applyActions(life.UserInput{NewLiving: &home}, "You moved to "+home.Name+"."))
	case "o":
		return m.enterInput(modeOccupation)
	case "h":
		return m.enterInput(modeHome)
	case "l":
		return m.enterInput(modeCity)
	case "r":
		return m.startLoading(m.fetchRecommendations())
	case "c":
		if len(m.recommendations) == 0 {
			m.note("No evaluation to copy yet (press r).")
			return m, nil, true
		}
		if err := clipboard.WriteAll(strings.Join(m.recommendations, "\n\n")); err != nil {
			m.fail(fmt.Errorf("copy failed: %w", err))
		} else {
			m.note("Evaluation copied to clipboard.")
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m ConsoleUI) startLoading(cmd tea.Cmd) (tea.Model, tea.Cmd, bool) {
	m.loading = true
	m.note("")
	return m, tea.Batch(cmd, m.spinner.Tick), true
}

func (m ConsoleUI) enterInput(mode inputMode) (tea.Model, tea.Cmd, bool) {
	m.mode = mode
	m.textarea.Reset()
	m.textarea.Placeholder = mode.placeholder()
	m.textarea.Focus()
	return m, textarea.Blink, true
}

func (m ConsoleUI) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.mode = modeNone
		m.textarea.Blur()
		return m, nil
	case tea.KeyEnter:
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" {
			return m, nil
		}
		mode := m.mode
		m.mode = modeNone
		m.textarea.Reset()
		m.textarea.Blur()

		var cmd tea.Cmd
		switch mode {
		case modeOccupation:
			cmd = m.estimateOccupation(input)
		case modeHome:
			cmd = m.suggestHomes(input)
		case modeCity:
			cmd = m.searchListings(input)
		}
		model, c, _ := m.startLoading(cmd)
		return model, c
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m ConsoleUI) nextYear() tea.Cmd {
	return func() tea.Msg {
		turn, err := m.api.nextYear(m.game.ID)
		return turnMsg{turn, err}
	}
}

func (m ConsoleUI) refreshGame() tea.Cmd {
	return func() tea.Msg {
		game, err := m.api.getGame(m.game.ID)
		return gameMsg{game, err}
	}
}

func (m ConsoleUI) decide(eventID uuid.UUID, accept bool) tea.Cmd {
	return func() tea.Msg {
		game, err := m.api.decide(m.game.ID, eventID, accept)
		return gameMsg{game, err}
	}
}

func (m ConsoleUI) applyActions(input life.UserInput, note string) tea.Cmd {
	return func() tea.Msg {
		state, err := m.api.applyActions(m.game.ID, input)
		return stateMsg{state, note, err}
	}
}

func (m ConsoleUI) estimateOccupation(description string) tea.Cmd {
	return func() tea.Msg {
		est, err := m.api.estimateOccupation(m.game.ID, description)
		return occupationMsg{est, err}
	}
}

func (m ConsoleUI) suggestHomes(description string) tea.Cmd {
	return func() tea.Msg {
		homes, err := m.api.suggestHomes(m.game.ID, description)
		return homesMsg{homes, err}
	}
}

func (m ConsoleUI) fetchRecommendations() tea.Cmd {
	return func() tea.Msg {
		recs, err := m.api.recommendations(m.game.ID)
		return recommendationsMsg{recs, err}
	}
}

func (m ConsoleUI) searchListings(city string) tea.Cmd {
	return func() tea.Msg {
		listings, err := m.api.listings(m.game.ID, city)
		return listingsMsg{city, listings, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave your life behind?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	mainWidth := int(float64(m.width)*0.68) - 4
	metaWidth := m.width - mainWidth - 6

	var footer string
	switch {
	case m.mode != modeNone:
		footer = m.textarea.View()
	case m.loading:
		footer = m.spinner.View() + loadingStyle.Render(" Thinking...")
	case m.status != "" && m.failed:
		footer = errorStyle.Render(m.status)
	case m.status != "":
		footer = questionStyle.Render(m.status)
	default:
		footer = promptStyle.Render("Enter: next year • Esc: quit")
	}

	mainPanel := mainPanelStyle.Width(mainWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.mainViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(0, mainWidth-4))),
			footer,
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, mainPanel, metaPanel)
}
