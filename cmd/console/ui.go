package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/turn"
	"github.com/muesli/reflow/wordwrap"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "Pick a choice (A, B, ...) or describe your own action..."
)

type entryKind int

const (
	entryNarrator entryKind = iota
	entryUser
	entrySystem
	entryError
)

// transcriptEntry is one block of the chat panel.
type transcriptEntry struct {
	kind    entryKind
	text    string
	choices []state.Choice
}

type setupStep int

const (
	stepWorld setupStep = iota
	stepClass
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *apiClient
	sessionID    uuid.UUID
	worldName    string
	transcript   []transcriptEntry
	choices      []state.Choice
	card         state.Card
	lastCheck    *skillcheck.Result
	lastText     string
	location     string
	events       int
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// World and class selection state
	showSetupModal bool
	step           setupStep
	worlds         []turn.WorldSummary
	selectedWorld  int
	selectedClass  int
	loadingWorlds  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type worldsLoadedMsg struct {
	worlds []turn.WorldSummary
	err    error
}

type gameStartedMsg struct {
	resp *turn.StartResponse
	err  error
}

type turnMsg struct {
	resp *turn.Response
	err  error
}

type sessionMsg struct {
	session *state.Session
	err     error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	choiceKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	checkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")) // lavender

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

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, api *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		api:            api,
		textarea:       ta,
		chatViewport:   chatVp,
		metaViewport:   metaVp,
		showSetupModal: true,
		loadingWorlds:  true,
	}
}

// classOptions lists the world's classes followed by a classless option.
func classOptions(w turn.WorldSummary) []turn.ClassSummary {
	opts := make([]turn.ClassSummary, 0, len(w.Classes)+1)
	opts = append(opts, w.Classes...)
	return append(opts, turn.ClassSummary{Name: "No class"})
}

// resolveInput maps what the player typed to a turn request.
// A choice id or a 1-based choice number selects that choice; anything else is a custom action.
func resolveInput(input string, choices []state.Choice) (id, text string) {
	input = strings.TrimSpace(input)
	if c, ok := state.FindChoice(choices, input); ok {
		return c.ID, c.Text
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(choices) {
		c := choices[n-1]
		return c.ID, c.Text
	}
	return state.CustomActionID, input
}

func formatChoice(c state.Choice) string {
	line := choiceKeyStyle.Render(c.ID+")") + " " + c.Text
	if c.Gate != nil {
		line += " " + checkStyle.Render(fmt.Sprintf("[%s DC%d]", c.Gate.Stat.Title(), c.Gate.Difficulty))
	}
	return line
}

func formatSkillCheck(res *skillcheck.Result) string {
	sign := "+"
	if res.Modifier < 0 {
		sign = "-"
	}
	mod := res.Modifier
	if mod < 0 {
		mod = -mod
	}
	return fmt.Sprintf("%s check (DC %d): rolled %d %s %d = %d, %s",
		res.Stat.Title(), res.Difficulty, res.Roll, sign, mod, res.Total, res.Outcome.Label())
}

func writeCard(card state.Card) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("Name: %s\n", card.Name))
	content.WriteString(fmt.Sprintf("Class: %s\n", card.Class))
	content.WriteString(fmt.Sprintf("Health: %d\n", card.Health))
	if len(card.Stats) > 0 {
		names := make([]string, 0, len(card.Stats))
		for k := range card.Stats {
			names = append(names, k)
		}
		sort.Strings(names)
		content.WriteString("Stats:\n")
		for _, k := range names {
			content.WriteString(fmt.Sprintf("• %s: %d\n", k, card.Stats[k]))
		}
	}
	return content.String()
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURER") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(m.sessionID.String()[:8] + "...\n\n")

	content.WriteString("World:\n")
	content.WriteString(m.worldName + "\n\n")

	if m.location != "" {
		content.WriteString("Location:\n")
		content.WriteString(m.location + "\n\n")
	}

	content.WriteString(writeCard(m.card))
	content.WriteString("\n")

	if m.lastCheck != nil {
		content.WriteString("Last check:\n")
		content.WriteString(fmt.Sprintf("%s %d vs DC %d\n%s\n\n",
			m.lastCheck.Stat.Title(), m.lastCheck.Total, m.lastCheck.Difficulty, m.lastCheck.Outcome.Label()))
	}

	if m.events > 0 {
		content.WriteString(fmt.Sprintf("Events: %d\n\n", m.events))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /card: Player card\n")
	content.WriteString("• /copy: Copy story\n")
	content.WriteString("• /session: Refresh\n")

	return content.String()
}

// writeChatContent builds the chat content from the transcript for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE ENGINE") + "\n\n")
	content.WriteString("Pick a lettered choice or type any action you like.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, e := range m.transcript {
		switch e.kind {
		case entryNarrator:
			content.WriteString(formatNarratorResponse(e.text, chatWidth) + "\n\n")
			for _, c := range e.choices {
				content.WriteString(wordwrap.String(formatChoice(c), chatWidth) + "\n")
			}
			if len(e.choices) > 0 {
				content.WriteString("\n")
			}
		case entryUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, chatWidth-6) + "\n\n")
		case entrySystem:
			content.WriteString(checkStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render("Error: "+e.text) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadWorlds()
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showSetupModal && !m.showQuitModal {
		return m.updateSetupModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			id, text := resolveInput(input, m.choices)
			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			shown := text
			if id != state.CustomActionID {
				shown = id + ") " + text
			}
			m.transcript = append(m.transcript, transcriptEntry{kind: entryUser, text: shown})
			m.writeChatContent()

			return m, tea.Batch(m.sendChoice(id, text), progressTick())
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: msg.err.Error()})
		} else {
			m.applyTurn(msg.resp)
		}
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		return m, m.refreshSession()

	case sessionMsg:
		if msg.err == nil && msg.session != nil {
			m.location = msg.session.Location
			m.events = len(msg.session.History)
			m.card = msg.session.Card()
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) applyTurn(resp *turn.Response) {
	if resp.SkillCheck != nil {
		m.lastCheck = resp.SkillCheck
		m.transcript = append(m.transcript, transcriptEntry{kind: entrySystem, text: formatSkillCheck(resp.SkillCheck)})
	}
	m.transcript = append(m.transcript, transcriptEntry{kind: entryNarrator, text: resp.Text, choices: resp.Choices})
	if resp.Warning != "" {
		m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: resp.Warning})
	}
	m.choices = resp.Choices
	m.card = resp.Card
	m.lastText = resp.Text
}

func formatNarratorResponse(response string, width int) string {
	// Check if response already has a speaker prefix
	hasPrefix := false
	if idx := strings.Index(response, ":"); idx > 0 && idx <= 20 {
		if len(strings.Fields(response[:idx])) <= 2 {
			hasPrefix = true
		}
	}

	wrapWidth := width
	if !hasPrefix {
		wrapWidth = width - len(AgentName+": ")
	}
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	lines := strings.Split(wordwrap.String(response, wrapWidth), "\n")
	formattedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			formattedLines = append(formattedLines, "")
			continue
		}
		if idx := strings.Index(trimmed, ":"); idx > 0 && idx <= 20 {
			speaker := trimmed[:idx]
			if len(strings.Fields(speaker)) <= 2 {
				formattedLines = append(formattedLines, speakerStyle.Render(speaker+":")+trimmed[idx+1:])
				continue
			}
		}
		formattedLines = append(formattedLines, line)
	}

	result := strings.Join(formattedLines, "\n")
	if !hasPrefix {
		result = narratorStyle.Render(AgentName+": ") + result
	}
	return result
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `Commands:
• /help - Show this help
• /card - Show your player card
• /copy - Copy the latest narration to the clipboard
• /session - Reload the session from the server
• Ctrl+C - Quit game

How to play:
• Type a choice letter (or its number) and press Enter
• Or describe any other action in your own words
• Choices marked [Stat DCn] roll a d20 skill check`
		m.transcript = append(m.transcript, transcriptEntry{kind: entrySystem, text: helpText})

	case "/card":
		m.transcript = append(m.transcript, transcriptEntry{kind: entrySystem, text: writeCard(m.card)})

	case "/copy":
		if m.lastText == "" {
			m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: "nothing to copy yet"})
		} else if err := clipboard.WriteAll(m.lastText); err != nil {
			m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: "clipboard unavailable: " + err.Error()})
		} else {
			m.transcript = append(m.transcript, transcriptEntry{kind: entrySystem, text: "Copied the latest narration."})
		}

	case "/session":
		m.writeChatContent()
		return m, m.refreshSession()

	default:
		m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: "unknown command " + cmd + " (try /help)"})
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) sendChoice(id, text string) tea.Cmd {
	sessionID := m.sessionID
	return func() tea.Msg {
		resp, err := m.api.makeChoice(turn.ChoiceRequest{
			SessionID:  sessionID,
			ChoiceID:   id,
			ChoiceText: text,
		})
		return turnMsg{resp, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	sessionID := m.sessionID
	return func() tea.Msg {
		s, err := m.api.getSession(sessionID)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) loadWorlds() tea.Cmd {
	return func() tea.Msg {
		worlds, err := m.api.listWorlds()
		return worldsLoadedMsg{worlds, err}
	}
}

func (m ConsoleUI) startGame(worldID, classID string) tea.Cmd {
	playerName := m.config.PlayerName
	return func() tea.Msg {
		resp, err := m.api.startGame(turn.StartRequest{
			PlayerName: playerName,
			WorldID:    worldID,
			ClassID:    classID,
		})
		return gameStartedMsg{resp, err}
	}
}

func (m ConsoleUI) updateSetupModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case worldsLoadedMsg:
		m.loadingWorlds = false
		if msg.err != nil {
			m.err = msg.err
		} else if len(msg.worlds) == 0 {
			m.err = fmt.Errorf("the server has no worlds configured")
		} else {
			m.worlds = msg.worlds
		}

	case gameStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sessionID = msg.resp.SessionID
		m.worldName = m.worlds[m.selectedWorld].Name
		m.card = msg.resp.Card
		m.choices = msg.resp.Choices
		m.lastText = msg.resp.Text
		m.transcript = []transcriptEntry{{kind: entryNarrator, text: msg.resp.Text, choices: msg.resp.Choices}}
		m.showSetupModal = false
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.textarea.Focus()
		m.ready = true
		return m, tea.Batch(textarea.Blink, m.refreshSession())

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			if m.loadingWorlds {
				return m, tea.Quit
			}
			m.showQuitModal = true
			return m, nil
		}
		if m.loadingWorlds || m.loading {
			return m, nil
		}
		if m.err != nil {
			// a failed start can be retried from the world list
			if msg.Type == tea.KeyEnter && len(m.worlds) > 0 {
				m.err = nil
				m.step = stepWorld
			}
			return m, nil
		}

		switch m.step {
		case stepWorld:
			switch msg.Type {
			case tea.KeyUp:
				if m.selectedWorld > 0 {
					m.selectedWorld--
				}
			case tea.KeyDown:
				if m.selectedWorld < len(m.worlds)-1 {
					m.selectedWorld++
				}
			case tea.KeyEnter:
				m.step = stepClass
				m.selectedClass = 0
			}
		case stepClass:
			opts := classOptions(m.worlds[m.selectedWorld])
			switch msg.Type {
			case tea.KeyUp:
				if m.selectedClass > 0 {
					m.selectedClass--
				}
			case tea.KeyDown:
				if m.selectedClass < len(opts)-1 {
					m.selectedClass++
				}
			case tea.KeyBackspace, tea.KeyLeft:
				m.step = stepWorld
			case tea.KeyEnter:
				m.loading = true
				return m, m.startGame(m.worlds[m.selectedWorld].ID, opts[m.selectedClass].ID)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.showSetupModal {
			m.resize()
		}

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
				if m.showSetupModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
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
	content.WriteString("Your adventure is saved on the server, but this console cannot resume it.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func renderOption(label string, selected bool) string {
	if selected {
		return modalSelectedItemStyle.Render("▶ " + label)
	}
	return modalItemStyle.Render("  " + label)
}

func (m ConsoleUI) renderSetupModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingWorlds:
		content.WriteString(modalTitleStyle.Render("Loading Worlds..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available worlds..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		if len(m.worlds) > 0 {
			content.WriteString("Press Enter to try again, Ctrl+C to exit")
		} else {
			content.WriteString("Press Ctrl+C to exit")
		}
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Creating Game..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting up your adventure..."))
	case m.step == stepWorld:
		content.WriteString(modalTitleStyle.Render("Select a World"))
		content.WriteString("\n\n")
		for i, w := range m.worlds {
			label := w.Name
			if w.Rating != "" {
				label += " (" + w.Rating + ")"
			}
			content.WriteString(renderOption(label, i == m.selectedWorld))
			content.WriteString("\n")
		}
		if lore := m.worlds[m.selectedWorld].Lore; lore != "" {
			content.WriteString("\n")
			content.WriteString(promptStyle.Render(wordwrap.String(lore, 52)))
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	default:
		w := m.worlds[m.selectedWorld]
		content.WriteString(modalTitleStyle.Render("Choose your path in " + w.Name))
		content.WriteString("\n\n")
		for i, c := range classOptions(w) {
			content.WriteString(renderOption(c.Name, i == m.selectedClass))
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Enter to begin, ← to go back, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if m.showSetupModal {
		return m.renderSetupModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
