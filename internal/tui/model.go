package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/concierge/internal/api"
	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/conversation"
	"github.com/diogo/concierge/internal/history"
	"github.com/diogo/concierge/internal/models"
	"github.com/diogo/concierge/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	submitDoneMsg struct {
		result conversation.Result
	}
	healthDoneMsg struct {
		result conversation.HealthResult
		manual bool
	}
	exportDoneMsg struct {
		path string
		err  error
	}
	copyDoneMsg struct {
		err error
	}
	// composingMsg and stateChangedMsg relay Session listener callbacks
	composingMsg    bool
	stateChangedMsg models.ConnectionState
)

// eventListener forwards Session callbacks into the Bubble Tea loop.
// Events are dropped when the buffer is full; the view re-reads the Session anyway.
type eventListener chan tea.Msg

func (l eventListener) Composing(active bool) {
	select {
	case l <- composingMsg(active):
	default:
	}
}

func (l eventListener) StateChanged(state models.ConnectionState) {
	select {
	case l <- stateChangedMsg(state):
	default:
	}
}

// Options configures the chat widget
type Options struct {
	// SessionOptions are passed to conversation.NewSession
	SessionOptions []conversation.Option
	QuickActions   *config.QuickActionConfig
	Render         render.Options
	// ExportDir is where /export writes when no path is given
	ExportDir string
}

// Model represents the TUI state
type Model struct {
	ctx      context.Context
	session  *conversation.Session
	events   eventListener
	actions  *config.QuickActionConfig
	renderOp render.Options

	exportDir string
	copyFn    func(string) error
	now       func() time.Time

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	ready          bool
	composing      bool
	checking       bool
	showHelp       bool
	exampleIdx     int
	notice         string
	err            error
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates the chat widget and the Session it drives
func NewChatModel(ctx context.Context, client api.ChatAPI, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask the concierge anything..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	actions := opts.QuickActions
	if actions == nil {
		actions = &config.QuickActionConfig{
			Actions:  config.DefaultQuickActions(),
			Examples: config.DefaultExamples(),
		}
	}

	renderOpts := opts.Render
	if renderOpts.Style == "" {
		renderOpts = render.DefaultOptions()
	}

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	events := make(eventListener, 16)
	sessionOpts := append([]conversation.Option{}, opts.SessionOptions...)
	sessionOpts = append(sessionOpts, conversation.WithListener(events))

	if ctx == nil {
		ctx = context.Background()
	}

	return Model{
		ctx:       ctx,
		session:   conversation.NewSession(client, sessionOpts...),
		events:    events,
		actions:   actions,
		renderOp:  renderOpts,
		exportDir: exportDir,
		copyFn:    clipboard.WriteAll,
		now:       time.Now,
		textarea:  ta,
		spinner:   s,
	}
}

// Session returns the conversation driven by the widget
func (m Model) Session() *conversation.Session {
	return m.session
}

// Init runs the startup health probe and starts listening for session events
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.waitForEvent(),
		m.checkHealth(false),
	)
}

// waitForEvent blocks until the Session reports something
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*120, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.updateViewport()

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case composingMsg:
		// The user message is in History by the time composing starts
		m.updateViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForEvent())

	case stateChangedMsg:
		cmds = append(cmds, m.waitForEvent())

	case submitDoneMsg:
		m.composing = false
		m.err = msg.result.Err
		m.updateViewport()
		m.viewport.GotoBottom()

	case healthDoneMsg:
		m.checking = false
		if msg.manual {
			m.notice = healthNotice(msg.result)
		}

	case exportDoneMsg:
		if msg.err != nil {
			m.notice = "Export failed: " + msg.err.Error()
		} else {
			m.notice = "Transcript saved to " + msg.path
		}

	case copyDoneMsg:
		if msg.err != nil {
			m.notice = "Copy failed: " + msg.err.Error()
		} else {
			m.notice = "Last reply copied to clipboard"
		}

	case spinner.TickMsg:
		if m.composing {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.composing {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes keys that drive the widget. Unhandled keys go to the textarea.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit, true

	case "esc":
		if m.showHelp {
			m.showHelp = false
			return m, nil, true
		}
		return m, tea.Quit, true

	case "tab":
		examples := m.actions.Examples
		if len(examples) > 0 {
			m.textarea.SetValue(examples[m.exampleIdx%len(examples)])
			m.textarea.CursorEnd()
			m.exampleIdx++
		}
		return m, nil, true

	case "enter":
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" || m.composing {
			return m, nil, true
		}
		m.textarea.Reset()
		if strings.HasPrefix(input, "/") {
			next, cmd := m.runCommand(input)
			return next, cmd, true
		}
		next, cmd := m.submit(input)
		return next, cmd, true
	}

	if strings.HasPrefix(key, "alt+") {
		slot, err := strconv.Atoi(strings.TrimPrefix(key, "alt+"))
		if err == nil {
			action, ok := m.actions.At(slot)
			switch {
			case !ok:
				m.notice = fmt.Sprintf("No quick action in slot %d", slot)
			case m.composing:
				m.notice = "Wait for the current reply before sending " + action.Label
			default:
				next, cmd := m.submit(action.Prompt)
				return next, cmd, true
			}
			return m, nil, true
		}
	}

	return m, nil, false
}

// submit starts one turn; the widget keeps a single submit in flight
func (m Model) submit(text string) (Model, tea.Cmd) {
	m.composing = true
	m.showHelp = false
	m.notice = ""
	m.err = nil
	m.animationFrame = 0

	session := m.session
	ctx := m.ctx
	return m, tea.Batch(
		func() tea.Msg {
			return submitDoneMsg{result: session.Submit(ctx, text)}
		},
		m.spinner.Tick,
		animationTick(),
	)
}

// runCommand executes a slash command typed in the input
func (m Model) runCommand(input string) (Model, tea.Cmd) {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	m.notice = ""
	switch name {
	case "/quit", "/exit":
		return m, tea.Quit

	case "/help", "/?":
		m.showHelp = !m.showHelp
		return m, nil

	case "/health":
		m.checking = true
		m.notice = "Checking service health..."
		return m, m.checkHealth(true)

	case "/export":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return m, m.exportTranscript(path)

	case "/copy":
		reply, ok := m.session.LastReply()
		if !ok {
			m.notice = "Nothing to copy yet"
			return m, nil
		}
		copyFn := m.copyFn
		return m, func() tea.Msg {
			return copyDoneMsg{err: copyFn(reply.Content)}
		}

	default:
		m.notice = fmt.Sprintf("Unknown command %s (type /help)", name)
		return m, nil
	}
}

func (m Model) checkHealth(manual bool) tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		return healthDoneMsg{result: session.CheckHealth(ctx), manual: manual}
	}
}

func (m Model) exportTranscript(path string) tea.Cmd {
	session := m.session
	dir := m.exportDir
	now := m.now()
	return func() tea.Msg {
		if path == "" {
			path = filepath.Join(dir, history.DefaultFileName(now, history.ExportFormatMarkdown))
		}
		transcript := history.NewTranscript(session.SessionID(), session.History())
		err := transcript.WriteFile(path, history.FormatForPath(path), history.DefaultExportOptions())
		return exportDoneMsg{path: path, err: err}
	}
}

func healthNotice(res conversation.HealthResult) string {
	if res.Err != nil {
		return "Service unreachable: " + res.Err.Error()
	}
	notice := "Service healthy"
	if res.Report != nil {
		if res.Report.Latency > 0 {
			notice += fmt.Sprintf(" (%s)", res.Report.Latency.Round(time.Millisecond))
		}
		if st := res.Report.Stats; st != nil {
			notice += fmt.Sprintf(" · %d orders · %d requests · %d menu items", st.Orders, st.Requests, st.MenuItems)
		}
	}
	return notice
}

// layout sizes the viewport and textarea from the window size
func (m *Model) layout() {
	headerHeight := 3
	inputHeight := 4
	statusHeight := 2
	borders := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - borders
	if vpHeight < 5 {
		vpHeight = 5
	}

	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}
	var sections []string

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("🛎 Concierge"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render("session "+m.session.SessionID()),
		hintStyle.Render("  •  "),
		connectionBadge(m.session.State()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	var messagesContent string
	switch {
	case m.showHelp:
		messagesContent = m.renderHelp()
	case m.session.Len() == 0:
		messagesContent = m.renderWelcome()
	default:
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	if m.composing {
		inputContent = m.renderTypingIndicator()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("👤 You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	switch {
	case m.err != nil:
		sections = append(sections, errorStyle.Render("⚠ "+m.err.Error())+"  "+hintStyle.Render(Hint(m.err)))
	case m.notice != "":
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	var lines []string
	lines = append(lines,
		welcomeIconStyle.Width(width).Render("🛎"),
		"",
		welcomeTitleStyle.Width(width).Render("Welcome! How can I help you today?"),
		"",
		welcomeStyle.Width(width).Render("Type a message below, or pick a quick action:"),
		"",
	)
	lines = append(lines, welcomeStyle.Width(width).Render(m.quickActionLine()))

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) quickActionLine() string {
	var parts []string
	for i, action := range m.actions.Actions {
		if i >= 9 {
			break
		}
		parts = append(parts, helpKeyStyle.Render(fmt.Sprintf("alt+%d", i+1))+" "+action.Label)
	}
	return strings.Join(parts, "   ")
}

// renderHelp lists commands, quick actions and example prompts
func (m Model) renderHelp() string {
	var sb strings.Builder

	sb.WriteString(helpTitleStyle.Render("Commands"))
	sb.WriteString("\n")
	commands := [][2]string{
		{"/health", "check the connection to the concierge service"},
		{"/export [path]", "save the conversation (.md or .json)"},
		{"/copy", "copy the last reply to the clipboard"},
		{"/help", "toggle this help"},
		{"/quit", "leave the chat"},
	}
	for _, c := range commands {
		sb.WriteString("  " + helpKeyStyle.Render(c[0]) + "  " + helpItemStyle.Render(c[1]) + "\n")
	}

	if len(m.actions.Actions) > 0 {
		sb.WriteString(helpTitleStyle.Render("Quick actions"))
		sb.WriteString("\n")
		for i, action := range m.actions.Actions {
			if i >= 9 {
				break
			}
			sb.WriteString(fmt.Sprintf("  %s  %s\n",
				helpKeyStyle.Render(fmt.Sprintf("alt+%d", i+1)),
				helpItemStyle.Render(action.Label+": "+action.Prompt)))
		}
	}

	if len(m.actions.Examples) > 0 {
		sb.WriteString(helpTitleStyle.Render("Try asking (tab fills the input)"))
		sb.WriteString("\n")
		for _, ex := range m.actions.Examples {
			sb.WriteString("  • " + helpItemStyle.Render(ex) + "\n")
		}
	}

	return sb.String()
}

// renderTypingIndicator renders the animated composing indicator
func (m Model) renderTypingIndicator() string {
	frame := m.animationFrame

	dots := ""
	numDots := frame % 4
	for i := 0; i < numDots; i++ {
		dots += lipgloss.NewStyle().Foreground(gradientColors[(frame+i)%len(gradientColors)]).Render("●")
	}
	for i := numDots; i < 3; i++ {
		dots += lipgloss.NewStyle().Foreground(colorTextMute).Render("○")
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Concierge is typing ")
	return m.spinner.View() + text + dots
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Tab", "Example"},
		{"Alt+1-9", "Quick action"},
		{"/help", "Help"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content from the Session history
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.session.History() {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(renderMessage(msg, bubbleWidth, m.renderOp))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderMessage renders one message with icon, sender and time
func renderMessage(msg models.Message, width int, opts render.Options) string {
	stamp := ""
	if !msg.SentAt.IsZero() {
		stamp = timeStyle.Render("  " + msg.SentAt.Format("15:04"))
	}

	if msg.IsUser() {
		label := userLabelStyle.Render("👤 "+msg.Sender()) + stamp
		return label + "\n" + userBubbleStyle.Width(width).Render(msg.Content)
	}

	label := assistantLabelStyle.Render("🤖 "+msg.Sender()) + stamp
	if msg.Fallback {
		return label + "\n" + fallbackBubbleStyle.Width(width).Render(msg.Content)
	}

	rendered := render.Reply(msg.Content, opts.WithWidth(width-4))
	return label + "\n" + assistantBubbleStyle.Width(width).Render(rendered)
}

// RunChat starts the chat TUI and returns the Session once the user quits
func RunChat(ctx context.Context, client api.ChatAPI, opts Options) (*conversation.Session, error) {
	m := NewChatModel(ctx, client, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return m.Session(), err
}
