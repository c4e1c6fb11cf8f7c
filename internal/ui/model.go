package ui

import (
	"reflect"

	"github.com/atomicstack/grpm/internal/session"
	"github.com/atomicstack/grpm/internal/theme"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const (
	defaultWidth      = 80
	defaultHeight     = 24
	defaultDescHeight = 10
	defaultMarkdown   = "dark"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// frameMsg delivers a new snapshot to the model.
type frameMsg struct {
	snap session.Snapshot
}

// Options configure the Model.
type Options struct {
	Keys session.KeyMap
	// DescHeight is the height of the description box including its border.
	DescHeight int
	// MarkdownStyle names a glamour standard style ("dark", "light", "notty").
	MarkdownStyle string
	// Width and Height fix the canvas size; zero follows the terminal.
	Width  int
	Height int
}

// Model implements tea.Model for the release browser.
type Model struct {
	snap session.Snapshot

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	descHeight  int
	paneHeight  int
	descBox     int

	keys    session.KeyMap
	help    help.Model
	spinner spinner.Model
	caret   cursor.Model
	caretAt session.FieldID
	desc    viewport.Model
	descKey string

	markdownStyle string
	markdown      *glamour.TermRenderer
	markdownWidth int

	offsets [2]int

	handlers map[reflect.Type]msgHandler
}

// NewModel returns a model showing an empty session.
func NewModel(opts Options) *Model {
	m := &Model{
		width:         defaultWidth,
		height:        defaultHeight,
		descHeight:    opts.DescHeight,
		keys:          opts.Keys,
		help:          help.New(),
		markdownStyle: opts.MarkdownStyle,
		snap:          session.Snapshot{Fields: session.NewFields()},
	}
	if len(m.keys.Quit.Keys()) == 0 {
		m.keys = session.DefaultKeyMap()
	}
	if m.descHeight <= 0 {
		m.descHeight = defaultDescHeight
	}
	if m.markdownStyle == "" {
		m.markdownStyle = defaultMarkdown
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	if styles.Spinner != nil {
		m.spinner.Style = *styles.Spinner
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.FieldFocused != nil {
		c.TextStyle = styles.FieldFocused.Copy()
	}
	c.SetChar(" ")
	m.caret = c
	m.desc = viewport.New(m.width-2, m.descHeight-2)
	m.registerHandlers()
	m.layout()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.caret.Focus())
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 3)
	var cmd tea.Cmd
	if m.caret, cmd = m.caret.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if _, ok := msg.(spinner.TickMsg); ok {
		if m.spinner, cmd = m.spinner.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(frameMsg{}):          m.handleFrameMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleFrameMsg(msg tea.Msg) tea.Cmd {
	frame, ok := msg.(frameMsg)
	if !ok {
		if p, isPtr := msg.(*frameMsg); isPtr && p != nil {
			frame = *p
		} else {
			return nil
		}
	}
	prev := m.snap
	m.snap = frame.snap
	m.syncScroll()
	m.syncDescription()
	// restart the blink so the caret is visible right after typing
	if prev.Focus != m.snap.Focus || prev.Fields != m.snap.Fields {
		m.caretAt = m.snap.Focus
		m.caret.Blink = false
		return m.caret.BlinkCmd()
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth && size.Width > 0 {
		m.width = size.Width
	}
	if !m.fixedHeight && size.Height > 0 {
		m.height = size.Height
	}
	m.layout()
	m.syncScroll()
	m.descKey = ""
	m.syncDescription()
	return nil
}

// Snapshot returns the snapshot currently on screen.
func (m *Model) Snapshot() session.Snapshot {
	return m.snap
}
