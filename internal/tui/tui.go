// Package tui is the interactive list. It only issues intents to a
// syncer.Core and renders the Core's list; it never edits items itself.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada/internal/gateway"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/syncer"
	"github.com/idilsaglam/tada/internal/ui"
)

// changedMsg tells the model to re-read the Core's list.
type changedMsg struct{}

// opDoneMsg carries the outcome of one intent.
type opDoneMsg struct {
	op  string
	id  int64
	err error
}

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
	pending bool
}

// Implement list.Item interface
func (i listItem) Title() string       { return i.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	t := ui.Current()

	box := t.Muted.Render(t.BoxUnchecked)
	text := it.Text
	if it.Completed {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	line := fmt.Sprintf("%s %s %s", t.Muted.Render(fmt.Sprintf("#%d", it.ID)), box, text)
	if it.pending {
		line += " " + t.Pending.Render("…")
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

type modelTUI struct {
	ctx  context.Context
	core *syncer.Core

	list   list.Model
	width  int
	height int

	// Inline add
	adding bool
	ti     textinput.Model

	// last outcome shown under the list
	status    string
	statusErr bool
	inFlight  int
}

// Run loads the list through gw and starts the Bubble Tea program.
func Run(ctx context.Context, gw gateway.Gateway, logger *slog.Logger) error {
	var p *tea.Program
	core := syncer.New(gw,
		syncer.WithLogger(logger),
		syncer.WithOnChange(func() {
			if p != nil {
				p.Send(changedMsg{})
			}
		}),
	)
	p = tea.NewProgram(newModel(ctx, core), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func newModel(ctx context.Context, core *syncer.Core) modelTUI {
	t := ui.Current()
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	// Extend help with our intents
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return bindings }
	l.AdditionalFullHelpKeys = func() []key.Binding { return bindings }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item text..."
	ti.CharLimit = 200

	m := modelTUI{ctx: ctx, core: core, list: l, ti: ti, width: 80, height: 24}
	m.resize()
	m.sync()
	return m
}

// Init issues the initial load.
func (m modelTUI) Init() tea.Cmd {
	core, ctx := m.core, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "load", err: core.InitialLoad(ctx)}
	}
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case changedMsg:
		m.sync()
		return m, nil
	case opDoneMsg:
		m.inFlight--
		if m.inFlight < 0 {
			m.inFlight = 0
		}
		m.report(msg)
		m.sync()
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	if k, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch k.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ":
			if it, ok := m.selected(); ok {
				cmd := m.intent("toggle", it.ID, func(ctx context.Context) error {
					return m.core.Toggle(ctx, it.ID)
				})
				return m, cmd
			}
			return m, nil
		case "d":
			if it, ok := m.selected(); ok {
				cmd := m.intent("remove", it.ID, func(ctx context.Context) error {
					return m.core.Remove(ctx, it.ID)
				})
				return m, cmd
			}
			return m, nil
		case "r":
			cmd := m.intent("refresh", 0, m.core.Refresh)
			return m, cmd
		case "a":
			m.adding = true
			m.ti.SetValue("")
			m.ti.Focus()
			m.resize()
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			text := strings.TrimSpace(m.ti.Value())
			if text == "" {
				m.setStatus("Text cannot be empty", true)
				return m, nil
			}
			m.closeInput()
			cmd := m.intent("add", 0, func(ctx context.Context) error {
				_, err := m.core.Add(ctx, text)
				return err
			})
			return m, cmd
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

// intent runs fn off the event loop and reports its outcome.
func (m *modelTUI) intent(op string, id int64, fn func(context.Context) error) tea.Cmd {
	m.inFlight++
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, id: id, err: fn(ctx)}
	}
}

func (m *modelTUI) report(msg opDoneMsg) {
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("%s failed: %v", msg.op, msg.err), true)
		return
	}
	switch msg.op {
	case "load":
		m.setStatus("", false)
	case "add":
		m.setStatus("added", false)
	case "toggle":
		m.setStatus(fmt.Sprintf("toggled #%d", msg.id), false)
	case "remove":
		m.setStatus(fmt.Sprintf("removed #%d", msg.id), false)
	case "refresh":
		m.setStatus("refreshed", false)
	}
}

func (m *modelTUI) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *modelTUI) closeInput() {
	m.adding = false
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m modelTUI) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// sync rebuilds the list rows from the Core.
func (m *modelTUI) sync() {
	items := m.core.Items()
	rows := make([]list.Item, 0, len(items))
	for _, it := range items {
		rows = append(rows, listItem{Item: it, pending: m.core.Pending(it.ID)})
	}
	idx := m.list.Index()
	m.list.SetItems(rows)
	if idx >= len(rows) {
		idx = len(rows) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}

	t := ui.Current()
	done, pending := model.Stats(items)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), len(items),
	)
}

func (m *modelTUI) resize() {
	h := m.height - 5
	if m.adding {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m modelTUI) View() string {
	t := ui.Current()
	content := m.list.View()
	if m.adding {
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		content += "\n" + bar.Render("Add new item\n"+m.ti.View())
	}
	content += "\n" + m.statusLine()
	return ui.PanelString(content)
}

// statusLine shows the last outcome followed by the in-flight marker.
func (m modelTUI) statusLine() string {
	t := ui.Current()
	status := m.status
	if m.statusErr {
		status = t.Error.Render(status)
	}
	if m.inFlight > 0 {
		status = strings.TrimSpace(status + " " + t.Pending.Render("syncing…"))
	}
	return status
}
