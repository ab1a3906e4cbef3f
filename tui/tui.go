// Package tui provides a Bubble Tea terminal UI for hotseat Tacticore
// matches: a cursor-driven board view with an event log below it.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/tacticore/engine"
	"github.com/nathoo/tacticore/engine/events"
	"github.com/nathoo/tacticore/engine/save"
	"github.com/nathoo/tacticore/engine/state"
	"github.com/nathoo/tacticore/types"
)

// mode tracks what the cursor is currently doing.
type mode int

const (
	modeBrowse mode = iota // moving the cursor freely
	modeMove               // a unit is selected; cursor picks a destination
	modeAttack             // a unit is selected; cursor picks a target
)

// keyMap defines the key bindings for the board view.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
	Cancel  key.Binding
	Attack  key.Binding
	EndTurn key.Binding
	Resign  key.Binding
	Save    key.Binding
	Load    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k")),
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		Left:    key.NewBinding(key.WithKeys("left", "h")),
		Right:   key.NewBinding(key.WithKeys("right", "l")),
		Select:  key.NewBinding(key.WithKeys("enter", " ")),
		Cancel:  key.NewBinding(key.WithKeys("esc")),
		Attack:  key.NewBinding(key.WithKeys("a")),
		EndTurn: key.NewBinding(key.WithKeys("e")),
		Resign:  key.NewBinding(key.WithKeys("R")),
		Save:    key.NewBinding(key.WithKeys("s")),
		Load:    key.NewBinding(key.WithKeys("o")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	}
}

// rawLine stores an unstyled log line with its classification, so we can
// re-style when the terminal is resized.
type rawLine struct {
	text     string
	isSystem bool
	isError  bool
}

// Model is the Bubble Tea model for the Tacticore TUI.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs

	viewport viewport.Model
	keys     keyMap

	cursorX  int
	cursorY  int
	mode     mode
	selected int   // selected unit id, -1 when none
	targets  []int // highlighted destination or target nodes

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	quitting bool
	saveDir  string
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) Model {
	home, _ := os.UserHomeDir()
	m := Model{
		engine:   eng,
		defs:     defs,
		keys:     defaultKeyMap(),
		selected: -1,
		saveDir:  filepath.Join(home, ".tacticore", "saves"),
	}
	m.rawLines = append(m.rawLines,
		rawLine{text: defs.Game.Title + " v" + defs.Game.Version + " by " + defs.Game.Author},
		rawLine{text: fmt.Sprintf("Turn %d — player %d to act.", eng.State.Turn, eng.State.Current)},
	)
	return m
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs) error {
	m := New(eng, defs)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages (key presses, window resize).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - m.boardHeight() - 3 // status bar + hint line + spacer
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1, 0)

	case key.Matches(msg, m.keys.Cancel):
		m.clearSelection()

	case key.Matches(msg, m.keys.Select):
		m = m.handleSelect()

	case key.Matches(msg, m.keys.Attack):
		m = m.enterAttackMode()

	case key.Matches(msg, m.keys.EndTurn):
		m = m.apply(m.engine.RequestEndTurn(m.engine.State.Current))
		m.clearSelection()

	case key.Matches(msg, m.keys.Resign):
		m = m.apply(m.engine.RequestResign(m.engine.State.Current))
		m.clearSelection()

	case key.Matches(msg, m.keys.Save):
		m.logSystem(m.cmdSave("quicksave"))

	case key.Matches(msg, m.keys.Load):
		m.logSystem(m.cmdLoad("quicksave"))
	}

	if m.engine.State.Phase == types.PhaseEnded && !m.quitting {
		// Keep the final board on screen; any quit key still works.
		m.refreshViewport()
	}
	return m, nil
}

func (m *Model) moveCursor(dx, dy int) {
	s := m.engine.State
	nx, ny := m.cursorX+dx, m.cursorY+dy
	if nx >= 0 && nx < s.Board.Width {
		m.cursorX = nx
	}
	if ny >= 0 && ny < s.Board.Height {
		m.cursorY = ny
	}
}

func (m *Model) cursorNode() int {
	return m.cursorY*m.engine.State.Board.Width + m.cursorX
}

func (m *Model) clearSelection() {
	m.mode = modeBrowse
	m.selected = -1
	m.targets = nil
}

// handleSelect acts on the node under the cursor: pick a friendly unit,
// or commit the pending move/attack.
func (m Model) handleSelect() Model {
	s := m.engine.State
	node := m.cursorNode()

	switch m.mode {
	case modeBrowse:
		u := state.UnitAt(s, node)
		if u == nil {
			return m
		}
		if u.Owner != s.Current {
			m.logError(fmt.Sprintf("Unit %d belongs to player %d.", u.ID, u.Owner))
			return m
		}
		m.selected = u.ID
		m.mode = modeMove
		m.targets = m.engine.LegalMoves(u.ID)
		if len(m.targets) == 0 {
			m.logSystem(fmt.Sprintf("Unit %d has no legal moves.", u.ID))
		}

	case modeMove:
		if node == m.selectedNode() {
			m.clearSelection()
			return m
		}
		m = m.apply(m.engine.RequestMove(m.selected, node, s.Current))
		m.clearSelection()

	case modeAttack:
		target := state.UnitAt(s, node)
		if target == nil {
			m.logError("No unit there.")
			return m
		}
		m = m.apply(m.engine.RequestAttack(m.selected, target.ID, s.Current))
		m.clearSelection()
	}
	return m
}

// enterAttackMode switches a selected unit to targeting, highlighting
// enemy-occupied nodes within attack range.
func (m Model) enterAttackMode() Model {
	s := m.engine.State
	if m.selected < 0 {
		u := state.UnitAt(s, m.cursorNode())
		if u == nil || u.Owner != s.Current {
			return m
		}
		m.selected = u.ID
	}
	att := state.UnitByID(s, m.selected)
	if att == nil {
		m.clearSelection()
		return m
	}

	m.mode = modeAttack
	m.targets = nil
	for _, u := range s.Units {
		if !u.Alive || u.Owner == att.Owner {
			continue
		}
		d := m.engine.Board.Distance(att.Node, u.Node)
		if d >= 0 && d <= att.Stats.Range {
			m.targets = append(m.targets, u.Node)
		}
	}
	if len(m.targets) == 0 {
		m.logSystem(fmt.Sprintf("Unit %d has no targets in range.", m.selected))
	}
	return m
}

func (m *Model) selectedNode() int {
	if u := state.UnitByID(m.engine.State, m.selected); u != nil {
		return u.Node
	}
	return -1
}

// apply logs the result of an engine command.
func (m Model) apply(res types.CommandResult) Model {
	if !res.Accepted {
		m.logError(res.Reason)
		return m
	}
	for _, ev := range res.Events {
		m.rawLines = append(m.rawLines, rawLine{text: events.Describe(ev)})
	}
	if res.Phase == types.PhaseEnded {
		m.rawLines = append(m.rawLines, rawLine{text: m.outcomeText()})
	}
	m.refreshViewport()
	return m
}

func (m *Model) outcomeText() string {
	s := m.engine.State
	if s.Winner < 0 {
		return "The match ends in a draw."
	}
	return fmt.Sprintf("Player %d wins.", s.Winner)
}

func (m *Model) logSystem(text string) {
	m.rawLines = append(m.rawLines, rawLine{text: text, isSystem: true})
	m.refreshViewport()
}

func (m *Model) logError(text string) {
	m.rawLines = append(m.rawLines, rawLine{text: text, isError: true})
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	var styled []string
	for _, rl := range m.rawLines {
		switch {
		case rl.isError:
			styled = append(styled, styleError.Render(rl.text))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(rl.text))
		default:
			styled = append(styled, styleEvent.Render(rl.text))
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) boardHeight() int {
	return m.engine.State.Board.Height + 1 // +1 for the column header
}

// View renders the board, status bar, key hints, and the event log.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.renderBoard() + "\n" + m.renderStatusBar() + "\n" +
		m.renderHints() + "\n" + m.viewport.View()
}

// renderBoard draws the grid top row first, with the cursor, the
// selected unit, and legal targets highlighted.
func (m Model) renderBoard() string {
	s := m.engine.State

	targetSet := map[int]bool{}
	for _, t := range m.targets {
		targetSet[t] = true
	}
	selNode := -1
	if m.selected >= 0 {
		selNode = m.selectedNode()
	}

	var b strings.Builder
	b.WriteString(styleAxis.Render("   "))
	for x := 0; x < s.Board.Width; x++ {
		b.WriteString(styleAxis.Render(fmt.Sprintf("%2d ", x)))
	}
	b.WriteString("\n")

	for y := s.Board.Height - 1; y >= 0; y-- {
		b.WriteString(styleAxis.Render(fmt.Sprintf("%2d ", y)))
		for x := 0; x < s.Board.Width; x++ {
			id := y*s.Board.Width + x
			cell := " " + m.cellGlyph(id) + " "
			switch {
			case x == m.cursorX && y == m.cursorY:
				cell = styleCursor.Render(cell)
			case id == selNode:
				cell = styleSelected.Render(cell)
			case targetSet[id]:
				cell = styleTarget.Render(cell)
			}
			b.WriteString(cell)
		}
		if y > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) cellGlyph(node int) string {
	s := m.engine.State
	if u := state.UnitAt(s, node); u != nil {
		g := "?"
		if def, ok := m.defs.UnitDefFor(u); ok {
			if def.Glyph != "" {
				g = def.Glyph
			} else if def.Name != "" {
				g = def.Name[:1]
			}
		}
		if u.Owner%2 == 0 {
			g = strings.ToUpper(g)
		} else {
			g = strings.ToLower(g)
		}
		if u.Owner == s.Current {
			return styleFriendly.Render(g)
		}
		return styleEnemy.Render(g)
	}
	n := m.engine.Board.Node(node)
	if n == nil {
		return " "
	}
	switch n.Type {
	case types.NodeImpassable, types.NodeDestroyed:
		return styleTile.Render("#")
	case types.NodeTrap:
		return styleTile.Render("^")
	case types.NodeBoost:
		return styleTile.Render("*")
	case types.NodeTeleport:
		return styleTile.Render("@")
	case types.NodeUnstable:
		return styleTile.Render("~")
	default:
		return styleBoard.Render(".")
	}
}

// renderStatusBar produces a full-width inverted status line showing the
// turn, the current player, and the unit under the cursor.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	left := fmt.Sprintf(" Turn %d | Player %d", s.Turn, s.Current)
	if s.Phase == types.PhaseEnded {
		if s.Winner < 0 {
			left = " Draw"
		} else {
			left = fmt.Sprintf(" Player %d wins", s.Winner)
		}
	}

	right := fmt.Sprintf("node %d ", m.cursorNode())
	if u := state.UnitAt(s, m.cursorNode()); u != nil {
		name := u.DefID
		if def, ok := m.defs.UnitDefFor(u); ok && def.Name != "" {
			name = def.Name
		}
		right = fmt.Sprintf("#%d %s hp %d/%d lvl %d | node %d ",
			u.ID, name, u.Health, u.Stats.MaxHealth, u.Level, m.cursorNode())
	}

	gap := m.width - len(left) - len(right)
	if gap < 0 {
		gap = 0
	}
	return styleStatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHints() string {
	switch m.mode {
	case modeMove:
		return styleSystem.Render(" enter: move  a: attack  esc: cancel  e: end turn  q: quit")
	case modeAttack:
		return styleSystem.Render(" enter: attack  esc: cancel  e: end turn  q: quit")
	default:
		return styleSystem.Render(" arrows: cursor  enter: select  e: end turn  R: resign  s/o: save/load  q: quit")
	}
}

func (m *Model) cmdSave(name string) string {
	data, err := save.Save(m.engine.State, m.defs.Game.Version)
	if err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	return fmt.Sprintf("Match saved to %s.", name)
}

func (m *Model) cmdLoad(name string) string {
	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Load failed: %v", err)
	}
	sd, err := save.Load(data)
	if err != nil {
		return fmt.Sprintf("Load failed: %v", err)
	}
	save.Apply(m.engine.State, sd)
	m.engine.RebindBoard()
	m.clearSelection()
	return fmt.Sprintf("Match loaded from %s (turn %d).", name, sd.Turn)
}
