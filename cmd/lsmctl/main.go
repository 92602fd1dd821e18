package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-lsm/pkg/lsm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1).MarginLeft(2)
)

type keyMap struct {
	Tab     key.Binding
	Enter   key.Binding
	Quit    key.Binding
	Force   key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch field")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run command")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Force:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "force-compact level 0")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

type field int

const (
	fieldCommand field = iota
	fieldKey
	fieldValue
)

type model struct {
	tree       *lsm.LSMTree
	levelTable table.Model
	command    textinput.Model
	keyInput   textinput.Model
	valueInput textinput.Model
	focused    field
	message    string
	messageErr bool
	width      int
}

func initialModel(tree *lsm.LSMTree) model {
	cmd := textinput.New()
	cmd.Placeholder = "put | get"
	cmd.CharLimit = 10
	cmd.Width = 10
	cmd.Focus()

	k := textinput.New()
	k.Placeholder = "key"
	k.CharLimit = 200
	k.Width = 30

	v := textinput.New()
	v.Placeholder = "value (put only)"
	v.CharLimit = 200
	v.Width = 30

	columns := []table.Column{
		{Title: "Level", Width: 8},
		{Title: "Entries", Width: 10},
		{Title: "State", Width: 14},
	}
	tbl := table.New(table.WithColumns(columns), table.WithHeight(tree.Levels()))

	return model{
		tree:       tree,
		levelTable: tbl,
		command:    cmd,
		keyInput:   k,
		valueInput: v,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) refreshLevels() {
	rows := make([]table.Row, 0, m.tree.Levels())
	for i := 0; i < m.tree.Levels(); i++ {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", m.tree.LevelSize(i)),
			m.tree.LevelState(i).String(),
		})
	}
	m.levelTable.SetRows(rows)
}

func (m *model) runCommand() {
	command := strings.TrimSpace(m.command.Value())
	key := strings.TrimSpace(m.keyInput.Value())

	switch command {
	case "put":
		value := m.valueInput.Value()
		if key == "" {
			m.message, m.messageErr = "key is required", true
			return
		}
		if err := m.tree.Put([]byte(key), []byte(value)); err != nil {
			m.message, m.messageErr = err.Error(), true
			return
		}
		m.message, m.messageErr = fmt.Sprintf("put %q = %q", key, value), false
	case "get":
		if key == "" {
			m.message, m.messageErr = "key is required", true
			return
		}
		v, ok, err := m.tree.Get([]byte(key))
		if err != nil {
			m.message, m.messageErr = err.Error(), true
			return
		}
		if !ok {
			m.message, m.messageErr = fmt.Sprintf("%q not found", key), true
			return
		}
		m.message, m.messageErr = fmt.Sprintf("%q = %q", key, v), false
	default:
		m.message, m.messageErr = fmt.Sprintf("unknown command %q (put|get)", command), true
		return
	}
	m.refreshLevels()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			m.refreshLevels()
			return m, nil
		case key.Matches(msg, keys.Force):
			if err := m.tree.ForceCompaction(0); err != nil {
				m.message, m.messageErr = err.Error(), true
			} else {
				m.message, m.messageErr = "forced compaction of level 0", false
			}
			m.refreshLevels()
			return m, nil
		case key.Matches(msg, keys.Tab):
			m.focused = (m.focused + 1) % 3
			m.command.Blur()
			m.keyInput.Blur()
			m.valueInput.Blur()
			switch m.focused {
			case fieldCommand:
				m.command.Focus()
			case fieldKey:
				m.keyInput.Focus()
			case fieldValue:
				m.valueInput.Focus()
			}
			return m, nil
		case key.Matches(msg, keys.Enter):
			m.runCommand()
			return m, nil
		}
	}

	switch m.focused {
	case fieldCommand:
		m.command, cmd = m.command.Update(msg)
	case fieldKey:
		m.keyInput, cmd = m.keyInput.Update(msg)
	case fieldValue:
		m.valueInput, cmd = m.valueInput.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("lsmctl — engine %s", m.tree.EngineID())))
	s.WriteString("\n\n")

	s.WriteString(headerStyle.Render("Levels"))
	s.WriteString("\n")
	s.WriteString(m.levelTable.View())
	s.WriteString("\n\n")

	s.WriteString(headerStyle.Render("Command"))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("command: %s   key: %s   value: %s\n",
		m.command.View(), m.keyInput.View(), m.valueInput.View()))

	if m.message != "" {
		s.WriteString("\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("tab: switch field  enter: run  c: force-compact L0  r: refresh  q: quit"))

	return contentStyle.Render(s.String())
}

func main() {
	dataDir := "./data/lsmctl"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	tree, err := lsm.Open(lsm.EngineConfig{DataDir: dataDir})
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer tree.Close()

	m := initialModel(tree)
	m.refreshLevels()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}
