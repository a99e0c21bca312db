package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/lwcgen/cmd/lwcgen/internal/config"
)

// ErrCancelled is returned when the user leaves the wizard.
var ErrCancelled = errors.New("configuration cancelled")

// KeyMap defines the wizard's keyboard shortcuts
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Toggle key.Binding
	Submit key.Binding
	Quit   key.Binding
}

var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab/↓", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab/↑", "previous field"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "left", "right"),
		key.WithHelp("space/←/→", "change"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

type fieldKind int

const (
	textField fieldKind = iota
	choiceField
)

type field struct {
	label   string
	kind    fieldKind
	input   textinput.Model
	choices []string
	choice  int
}

func (f field) value() string {
	if f.kind == choiceField {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

const (
	fieldOutDir = iota
	fieldInclude
	fieldJobs
	fieldStateType
	fieldTypeScript
	fieldPrettier
	fieldCache
)

// Model is the init wizard state.
type Model struct {
	fields  []field
	focus   int
	err     error
	done    bool
	aborted bool
	result  *config.Config
}

// NewModel returns a wizard prefilled from cfg.
func NewModel(cfg *config.Config) Model {
	text := func(label, value, placeholder string) field {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 200
		in.Width = 40
		in.SetValue(value)
		return field{label: label, kind: textField, input: in}
	}
	choice := func(label string, current string, choices ...string) field {
		f := field{label: label, kind: choiceField, choices: choices}
		for i, c := range choices {
			if c == current {
				f.choice = i
			}
		}
		return f
	}
	yesNo := func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	}

	m := Model{fields: []field{
		text("Output dir", cfg.OutDir, "dist"),
		text("Include", strings.Join(cfg.Include, ", "), "components"),
		text("Jobs", strconv.Itoa(cfg.Jobs), "4"),
		choice("State", cfg.StateType, "variables", "proxies"),
		choice("TypeScript", yesNo(cfg.TypeScript), "no", "yes"),
		choice("Prettier", yesNo(cfg.Prettier), "no", "yes"),
		choice("Cache", yesNo(cfg.Cache.Enabled), "no", "yes"),
	}}
	m.result = cfg
	m.fields[0].input.Focus()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInput(msg)
	}

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Quit):
		m.aborted = true
		return m, tea.Quit
	case key.Matches(keyMsg, DefaultKeyMap.Next):
		m.setFocus(m.focus + 1)
		return m, nil
	case key.Matches(keyMsg, DefaultKeyMap.Prev):
		m.setFocus(m.focus - 1)
		return m, nil
	case key.Matches(keyMsg, DefaultKeyMap.Submit):
		if m.focus < len(m.fields)-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		cfg, err := m.build()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.result, m.done = cfg, true
		return m, tea.Quit
	case m.fields[m.focus].kind == choiceField && key.Matches(keyMsg, DefaultKeyMap.Toggle):
		f := &m.fields[m.focus]
		step := 1
		if keyMsg.String() == "left" {
			step = len(f.choices) - 1
		}
		f.choice = (f.choice + step) % len(f.choices)
		return m, nil
	}
	return m.updateInput(msg)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := &m.fields[m.focus]
	if f.kind != textField {
		return m, nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	m.err = nil
	return m, cmd
}

func (m *Model) setFocus(i int) {
	n := len(m.fields)
	i = (i%n + n) % n
	if m.fields[m.focus].kind == textField {
		m.fields[m.focus].input.Blur()
	}
	m.focus = i
	if m.fields[i].kind == textField {
		m.fields[i].input.Focus()
	}
}

// build turns the field values into a validated configuration.
func (m Model) build() (*config.Config, error) {
	cfg := *m.result
	cfg.OutDir = m.fields[fieldOutDir].value()
	cfg.Include = nil
	for _, p := range strings.Split(m.fields[fieldInclude].value(), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.Include = append(cfg.Include, p)
		}
	}
	jobs, err := strconv.Atoi(m.fields[fieldJobs].value())
	if err != nil {
		return nil, fmt.Errorf("jobs: %q is not a number", m.fields[fieldJobs].value())
	}
	cfg.Jobs = jobs
	cfg.StateType = m.fields[fieldStateType].value()
	cfg.TypeScript = m.fields[fieldTypeScript].value() == "yes"
	cfg.Prettier = m.fields[fieldPrettier].value() == "yes"
	cfg.Cache.Enabled = m.fields[fieldCache].value() == "yes"

	if cfg.OutDir == "" {
		return nil, errors.New("output dir is required")
	}
	if len(cfg.Include) == 0 {
		return nil, errors.New("include at least one path")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// View renders the form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("lwcgen configuration"))
	b.WriteString("\n")
	for i, f := range m.fields {
		label := labelStyle.Render(f.label)
		if i == m.focus {
			label = selectedStyle.Render("› ") + selectedStyle.Inherit(labelStyle).Render(f.label)
		} else {
			label = "  " + label
		}
		b.WriteString(label)
		if f.kind == textField {
			b.WriteString(f.input.View())
		} else {
			for j, c := range f.choices {
				if j == f.choice {
					b.WriteString(selectedStyle.Render("[" + c + "]"))
				} else {
					b.WriteString(mutedStyle.Render(" " + c + " "))
				}
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	help := []string{}
	for _, k := range []key.Binding{DefaultKeyMap.Next, DefaultKeyMap.Toggle, DefaultKeyMap.Submit, DefaultKeyMap.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString("\n" + mutedStyle.Render(strings.Join(help, " • ")))
	return boxStyle.Render(b.String())
}

// Result returns the configuration once the form was submitted.
func (m Model) Result() (*config.Config, error) {
	if m.aborted || !m.done {
		return nil, ErrCancelled
	}
	return m.result, nil
}

// RunWizard runs the form in the terminal.
func RunWizard(cfg *config.Config) (*config.Config, error) {
	final, err := tea.NewProgram(NewModel(cfg)).Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	return final.(Model).Result()
}
