package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/wasm-host/registry"
	"github.com/wippyai/wasm-host/runtime"
	"github.com/wippyai/wasm-host/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	ctx      context.Context
	err      error
	rt       *runtime.Runtime
	module   *runtime.Module
	cfg      runtime.Config
	path     string
	result   string
	funcs    []runtime.Export
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
	loaded   bool
}

type loadedMsg struct {
	err   error
	rt    *runtime.Runtime
	mod   *runtime.Module
	funcs []runtime.Export
}

type callResultMsg struct {
	err    error
	result string
}

// newInteractiveModel keeps guests off the terminal. Each call captures its
// own output, see callFunction.
func newInteractiveModel(ctx context.Context, cfg runtime.Config, path string) *interactiveModel {
	cfg.Stdio = registry.Stdio{
		Stdin:  strings.NewReader(""),
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
	return &interactiveModel{
		ctx:   ctx,
		cfg:   cfg,
		path:  path,
		state: stateSelectFunc,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	data, err := runtime.ReadModule(m.path)
	if err != nil {
		return loadedMsg{err: err}
	}
	rt, err := runtime.New(m.ctx, m.cfg)
	if err != nil {
		return loadedMsg{err: err}
	}
	mod, err := rt.Load(m.ctx, data)
	if err != nil {
		rt.Close(m.ctx)
		return loadedMsg{err: err}
	}

	var funcs []runtime.Export
	for _, e := range mod.Exports() {
		if e.Kind == wasm.KindFunc {
			funcs = append(funcs, e)
		}
	}
	return loadedMsg{rt: rt, mod: mod, funcs: funcs}
}

func (m *interactiveModel) close() {
	if m.rt != nil {
		m.rt.Close(m.ctx)
		m.rt = nil
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.close()
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				m.close()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.call()
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.call()

			case stateShowResult:
				m.reset()
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.reset()
			}
		}

	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.module = msg.mod
		m.funcs = msg.funcs

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectFunc
	m.result = ""
	m.err = nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.Signature.Params))
	for i, k := range f.Signature.Params {
		ti := textinput.New()
		ti.Placeholder = k.String()
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// call snapshots the selected export and the entered arguments. The
// returned command runs on its own goroutine and must not touch the model.
func (m *interactiveModel) call() tea.Cmd {
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = input.Value()
	}
	return callFunction(m.ctx, m.module, m.funcs[m.selected].Name, args)
}

// callFunction runs name on a fresh instance, so a trap or exit in one call
// does not affect the next. Guest output is captured per call.
func callFunction(ctx context.Context, mod *runtime.Module, name string, args []string) tea.Cmd {
	return func() tea.Msg {
		if mod == nil {
			return callResultMsg{err: fmt.Errorf("module not loaded")}
		}

		var output bytes.Buffer
		inst, err := mod.InstantiateWithStdio(ctx, registry.Stdio{
			Stdin:  strings.NewReader(""),
			Stdout: &output,
			Stderr: &output,
		})
		if err != nil {
			return callResultMsg{err: err}
		}
		defer inst.Close(ctx)

		var rendered bytes.Buffer
		results, err := inst.Invoke(ctx, name, args, &rendered)
		if err != nil {
			return callResultMsg{err: err}
		}

		var b strings.Builder
		if output.Len() > 0 {
			b.WriteString(output.String())
			if !strings.HasSuffix(output.String(), "\n") {
				b.WriteByte('\n')
			}
		}
		if len(results) == 0 {
			b.WriteString("(no results)")
		} else {
			b.WriteString(strings.TrimSuffix(rendered.String(), "\n"))
		}
		return callResultMsg{result: b.String()}
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if !m.loaded {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("WASM Host"))
	b.WriteString(" ")
	b.WriteString(m.path)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("The module exports no functions.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f.String()))
			} else {
				b.WriteString("  " + formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(f.Signature.Params[i].String()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatFunc(f runtime.Export) string {
	return funcStyle.Render(f.Name) + typeStyle.Render(f.Signature.String())
}

func runInteractive(ctx context.Context, cfg runtime.Config, path string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	m := newInteractiveModel(ctx, cfg, path)
	defer m.close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
