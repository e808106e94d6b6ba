package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/studypack/internal/model"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ErrCancelled is returned by RunLoader when the user interrupts generation.
var ErrCancelled = errors.New("cancelled")

// generateTimeout bounds one full pack generation (three model calls and a render).
const generateTimeout = 5 * time.Minute

type generateDoneMsg struct {
	pack model.StudyPack
	err  error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label      string
	generateFn func(ctx context.Context) (model.StudyPack, error)
	ctx        context.Context
	cancel     context.CancelFunc
	frame      int
	result     model.StudyPack
	err        error
	done       bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doGenerate(), m.tick())
}

func (m loaderModel) doGenerate() tea.Cmd {
	generateFn := m.generateFn
	ctx := m.ctx
	return func() tea.Msg {
		pack, err := generateFn(ctx)
		return generateDoneMsg{pack: pack, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generateDoneMsg:
		m.result = msg.pack
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// Abort the in-flight model calls as well.
			m.cancel()
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s Generating study pack for %s...\n", spinner, m.label)
}

// RunLoader shows a spinner while generateFn builds a study pack. It renders
// inline (no alt screen).
func RunLoader(label string, generateFn func(ctx context.Context) (model.StudyPack, error)) (model.StudyPack, error) {
	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	m := loaderModel{
		label:      label,
		generateFn: generateFn,
		ctx:        ctx,
		cancel:     cancel,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return model.StudyPack{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
