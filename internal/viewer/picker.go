package viewer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/studypack"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	records []model.PackRecord
	cursor  int
	chosen  int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.records) > 0 {
				m.chosen = m.cursor
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Study packs, newest first")
	s += "\n"

	if len(m.records) == 0 {
		s += pickerItemStyle.Render("(no study packs yet, run `studypack generate <file>`)") + "\n"
	}
	for i, r := range m.records {
		label := recordLabel(r)
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+label) + "\n"
		} else {
			s += pickerItemStyle.Render(label) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter open  q quit")
	return s
}

// recordLabel is the one-line description of an archived pack.
func recordLabel(r model.PackRecord) string {
	label := fmt.Sprintf("%s  %s", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Source)
	if topic, ok := studypack.PackTopic(r.Pack); ok {
		label += " · " + topic
	}
	return label
}

// RunPackPicker shows an interactive selector over archived packs.
// Returns the index of the chosen record, or -1 if the user quit.
func RunPackPicker(records []model.PackRecord) (int, error) {
	m := pickerModel{
		records: records,
		chosen:  -1,
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return -1, err
	}

	final := result.(pickerModel)
	if final.chosen < 0 {
		return -1, nil
	}
	return final.chosen, nil
}
