package viewer

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/studypack/internal/conceptmap"
	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/studypack"
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	tabStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("24"))

	inactiveTabStyle = tabStyle.
				Foreground(lipgloss.Color("240"))

	failedTabStyle = tabStyle.
			Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

type packModel struct {
	record   model.PackRecord
	sections []studypack.Section
	tab      int
	showRaw  bool
	content  string
	notice   string

	viewport viewport.Model
	width    int
	height   int
	ready    bool

	wantQuit bool
}

func newPackModel(rec model.PackRecord) packModel {
	return packModel{
		record:   rec,
		sections: studypack.DecodePack(rec.Pack),
	}
}

func (m packModel) Init() tea.Cmd {
	return nil
}

func (m packModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.wantQuit = true
			return m, tea.Quit
		case "esc", "b":
			m.wantQuit = false
			return m, tea.Quit
		case "tab", "right", "l":
			m.selectTab(m.tab + 1)
			return m, nil
		case "shift+tab", "left", "h":
			m.selectTab(m.tab - 1)
			return m, nil
		case "1", "2", "3", "4":
			m.selectTab(int(msg.String()[0] - '1'))
			return m, nil
		case "r":
			m.showRaw = !m.showRaw
			m.recalcContent()
			m.viewport.SetYOffset(0)
			return m, nil
		case "o":
			if path, ok := conceptmap.ImagePath(m.record.Pack.Visualization); ok {
				openFile(path)
				m.notice = "opened " + path
			} else {
				m.notice = "no concept map for this pack"
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// selectTab moves to tab i, wrapping around at both ends.
func (m *packModel) selectTab(i int) {
	n := len(m.sections)
	if n == 0 {
		return
	}
	m.tab = ((i % n) + n) % n
	m.notice = ""
	m.recalcContent()
	m.viewport.SetYOffset(0)
}

func (m *packModel) recalcLayout() {
	// Title (1) + tabs (1) + border top/bottom (2) + status bar (1).
	w := max(m.width-4, 20)
	h := max(m.height-5, 5)

	if !m.ready {
		m.viewport = viewport.New(w, h)
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = h
	}
	m.recalcContent()
}

func (m *packModel) recalcContent() {
	if len(m.sections) == 0 {
		m.content = ""
	} else {
		m.content = renderBody(m.sections[m.tab], m.showRaw, m.viewport.Width)
	}
	m.viewport.SetContent(m.content)
}

// renderBody formats the section for the viewport. Raw mode shows the model
// output as stored, indented when it parsed.
func renderBody(s studypack.Section, raw bool, width int) string {
	var b strings.Builder
	switch {
	case s.Failed:
		b.WriteString(errorStyle.Render("⚠ " + s.Raw))
		b.WriteByte('\n')
	case raw:
		text := s.Raw
		if s.Parsed {
			text = s.Pretty()
		}
		b.WriteString(wrapLines(text, width))
		b.WriteByte('\n')
	default:
		b.WriteString(wrapLines(studypack.RenderSection(s), width))
	}
	if s.Repaired && !s.Failed {
		b.WriteByte('\n')
		b.WriteString(hintStyle.Render("  output was malformed JSON and has been repaired"))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m packModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := detailTitleStyle.Render(" " + packTitle(m.record))
	title += subtitleStyle.Render(fmt.Sprintf("  %s · %s", m.record.Source, m.record.CreatedAt.Local().Format("2006-01-02 15:04")))

	content := activeBorderStyle.Width(m.width - 2).Render(m.viewport.View())

	statusText := " ←/→/Tab section  1-4 jump  ↑/↓ scroll  r raw  o open map  Esc back  q quit"
	if m.notice != "" {
		statusText = " " + m.notice
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + m.renderTabs() + "\n" + content + "\n" + statusBar
}

func (m packModel) renderTabs() string {
	tabs := make([]string, 0, len(m.sections))
	for i, s := range m.sections {
		label := fmt.Sprintf("%d %s", i+1, studypack.Title(s.Key))
		style := inactiveTabStyle
		switch {
		case i == m.tab:
			style = activeTabStyle
		case s.Failed:
			style = failedTabStyle
		}
		if s.Failed {
			label += " ⚠"
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// packTitle is the concept topic, or the source name when there is none.
func packTitle(rec model.PackRecord) string {
	if topic, ok := studypack.PackTopic(rec.Pack); ok {
		return topic
	}
	return rec.Source
}

// wrapLines word-wraps each line longer than width, keeping its indentation.
func wrapLines(text string, width int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if len([]rune(line)) <= width {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		wrapped := wordWrap(line, max(width-len(indent), 10))
		lines[i] = indent + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
	}
	return strings.Join(lines, "\n") + "\n"
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

// openFile opens path with the default system viewer, fire-and-forget.
func openFile(path string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", path)
	default:
		return
	}
	_ = cmd.Start()
}

// RunPackView launches the tabbed study pack viewer.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to return to the picker.
func RunPackView(rec model.PackRecord) (bool, error) {
	p := tea.NewProgram(newPackModel(rec), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(packModel)
	return final.wantQuit, nil
}
