package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel is the bubbletea model for a yes/no prompt.
type confirmModel struct {
	question string
	answer   bool
	done     bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y":
			m.answer = true
			m.done = true
			return m, tea.Quit
		case "n", "N", "enter", "esc", "q", "ctrl+c":
			m.answer = false
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleIconWarning.Render(iconWarning))
	b.WriteString(" ")
	b.WriteString(m.question)
	b.WriteString(" ")
	b.WriteString(StyleDim.Render("[y/N]"))
	return b.String()
}

// confirm asks the user a yes/no question. Anything but an explicit "y"
// declines.
func confirm(question string) (bool, error) {
	model, err := tea.NewProgram(confirmModel{question: question}).Run()
	if err != nil {
		return false, err
	}
	m, ok := model.(confirmModel)
	return ok && m.answer, nil
}
