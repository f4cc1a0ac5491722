package prompt

import (
	"os"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/sahilm/fuzzy"

	"github.com/dnakoni/nakodx-file-retriever/internal/ui/styles"
)

// Option is one selectable entry.
type Option struct {
	Label       string
	Description string
	Detail      string
}

// SelectResult holds the result of a selection prompt.
type SelectResult struct {
	Label     string
	Index     int
	Cancelled bool
}

type listItem struct {
	option Option
	index  int
}

func (i listItem) Title() string { return i.option.Label }

func (i listItem) Description() string {
	if i.option.Detail == "" {
		return i.option.Description
	}
	if i.option.Description == "" {
		return i.option.Detail
	}
	return i.option.Description + "  " + i.option.Detail
}

func (i listItem) FilterValue() string { return i.option.Label }

type selectModel struct {
	list      list.Model
	done      bool
	cancelled bool
	selected  int
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		// Let an active filter consume keystrokes first
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(listItem); ok {
				m.selected = item.index
			}
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	return tea.NewView(m.list.View())
}

// fuzzyRanks ranks targets against the filter term using sahilm/fuzzy.
func fuzzyRanks(term string, targets []string) []list.Rank {
	matches := fuzzy.Find(term, targets)
	ranks := make([]list.Rank, len(matches))
	for i, m := range matches {
		ranks[i] = list.Rank{Index: m.Index, MatchedIndexes: m.MatchedIndexes}
	}
	return ranks
}

// Select shows a filterable list prompt and returns the user's choice.
// Item lists can run to thousands of entries, so filtering is fuzzy.
func Select(title string, options []Option) (SelectResult, error) {
	if len(options) == 0 {
		return SelectResult{Cancelled: true}, nil
	}

	items := make([]list.Item, len(options))
	showDescription := false
	for i, opt := range options {
		items[i] = listItem{option: opt, index: i}
		if opt.Description != "" || opt.Detail != "" {
			showDescription = true
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = showDescription
	if !showDescription {
		delegate.SetSpacing(0)
	}
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)

	height := len(options) + 6
	if showDescription {
		height = len(options)*2 + 6
	}
	l := list.New(items, delegate, 72, min(height, 24))
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.Filter = fuzzyRanks
	l.DisableQuitKeybindings()

	model := selectModel{
		list:     l,
		selected: -1,
	}
	// Render to stderr so stdout stays pipeable; detect the color
	// profile there too (handles NO_COLOR and piped output).
	p := tea.NewProgram(model,
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(colorprofile.Detect(os.Stderr, os.Environ())),
	)
	finalModel, err := p.Run()
	if err != nil {
		return SelectResult{}, err
	}
	m := finalModel.(selectModel)

	if m.cancelled || m.selected < 0 || m.selected >= len(options) {
		return SelectResult{Cancelled: true}, nil
	}

	return SelectResult{
		Label: options[m.selected].Label,
		Index: m.selected,
	}, nil
}
