// Package tui provides the interactive parse tree browser.
//
// The browser is a bubbletea model. It is meant for single-threaded use
// inside the bubbletea event loop.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

const (
	headerHeight = 2
	footerHeight = 3
	maxRowText   = 60
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	typeStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// row is one visible line of the outline.
type row struct {
	node  *parsetree.ParseData
	depth int
}

// TreeModel browses a captured tree as a collapsible outline with a prefix
// search over type names and node text.
type TreeModel struct {
	title string
	root  *parsetree.ParseData

	// order is every node in depth-first pre-order; parents maps each node
	// but the root to its parent.
	order   []*parsetree.ParseData
	parents map[*parsetree.ParseData]*parsetree.ParseData

	collapsed map[*parsetree.ParseData]bool
	rows      []row
	cursor    int

	search    textinput.Model
	searching bool
	query     string
	status    string

	viewport viewport.Model
	ready    bool
	width    int
	height   int
	quitting bool
}

// NewTreeModel creates a browser over tree. Every node starts expanded.
func NewTreeModel(title string, tree *parsetree.ParseData) TreeModel {
	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "type or text prefix"

	m := TreeModel{
		title:     title,
		root:      tree,
		parents:   make(map[*parsetree.ParseData]*parsetree.ParseData),
		collapsed: make(map[*parsetree.ParseData]bool),
		search:    search,
	}
	var index func(n *parsetree.ParseData)
	index = func(n *parsetree.ParseData) {
		m.order = append(m.order, n)
		for _, c := range n.Children {
			m.parents[c] = n
			index(c)
		}
	}
	if tree != nil {
		index(tree)
	}
	m.rebuild()
	return m
}

// Init implements tea.Model.
func (m TreeModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		height := max(m.height-headerHeight-footerHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(m.width, height)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = height
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m TreeModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		m.query = strings.TrimSpace(m.search.Value())
		m.findNext(m.selected())
		m.refresh()
		return m, nil
	case "esc", "ctrl+c":
		m.searching = false
		m.search.Blur()
		m.search.SetValue(m.query)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m TreeModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		m.moveTo(m.cursor + 1)
	case "k", "up":
		m.moveTo(m.cursor - 1)
	case "ctrl+d", "pgdown":
		m.moveTo(m.cursor + m.pageSize())
	case "ctrl+u", "pgup":
		m.moveTo(m.cursor - m.pageSize())
	case "g", "home":
		m.moveTo(0)
	case "G", "end":
		m.moveTo(len(m.rows) - 1)

	case "enter", " ":
		if n := m.selected(); n != nil && len(n.Children) > 0 {
			m.collapsed[n] = !m.collapsed[n]
			m.rebuild()
		}
	case "l", "right":
		if n := m.selected(); n != nil && m.collapsed[n] {
			delete(m.collapsed, n)
			m.rebuild()
		}
	case "h", "left":
		n := m.selected()
		switch {
		case n == nil:
		case len(n.Children) > 0 && !m.collapsed[n]:
			m.collapsed[n] = true
			m.rebuild()
		case m.parents[n] != nil:
			m.selectNode(m.parents[n])
		}
	case "E":
		clear(m.collapsed)
		m.rebuild()
	case "C":
		for _, n := range m.order {
			if n != m.root && len(n.Children) > 0 {
				m.collapsed[n] = true
			}
		}
		m.rebuild()

	case "/":
		m.searching = true
		m.search.SetValue("")
		return m, m.search.Focus()
	case "n":
		m.findNext(m.selected())
	}

	m.refresh()
	return m, nil
}

// View implements tea.Model.
func (m TreeModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// rebuild recomputes the visible rows, keeping the selected node selected
// when it is still visible.
func (m *TreeModel) rebuild() {
	sel := m.selected()
	m.rows = make([]row, 0, len(m.order))
	if m.root != nil {
		var add func(n *parsetree.ParseData, depth int)
		add = func(n *parsetree.ParseData, depth int) {
			m.rows = append(m.rows, row{node: n, depth: depth})
			if m.collapsed[n] {
				return
			}
			for _, c := range n.Children {
				add(c, depth+1)
			}
		}
		add(m.root, 0)
	}

	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	if sel != nil {
		for i, r := range m.rows {
			if r.node == sel {
				m.cursor = i
				break
			}
		}
	}
}

func (m *TreeModel) selected() *parsetree.ParseData {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func (m *TreeModel) moveTo(i int) {
	m.cursor = max(min(i, len(m.rows)-1), 0)
}

func (m *TreeModel) pageSize() int {
	if !m.ready {
		return 10
	}
	return max(m.viewport.Height/2, 1)
}

// selectNode expands every ancestor of n and moves the cursor to it.
func (m *TreeModel) selectNode(n *parsetree.ParseData) {
	for p := m.parents[n]; p != nil; p = m.parents[p] {
		delete(m.collapsed, p)
	}
	m.rebuild()
	for i, r := range m.rows {
		if r.node == n {
			m.cursor = i
			return
		}
	}
}

// findNext selects the first node after from, in pre-order and wrapping
// around, whose type name or text starts with the query. Matching ignores
// case.
func (m *TreeModel) findNext(from *parsetree.ParseData) {
	if m.query == "" || len(m.order) == 0 {
		return
	}
	start := 0
	for i, n := range m.order {
		if n == from {
			start = i + 1
			break
		}
	}
	q := strings.ToLower(m.query)
	for k := range len(m.order) {
		n := m.order[(start+k)%len(m.order)]
		if matches(n, q) {
			m.selectNode(n)
			return
		}
	}
	m.status = fmt.Sprintf("no match for %q", m.query)
}

func matches(n *parsetree.ParseData, lowerQuery string) bool {
	return strings.HasPrefix(strings.ToLower(n.TypeName), lowerQuery) ||
		strings.HasPrefix(strings.ToLower(strings.TrimSpace(n.Text)), lowerQuery)
}

// refresh redraws the outline and scrolls the cursor into view.
func (m *TreeModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderRows())

	top := m.viewport.YOffset
	switch {
	case m.cursor < top:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= top+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m *TreeModel) renderRows() string {
	lines := make([]string, len(m.rows))
	for i, r := range m.rows {
		marker := "  "
		if len(r.node.Children) > 0 {
			marker = "▾ "
			if m.collapsed[r.node] {
				marker = "▸ "
			}
		}
		line := strings.Repeat("  ", r.depth) + marker + typeStyle.Render(r.node.TypeName)
		if text := summary(r.node.Text); text != "" {
			line += " " + textStyle.Render(text)
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (m *TreeModel) renderHeader() string {
	title := titleStyle.Render(m.title)
	return fmt.Sprintf("%s  %d nodes", title, len(m.order))
}

func (m *TreeModel) renderFooter() string {
	var b strings.Builder
	if n := m.selected(); n != nil {
		b.WriteString(describe(n))
	}
	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(m.search.View())
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	default:
		b.WriteString(helpStyle.Render("↑/↓ move  enter toggle  ←/→ fold  E/C expand/collapse all  / search  n next  q quit"))
	}
	return b.String()
}

// describe summarizes the selected node: its type, child count and scalar
// properties.
func describe(n *parsetree.ParseData) string {
	parts := []string{fmt.Sprintf("%s (%d children)", n.TypeName, len(n.Children))}
	for _, p := range n.Properties {
		switch v := p.Value.(type) {
		case string:
			parts = append(parts, p.Name+"="+v)
		case []parsetree.Property:
			parts = append(parts, fmt.Sprintf("%s=[%d]", p.Name, len(v)))
		}
	}
	return strings.Join(parts, "  ")
}

// summary returns the first line of text, shortened to maxRowText runes.
func summary(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.TrimSpace(line)
	if r := []rune(line); len(r) > maxRowText {
		return string(r[:maxRowText]) + "…"
	}
	return line
}

// Selected returns the node under the cursor.
func (m TreeModel) Selected() *parsetree.ParseData {
	return m.selected()
}

// Rows returns the number of visible rows.
func (m TreeModel) Rows() int {
	return len(m.rows)
}
