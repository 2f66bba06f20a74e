// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// EvidenceList displays retrieved passages in a navigable list.
type EvidenceList struct {
	items    []domain.EvidenceItem
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewEvidenceList creates an empty evidence list.
func NewEvidenceList(s *styles.Styles) *EvidenceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &EvidenceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *EvidenceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation.
func (l *EvidenceList) Update(msg tea.Msg) (*EvidenceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *EvidenceList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No evidence")
	}

	lines := make([]string, 0, len(l.items)*2+2)
	lines = append(lines, l.styles.Heading.Render(fmt.Sprintf("Evidence (%d)", len(l.items))), "")

	if l.expanded {
		return strings.Join(append(lines, l.renderDetail(&l.items[l.selected])), "\n")
	}

	// Each passage takes two lines.
	visible := (l.height - 2) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.items) {
		end = len(l.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, &l.items[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *EvidenceList) renderItem(index int, item *domain.EvidenceItem) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	label := truncate(Label(item.Metadata), l.width-12)
	score := fmt.Sprintf("%.3f", item.Score)

	var head string
	if index == l.selected {
		head = l.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, label, score))
	} else {
		head = l.styles.Normal.Render(indicator+label+"  ") + l.styles.Muted.Render(score)
	}

	preview := truncate(strings.Join(strings.Fields(item.Text), " "), l.width-6)
	return head + "\n" + l.styles.Muted.Render("    "+preview)
}

func (l *EvidenceList) renderDetail(item *domain.EvidenceItem) string {
	head := l.styles.Selected.Render(fmt.Sprintf("%s  %.3f", Label(item.Metadata), item.Score))
	meta := l.styles.Muted.Render(fmt.Sprintf("chunk %s  sub-query %s", item.ChunkID, item.SubQuery))
	return head + "\n" + meta + "\n\n" + l.styles.Normal.Width(l.width).Render(item.Text)
}

// Label renders chunk metadata as "AAPL 10-K FY2023 / ITEM_7".
func Label(m domain.ChunkMetadata) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.Company, m.FilingType, m.FiscalPeriod} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	label := strings.Join(parts, " ")
	if m.SectionTag != "" {
		if label != "" {
			label += " / "
		}
		label += m.SectionTag
	}
	if label == "" {
		return "(unlabelled)"
	}
	return label
}

func truncate(s string, n int) string {
	if n < 10 {
		n = 10
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetItems replaces the passages and resets the selection.
func (l *EvidenceList) SetItems(items []domain.EvidenceItem) {
	l.items = items
	l.selected = 0
	l.expanded = false
}

// Items returns the current passages.
func (l *EvidenceList) Items() []domain.EvidenceItem {
	return l.items
}

// Selected returns the index of the selected passage.
func (l *EvidenceList) Selected() int {
	return l.selected
}

// SelectedItem returns the selected passage, or nil if the list is empty.
func (l *EvidenceList) SelectedItem() *domain.EvidenceItem {
	if l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected]
}

// MoveUp moves the selection up.
func (l *EvidenceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down.
func (l *EvidenceList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// ToggleDetail switches between the list and the selected passage's full text.
func (l *EvidenceList) ToggleDetail() {
	if len(l.items) == 0 {
		return
	}
	l.expanded = !l.expanded
}

// Expanded reports whether the full text of a passage is shown.
func (l *EvidenceList) Expanded() bool {
	return l.expanded
}

// SetDimensions sets the component dimensions.
func (l *EvidenceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of passages.
func (l *EvidenceList) Count() int {
	return len(l.items)
}
