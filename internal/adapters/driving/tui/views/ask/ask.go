// Package ask provides the question and evidence view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
)

// View asks questions and browses the returned evidence.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	query   driving.QueryService
	history driving.ContextManager
	ctx     context.Context

	input     *input.QuestionInput
	evidence  *list.EvidenceList
	statusbar *status.Bar

	conversationID string
	result         *domain.QueryResult
	turns          []domain.ConversationTurn
	showHistory    bool
	err            error

	// focusInput is true while typing, false while browsing evidence.
	focusInput bool

	width  int
	height int
	ready  bool
}

// NewView creates an ask view for a conversation.
// An empty conversation ID starts a new conversation.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	query driving.QueryService,
	history driving.ContextManager,
	conversationID string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	bar := status.NewBar(s, km)
	bar.SetConversation(conversationID)

	return &View{
		styles:         s,
		keymap:         km,
		query:          query,
		history:        history,
		ctx:            context.Background(),
		input:          input.NewQuestionInput(s),
		evidence:       list.NewEvidenceList(s),
		statusbar:      bar,
		conversationID: conversationID,
		focusInput:     true,
	}
}

// SetContext sets the context used for questions.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetAnswerMode sets whether questions compose an answer.
func (v *View) SetAnswerMode(on bool) {
	v.input.SetAnswerMode(on)
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	case messages.AskCompleted:
		v.handleAskCompleted(msg)
		return v, nil
	case messages.HistoryLoaded:
		if msg.ConversationID == v.conversationID {
			v.turns = msg.Turns
			v.showHistory = true
		}
		return v, nil
	case messages.ConversationCleared:
		v.statusbar.Clear()
		v.statusbar.SetMessage(fmt.Sprintf("Cleared %d turns", msg.Turns))
		return v, nil
	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if keymap.Matches(msg.String(), v.keymap.Answer) {
		v.input.ToggleAnswerMode()
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			question := v.input.Question()
			if question == "" {
				return v, nil
			}
			v.err = nil
			v.showHistory = false
			v.statusbar.SetState(status.StateAsking)
			return v, v.ask(question, v.input.AnswerMode())
		}
		if msg.Type == tea.KeyEsc && v.result != nil {
			v.browse()
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Quit):
		return v, tea.Quit
	case keymap.Matches(key, v.keymap.Focus):
		v.focus()
		return v, nil
	case keymap.Matches(key, v.keymap.Detail):
		v.showHistory = false
		v.evidence.ToggleDetail()
		return v, nil
	case keymap.Matches(key, v.keymap.History):
		if v.showHistory {
			v.showHistory = false
			return v, nil
		}
		return v, v.loadHistory()
	case keymap.Matches(key, v.keymap.Clear):
		return v, v.clearConversation()
	case keymap.Matches(key, v.keymap.NewConversation):
		v.NewConversation()
		return v, nil
	}

	var cmd tea.Cmd
	v.evidence, cmd = v.evidence.Update(msg)
	return v, cmd
}

// ask runs the question off the update loop.
func (v *View) ask(question string, answer bool) tea.Cmd {
	ctx, id, svc := v.ctx, v.conversationID, v.query
	return func() tea.Msg {
		if svc == nil {
			return messages.AskCompleted{Err: ErrNoQueryService}
		}
		run := svc.Ask
		if answer {
			run = svc.Answer
		}
		result, err := run(ctx, id, question)
		return messages.AskCompleted{Result: result, Err: err}
	}
}

func (v *View) loadHistory() tea.Cmd {
	id, h := v.conversationID, v.history
	return func() tea.Msg {
		if h == nil {
			return messages.HistoryLoaded{ConversationID: id}
		}
		return messages.HistoryLoaded{ConversationID: id, Turns: h.History(id)}
	}
}

func (v *View) clearConversation() tea.Cmd {
	id, h := v.conversationID, v.history
	return func() tea.Msg {
		if h == nil {
			return messages.ConversationCleared{ConversationID: id}
		}
		n := len(h.History(id))
		h.Clear(id)
		return messages.ConversationCleared{ConversationID: id, Turns: n}
	}
}

func (v *View) handleAskCompleted(msg messages.AskCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	result := msg.Result
	v.err = nil
	v.result = &result
	v.evidence.SetItems(result.Evidence.Items)
	v.statusbar.SetResult(result)
	v.input.Reset()
	v.browse()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) browse() {
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetState(status.StateEvidence)
}

func (v *View) focus() {
	v.focusInput = true
	v.input.Focus()
	v.statusbar.SetState(status.StateReady)
}

// NewConversation discards the on-screen state and starts a new conversation ID.
func (v *View) NewConversation() {
	v.conversationID = uuid.NewString()
	v.result = nil
	v.turns = nil
	v.showHistory = false
	v.err = nil
	v.evidence.SetItems(nil)
	v.input.Reset()
	v.statusbar.Clear()
	v.statusbar.SetConversation(v.conversationID)
	v.focus()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("Filings"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	switch {
	case v.showHistory:
		sections = append(sections, v.renderHistory())
	case v.result != nil:
		sections = append(sections, v.renderClassification(), "")
		if v.result.Answer != nil {
			sections = append(sections, v.styles.Answer.Width(v.width-2).Render(v.result.Answer.Text), "")
		}
		sections = append(sections, v.evidence.View())
	default:
		sections = append(sections, v.styles.Muted.Render("Ask a question about the ingested filings."))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderClassification() string {
	c := v.result.Classification
	line := v.styles.Category.Render(string(c.Category)) + "  " +
		v.styles.Confidence(c.Confidence).Render(fmt.Sprintf("classified %.2f", c.Confidence)) + "  " +
		v.styles.Confidence(v.result.Confidence).Render(fmt.Sprintf("final %.2f", v.result.Confidence))
	if c.Fallback {
		line += "  " + v.styles.Warning.Render("fallback")
	}
	if c.Rationale != "" {
		line += "\n" + v.styles.Muted.Render(c.Rationale)
	}
	for _, o := range v.result.Evidence.Outcomes {
		if !o.OK() {
			line += "\n" + v.styles.Warning.Render(fmt.Sprintf("sub-query %s failed: %s", o.SubQuery.Label(), o.Err))
		}
	}
	return line
}

func (v *View) renderHistory() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("No history for this conversation.")
	}
	lines := make([]string, 0, len(v.turns)+2)
	lines = append(lines, v.styles.Heading.Render(fmt.Sprintf("History (%d)", len(v.turns))), "")
	for i, t := range v.turns {
		lines = append(lines, fmt.Sprintf("%d. %s  %s  %s",
			i+1,
			v.styles.Muted.Render(t.Timestamp.Local().Format(time.DateTime)),
			v.styles.Category.Render(string(t.Category)),
			v.styles.Normal.Render(strings.TrimSpace(t.Query)),
		))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	// Header, input, classification and status lines.
	v.evidence.SetDimensions(width, height-12)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// ConversationID returns the active conversation.
func (v *View) ConversationID() string {
	return v.conversationID
}

// Result returns the last query result, or nil before the first answer.
func (v *View) Result() *domain.QueryResult {
	return v.result
}

// Turns returns the last loaded history.
func (v *View) Turns() []domain.ConversationTurn {
	return v.turns
}

// ShowingHistory reports whether the history panel is visible.
func (v *View) ShowingHistory() bool {
	return v.showHistory
}

// Evidence returns the evidence list component.
func (v *View) Evidence() *list.EvidenceList {
	return v.evidence
}

// Input returns the question input component.
func (v *View) Input() *input.QuestionInput {
	return v.input
}

// Status returns the status bar component.
func (v *View) Status() *status.Bar {
	return v.statusbar
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
