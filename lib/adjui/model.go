// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/adjudicator/lib/adjudication"
)

// panelOrder is the tab order of the panels shown in the main view.
// The modal panel is shown as a form overlay instead.
var panelOrder = []adjudication.PanelID{
	adjudication.PanelGrid,
	adjudication.PanelCandidateSearch,
	adjudication.PanelCanonicalSearch,
	adjudication.PanelRecentCandidates,
	adjudication.PanelRecentCanonicals,
	adjudication.PanelHierarchy,
}

// actionRows is the most action lines shown below the panel text.
const actionRows = 8

// panelChangedMsg reports that a panel's fragment changed.
type panelChangedMsg struct {
	id adjudication.PanelID
}

// flashChangedMsg reports that the session's or the modal's flash
// changed.
type flashChangedMsg struct{}

// loadingChangedMsg reports that the loading indicator turned on or
// off.
type loadingChangedMsg struct {
	active bool
}

// operationDoneMsg is sent when an operation started from the UI
// returns. Failures have already been reported in a flash by the
// controller that ran.
type operationDoneMsg struct {
	name string
	err  error
}

// suggestionsMsg carries autocompletions for a prompt's term.
type suggestionsMsg struct {
	term string
	keys []string
}

// Options configures a Model.
type Options struct {
	// ExportDirectory is offered as the destination of exports.
	ExportDirectory string

	// Logger receives operation failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Model is the bubbletea model for an adjudication session.
type Model struct {
	ctx     context.Context
	session *adjudication.Session
	options Options
	logger  *slog.Logger
	theme   Theme
	keys    KeyMap

	width  int
	height int
	ready  bool

	focus   int
	cursors map[adjudication.PanelID]int

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	loading  bool

	prompt  *prompt
	form    *formEditor
	confirm *confirmation

	logSummary  string
	logLevel    slog.Level
	logSequence uint64
}

// NewModel returns a Model for session. Operations run with ctx; the
// session is opened by Init.
func NewModel(ctx context.Context, session *adjudication.Session, options Options) Model {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Model{
		ctx:      ctx,
		session:  session,
		options:  options,
		logger:   logger,
		theme:    DefaultTheme,
		keys:     DefaultKeyMap,
		cursors:  make(map[adjudication.PanelID]int),
		viewport: viewport.New(0, 0),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
	}
}

// Attach routes the session's change notifications into program.
// Call it after tea.NewProgram and before program.Run.
func Attach(session *adjudication.Session, program *tea.Program) {
	for _, id := range append(slices.Clone(panelOrder), adjudication.PanelModal) {
		session.Panel(id).OnChange(func(id adjudication.PanelID) {
			program.Send(panelChangedMsg{id: id})
		})
	}
	notifyFlash := func(adjudication.FlashMessage, bool) { program.Send(flashChangedMsg{}) }
	session.Flash().OnChange(notifyFlash)
	session.Canonical().Flash().OnChange(notifyFlash)
	session.Loading().OnChange(func(active bool) {
		program.Send(loadingChangedMsg{active: active})
	})
}

// Init implements tea.Model. Opens the session.
func (model Model) Init() tea.Cmd {
	return model.run("open", model.session.Open)
}

// run returns a command that performs operation and reports its
// result as an operationDoneMsg.
func (model Model) run(name string, operation func(ctx context.Context) error) tea.Cmd {
	ctx := model.ctx
	return func() tea.Msg {
		return operationDoneMsg{name: name, err: operation(ctx)}
	}
}

// focused returns the focused panel's identifier.
func (model Model) focused() adjudication.PanelID {
	return panelOrder[model.focus]
}

// focusedSearch returns the search controller of the focused panel,
// or the given fallback population's controller when the focused
// panel is not a search panel.
func (model Model) focusedSearch(fallback adjudication.Population) *adjudication.SearchController {
	switch model.focused() {
	case adjudication.PanelCandidateSearch:
		return model.session.Search(adjudication.PopulationCandidate)
	case adjudication.PanelCanonicalSearch:
		return model.session.Search(adjudication.PopulationCanonical)
	}
	return model.session.Search(fallback)
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case model.confirm != nil:
			return model.handleConfirmKeys(message)
		case model.prompt != nil:
			return model.handlePromptKeys(message)
		case model.form != nil:
			return model.handleFormKeys(message)
		}
		return model.handleKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.layout()
		model.refreshViewport(false)

	case panelChangedMsg:
		if message.id == adjudication.PanelModal {
			model.syncModal()
		} else if message.id == model.focused() {
			model.refreshViewport(false)
		}

	case flashChangedMsg:
		// The flash is read at render time.

	case loadingChangedMsg:
		wasLoading := model.loading
		model.loading = message.active
		if message.active && !wasLoading {
			return model, model.spinner.Tick
		}

	case spinner.TickMsg:
		if !model.loading {
			return model, nil
		}
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command

	case operationDoneMsg:
		model.handleOperationDone(message)

	case suggestionsMsg:
		if model.prompt != nil {
			model.prompt.suggest(message.term, message.keys)
		}

	case logRecordMsg:
		model.logSequence++
		model.logSummary = message.summary
		model.logLevel = message.level
		sequence := model.logSequence
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		if message.sequence == model.logSequence {
			model.logSummary = ""
		}

	default:
		// Cursor blink and other input housekeeping.
		switch {
		case model.prompt != nil:
			command, _ := model.prompt.Update(message)
			return model, command
		case model.form != nil:
			return model, model.form.forward(message)
		}
	}
	return model, nil
}

func (model *Model) handleOperationDone(message operationDoneMsg) {
	err := message.err
	if err != nil && !errors.Is(err, adjudication.ErrSuperseded) && !errors.Is(err, adjudication.ErrDeclined) {
		model.logger.Debug("operation failed",
			"operation", message.name,
			"validation", adjudication.IsValidation(err),
			"error", err,
		)
	}
	// Results landing in the panel being looked at are already seen.
	if search := model.searchFor(model.focused()); search != nil {
		search.ActivateTab()
	}
	model.syncModal()
	model.refreshViewport(false)
}

// syncModal opens, rebuilds, or closes the canonical event form to
// match the modal panel.
func (model *Model) syncModal() {
	canonical := model.session.Canonical()
	if !canonical.Open() {
		if model.form != nil && model.form.purpose == formCanonical {
			model.form = nil
		}
		return
	}
	generation := canonical.Panel().Generation()
	if model.form != nil && model.form.purpose == formCanonical && model.form.generation == generation {
		return
	}
	if model.form != nil && model.form.purpose != formCanonical {
		return
	}
	model.form = newFormEditor(modalTitle(canonical), formCanonical, canonical.Fields())
	model.form.generation = generation
}

func modalTitle(canonical *adjudication.CanonicalController) string {
	variable, mode := canonical.Mode()
	switch {
	case variable == "canonical" && mode == adjudication.ModalEdit:
		return "Edit canonical event " + canonical.EditingKey()
	case variable == "canonical":
		return "New canonical event"
	default:
		return "Add value: " + variable
	}
}

func (model Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Confirm):
		confirmation := model.confirm
		model.confirm = nil
		return model, model.run("action", confirmation.run)
	case key.Matches(message, model.keys.Decline):
		model.confirm = nil
	}
	return model, nil
}

func (model Model) handlePromptKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.prompt = nil
		return model, nil
	case message.Type == tea.KeyEnter:
		prompt := model.prompt
		model.prompt = nil
		return model.submitPrompt(prompt)
	}

	command, changed := model.prompt.Update(message)
	term := strings.TrimSpace(model.prompt.Value())
	if !changed || !model.prompt.autocomplete || len(term) < adjudication.AutocompleteMinLength {
		return model, command
	}
	relationships := model.session.Relationships()
	ctx := model.ctx
	raw := model.prompt.Value()
	return model, tea.Batch(command, func() tea.Msg {
		keys, err := relationships.Autocomplete(ctx, term)
		if err != nil {
			return nil
		}
		return suggestionsMsg{term: raw, keys: keys}
	})
}

func (model Model) submitPrompt(prompt *prompt) (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(prompt.Value())
	session := model.session
	switch prompt.purpose {
	case promptAddCandidate:
		return model, model.run("add candidate", func(ctx context.Context) error {
			return session.Grid().AddCandidate(ctx, value)
		})
	case promptSelectCanonical:
		return model, model.run("select canonical", func(ctx context.Context) error {
			return session.Grid().SelectCanonical(ctx, value)
		})
	case promptSearchTerm:
		search := session.Search(prompt.population)
		form := search.Form()
		form.Term = value
		model.focusPanel(search.Panel().ID())
		return model, model.run("search", func(ctx context.Context) error {
			return search.Run(ctx, form)
		})
	case promptHierarchy:
		model.focusPanel(adjudication.PanelHierarchy)
		return model, model.run("view hierarchy", func(ctx context.Context) error {
			return session.Relationships().ViewHierarchy(ctx, value)
		})
	case promptExportDirectory:
		search := session.Search(prompt.population)
		return model, model.run("export", func(ctx context.Context) error {
			_, err := search.Export(ctx, value)
			return err
		})
	}
	return model, nil
}

func (model Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := model.form
	session := model.session
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.form = nil
		if form.purpose == formCanonical {
			session.Canonical().Close()
		}
		return model, nil

	case key.Matches(message, model.keys.Submit):
		return model.submitForm(form)

	case key.Matches(message, model.keys.DeleteCanonical):
		canonical := session.Canonical()
		editingKey := canonical.EditingKey()
		if form.purpose != formCanonical || editingKey == "" {
			return model, nil
		}
		model.confirm = &confirmation{
			title:    "Delete canonical event " + editingKey,
			question: canonical.DeletePrompt(),
			run: func(ctx context.Context) error {
				return canonical.Delete(ctx, editingKey)
			},
		}
		return model, nil
	}
	return model, form.Update(message, model.keys)
}

func (model Model) submitForm(form *formEditor) (tea.Model, tea.Cmd) {
	session := model.session
	values := form.Values()
	switch form.purpose {
	case formCanonical:
		return model, model.run("submit canonical form", func(ctx context.Context) error {
			return session.Canonical().Submit(ctx, values)
		})
	case formSearch:
		model.form = nil
		search := session.Search(form.population)
		next := adjudication.SearchFormFromValues(form.population, values)
		model.focusPanel(search.Panel().ID())
		return model, model.run("search", func(ctx context.Context) error {
			return search.Run(ctx, next)
		})
	case formRelationship:
		model.form = nil
		return model, model.run("add relationship", func(ctx context.Context) error {
			return session.Relationships().AddEdge(ctx, values.Get("child"), values.Get("parent"), values.Get("type"))
		})
	}
	return model, nil
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := model.session
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Help):
		model.help.ShowAll = !model.help.ShowAll
		model.layout()

	case key.Matches(message, model.keys.NextPanel):
		model.focusPanel(panelOrder[(model.focus+1)%len(panelOrder)])

	case key.Matches(message, model.keys.PreviousPanel):
		model.focusPanel(panelOrder[(model.focus-1+len(panelOrder))%len(panelOrder)])

	case key.Matches(message, model.keys.Up):
		model.moveCursor(-1)

	case key.Matches(message, model.keys.Down):
		model.moveCursor(1)

	case key.Matches(message, model.keys.PageUp), key.Matches(message, model.keys.PageDown):
		var command tea.Cmd
		model.viewport, command = model.viewport.Update(message)
		return model, command

	case key.Matches(message, model.keys.Activate):
		return model.activate()

	case key.Matches(message, model.keys.Back):
		return model, model.run("back", func(ctx context.Context) error {
			_, err := session.Back(ctx)
			return err
		})

	case key.Matches(message, model.keys.Forward):
		return model, model.run("forward", func(ctx context.Context) error {
			_, err := session.Forward(ctx)
			return err
		})

	case key.Matches(message, model.keys.Reload):
		return model, model.run("reload", session.Open)

	case key.Matches(message, model.keys.AddCandidate):
		model.prompt = newPrompt("Add candidate event", promptAddCandidate, "")
		return model, textinput.Blink

	case key.Matches(message, model.keys.SelectCanonical):
		model.prompt = newPrompt("Select canonical event", promptSelectCanonical, session.Selection().CanonicalKey)
		return model, textinput.Blink

	case key.Matches(message, model.keys.SearchTerm):
		search := model.focusedSearch(adjudication.PopulationCandidate)
		model.prompt = newPrompt(search.TabName()+" search", promptSearchTerm, search.Form().Term)
		model.prompt.population = search.Population()
		return model, textinput.Blink

	case key.Matches(message, model.keys.SearchForm):
		search := model.focusedSearch(adjudication.PopulationCandidate)
		model.form = newFormEditor(search.TabName()+" search", formSearch, search.Form().Fields(search.Population()))
		model.form.population = search.Population()
		return model, textinput.Blink

	case key.Matches(message, model.keys.NewCanonical):
		return model, model.run("new canonical", session.Canonical().New)

	case key.Matches(message, model.keys.Hierarchy):
		root := session.Relationships().Root()
		if root == "" {
			root = session.Selection().CanonicalKey
		}
		model.prompt = newPrompt("View hierarchy of", promptHierarchy, root)
		return model, textinput.Blink

	case key.Matches(message, model.keys.AddRelationship):
		fields := relationshipFields()
		fields[0].Value = session.Selection().CanonicalKey
		model.form = newFormEditor("Add relationship", formRelationship, fields)
		return model, textinput.Blink

	case key.Matches(message, model.keys.SelectAll):
		search := model.focusedSearch(adjudication.PopulationCanonical)
		if len(search.ExportSelection()) == len(adjudication.ExportIDs(search.Panel().Fragment())) {
			search.SelectNoExports()
		} else {
			search.SelectAllExports()
		}

	case key.Matches(message, model.keys.Export):
		search := model.focusedSearch(adjudication.PopulationCanonical)
		model.prompt = newPrompt(fmt.Sprintf("Export %d events to", len(search.ExportSelection())), promptExportDirectory, model.options.ExportDirectory)
		model.prompt.population = search.Population()
		return model, textinput.Blink
	}
	return model, nil
}

// activate runs the highlighted action of the focused panel, asking
// first when the action is destructive.
func (model Model) activate() (tea.Model, tea.Cmd) {
	panel := model.session.Panel(model.focused())
	actions := panel.Actions()
	cursor := model.cursors[panel.ID()]
	if cursor < 0 || cursor >= len(actions) {
		return model, nil
	}
	action := actions[cursor]
	dispatch := func(ctx context.Context) error { return panel.Dispatch(ctx, action) }
	if action.Prompt != "" {
		model.confirm = &confirmation{title: action.Label(), question: action.Prompt, run: dispatch}
		return model, nil
	}
	return model, model.run("action", dispatch)
}

// focusPanel switches to a panel. Switching to a search panel clears
// its dirty marker.
func (model *Model) focusPanel(id adjudication.PanelID) {
	for index, candidate := range panelOrder {
		if candidate == id {
			model.focus = index
		}
	}
	switch id {
	case adjudication.PanelCandidateSearch:
		model.session.Search(adjudication.PopulationCandidate).ActivateTab()
	case adjudication.PanelCanonicalSearch:
		model.session.Search(adjudication.PopulationCanonical).ActivateTab()
	}
	model.refreshViewport(true)
}

func (model *Model) moveCursor(delta int) {
	id := model.focused()
	count := len(model.session.Panel(id).Actions())
	if count == 0 {
		model.cursors[id] = 0
		return
	}
	model.cursors[id] = min(max(model.cursors[id]+delta, 0), count-1)
}

// layout sizes the viewport to the space left by the chrome: header,
// tabs, two rules, the action list, the status line, and help.
func (model *Model) layout() {
	helpLines := 1
	if model.help.ShowAll {
		helpLines = len(model.keys.FullHelp()[0])
	}
	model.help.Width = model.width
	model.viewport.Width = model.width
	model.viewport.Height = max(model.height-5-actionRows-helpLines, 1)
}

// refreshViewport loads the focused panel's text into the viewport.
func (model *Model) refreshViewport(top bool) {
	text := model.session.Panel(model.focused()).Fragment().Text()
	if text == "" {
		text = lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("(nothing loaded)")
	}
	model.viewport.SetContent(text)
	if top {
		model.viewport.GotoTop()
	}
}

// panelTitle is a panel's tab title.
func (model Model) panelTitle(id adjudication.PanelID) string {
	switch id {
	case adjudication.PanelGrid:
		return "Grid"
	case adjudication.PanelCandidateSearch:
		return model.session.Search(adjudication.PopulationCandidate).TabLabel()
	case adjudication.PanelCanonicalSearch:
		return model.session.Search(adjudication.PopulationCanonical).TabLabel()
	case adjudication.PanelRecentCandidates:
		return "Recent candidates"
	case adjudication.PanelRecentCanonicals:
		return "Recent canonical"
	case adjudication.PanelHierarchy:
		return "Hierarchy"
	}
	return string(id)
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	rule := lipgloss.NewStyle().Foreground(model.theme.BorderColor).Render(strings.Repeat("─", model.width))
	sections := []string{
		model.renderHeader(),
		model.renderTabs(),
		rule,
		model.viewport.View(),
		rule,
		model.renderActions(),
		model.renderStatus(),
		lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(model.help.View(model.keys)),
	}
	view := strings.Join(sections, "\n")

	var box overlayBox
	switch {
	case model.confirm != nil:
		box = model.confirm.box(model.keys)
	case model.prompt != nil:
		box = model.prompt.box(model.keys)
	case model.form != nil:
		status, color := "", model.theme.FlashInfo
		if model.form.purpose == formCanonical {
			if message, visible := model.session.Canonical().Flash().Current(); visible {
				status, color = message.Text, model.theme.FlashColor(message.Kind)
			}
		}
		box = model.form.box(model.theme, model.keys, status, color)
	default:
		return view
	}
	lines, anchorX, anchorY := box.render(model.theme, model.width, model.height)
	return spliceOverlay(view, lines, anchorX, anchorY)
}

func (model Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render("Adjudicator")
	location := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(model.session.Location().String())
	header := title + "  " + location
	if model.loading {
		header += "  " + model.spinner.View()
	}
	return ansi.Truncate(header, model.width, "…")
}

func (model Model) renderTabs() string {
	var tabs []string
	for index, id := range panelOrder {
		style := lipgloss.NewStyle().Foreground(model.theme.FaintText)
		if model.isDirty(id) {
			style = style.Foreground(model.theme.DirtyTab)
		}
		if index == model.focus {
			style = style.Bold(true).Foreground(model.theme.ActiveTab)
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d %s", index+1, model.panelTitle(id))))
	}
	separator := lipgloss.NewStyle().Foreground(model.theme.BorderColor).Render(" │ ")
	line := strings.Join(tabs, separator)
	if search := model.searchFor(model.focused()); search != nil {
		line += "   " + lipgloss.NewStyle().Foreground(model.theme.NormalText).Render(search.Label())
	}
	return ansi.Truncate(line, model.width, "…")
}

func (model Model) searchFor(id adjudication.PanelID) *adjudication.SearchController {
	switch id {
	case adjudication.PanelCandidateSearch:
		return model.session.Search(adjudication.PopulationCandidate)
	case adjudication.PanelCanonicalSearch:
		return model.session.Search(adjudication.PopulationCanonical)
	}
	return nil
}

func (model Model) isDirty(id adjudication.PanelID) bool {
	search := model.searchFor(id)
	return search != nil && search.Dirty()
}

// renderActions draws the focused panel's actions as a list of
// exactly actionRows lines, scrolled to keep the cursor visible.
func (model Model) renderActions() string {
	actions := model.session.Panel(model.focused()).Actions()
	cursor := model.cursors[model.focused()]
	if cursor >= len(actions) {
		cursor = max(len(actions)-1, 0)
	}

	offset := 0
	if cursor >= actionRows {
		offset = cursor - actionRows + 1
	}

	normal := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	selected := lipgloss.NewStyle().
		Background(model.theme.SelectedBackground).
		Foreground(model.theme.SelectedForeground)

	lines := make([]string, 0, actionRows)
	for index := offset; index < len(actions) && len(lines) < actionRows; index++ {
		label := actions[index].Label()
		if actions[index].Prompt != "" {
			label += " …"
		}
		if index == cursor {
			lines = append(lines, selected.Render(ansi.Truncate("> "+label, model.width, "…")))
		} else {
			lines = append(lines, normal.Render(ansi.Truncate("  "+label, model.width, "…")))
		}
	}
	if len(actions) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  (no actions)"))
	}
	for len(lines) < actionRows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderStatus shows the session flash, or the latest log record when
// the flash is empty.
func (model Model) renderStatus() string {
	if message, visible := model.session.Flash().Current(); visible {
		style := lipgloss.NewStyle().Bold(message.Kind == adjudication.FlashError).Foreground(model.theme.FlashColor(message.Kind))
		return ansi.Truncate(style.Render(message.Text), model.width, "…")
	}
	if model.logSummary != "" {
		color := model.theme.FaintText
		if model.logLevel >= slog.LevelError {
			color = model.theme.FlashError
		}
		return ansi.Truncate(lipgloss.NewStyle().Foreground(color).Render(model.logSummary), model.width, "…")
	}
	return ""
}
