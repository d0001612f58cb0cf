package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"

	"github.com/lumipallolabs/diskprune/internal/clearing"
	"github.com/lumipallolabs/diskprune/internal/core"
	"github.com/lumipallolabs/diskprune/internal/logging"
	"github.com/lumipallolabs/diskprune/internal/model"
)

// Message types for Bubble Tea
type (
	scanStartMsg         struct{}
	spinnerTickMsg       struct{}
	scanCompleteDelayMsg struct{ tree *model.Tree }
)

// scanEventMsg wraps any scan event for continued listening
type scanEventMsg struct {
	event core.Event
}

// Spinner frames - modern braille dots spinner
var spinnerFrames = []string{
	"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏",
}

// Timing constants
const (
	spinnerTickInterval = 80 * time.Millisecond
	borderRotationSpeed = 33 // milliseconds per frame
	scanCompleteDelay   = 500 * time.Millisecond
)

// App is the main TUI application model
type App struct {
	// Core controller (business logic)
	ctrl *core.Controller

	// UI Components
	header  Header
	browser Browser
	help    HelpOverlay
	keys    KeyMap
	version string

	// UI state (TUI-specific)
	err    error
	status string
	info   string // info bar for the highlighted entry

	// Scan
	scanEventCh <-chan core.Event
	cancelScan  context.CancelFunc

	// Clear: while a session runs the engine owns the tree, so the
	// screen is the background captured at start plus the dialog.
	session        *clearSession
	dialog         clearing.View
	dialogShown    bool
	background     string
	quitAfterClear bool

	// Dimensions
	width  int
	height int
}

// NewApp creates a new application instance
func NewApp(version string, ctrl *core.Controller) App {
	state := ctrl.State()
	keys := DefaultKeyMap()

	app := App{
		ctrl:    ctrl,
		header:  NewHeader(state.Path, version),
		browser: NewBrowser(),
		help:    NewHelpOverlay(version, keys),
		keys:    keys,
		version: version,
	}
	app.header.SetVolume(state.Volume)
	app.header.SetFreedStats(state.Freed.Session, state.Freed.Lifetime)
	return app
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return func() tea.Msg {
		return scanStartMsg{}
	}
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		if a.session != nil {
			a.session.Send(clearing.Event{Resize: true})
		}
		return a, nil

	case tea.KeyMsg:
		if a.session != nil {
			return a.handleDialogKey(msg)
		}
		return a.handleKey(msg)

	case scanStartMsg:
		return a.startScan()

	case scanEventMsg:
		return a.handleScanEvent(msg.event)

	case scanCompleteDelayMsg:
		return a.finalizeScan(msg.tree)

	case spinnerTickMsg:
		if a.ctrl.ScanState().IsScanning() {
			return a, tickSpinner()
		}
		return a, nil

	case clearViewMsg:
		if msg.session != a.session {
			return a, nil
		}
		a.dialog = msg.view
		a.dialogShown = true
		return a, a.session.listen()

	case clearDoneMsg:
		return a.finishClear(msg)
	}

	return a, nil
}

func tickSpinner() tea.Cmd {
	return tea.Tick(spinnerTickInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// startScan begins the scanning process
func (a App) startScan() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	eventCh, err := a.ctrl.StartScan(ctx)
	if err != nil {
		cancel()
		if !errors.Is(err, core.ErrBusy) {
			a.err = err
		}
		return a, nil
	}

	a.scanEventCh = eventCh
	a.cancelScan = cancel
	a.err = nil
	a.status = ""
	a.browser.SetTree(nil)
	a.updateInfo()

	return a, tea.Batch(a.listenForScanEvents(), tickSpinner())
}

// listenForScanEvents creates a command that listens for scan events
func (a App) listenForScanEvents() tea.Cmd {
	if a.scanEventCh == nil {
		return nil
	}
	eventCh := a.scanEventCh
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil // Channel closed
		}
		return scanEventMsg{event: event}
	}
}

// handleScanEvent processes scan events and continues listening
func (a App) handleScanEvent(event core.Event) (tea.Model, tea.Cmd) {
	e, ok := event.(core.ScanCompletedEvent)
	if !ok {
		return a, a.listenForScanEvents()
	}

	a.scanEventCh = nil
	if e.Err != nil {
		a.ctrl.FinalizeScan()
		if !errors.Is(e.Err, context.Canceled) {
			a.err = e.Err
		}
		return a, nil
	}
	// Show "Complete" briefly before showing data
	return a, tea.Tick(scanCompleteDelay, func(t time.Time) tea.Msg {
		return scanCompleteDelayMsg{tree: e.Tree}
	})
}

// finalizeScan completes the scan and shows data
func (a App) finalizeScan(tree *model.Tree) (tea.Model, tea.Cmd) {
	a.ctrl.FinalizeScan()
	if a.cancelScan != nil {
		a.cancelScan()
		a.cancelScan = nil
	}
	a.browser.SetTree(tree)
	a.header.SetVolume(a.ctrl.State().Volume)
	a.updateLayout()
	a.updateInfo()

	if errs := a.ctrl.ScanState().Errors; errs > 0 {
		a.status = fmt.Sprintf("%d entries could not be read", errs)
	}
	return a, nil
}

// handleKey handles keyboard input while browsing
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay - any key closes it
	if a.help.IsVisible() {
		a.help.SetVisible(false)
		return a, nil
	}
	a.status = ""

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()

	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
		return a, nil

	case key.Matches(msg, a.keys.Rescan):
		return a.startScan()
	}

	if a.browser.Tree() == nil {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Up):
		a.browser.MoveUp()
	case key.Matches(msg, a.keys.Down):
		a.browser.MoveDown()
	case key.Matches(msg, a.keys.PageUp):
		a.browser.PageUp()
	case key.Matches(msg, a.keys.PageDown):
		a.browser.PageDown()
	case key.Matches(msg, a.keys.Top):
		a.browser.GoToTop()
	case key.Matches(msg, a.keys.Bottom):
		a.browser.GoToBottom()
	case key.Matches(msg, a.keys.Open):
		a.browser.Enter()
	case key.Matches(msg, a.keys.Back):
		a.browser.Back()
	case key.Matches(msg, a.keys.Clear):
		return a.startClear()
	case key.Matches(msg, a.keys.OpenExplorer):
		a.openSelected(revealPath, false)
	case key.Matches(msg, a.keys.Preview):
		a.openSelected(previewPath, true)
	}
	a.updateInfo()
	return a, nil
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.cancelScan != nil {
		a.cancelScan()
	}
	a.ctrl.Stop()
	return a, tea.Quit
}

// startClear hands the highlighted directory to the clear engine
func (a App) startClear() (tea.Model, tea.Cmd) {
	sel := a.browser.Selected()
	if sel == model.None {
		return a, nil
	}
	if !a.browser.Tree().Node(sel).IsDir() {
		a.status = "Only directories can be cleared"
		return a, nil
	}

	a.background = a.baseView()
	a.session = newClearSession()
	a.dialogShown = false
	logging.Debug.WithField("path", a.browser.Tree().Path(sel)).Debug("clear requested")
	return a, tea.Batch(a.session.run(a.ctrl, sel), a.session.listen())
}

// handleDialogKey forwards a key to the running clear engine
func (a App) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev := a.keys.DialogEvent(msg)
	if ev.Interrupt {
		a.quitAfterClear = true
	}
	if ev.Key != clearing.KeyNone || ev.Interrupt {
		a.session.Send(ev)
	}
	return a, nil
}

// finishClear takes the tree back once the engine has returned
func (a App) finishClear(msg clearDoneMsg) (tea.Model, tea.Cmd) {
	if msg.session != a.session {
		return a, nil
	}
	a.session = nil
	a.dialogShown = false
	a.background = ""

	if a.quitAfterClear {
		return a.quit()
	}

	a.browser.Refresh()
	if msg.returned != model.None {
		a.browser.Open(msg.returned, msg.root)
	}

	if msg.err != nil {
		a.status = msg.err.Error()
	} else {
		ev := msg.event
		a.header.SetFreedStats(ev.SessionFreed, ev.TotalFreed)
		a.header.SetVolume(a.ctrl.State().Volume)
		a.status = clearSummary(ev)
	}
	a.updateInfo()
	return a, nil
}

// clearSummary describes a finished clear in one line
func clearSummary(ev core.ClearCompletedEvent) string {
	res := ev.Result
	if res.Cancelled && res.Removed == 0 {
		return "Clear cancelled"
	}
	s := fmt.Sprintf("Freed %s, %d entries removed", FormatSize(ev.Freed), res.Removed)
	if res.Errors > 0 {
		s += fmt.Sprintf(", %d errors", res.Errors)
	}
	if res.Cancelled {
		s += " (aborted)"
	}
	return s
}

// openSelected runs open on the highlighted entry
func (a *App) openSelected(open func(string) error, filesOnly bool) {
	sel := a.browser.Selected()
	if sel == model.None {
		return
	}
	tree := a.browser.Tree()
	if filesOnly && tree.Node(sel).IsDir() {
		return
	}
	path := tree.Path(sel)
	if err := open(path); err != nil {
		logging.Debug.WithError(err).WithField("path", path).Warn("open failed")
		a.status = err.Error()
	}
}

// updateLayout calculates component sizes
func (a *App) updateLayout() {
	headerHeight := 2
	infoBarHeight := 1
	helpBarHeight := 1

	panelHeight := a.height - headerHeight - infoBarHeight - helpBarHeight
	if panelHeight < 3 {
		panelHeight = 3
	}

	a.header.SetWidth(a.width)
	a.browser.SetSize(a.width, panelHeight)
	a.help.SetSize(a.width, a.height)
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		if a.ctrl.ScanState().IsScanning() {
			return "Scanning..."
		}
		return "Loading..."
	}

	if a.session != nil {
		if !a.dialogShown {
			return a.background
		}
		return overlay(a.background, renderDialog(a.dialog), a.width, a.height)
	}

	if a.help.IsVisible() {
		return a.help.View()
	}
	return a.baseView()
}

// baseView renders the screen without overlays
func (a App) baseView() string {
	state := a.ctrl.ScanState()

	var sections []string
	sections = append(sections, a.header.View())

	if state.IsScanning() || a.browser.Tree() == nil {
		sections = append(sections, a.renderScanningPanel(state))
	} else {
		sections = append(sections, a.browser.View())
	}

	sections = append(sections, a.infoBar(), HelpBar(a.width, a.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// infoBar shows the last error, a status message, or the highlighted entry
func (a App) infoBar() string {
	style := lipgloss.NewStyle().Padding(0, 1).MaxWidth(a.width).MaxHeight(1)
	switch {
	case a.err != nil:
		return style.Foreground(ColorDanger).Render(fmt.Sprintf("Error: %v", a.err))
	case a.status != "":
		return style.Foreground(ColorShrunk).Render(a.status)
	}
	return style.Render(a.info)
}

// updateInfo rebuilds the info bar for the highlighted entry. It reads the
// disk, so it runs on selection changes instead of on every frame.
func (a *App) updateInfo() {
	sel := a.browser.Selected()
	if sel == model.None {
		a.info = ""
		return
	}
	a.info = buildNodeInfo(a.browser.Tree(), sel)
}

// buildNodeInfo creates the info string for a node
func buildNodeInfo(tree *model.Tree, id model.NodeID) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))

	n := tree.Node(id)
	path := tree.Path(id)
	sep := dimStyle.Render(" │ ")

	icon := "📄"
	if n.IsDir() {
		icon = "📁"
	}
	parts := []string{icon + " " + nameStyle.Render(n.Name)}

	parts = append(parts, dimStyle.Render(fmt.Sprintf("%s on disk, %s apparent", FormatSize(n.ASize), FormatSize(n.Size))))
	if n.IsDir() {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d items", n.Items)))
	} else if fileType := getFileType(path); fileType != "" {
		parts = append(parts, dimStyle.Render(fileType))
	}
	if n.Has(model.FlagHardlink) {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d links scanned", len(tree.Hardlinks(id)))))
	}

	if info, err := os.Lstat(path); err == nil {
		created := FormatTime(creationTime(info))
		if created != "" {
			parts = append(parts, dimStyle.Render("C: "+created))
		}
		if modified := FormatTime(info.ModTime()); modified != created {
			parts = append(parts, dimStyle.Render("M: "+modified))
		}
	}
	return strings.Join(parts, sep)
}

// getFileType detects file type using magic numbers
func getFileType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	ext := mtype.Extension()
	if ext != "" {
		return strings.ToUpper(strings.TrimPrefix(ext, "."))
	}
	return ""
}

// renderScanningPanel renders the scanning progress panel
func (a App) renderScanningPanel(state core.ScanState) string {
	panelHeight := a.height - 4
	if panelHeight < 1 {
		panelHeight = 1
	}

	var logLines []string
	doneStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	spinnerStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	spinnerIdx := int(time.Now().UnixMilli()/spinnerTickInterval.Milliseconds()) % len(spinnerFrames)
	spinner := spinnerFrames[spinnerIdx]

	for _, p := range []core.ScanPhase{core.PhaseScanning, core.PhaseComplete} {
		if p > state.Phase {
			break
		}
		var line string
		if p < state.Phase || p == core.PhaseComplete {
			line = fmt.Sprintf("  %s %s", doneStyle.Render("✓"), doneStyle.Render(p.String()))
		} else {
			textStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
			line = fmt.Sprintf("  %s %s", spinnerStyle.Render(spinner), textStyle.Render(p.String()))
		}
		logLines = append(logLines, line)
	}

	// Stats
	if state.FilesScanned > 0 || state.DirsScanned > 0 {
		labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
		fileStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
		dataStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
		timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")).Bold(true)

		files := fmt.Sprintf("%d files, %d dirs", state.FilesScanned, state.DirsScanned)
		if state.Errors > 0 {
			files += fmt.Sprintf(", %d errors", state.Errors)
		}
		logLines = append(logLines, "")
		logLines = append(logLines, fmt.Sprintf("    %s %s", labelStyle.Render("FILES"), fileStyle.Render(files)))
		logLines = append(logLines, fmt.Sprintf("    %s  %s", labelStyle.Render("DATA"), dataStyle.Render(FormatSize(state.BytesFound))))
		logLines = append(logLines, fmt.Sprintf("    %s  %s", labelStyle.Render("TIME"), timeStyle.Render(state.Elapsed().String())))
		if state.CurrentPath != "" {
			logLines = append(logLines, "    "+labelStyle.Render(cropMiddle(state.CurrentPath, 40)))
		}
	}

	logContent := strings.Join(logLines, "\n")
	innerContent := lipgloss.NewStyle().
		Padding(0, 3).
		Width(48).
		Render(logContent)

	boxHeight := 10
	scanningBox := renderSpinningBorder(
		lipgloss.Place(48, boxHeight-2, lipgloss.Left, lipgloss.Center, innerContent),
		50, boxHeight, time.Now())

	return lipgloss.Place(a.width, panelHeight, lipgloss.Center, lipgloss.Center, scanningBox)
}

// renderSpinningBorder draws a box with spinning gradient border
func renderSpinningBorder(content string, width, height int, t time.Time) string {
	shades := []string{
		"#00FFFF", "#30EBE0", "#5EEAD4", "#70E0D8", "#85D5E0", "#9AC5E8", "#A8B0F0", "#B89AF8",
		"#C084FC", "#C880F0", "#D080E8", "#D87CDE", "#E07CD4", "#F079CC", "#FF79C6", "#F079CC",
		"#E07CD4", "#D87CDE", "#D080E8", "#C880F0", "#C084FC", "#B89AF8", "#A8B0F0", "#9AC5E8",
		"#85D5E0", "#70E0D8", "#5EEAD4", "#30EBE0",
	}

	innerW := width - 2
	innerH := height - 2
	perimeter := 2*innerW + 2*innerH + 4

	offset := int(t.UnixMilli()/borderRotationSpeed) % perimeter

	getColor := func(pos int) lipgloss.Style {
		adjustedPos := (pos - offset + perimeter) % perimeter
		shadeIdx := (adjustedPos * len(shades) / perimeter) % len(shades)
		return lipgloss.NewStyle().Foreground(lipgloss.Color(shades[shadeIdx]))
	}

	const (
		topLeft     = "╭"
		topRight    = "╮"
		bottomLeft  = "╰"
		bottomRight = "╯"
		horizontal  = "─"
		vertical    = "│"
	)

	var result strings.Builder
	pos := 0

	result.WriteString(getColor(pos).Render(topLeft))
	pos++
	for i := 0; i < innerW; i++ {
		result.WriteString(getColor(pos).Render(horizontal))
		pos++
	}
	result.WriteString(getColor(pos).Render(topRight))
	pos++
	result.WriteString("\n")

	contentLines := strings.Split(content, "\n")
	for len(contentLines) < innerH {
		contentLines = append(contentLines, "")
	}

	for i := 0; i < innerH; i++ {
		result.WriteString(getColor(perimeter - 1 - i).Render(vertical))

		line := contentLines[i]
		if lineWidth := lipgloss.Width(line); lineWidth < innerW {
			line += strings.Repeat(" ", innerW-lineWidth)
		}
		result.WriteString(line)

		result.WriteString(getColor(pos).Render(vertical))
		pos++
		result.WriteString("\n")
	}

	bottomStart := pos
	result.WriteString(getColor(perimeter - innerH - 1).Render(bottomLeft))
	for i := 0; i < innerW; i++ {
		result.WriteString(getColor(bottomStart + innerW - i).Render(horizontal))
	}
	result.WriteString(getColor(bottomStart).Render(bottomRight))

	return result.String()
}
