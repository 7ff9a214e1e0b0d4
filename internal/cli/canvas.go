package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/signstudio/signstudio/pkg/block"
	"github.com/signstudio/signstudio/pkg/editor"
	"github.com/signstudio/signstudio/pkg/interact"
	"github.com/signstudio/signstudio/pkg/preview"
	"github.com/signstudio/signstudio/pkg/session"
	"github.com/signstudio/signstudio/pkg/snap"
	"github.com/signstudio/signstudio/pkg/template"
	"github.com/signstudio/signstudio/pkg/viewport"
)

// Terminal cells are not square, so canvas coordinates are mapped through a
// fixed client-pixel size per cell. One column is narrower than one row by
// roughly the usual terminal glyph aspect ratio.
const (
	pxPerCol = 12.0
	pxPerRow = 24.0
)

// Rows reserved above and below the canvas grid (title and status bars).
const chromeRows = 3

// Canvas styles
var (
	styleBlockFill     = lipgloss.NewStyle().Foreground(colorGray)
	styleBlockSelected = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleGuide         = lipgloss.NewStyle().Foreground(colorYellow)
	styleCanvasEmpty   = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Messages
// =============================================================================

// previewReadyMsg reports that a block's preview image finished fetching.
type previewReadyMsg struct {
	blockID string
}

// autosaveTickMsg fires at the autosave interval.
type autosaveTickMsg struct{}

// autosaveDoneMsg reports the outcome of a background autosave.
type autosaveDoneMsg struct {
	err error
}

// =============================================================================
// Model
// =============================================================================

// canvasDeps bundles the collaborators the canvas model needs.
type canvasDeps struct {
	store    *editor.Store
	drag     *interact.Controller
	view     *viewport.Controller
	builder  *preview.Builder
	autosave *session.Autosave
	logger   *log.Logger
	savePath string
	interval int
}

// canvasModel is the bubbletea model for the canvas editor.
type canvasModel struct {
	store    *editor.Store
	drag     *interact.Controller
	view     *viewport.Controller
	builder  *preview.Builder
	loader   *preview.Preloader
	autosave *session.Autosave
	logger   *log.Logger

	savePath string
	interval time.Duration

	winWidth  int
	winHeight int

	warm      map[string]bool
	status    string
	showHelp  bool
	savedOnce bool
}

func newCanvasModel(d canvasDeps) *canvasModel {
	interval := time.Duration(d.interval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &canvasModel{
		store:    d.store,
		drag:     d.drag,
		view:     d.view,
		builder:  d.builder,
		autosave: d.autosave,
		logger:   d.logger,
		savePath: d.savePath,
		interval: interval,
		warm:     map[string]bool{},
		status:   "ready",
	}
}

func (m *canvasModel) Init() tea.Cmd {
	m.prefetchAll()
	return m.autosaveTick()
}

func (m *canvasModel) autosaveTick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return autosaveTickMsg{} })
}

// =============================================================================
// Update
// =============================================================================

func (m *canvasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.winWidth, m.winHeight = msg.Width, msg.Height
		m.fit()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		m.updateMouse(msg)
		return m, nil

	case previewReadyMsg:
		m.warm[msg.blockID] = true
		return m, nil

	case autosaveTickMsg:
		if !m.store.IsDirty() {
			return m, m.autosaveTick()
		}
		return m, tea.Batch(m.autosaveCmd(), m.autosaveTick())

	case autosaveDoneMsg:
		if msg.err != nil {
			m.status = "autosave failed"
			m.logger.Debug("autosave failed", "err", msg.err)
		} else {
			m.status = "autosaved"
		}
		return m, nil
	}
	return m, nil
}

func (m *canvasModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.drag.Cancel()
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp

	case "tab":
		m.selectNext(1)
	case "shift+tab":
		m.selectNext(-1)

	case "up", "down", "left", "right":
		m.nudge(msg.String(), 1)
	case "shift+up", "shift+down", "shift+left", "shift+right":
		m.nudge(strings.TrimPrefix(msg.String(), "shift+"), 10)

	case "t":
		m.addBlock(block.TypeText)
	case "r":
		m.addBlock(block.TypeRectangle)
	case "e":
		m.addBlock(block.TypeEllipse)
	case "p":
		m.addBlock(block.TypePicture)

	case "d":
		if id := m.store.DuplicateBlock(m.store.Selected()); id != "" {
			m.prefetchBlock(id)
			m.status = "duplicated"
		}
	case "x", "delete", "backspace":
		if id := m.store.Selected(); id != "" {
			m.store.DeleteBlock(id)
			if m.loader != nil {
				m.loader.Forget(id)
			}
			m.status = "deleted"
		}

	case "[":
		m.reorder(1)
	case "]":
		m.reorder(-1)

	case "+", "=":
		m.view.ZoomIn()
	case "-":
		m.view.ZoomOut()
	case "f":
		m.fit()

	case "ctrl+z":
		m.store.Undo()
		m.prefetchAll()
		m.status = "undo"
	case "ctrl+y":
		m.store.Redo()
		m.prefetchAll()
		m.status = "redo"

	case "s":
		m.save()
	}
	return m, nil
}

func (m *canvasModel) updateMouse(msg tea.MouseMsg) {
	cx, cy := m.clientPos(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.view.WheelZoom(-1, msg.Ctrl)
		case tea.MouseButtonWheelDown:
			m.view.WheelZoom(1, msg.Ctrl)
		case tea.MouseButtonLeft:
			m.beginDrag(cx, cy)
		}
	case tea.MouseActionMotion:
		if m.drag.Dragging() {
			m.drag.Move(cx, cy)
		}
	case tea.MouseActionRelease:
		if m.drag.Dragging() {
			id := m.drag.BlockID()
			m.drag.End()
			m.prefetchBlock(id)
		}
	}
}

// beginDrag hit-tests the press position and starts a move, or a resize when
// the press lands on the selected block's right or bottom edge.
func (m *canvasModel) beginDrag(cx, cy float64) {
	tpl := m.store.Template()
	if tpl == nil {
		return
	}
	scale := m.store.ScaleFactor()
	tx := int(cx / scale)
	ty := int(cy / scale)

	hit := hitTest(tpl.Blocks, tx, ty)
	if hit == nil {
		m.store.SelectBlock("")
		return
	}

	mode := interact.ModeMove
	if hit.ID == m.store.Selected() {
		edge := int(pxPerCol / scale)
		onRight := tx >= hit.Right()-edge
		onBottom := ty >= hit.Bottom()-edge
		switch {
		case onRight && onBottom:
			mode = interact.ModeResizeSoutheast
		case onRight:
			mode = interact.ModeResizeEast
		case onBottom:
			mode = interact.ModeResizeSouth
		}
	}
	if m.drag.Begin(hit.ID, mode, cx, cy) {
		m.status = string(mode)
	}
}

// hitTest returns the topmost block containing the template-space point.
func hitTest(blocks []block.Block, tx, ty int) *block.Block {
	for i := range blocks {
		b := blocks[i]
		if tx >= b.X && tx < b.Right() && ty >= b.Y && ty < b.Bottom() {
			return &b
		}
	}
	return nil
}

// clientPos converts a terminal cell position to client pixels, relative to
// the canvas origin under the title bar.
func (m *canvasModel) clientPos(x, y int) (float64, float64) {
	return float64(x) * pxPerCol, float64(y-1) * pxPerRow
}

func (m *canvasModel) fit() {
	if m.winWidth == 0 {
		return
	}
	w := int(float64(m.winWidth) * pxPerCol)
	h := int(float64(m.winHeight-chromeRows) * pxPerRow)
	m.view.FitToWindow(w, h)
}

func (m *canvasModel) selectNext(step int) {
	tpl := m.store.Template()
	if tpl == nil || len(tpl.Blocks) == 0 {
		return
	}
	idx := -1
	for i, b := range tpl.Blocks {
		if b.ID == m.store.Selected() {
			idx = i
			break
		}
	}
	n := len(tpl.Blocks)
	m.store.SelectBlock(tpl.Blocks[((idx+step)%n+n)%n].ID)
}

func (m *canvasModel) nudge(dir string, step int) {
	b := m.store.SelectedBlock()
	if b == nil {
		return
	}
	var p block.Patch
	switch dir {
	case "up":
		v := b.Y - step
		p.Y = &v
	case "down":
		v := b.Y + step
		p.Y = &v
	case "left":
		v := b.X - step
		p.X = &v
	case "right":
		v := b.X + step
		p.X = &v
	}
	m.store.UpdateBlock(b.ID, p)
	m.prefetchBlock(b.ID)
}

func (m *canvasModel) addBlock(t block.Type) {
	id := m.store.AddBlock(t, "")
	if id == "" {
		return
	}
	m.prefetchBlock(id)
	m.status = "added " + string(t)
}

// reorder moves the selected block one step in the z-order. Positive step
// sends it backward (higher index), negative brings it forward.
func (m *canvasModel) reorder(step int) {
	tpl := m.store.Template()
	if tpl == nil {
		return
	}
	for i, b := range tpl.Blocks {
		if b.ID == m.store.Selected() {
			m.store.ReorderBlocks(i, i+step)
			return
		}
	}
}

func (m *canvasModel) save() {
	payload, ok := m.store.TemplateForSave()
	if !ok {
		return
	}
	if err := template.WriteSaveFile(payload, m.savePath); err != nil {
		m.status = "save failed"
		m.logger.Error("save failed", "path", m.savePath, "err", err)
		return
	}
	m.store.MarkSaved()
	m.discardRecovery()
	m.savedOnce = true
	m.status = "saved"
}

func (m *canvasModel) discardRecovery() {
	tpl := m.store.Template()
	if tpl == nil {
		return
	}
	if err := m.autosave.Discard(context.Background(), tpl.ID); err != nil {
		m.logger.Debug("discard session failed", "err", err)
	}
}

func (m *canvasModel) autosaveCmd() tea.Cmd {
	tpl := m.store.Template()
	payload, ok := m.store.TemplateForSave()
	if tpl == nil || !ok {
		return nil
	}
	id, name := tpl.ID, tpl.Name
	return func() tea.Msg {
		snapshot, err := template.MarshalSave(payload)
		if err != nil {
			return autosaveDoneMsg{err: err}
		}
		return autosaveDoneMsg{err: m.autosave.Save(context.Background(), id, name, snapshot)}
	}
}

// =============================================================================
// Preview plumbing
// =============================================================================

func (m *canvasModel) prefetchAll() {
	tpl := m.store.Template()
	if tpl == nil || m.loader == nil {
		return
	}
	for _, b := range tpl.Blocks {
		m.loader.Prefetch(context.Background(), b.ID, m.builder.BlockURL(b, tpl.Width, tpl.Height))
	}
}

func (m *canvasModel) prefetchBlock(id string) {
	tpl := m.store.Template()
	if tpl == nil || m.loader == nil {
		return
	}
	for _, b := range tpl.Blocks {
		if b.ID == id {
			m.loader.Prefetch(context.Background(), b.ID, m.builder.BlockURL(b, tpl.Width, tpl.Height))
			return
		}
	}
}

// =============================================================================
// View
// =============================================================================

func (m *canvasModel) View() string {
	tpl := m.store.Template()
	if tpl == nil {
		return "no template loaded"
	}
	if m.showHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(m.titleView(tpl))
	b.WriteString("\n")
	b.WriteString(m.canvasView(tpl))
	b.WriteString(m.statusView(tpl))
	return b.String()
}

func (m *canvasModel) titleView(tpl *template.Template) string {
	name := tpl.Name
	if name == "" {
		name = "(unnamed)"
	}
	dirty := ""
	if m.store.IsDirty() {
		dirty = StyleWarning.Render(" *")
	}
	return StyleTitle.Render(name) + dirty +
		StyleDim.Render(fmt.Sprintf("  %dx%d  %.0f%%", tpl.Width, tpl.Height, m.store.ScaleFactor()*100))
}

// canvasView rasterizes the template into a character grid: one letter per
// block region, snap guides overlaid while dragging.
func (m *canvasModel) canvasView(tpl *template.Template) string {
	scale := m.store.ScaleFactor()
	cols := int(float64(tpl.Width) * scale / pxPerCol)
	rows := int(float64(tpl.Height) * scale / pxPerRow)
	if m.winWidth > 0 && cols > m.winWidth {
		cols = m.winWidth
	}
	if m.winHeight > chromeRows && rows > m.winHeight-chromeRows {
		rows = m.winHeight - chromeRows
	}
	if cols < 1 || rows < 1 {
		return ""
	}

	type cell struct {
		r     rune
		style *lipgloss.Style
	}
	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{r: '·', style: &styleCanvasEmpty}
		}
	}

	// Back to front: index 0 is topmost, so paint in reverse.
	blocks := tpl.Blocks
	for i := len(blocks) - 1; i >= 0; i-- {
		bl := blocks[i]
		style := &styleBlockFill
		if bl.ID == m.store.Selected() {
			style = &styleBlockSelected
		}
		letter := blockLetter(bl.Type)
		x0, y0 := m.toCell(bl.X, bl.Y, scale)
		x1, y1 := m.toCell(bl.Right(), bl.Bottom(), scale)
		for y := y0; y <= y1 && y < rows; y++ {
			for x := x0; x <= x1 && x < cols; x++ {
				if y < 0 || x < 0 {
					continue
				}
				grid[y][x] = cell{r: letter, style: style}
			}
		}
	}

	for _, g := range m.drag.Guides() {
		if g.Axis == snap.Vertical {
			x := int(float64(g.Position) * scale / pxPerCol)
			for y := 0; y < rows; y++ {
				if x >= 0 && x < cols {
					grid[y][x] = cell{r: '│', style: &styleGuide}
				}
			}
		} else {
			y := int(float64(g.Position) * scale / pxPerRow)
			for x := 0; x < cols; x++ {
				if y >= 0 && y < rows {
					grid[y][x] = cell{r: '─', style: &styleGuide}
				}
			}
		}
	}

	var b strings.Builder
	for y := 0; y < rows; y++ {
		var run strings.Builder
		current := grid[y][0].style
		for x := 0; x < cols; x++ {
			if grid[y][x].style != current {
				b.WriteString(current.Render(run.String()))
				run.Reset()
				current = grid[y][x].style
			}
			run.WriteRune(grid[y][x].r)
		}
		b.WriteString(current.Render(run.String()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *canvasModel) toCell(px, py int, scale float64) (int, int) {
	return int(float64(px) * scale / pxPerCol), int(float64(py) * scale / pxPerRow)
}

func (m *canvasModel) statusView(tpl *template.Template) string {
	parts := []string{m.status}
	if b := m.store.SelectedBlock(); b != nil {
		parts = append(parts, fmt.Sprintf("%s %d,%d %dx%d", b.Name, b.X, b.Y, b.Width, b.Height))
	}
	parts = append(parts, fmt.Sprintf("previews %d/%d", len(m.warm), len(tpl.Blocks)))
	if m.store.CanUndo() {
		parts = append(parts, "undo:ctrl+z")
	}
	return StyleDim.Render(strings.Join(parts, " · ")) + StyleDim.Render("  ? help  q quit")
}

func (m *canvasModel) helpView() string {
	rows := [][2]string{
		{"mouse drag", "move block (edges of the selection resize)"},
		{"ctrl+wheel", "zoom"},
		{"tab / shift+tab", "cycle selection"},
		{"arrows", "nudge by 1px (shift: 10px)"},
		{"t r e p", "add text / rectangle / ellipse / picture"},
		{"d", "duplicate selection"},
		{"x", "delete selection"},
		{"[ ]", "send backward / bring forward"},
		{"+ - f", "zoom in / out / fit to window"},
		{"ctrl+z / ctrl+y", "undo / redo"},
		{"s", "save payload"},
		{"? q", "toggle help / quit"},
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s %s\n", StyleHighlight.Render(fmt.Sprintf("%-16s", r[0])), r[1]))
	}
	return b.String()
}

func blockLetter(t block.Type) rune {
	switch t {
	case block.TypeText:
		return 'T'
	case block.TypeEllipse:
		return 'E'
	case block.TypePicture:
		return 'P'
	case block.TypeWebPicture:
		return 'W'
	case block.TypeVideo:
		return 'V'
	default:
		return 'R'
	}
}
