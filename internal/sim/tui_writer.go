package sim

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"sarsim/internal/geo"
	"sarsim/internal/scenario"
	"sarsim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// stateMsg carries a drone state update.
type stateMsg struct{ telemetry.DroneStateRow }

// eventMsg carries a detection-log line and row data.
type eventMsg struct {
	line string
	row  telemetry.DetectionEventRow
}

// adminMsg reports admin API status.
type adminMsg struct{ active bool }

type setWaypointFnMsg struct {
	fn func(ids []string, pt geo.Vec2, appendWp bool)
}
type setRTBFnMsg struct{ fn func(ids []string, immediate bool) }
type setCoverageFnMsg struct{ fn func() }
type setPartitionFnMsg struct{ fn func() }

const (
	bgRed    = "\x1b[41m"
	bgYellow = "\x1b[43m"
	bgGreen  = "\x1b[42m"

	fallbackWaypointInput = "all,0,0"
	maxEventLines         = 1000
)

// TUIWriter renders drone states and detection events using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(scn *scenario.Scenario) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	m := newTUIModel(scn)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	go func() {
		_ = p.Start()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements StateWriter.
func (w *TUIWriter) Write(row telemetry.DroneStateRow) error {
	w.program.Send(stateMsg{row})
	return nil
}

// WriteBatch outputs multiple drone state rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.DroneStateRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e telemetry.DetectionEventRow) error {
	kindColor := colorRed
	switch e.Kind {
	case telemetry.EventDetected:
		kindColor = colorGreen
	case telemetry.EventFalsePositive, telemetry.EventFalseNegative:
		kindColor = colorYellow
	}
	line := fmt.Sprintf("%s[%s]%s %s%s%s drone=%s anomaly=%s type=%s pos=(%.1f,%.1f) conf=%.2f %s",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		kindColor, e.Kind, colorReset,
		e.DroneID, e.AnomalyID, e.AnomalyType,
		e.Position.X, e.Position.Y, e.Confidence, e.Message)
	w.program.Send(eventMsg{line: line, row: e})
	return nil
}

// WriteEvents outputs multiple detection events.
func (w *TUIWriter) WriteEvents(rows []telemetry.DetectionEventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}

// SetAdminStatus updates the admin API indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetWaypointFn registers a callback to route drones.
func (w *TUIWriter) SetWaypointFn(fn func(ids []string, pt geo.Vec2, appendWp bool)) {
	w.program.Send(setWaypointFnMsg{fn: fn})
}

// SetRTBFn registers a callback to recall drones to the hub.
func (w *TUIWriter) SetRTBFn(fn func(ids []string, immediate bool)) {
	w.program.Send(setRTBFnMsg{fn: fn})
}

// SetCoverageFn registers a callback to start coverage sweeps.
func (w *TUIWriter) SetCoverageFn(fn func()) {
	w.program.Send(setCoverageFnMsg{fn: fn})
}

// SetPartitionFn registers a callback to recompute the area partition.
func (w *TUIWriter) SetPartitionFn(fn func()) {
	w.program.Send(setPartitionFnMsg{fn: fn})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type markedAnomaly struct {
	pos  geo.Vec2
	kind string
}

type tuiModel struct {
	scn            *scenario.Scenario
	water          *scenario.WaterTile
	roster         table.Model
	eventVP        viewport.Model
	eventLogs      []string
	drones         map[string]telemetry.DroneStateRow
	marked         map[string]markedAnomaly
	admin          bool
	wrap           bool
	autoscroll     bool
	help           bool
	showMap        bool
	header         string
	headerHeight   int
	width          int
	height         int
	waypointInput  textinput.Model
	waypointDialog bool
	routeFn        func(ids []string, pt geo.Vec2, appendWp bool)
	rtbFn          func(ids []string, immediate bool)
	coverageFn     func()
	partitionFn    func()
	detectedCount  int
}

func newTUIModel(scn *scenario.Scenario) tuiModel {
	cols := []table.Column{
		{Title: "Drone", Width: 18},
		{Title: "Status", Width: 10},
		{Title: "X", Width: 9},
		{Title: "Y", Width: 9},
		{Title: "Hdg", Width: 6},
		{Title: "Spd", Width: 6},
		{Title: "Batt%", Width: 6},
		{Title: "Rtn", Width: 6},
		{Title: "Q", Width: 4},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(2))
	vp := viewport.New(0, 0)
	var water *scenario.WaterTile
	if scn != nil {
		water = scenario.GenerateWaterTile(scn.Sector.Water, scn.Seed)
	}
	return tuiModel{
		scn:        scn,
		water:      water,
		roster:     t,
		eventVP:    vp,
		drones:     make(map[string]telemetry.DroneStateRow),
		marked:     make(map[string]markedAnomaly),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.roster.SetWidth(msg.Width)
		m.eventVP.Width = msg.Width
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshEvents()
	case tea.KeyMsg:
		if m.waypointDialog {
			switch msg.Type {
			case tea.KeyEnter:
				ids, pt, err := parseWaypointInput(m.waypointInput.Value())
				if err == nil && m.routeFn != nil {
					if len(ids) == 0 {
						ids = m.droneIDs()
					}
					go m.routeFn(ids, pt, false)
				}
				m.waypointDialog = false
				m.updateViewportHeight()
			case tea.KeyEsc:
				m.waypointDialog = false
				m.updateViewportHeight()
			default:
				var cmd tea.Cmd
				m.waypointInput, cmd = m.waypointInput.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshEvents()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.eventVP.GotoBottom()
			}
			return m, nil
		case "g":
			m.waypointInput = textinput.New()
			m.waypointInput.Placeholder = "ids|all,x,y"
			m.waypointInput.SetValue(fallbackWaypointInput)
			m.waypointInput.CursorEnd()
			m.waypointInput.Focus()
			m.waypointDialog = true
			m.updateViewportHeight()
			return m, nil
		case "r":
			if m.rtbFn != nil {
				go m.rtbFn(m.droneIDs(), false)
			}
			return m, nil
		case "R":
			if m.rtbFn != nil {
				go m.rtbFn(m.droneIDs(), true)
			}
			return m, nil
		case "c":
			if m.coverageFn != nil {
				go m.coverageFn()
			}
			return m, nil
		case "v":
			if m.partitionFn != nil {
				go m.partitionFn()
			}
			return m, nil
		case "m":
			m.showMap = !m.showMap
			m.updateViewportHeight()
			return m, nil
		case "h", "?":
			m.help = !m.help
			m.updateViewportHeight()
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.eventVP.LineDown(1)
			case "k", "up":
				m.eventVP.LineUp(1)
			case "pgdown", "ctrl+n":
				m.eventVP.LineDown(10)
			case "pgup", "ctrl+p":
				m.eventVP.LineUp(10)
			default:
				var cmd tea.Cmd
				m.eventVP, cmd = m.eventVP.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		return m, nil
	case stateMsg:
		m.drones[msg.DroneID] = msg.DroneStateRow
		m.refreshRoster()
	case eventMsg:
		m.eventLogs = append(m.eventLogs, msg.line)
		if len(m.eventLogs) > maxEventLines {
			m.eventLogs = m.eventLogs[len(m.eventLogs)-maxEventLines:]
		}
		if msg.row.AnomalyID != "" {
			switch msg.row.Kind {
			case telemetry.EventDetected, telemetry.EventFalsePositive:
				m.marked[msg.row.AnomalyID] = markedAnomaly{pos: msg.row.Position, kind: msg.row.Kind}
				m.detectedCount++
			}
		}
		m.refreshEvents()
	case adminMsg:
		m.admin = msg.active
	case setWaypointFnMsg:
		m.routeFn = msg.fn
	case setRTBFnMsg:
		m.rtbFn = msg.fn
	case setCoverageFnMsg:
		m.coverageFn = msg.fn
	case setPartitionFnMsg:
		m.partitionFn = msg.fn
	}
	return m, nil
}

func (m tuiModel) droneIDs() []string {
	ids := make([]string, 0, len(m.drones))
	for id := range m.drones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *tuiModel) refreshRoster() {
	ids := make([]string, 0, len(m.drones))
	for id := range m.drones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		d := m.drones[id]
		rows = append(rows, table.Row{
			d.DroneID,
			d.Status,
			fmt.Sprintf("%.1f", d.X),
			fmt.Sprintf("%.1f", d.Y),
			fmt.Sprintf("%.0f", d.HeadingDeg),
			fmt.Sprintf("%.1f", d.SpeedKts),
			fmt.Sprintf("%.1f", d.BatteryPct),
			fmt.Sprintf("%.1f", d.ReturnMin),
			strconv.Itoa(d.QueuedPoints),
		})
	}
	m.roster.SetRows(rows)
	m.roster.SetHeight(len(rows) + 1)
	m.updateViewportHeight()
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	rosterHeight := lipgloss.Height(m.roster.View())
	dialogHeight := 0
	if m.waypointDialog {
		dialogHeight = 1
	}
	h := m.height - m.headerHeight - rosterHeight - bottomHeight - dialogHeight - 4
	if h < 0 {
		h = 0
	}
	m.eventVP.Height = h
	if m.autoscroll {
		m.eventVP.GotoBottom()
	}
}

func (m *tuiModel) refreshEvents() {
	var lines []string
	for _, l := range m.eventLogs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.eventVP.Width))
		} else {
			lines = append(lines, l)
		}
	}
	content := "none"
	if len(lines) > 0 {
		content = strings.Join(lines, "\n")
	}
	m.eventVP.SetContent(content)
	if m.autoscroll {
		m.eventVP.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.width)
	if m.showMap {
		sections := []string{
			m.header,
			divider,
			m.renderMap(),
			divider,
			m.renderBottom(),
		}
		return strings.Join(sections, "\n")
	}
	sections := []string{
		m.header,
		divider,
		m.roster.View(),
		divider,
		"Detections:",
		m.eventVP.View(),
	}
	if m.waypointDialog {
		sections = append(sections, divider, fmt.Sprintf("Route (ids|all,x,y) - Enter to send, Esc to cancel: %s", m.waypointInput.View()))
	}
	sections = append(sections, divider, m.renderBottom())
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	if m.scn == nil {
		return ""
	}
	s := m.scn
	return fmt.Sprintf("%s%s%s seed=%s sector=%s (%.0fm x %.0fm) sea=%d wind=%.1fkts vis=%.1fkm anomalies=%d",
		colorCyan, s.Name, colorReset, s.Seed, s.Sector.ID,
		s.Sector.Bounds.WidthMeters, s.Sector.Bounds.HeightMeters,
		s.Sector.Conditions.SeaState, s.Sector.Conditions.WindKts, s.Sector.Conditions.VisibilityKm,
		len(s.Anomalies.Items))
}

func (m tuiModel) renderBottom() string {
	adminColor := lipgloss.Color("9")
	if m.admin {
		adminColor = lipgloss.Color("10")
	}
	wrapColor := lipgloss.Color("9")
	if m.wrap {
		wrapColor = lipgloss.Color("10")
	}
	scrollColor := lipgloss.Color("10")
	if !m.autoscroll {
		scrollColor = lipgloss.Color("9")
	}
	adminIndicator := lipgloss.NewStyle().Foreground(adminColor).Render("●")
	wrapIndicator := lipgloss.NewStyle().Foreground(wrapColor).Render("●")
	scrollIndicator := lipgloss.NewStyle().Foreground(scrollColor).Render("●")
	return fmt.Sprintf("drones=%d detections=%d | Admin %s | Wrap %s | Scroll %s | g route, r/R rtb, c coverage, v partition, m map, h help",
		len(m.drones), m.detectedCount, adminIndicator, wrapIndicator, scrollIndicator)
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" g  route drones (ids|all,x,y)",
		" r  return all to hub after queue",
		" R  return all to hub immediately",
		" c  start coverage sweeps",
		" v  recompute area partition",
		" m  toggle sector map",
		" w  toggle wrap for detection log",
		" s  toggle auto-scroll",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}

func headingIcon(h float64) string {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	switch {
	case h >= 45 && h < 135:
		return ">"
	case h >= 135 && h < 225:
		return "v"
	case h >= 225 && h < 315:
		return "<"
	default:
		return "^"
	}
}

func batteryBG(b float64) string {
	switch {
	case b < 25:
		return bgRed
	case b < 75:
		return bgYellow
	default:
		return bgGreen
	}
}

func (m tuiModel) renderMap() string {
	if m.scn == nil {
		return "No scenario"
	}
	width := m.width
	if width < 10 {
		width = 10
	}
	bottomHeight := lipgloss.Height(m.renderBottom())
	mapHeight := m.height - m.headerHeight - bottomHeight - 4
	if mapHeight < 1 {
		mapHeight = 1
	}

	bounds := m.scn.Sector.Bounds
	mpp := bounds.WidthMeters / float64(width)
	if v := bounds.HeightMeters / float64(mapHeight); v > mpp {
		mpp = v
	}
	cam := geo.Camera{
		Center:         bounds.Center(),
		MetersPerPixel: mpp,
		ScreenWidth:    float64(width),
		ScreenHeight:   float64(mapHeight),
	}

	grid := make([][]string, mapHeight)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = m.waterGlyph(j, i)
		}
		grid[i] = row
	}

	plot := func(p geo.Vec2, cell string) {
		sp := cam.WorldToScreen(p)
		x, y := int(sp.X), int(sp.Y)
		if y >= 0 && y < mapHeight && x >= 0 && x < width {
			grid[y][x] = cell
		}
	}

	plot(bounds.Center(), fmt.Sprintf("%sH%s", colorCyan, colorReset))
	for _, ma := range m.marked {
		sym, col := "X", colorGreen
		if ma.kind == telemetry.EventFalsePositive {
			sym, col = "x", colorYellow
		}
		plot(ma.pos, fmt.Sprintf("%s%s%s", col, sym, colorReset))
	}
	for _, d := range m.drones {
		icon := headingIcon(d.HeadingDeg)
		bg := batteryBG(d.BatteryPct)
		plot(geo.Vec2{X: d.X, Y: d.Y}, fmt.Sprintf("%s%s%s", bg, icon, colorReset))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("sector %s %.0fm x %.0fm N↑\n", m.scn.Sector.ID, bounds.WidthMeters, bounds.HeightMeters))
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteByte('\n')
	}
	barChars := int(math.Min(10, float64(width)/3))
	scaleM := mpp * float64(barChars)
	b.WriteString(fmt.Sprintf("Scale: |%s| %.0fm\n", strings.Repeat("-", barChars), scaleM))
	legend := []string{
		fmt.Sprintf("%sH%s=hub", colorCyan, colorReset),
		fmt.Sprintf("%sX%s=detected", colorGreen, colorReset),
		fmt.Sprintf("%sx%s=false_pos", colorYellow, colorReset),
		"^>v<=drone heading",
		fmt.Sprintf("%s█%s=high_batt %s█%s=med %s█%s=low", bgGreen, colorReset, bgYellow, colorReset, bgRed, colorReset),
	}
	b.WriteString(strings.Join(legend, " "))
	return strings.TrimRight(b.String(), "\n")
}

// waterGlyph shades an empty map cell from the scenario's water tile so the
// background shows the same swell pattern for the same seed. Shallow (bright)
// pixels render as wave crests.
func (m tuiModel) waterGlyph(x, y int) string {
	if m.water == nil || m.water.SizePx == 0 {
		return "."
	}
	size := m.water.SizePx
	px := m.water.Pixels[(y%size)*size+x%size]
	lum := int(px.R) + int(px.G) + int(px.B)
	deep := m.scn.Sector.Water.ColorDeep
	shallow := m.scn.Sector.Water.ColorShallow
	mid := (int(deep.R) + int(deep.G) + int(deep.B) + int(shallow.R) + int(shallow.G) + int(shallow.B)) / 2
	if lum > mid {
		return fmt.Sprintf("%s~%s", colorBlue, colorReset)
	}
	return fmt.Sprintf("%s.%s", colorGray, colorReset)
}

func parseWaypointInput(val string) ([]string, geo.Vec2, error) {
	parts := strings.Split(val, ",")
	if len(parts) < 3 {
		return nil, geo.Vec2{}, fmt.Errorf("expected ids|all,x,y")
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-2]), 64)
	if err != nil {
		return nil, geo.Vec2{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64)
	if err != nil {
		return nil, geo.Vec2{}, err
	}
	var ids []string
	for _, p := range parts[:len(parts)-2] {
		p = strings.TrimSpace(p)
		if p == "" || p == "all" {
			continue
		}
		ids = append(ids, p)
	}
	return ids, geo.Vec2{X: x, Y: y}, nil
}
