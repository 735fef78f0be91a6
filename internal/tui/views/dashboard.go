package views

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"vendormap/internal/config"
	"vendormap/internal/engine"
	"vendormap/internal/model"
	"vendormap/internal/tui/components"
	"vendormap/internal/tui/styles"
)

type focusArea int

const (
	focusVendors focusArea = iota
	focusFilter
)

// snapshotMsg delivers a freshly computed view.
type snapshotMsg struct {
	Snap model.ViewSnapshot
	Err  error
}

// DashboardModel is the single-screen coverage dashboard: braille map on the
// left, statistics, rankings, and the vendor visibility list on the right.
// Every vendor toggle goes through the engine's filter operation, so the
// dashboard sees exactly what API clients see.
type DashboardModel struct {
	engine *engine.Engine
	cfg    *config.Config

	mapView   components.MapView
	rankTable table.Model
	filter    textinput.Model

	snap    model.ViewSnapshot
	hasSnap bool
	err     error

	criteria     []string
	criterionIdx int

	vendors  []model.VendorRecord // full store list
	filtered []model.VendorRecord // after text filter
	hidden   map[string]bool
	cursor   int
	scroll   int

	focus  focusArea
	width  int
	height int
}

func NewDashboardModel(e *engine.Engine, cfg *config.Config) DashboardModel {
	filter := textinput.New()
	filter.Placeholder = "Type to filter vendors..."
	filter.CharLimit = 50

	criteria := e.Criteria()
	idx := 0
	for i, name := range criteria {
		if name == e.DefaultCriterion() {
			idx = i
		}
	}

	vendors := e.Store().Vendors()
	hidden := make(map[string]bool)
	for _, code := range e.HiddenCodes() {
		hidden[code] = true
	}

	m := DashboardModel{
		engine:       e,
		cfg:          cfg,
		mapView:      components.NewMapView(60, 20),
		filter:       filter,
		criteria:     criteria,
		criterionIdx: idx,
		vendors:      vendors,
		filtered:     vendors,
		hidden:       hidden,
	}

	var rings []orb.Ring
	for _, d := range e.Store().Districts() {
		rings = append(rings, d.Ring)
	}
	m.mapView.SetDistricts(rings)
	m.mapView.SetBounds(cfg.CityBounds.LatMin, cfg.CityBounds.LngMin,
		cfg.CityBounds.LatMax, cfg.CityBounds.LngMax)

	m.rankTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 3},
			{Title: "Vendor", Width: 20},
			{Title: "Value", Width: 10},
		}),
		table.WithHeight(8),
	)
	return m
}

func (m DashboardModel) Init() tea.Cmd {
	return m.refreshCmd()
}

// refreshCmd recomputes the snapshot for the active criterion.
func (m DashboardModel) refreshCmd() tea.Cmd {
	e := m.engine
	criterion := m.criteria[m.criterionIdx]
	return func() tea.Msg {
		snap, err := e.GetView(criterion)
		return snapshotMsg{Snap: snap, Err: err}
	}
}

// applyCmd pushes the staged hidden set through the engine, then refreshes.
func (m DashboardModel) applyCmd() tea.Cmd {
	e := m.engine
	criterion := m.criteria[m.criterionIdx]
	codes := make([]string, 0, len(m.hidden))
	for code, hidden := range m.hidden {
		if hidden {
			codes = append(codes, code)
		}
	}
	return func() tea.Msg {
		e.ApplyFilter(codes)
		snap, err := e.GetView(criterion)
		return snapshotMsg{Snap: snap, Err: err}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case snapshotMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.snap = msg.Snap
		m.hasSnap = true
		m.refreshMap()
		m.refreshRankings()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.focus == focusFilter {
		switch key {
		case "esc", "enter":
			m.focus = focusVendors
			m.filter.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyTextFilter()
			return m, cmd
		}
	}

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "/":
		m.focus = focusFilter
		m.filter.Focus()
		return m, textinput.Blink
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clampScroll()
		}
	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.clampScroll()
		}
	case " ", "enter":
		if m.cursor < len(m.filtered) {
			code := m.filtered[m.cursor].Code
			m.hidden[code] = !m.hidden[code]
			return m, m.applyCmd()
		}
	case "a":
		// Show everything again.
		m.hidden = make(map[string]bool)
		return m, m.applyCmd()
	case "c":
		m.criterionIdx = (m.criterionIdx + 1) % len(m.criteria)
		return m, m.refreshCmd()
	case "+", "=":
		m.mapView.ZoomIn()
	case "-":
		m.mapView.ZoomOut()
	case "0":
		m.mapView.ZoomReset()
	case "left", "h":
		m.mapView.Pan(0, -1)
	case "right", "l":
		m.mapView.Pan(0, 1)
	case "shift+up", "K":
		m.mapView.Pan(1, 0)
	case "shift+down", "J":
		m.mapView.Pan(-1, 0)
	}
	return m, nil
}

func (m *DashboardModel) updateLayout() {
	mapW := m.width * 3 / 5
	if mapW < 30 {
		mapW = 30
	}
	mapH := m.height - 6
	if mapH < 10 {
		mapH = 10
	}
	m.mapView.SetSize(mapW-4, mapH-2)
}

func (m *DashboardModel) refreshMap() {
	markers := make([]components.Marker, 0, len(m.snap.Vendors))
	for _, v := range m.snap.Vendors {
		if !v.HasLocation {
			continue
		}
		markers = append(markers, components.Marker{
			Lat:         v.Lat,
			Lng:         v.Lng,
			Overlapping: v.IsOverlapping,
		})
	}
	m.mapView.SetMarkers(markers)
}

func (m *DashboardModel) refreshRankings() {
	rows := make([]table.Row, 0, len(m.snap.Rankings))
	for _, e := range m.snap.Rankings {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", e.Rank),
			e.Name,
			fmt.Sprintf("%.2f", e.Value),
		})
	}
	m.rankTable.SetRows(rows)
}

// normalize removes accents/diacritics and lowercases text for fuzzy matching.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, _ := transform.String(t, strings.ToLower(s))
	return result
}

func (m *DashboardModel) applyTextFilter() {
	raw := strings.TrimSpace(m.filter.Value())
	if raw == "" {
		m.filtered = m.vendors
	} else {
		words := strings.Fields(normalize(raw))
		m.filtered = nil
		for _, v := range m.vendors {
			haystack := normalize(v.Name + " " + v.Code)
			match := true
			for _, w := range words {
				if !strings.Contains(haystack, w) {
					match = false
					break
				}
			}
			if match {
				m.filtered = append(m.filtered, v)
			}
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
		m.scroll = 0
	}
}

func (m *DashboardModel) listHeight() int {
	h := m.height - 22
	if h < 5 {
		h = 5
	}
	return h
}

func (m *DashboardModel) clampScroll() {
	h := m.listHeight()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+h {
		m.scroll = m.cursor - h + 1
	}
}

func (m DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	left := styles.Border.Render(m.mapView.View())
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.statsPanel(),
		m.rankingPanel(),
		m.vendorPanel(),
	)

	status := m.statusLine()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("vendormap — service area coverage"),
		body,
		styles.StatusBar.Render(status),
	)
}

func (m DashboardModel) statsPanel() string {
	if !m.hasSnap {
		return styles.Border.Render("computing...")
	}
	st := m.snap.Stats
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(styles.Label.Render(label))
		b.WriteString(styles.Value.Render(value))
		b.WriteString("\n")
	}
	line("Vendors", fmt.Sprintf("%d visible / %d total", st.ActiveVendors, st.TotalVendors))
	line("Hidden", fmt.Sprintf("%d", st.HiddenVendors))
	line("Overlap pairs", fmt.Sprintf("%d", st.OverlapPairs))
	line("Overlap rate", fmt.Sprintf("%.1f%%", st.OverlapRate))
	line("Avg orders", fmt.Sprintf("%.1f", st.AvgOrders))
	line("Density", fmt.Sprintf("%.2f vendors/km²", st.VendorDensity))
	if m.snap.Degraded {
		b.WriteString(styles.ErrorText.Render("approximate overlap mode"))
		b.WriteString("\n")
	}
	return styles.Border.Render(strings.TrimRight(b.String(), "\n"))
}

func (m DashboardModel) rankingPanel() string {
	title := styles.Subtitle.Render(m.criteria[m.criterionIdx])
	return styles.Border.Render(title + "\n" + m.rankTable.View())
}

func (m DashboardModel) vendorPanel() string {
	h := m.listHeight()
	var b strings.Builder
	end := m.scroll + h
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	for i := m.scroll; i < end; i++ {
		v := m.filtered[i]
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		label := fmt.Sprintf("%s%s (%s)", marker, v.Name, v.Code)
		switch {
		case m.hidden[v.Code]:
			b.WriteString(styles.HiddenItem.Render(label))
		case i == m.cursor:
			b.WriteString(styles.ActiveItem.Render(label))
		default:
			b.WriteString(styles.Value.Render(label))
		}
		b.WriteString("\n")
	}
	if len(m.filtered) == 0 {
		b.WriteString(styles.Value.Render("no vendors match"))
		b.WriteString("\n")
	}

	panel := m.filter.View() + "\n" + strings.TrimRight(b.String(), "\n")
	if m.focus == focusFilter {
		return styles.FocusedBorder.Render(panel)
	}
	return styles.Border.Render(panel)
}

func (m DashboardModel) statusLine() string {
	if m.err != nil {
		return styles.ErrorText.Render(m.err.Error())
	}
	return "space: toggle vendor  a: show all  c: criterion  /: filter  +/-: zoom  h/l: pan  q: quit"
}
