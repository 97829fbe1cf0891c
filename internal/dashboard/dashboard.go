// Package dashboard implements the live monitoring TUI: it polls an
// envmond backend for current and historical readings and renders them
// with sparkline charts and trend indicators.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/envmon/internal/chart"
	"github.com/luki/envmon/internal/client"
)

// Color thresholds for the two series.
const (
	tempHigh = 30.0
	tempCrit = 40.0
	humHigh  = 70.0
	humCrit  = 90.0
)

const historyWindow = 100

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type dataMsg struct {
	data *client.Data
	time time.Time
}

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the dashboard.
type Model struct {
	client   *client.Client
	interval time.Duration

	data      *client.Data
	lastPoll  time.Time
	startTime time.Time
	width     int
	height    int
	paused    bool
}

// New creates the initial dashboard model.
func New(c *client.Client, interval time.Duration) Model {
	return Model{
		client:    c,
		interval:  interval,
		startTime: time.Now(),
	}
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) poll() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	d, err := m.client.Data(ctx, historyWindow)
	if err != nil {
		d = client.Simulated(historyWindow)
	}
	return dataMsg{data: d, time: time.Now()}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.poll, m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.paused {
			return m, m.tickCmd()
		}
		return m, tea.Batch(m.poll, m.tickCmd())

	case dataMsg:
		m.data = msg.data
		m.lastPoll = msg.time
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorSim      = lipgloss.Color("220")
	colorPaused   = lipgloss.Color("196")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.data == nil {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for backend data...")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.renderCurrentPanel(contentWidth))
		sections = append(sections, m.renderSeriesPanel(contentWidth, "Temperature", "°C", tempHigh, tempCrit, temps(m.data.History)))
		sections = append(sections, m.renderSeriesPanel(contentWidth, "Humidity", "%", humHigh, humCrit, hums(m.data.History)))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func temps(history []client.Point) []chart.Point {
	pts := make([]chart.Point, len(history))
	for i, p := range history {
		pts[i] = chart.Point{Value: p.Temperature, Time: p.Time}
	}
	return pts
}

func hums(history []client.Point) []chart.Point {
	pts := make([]chart.Point, len(history))
	for i, p := range history {
		pts[i] = chart.Point{Value: p.Humidity, Time: p.Time}
	}
	return pts
}

// trendArrow compares the latest value against the mean of the recent
// window: the dashboard's up/down/steady indicator.
func trendArrow(pts []chart.Point) string {
	if len(pts) < 2 {
		return "→"
	}
	window := pts
	if len(window) > 30 {
		window = window[len(window)-30:]
	}
	sum := 0.0
	for _, p := range window {
		sum += p.Value
	}
	mean := sum / float64(len(window))
	last := pts[len(pts)-1].Value

	const eps = 0.15
	switch {
	case last > mean+eps:
		return "↑"
	case last < mean-eps:
		return "↓"
	default:
		return "→"
	}
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("ENVIRONMENTAL MONITOR")

	var statusParts []string

	backend := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(m.client.Addr())
	statusParts = append(statusParts, backend)

	uptime := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime))))
	statusParts = append(statusParts, uptime)

	if !m.lastPoll.IsZero() {
		ts := lipgloss.NewStyle().
			Foreground(colorDim).
			Render(m.lastPoll.Format("15:04:05"))
		statusParts = append(statusParts, ts)
	}

	if m.data != nil && m.data.Simulated {
		sim := lipgloss.NewStyle().
			Foreground(colorSim).
			Bold(true).
			Render("SIM")
		statusParts = append(statusParts, sim)
	}

	if m.paused {
		p := lipgloss.NewStyle().
			Foreground(colorPaused).
			Bold(true).
			Render("PAUSED")
		statusParts = append(statusParts, p)
	}

	sep := lipgloss.NewStyle().Foreground(colorDim).Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + filler + right)
}

func (m Model) renderCurrentPanel(width int) string {
	labelS := lipgloss.NewStyle().Foreground(colorLabel)
	dimS := lipgloss.NewStyle().Foreground(colorDim)

	var row string
	if m.data.Current == nil {
		row = dimS.Render("No readings stored yet")
	} else {
		cur := m.data.Current
		row = labelS.Render("Temperature ") +
			chart.RenderValue(cur.Temperature, "°C", tempHigh, tempCrit) +
			" " + trendArrow(temps(m.data.History)) +
			dimS.Render("    │    ") +
			labelS.Render("Humidity ") +
			chart.RenderValue(cur.Humidity, "%", humHigh, humCrit) +
			" " + trendArrow(hums(m.data.History))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(row)
}

func (m Model) renderSeriesPanel(width int, title, unit string, high, crit float64, pts []chart.Point) string {
	innerWidth := width - 4
	if innerWidth < 30 {
		innerWidth = 30
	}

	chartWidth := innerWidth - 10
	if chartWidth > 140 {
		chartWidth = 140
	}

	rangeMin, rangeMax := seriesRange(pts, high)

	titleText := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorLabel).
		Render(title)

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	var stats string
	if len(pts) > 0 {
		lo, hi, avg := seriesStats(pts)
		stats = dimS.Render(" avg") + valS.Render(fmt.Sprintf("%5.1f", avg)) +
			dimS.Render(" lo") + valS.Render(fmt.Sprintf("%5.1f", lo)) +
			dimS.Render(" pk") + valS.Render(fmt.Sprintf("%5.1f", hi)) +
			dimS.Render(unit)
	}

	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")
	spark := frameL + chart.RenderSparkline(pts, chartWidth, rangeMin, rangeMax, high, crit) + frameR

	rows := []string{
		titleText + stats,
		spark,
	}
	if timeline := chart.RenderTimeline(pts, chartWidth); strings.TrimSpace(timeline) != "" {
		rows = append(rows, " "+timeline)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func seriesRange(pts []chart.Point, high float64) (float64, float64) {
	if len(pts) == 0 {
		return 0, high
	}
	lo, hi, _ := seriesStats(pts)
	return lo - 2, hi + 2
}

func seriesStats(pts []chart.Point) (lo, hi, avg float64) {
	lo, hi = pts[0].Value, pts[0].Value
	sum := 0.0
	for _, p := range pts {
		if p.Value < lo {
			lo = p.Value
		}
		if p.Value > hi {
			hi = p.Value
		}
		sum += p.Value
	}
	return lo, hi, sum / float64(len(pts))
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	labelS := lipgloss.NewStyle().Foreground(colorLabel)

	var info string
	if m.data != nil {
		meta := m.data.Meta
		link := "down"
		if meta.LinkUp {
			link = "up"
		}
		info = dimS.Render("readings ") + labelS.Render(fmt.Sprintf("%d", meta.TotalReadings)) +
			dimS.Render("  buffer ") + labelS.Render(fmt.Sprintf("%d", meta.BufferSize)) +
			dimS.Render("  device up ") + labelS.Render(fmtDuration(time.Duration(meta.UptimeSeconds)*time.Second)) +
			dimS.Render("  link ") + labelS.Render(link)
		if meta.SensorFaults > 0 {
			info += dimS.Render("  faults ") + labelS.Render(fmt.Sprintf("%d", meta.SensorFaults))
		}
	}

	keys := dimS.Render("q") + labelS.Render(":quit") +
		dimS.Render("  p") + labelS.Render(":pause")

	gap := width - lipgloss.Width(info) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(info + filler + keys)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	min := d / time.Minute
	d -= min * time.Minute
	sec := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, min)
	}
	if min > 0 {
		return fmt.Sprintf("%dm%02ds", min, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
