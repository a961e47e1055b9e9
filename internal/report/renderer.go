// Package report renders the end-of-session PDF: a cover page, three chart
// pages and a statistics page.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/history"
)

// ErrNoData is returned when asked to render an empty history.
var ErrNoData = errors.New("no samples to report")

const (
	pageMargin   = 12.0
	headerHeight = 14.0
	panelGap     = 6.0
	filePrefix   = "system_monitor_report_"
	fileLayout   = "20060102_150405"
)

// Input is everything a report is rendered from.
type Input struct {
	History   *history.Store
	Stats     history.Statistics
	System    collector.SystemInfo
	StartedAt time.Time
	EndedAt   time.Time
	Interval  time.Duration
}

// Renderer writes session reports.
type Renderer struct {
	now      func() time.Time
	compress bool
	logger   zerolog.Logger
}

func NewRenderer(logger zerolog.Logger) *Renderer {
	return &Renderer{now: time.Now, compress: true, logger: logger}
}

// WithClock returns a copy of the renderer using now for generation timestamps.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	c := *r
	c.now = now
	return &c
}

// WithCompression returns a copy of the renderer with page stream compression enabled/disabled.
func (r *Renderer) WithCompression(enabled bool) *Renderer {
	c := *r
	c.compress = enabled
	return &c
}

// DefaultPath is the time-stamped report location inside dir.
func DefaultPath(dir string, t time.Time) string {
	return filepath.Join(dir, filePrefix+t.Format(fileLayout)+".pdf")
}

// Render writes the report to path, creating parent directories, and returns
// the path written. An existing file at path is replaced.
func (r *Renderer) Render(in Input, path string) (string, error) {
	if in.History == nil || in.History.Len() == 0 {
		return "", ErrNoData
	}
	if path == "" {
		return "", errors.New("report path is empty")
	}
	if in.Stats == nil {
		in.Stats = in.History.Statistics()
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create report directory: %w", err)
		}
	}

	generated := r.now()
	doc := newDocument(generated, r.compress)
	doc.ticks = in.History.Len()

	doc.coverPage(in)
	doc.chartPage("CPU & Memory", cpuMemoryCharts(in))
	doc.chartPage("GPU & Disk", gpuDiskCharts(in))
	doc.networkPage(in)
	doc.textPage("Statistics", FormatStatistics(in.Stats, generated))

	if err := doc.pdf.Error(); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	if err := doc.pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	r.logger.Info().
		Str("path", path).
		Int("samples", in.History.Len()).
		Int("panels_without_data", doc.placeholders).
		Msg("report written")
	return path, nil
}

// document wraps the fpdf state for one report.
type document struct {
	pdf          *fpdf.Fpdf
	tr           func(string) string
	images       int
	placeholders int
	ticks        int // session length; every chart spans the same x range
}

func newDocument(generated time.Time, compress bool) *document {
	pdf := fpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetCompression(compress)

	pdf.SetTitle("System Monitoring Report", true)
	pdf.SetAuthor("System Monitor", true)
	pdf.SetSubject("System Performance Monitoring Report", true)
	pdf.SetKeywords("System Monitoring Performance", true)
	pdf.SetCreator("sysmonitor", true)
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	return d
}

func (d *document) header(title string) {
	d.pdf.AddPage()
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.SetTextColor(40, 40, 40)
	d.pdf.CellFormat(0, headerHeight-4, d.tr(title), "", 1, "L", false, 0, "")
}

func (d *document) coverPage(in Input) {
	pdf := d.pdf
	pdf.AddPage()
	w, _ := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(30, 30, 30)
	pdf.SetY(24)
	pdf.CellFormat(0, 14, "System Monitoring Report", "", 1, "C", false, 0, "")

	boxX, boxY := pageMargin+30, 48.0
	boxW, boxH := w-2*(pageMargin+30), 140.0
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.RoundedRect(boxX, boxY, boxW, boxH, 4, "1234", "FD")

	pdf.SetXY(boxX+8, boxY+6)
	pdf.SetFont("Courier", "", 11)
	pdf.MultiCell(boxW-16, 5.2, d.tr(coverText(in)), "", "L", false)
}

// panelRects splits the content area into a 2x2 grid.
func (d *document) panelRects() [4][4]float64 {
	w, h := d.pdf.GetPageSize()
	top := pageMargin + headerHeight
	pw := (w - 2*pageMargin - panelGap) / 2
	ph := (h - top - pageMargin - panelGap - 4) / 2
	return [4][4]float64{
		{pageMargin, top, pw, ph},
		{pageMargin + pw + panelGap, top, pw, ph},
		{pageMargin, top + ph + panelGap, pw, ph},
		{pageMargin + pw + panelGap, top + ph + panelGap, pw, ph},
	}
}

func (d *document) chartPage(title string, panels [4]panel) {
	d.header(title)
	for i, rect := range d.panelRects() {
		d.drawPanel(panels[i], rect[0], rect[1], rect[2], rect[3])
	}
}

func (d *document) networkPage(in Input) {
	d.header("Network")
	w, h := d.pdf.GetPageSize()
	top := pageMargin + headerHeight
	cw := w - 2*pageMargin
	ch := (h - top - pageMargin - 4) * 0.62

	d.drawPanel(networkChart(in), pageMargin, top, cw, ch)

	textY := top + ch + panelGap
	d.pdf.SetDrawColor(200, 200, 200)
	d.pdf.SetFillColor(248, 248, 248)
	d.pdf.Rect(pageMargin, textY, cw, h-textY-pageMargin-4, "FD")
	d.pdf.SetXY(pageMargin+6, textY+4)
	d.pdf.SetFont("Courier", "", 10)
	d.pdf.SetTextColor(30, 30, 30)
	d.pdf.MultiCell(cw-12, 4.6, d.tr(networkText(in.Stats)), "", "L", false)
}

func (d *document) textPage(title, body string) {
	d.header(title)
	d.pdf.SetFont("Courier", "", 10)
	d.pdf.SetTextColor(30, 30, 30)
	d.pdf.MultiCell(0, 4.4, d.tr(body), "", "L", false)
}

// panel is either a chart or, when the chart has no data, a placeholder message.
type panel struct {
	chart       chart
	placeholder string
}

func (d *document) drawPanel(p panel, x, y, w, h float64) {
	if p.chart.empty() {
		d.drawPlaceholder(p.chart.title, p.placeholder, x, y, w, h)
		return
	}
	p.chart.ticks = d.ticks
	png, err := p.chart.renderPNG(w, h)
	if err != nil {
		d.drawPlaceholder(p.chart.title, "chart unavailable: "+err.Error(), x, y, w, h)
		return
	}
	d.images++
	name := fmt.Sprintf("chart-%d", d.images)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	d.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

func (d *document) drawPlaceholder(title, message string, x, y, w, h float64) {
	d.placeholders++
	if message == "" {
		message = "No data available"
	}
	pdf := d.pdf
	pdf.SetDrawColor(190, 190, 190)
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(x, y, w, h, "FD")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(60, 60, 60)
	pdf.SetXY(x, y+4)
	pdf.CellFormat(w, 6, d.tr(title), "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(128, 128, 128)
	pdf.SetXY(x, y+h/2-4)
	pdf.CellFormat(w, 8, d.tr(strings.TrimSpace(message)), "", 0, "C", false, 0, "")
}
