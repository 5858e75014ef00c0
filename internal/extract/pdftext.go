package extract

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Ahzem/ocr-agent/internal/common"
)

const pdflibName = "pdflib"

// Horizontal gaps, in PDF points. A jump wider than columnGap between two
// positioned text runs on the same row starts a new cell; anything wider
// than a quarter of the font size reads as a word break inside a cell.
const columnGap = 12.0

// PDFLibBackend extracts text and tables with a pure-Go PDF parser. It needs
// no external binary, so it stays available when poppler is missing from the
// host.
type PDFLibBackend struct {
	log *slog.Logger
}

func NewPDFLibBackend(log *slog.Logger) *PDFLibBackend {
	if log == nil {
		log = slog.Default()
	}
	return &PDFLibBackend{log: log}
}

func (b *PDFLibBackend) Name() string { return pdflibName }

func (b *PDFLibBackend) open(path string) (*os.File, *pdf.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, common.NewAppError("PDF_OPEN_FAILED", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, common.NewAppError("PDF_OPEN_FAILED", path, err)
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, nil, common.NewAppError("PDF_PARSE_FAILED", path, err)
	}
	return f, r, nil
}

func (b *PDFLibBackend) ExtractText(ctx context.Context, path string) (string, error) {
	f, r, err := b.open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var out strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			b.log.Warn("extract.page.fail", "backend", pdflibName, "page", i, "error", err)
			continue
		}
		norm := NormalizeText(text)
		if norm == "" {
			continue
		}
		out.WriteString(norm)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func (b *PDFLibBackend) ExtractTables(ctx context.Context, path string) ([]Table, error) {
	f, r, err := b.open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tables []Table
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			b.log.Warn("extract.page.fail", "backend", pdflibName, "page", i, "error", err)
			continue
		}
		tables = append(tables, tablesFromRows(rows, i)...)
	}
	b.log.Debug("extract.tables.done", "backend", pdflibName, "count", len(tables))
	return tables, nil
}

// tablesFromRows groups each row's positioned text runs into cells, then
// collects consecutive multi-cell rows into candidate tables the same way the
// layout heuristic does.
func tablesFromRows(rows pdf.Rows, pageNum int) []Table {
	var tables []Table
	var matrix [][]string

	flush := func() {
		if len(matrix) >= 2 {
			tables = append(tables, Table{Page: pageNum, Source: pdflibName, Rows: matrix})
		}
		matrix = nil
	}

	for _, row := range rows {
		cells := cellsFromRuns(row.Content)
		if len(cells) >= 2 {
			matrix = append(matrix, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// cellsFromRuns walks a row's text runs left to right and splits them into
// cells at gaps wider than columnGap. Some embedded fonts report zero run
// widths; those runs get a half-font-size estimate so gap math stays sane.
func cellsFromRuns(runs []pdf.Text) []string {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []string
	var cur strings.Builder
	closeCell := func() {
		if cell := NormalizeText(cur.String()); cell != "" {
			cells = append(cells, cell)
		}
		cur.Reset()
	}

	lastEnd := sorted[0].X
	for i, run := range sorted {
		gap := run.X - lastEnd
		switch {
		case i == 0:
		case gap > columnGap:
			closeCell()
		case gap > run.FontSize/4:
			cur.WriteString(" ")
		}
		cur.WriteString(run.S)

		width := run.W
		if width <= 0 {
			width = run.FontSize / 2
		}
		lastEnd = run.X + width
	}
	closeCell()
	return cells
}
