package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Ahzem/ocr-agent/internal/common"
)

const popplerName = "poppler"

// PopplerBackend extracts text and tables with the poppler pdftotext tool.
// Layout mode preserves column alignment, which is what the table heuristic
// keys on.
type PopplerBackend struct {
	bin    string
	runner Runner
	log    *slog.Logger
}

// NewPopplerBackend wires pdftotext as an extraction backend. An empty bin
// falls back to "pdftotext" on PATH; a nil runner gets the real exec runner.
func NewPopplerBackend(bin string, runner Runner, log *slog.Logger) *PopplerBackend {
	if bin == "" {
		bin = "pdftotext"
	}
	if log == nil {
		log = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner(log)
	}
	return &PopplerBackend{bin: bin, runner: runner, log: log}
}

func (p *PopplerBackend) Name() string { return popplerName }

// layoutText runs pdftotext -layout and returns the raw output with form
// feeds still marking page breaks.
func (p *PopplerBackend) layoutText(ctx context.Context, path string) (string, error) {
	out, errb, err := p.runner.Run(ctx, p.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", common.NewAppError("PDFTOTEXT_FAILED", strings.TrimSpace(string(errb)), err)
	}
	return string(out), nil
}

func (p *PopplerBackend) ExtractText(ctx context.Context, path string) (string, error) {
	raw, err := p.layoutText(ctx, path)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, page := range strings.Split(raw, "\f") {
		norm := NormalizeText(page)
		if norm == "" {
			continue
		}
		b.WriteString(norm)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (p *PopplerBackend) ExtractTables(ctx context.Context, path string) ([]Table, error) {
	raw, err := p.layoutText(ctx, path)
	if err != nil {
		return nil, err
	}

	var tables []Table
	for i, page := range strings.Split(raw, "\f") {
		tables = append(tables, tablesFromLayout(page, i+1)...)
	}
	p.log.Debug("extract.tables.done", "backend", popplerName, "count", len(tables))
	return tables, nil
}

var columnSplitRE = regexp.MustCompile(` {2,}`)

// tablesFromLayout scans layout-preserved text for consecutive lines that
// break into two or more columns at runs of two-plus spaces. Each such run of
// lines becomes one candidate table; single-column lines end the run.
func tablesFromLayout(page string, pageNum int) []Table {
	var tables []Table
	var rows [][]string

	flush := func() {
		if len(rows) >= 2 {
			tables = append(tables, Table{Page: pageNum, Source: popplerName, Rows: rows})
		}
		rows = nil
	}

	for _, line := range strings.Split(page, "\n") {
		cells := splitColumns(line)
		if len(cells) >= 2 {
			rows = append(rows, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// splitColumns divides one layout line into cells. Returns nil for blank
// lines and a single-cell slice for ordinary prose lines.
func splitColumns(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	parts := columnSplitRE.Split(trimmed, -1)
	cells := make([]string, 0, len(parts))
	for _, part := range parts {
		cells = append(cells, NormalizeText(part))
	}
	return cells
}
