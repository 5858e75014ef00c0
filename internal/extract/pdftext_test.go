package extract

import (
	"reflect"
	"testing"

	"github.com/ledongthuc/pdf"
)

func run(x, w float64, s string) pdf.Text {
	return pdf.Text{X: x, W: w, FontSize: 10, S: s}
}

// TestCellsFromRuns checks cell splitting at column gaps and word spacing
// inside a cell.
func TestCellsFromRuns(t *testing.T) {
	tests := []struct {
		name string
		runs []pdf.Text
		want []string
	}{
		{
			name: "nil runs",
			runs: nil,
			want: nil,
		},
		{
			name: "adjacent runs join into one cell",
			runs: []pdf.Text{run(10, 5, "G"), run(15, 5, "L")},
			want: []string{"GL"},
		},
		{
			name: "wide gap starts a new cell",
			runs: []pdf.Text{run(10, 5, "G"), run(15, 5, "L"), run(120, 6, "2"), run(126, 6, "4")},
			want: []string{"GL", "24"},
		},
		{
			name: "word gap becomes a space",
			runs: []pdf.Text{run(10, 10, "General"), run(24, 10, "Liability"), run(120, 10, "GL-123456")},
			want: []string{"General Liability", "GL-123456"},
		},
		{
			name: "unsorted input is ordered by position",
			runs: []pdf.Text{run(120, 6, "B"), run(10, 5, "A")},
			want: []string{"A", "B"},
		},
		{
			name: "zero-width runs fall back to font size",
			runs: []pdf.Text{run(10, 0, "A"), run(11, 0, "B"), run(120, 0, "C")},
			want: []string{"AB", "C"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cellsFromRuns(tt.runs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("cellsFromRuns() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestTablesFromRows checks that consecutive multi-cell rows group into one
// table and single-cell rows split runs apart.
func TestTablesFromRows(t *testing.T) {
	rows := pdf.Rows{
		{Position: 700, Content: []pdf.Text{run(10, 40, "TYPE"), run(200, 60, "NUMBER")}},
		{Position: 680, Content: []pdf.Text{run(10, 40, "GL"), run(200, 60, "GL-123456")}},
		{Position: 660, Content: []pdf.Text{run(10, 300, "prose line spanning the page")}},
		{Position: 640, Content: []pdf.Text{run(10, 40, "WC"), run(200, 60, "WC-789012")}},
	}

	got := tablesFromRows(rows, 2)
	if len(got) != 1 {
		t.Fatalf("tables = %d, want 1 (trailing single row dropped)", len(got))
	}
	tab := got[0]
	if tab.Page != 2 || tab.Source != pdflibName {
		t.Errorf("table meta = page %d source %q", tab.Page, tab.Source)
	}
	want := [][]string{{"TYPE", "NUMBER"}, {"GL", "GL-123456"}}
	if !reflect.DeepEqual(tab.Rows, want) {
		t.Errorf("rows = %v, want %v", tab.Rows, want)
	}
}
