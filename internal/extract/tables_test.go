package extract

import (
	"strings"
	"testing"
)

func filledRows(n, cols int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = make([]string, cols)
		for j := range rows[i] {
			rows[i][j] = "x"
		}
	}
	return rows
}

// TestTableConfidence checks the fill/size scoring at its boundary points.
func TestTableConfidence(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want float64
	}{
		{name: "nil matrix", rows: nil, want: 0},
		{name: "rows without cells", rows: [][]string{{}, {}}, want: 0},
		{name: "all cells empty", rows: [][]string{{"", " "}, {"", ""}, {"", ""}}, want: 0},
		{name: "dense five rows", rows: filledRows(5, 3), want: 1},
		{name: "dense ten rows", rows: filledRows(10, 4), want: 1},
		{name: "half filled two rows", rows: [][]string{{"a", ""}, {"b", ""}}, want: 0.7*0.5 + 0.3*0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TableConfidence(tt.rows)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("TableConfidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestScoreTables checks that junk tables are dropped and survivors come back
// ordered best first.
func TestScoreTables(t *testing.T) {
	in := []Table{
		{Page: 1, Source: "alpha", Rows: [][]string{{"only row"}}},
		{Page: 1, Source: "alpha", Rows: [][]string{{"", ""}, {"", ""}}},
		{Page: 2, Source: "alpha", Rows: [][]string{{"a", ""}, {"b", ""}}},
		{Page: 3, Source: "beta", Rows: filledRows(5, 3)},
	}
	got := ScoreTables(in)
	if len(got) != 2 {
		t.Fatalf("kept %d tables, want 2", len(got))
	}
	if got[0].Page != 3 || got[0].Confidence != 1 {
		t.Errorf("best table = page %d score %v, want page 3 score 1", got[0].Page, got[0].Confidence)
	}
	if got[1].Page != 2 {
		t.Errorf("second table = page %d, want 2", got[1].Page)
	}
	if got[0].Confidence < got[1].Confidence {
		t.Errorf("tables not sorted: %v < %v", got[0].Confidence, got[1].Confidence)
	}
}

// TestRenderTables checks the prompt block limits: three tables, ten rows,
// score floor 0.6.
func TestRenderTables(t *testing.T) {
	t.Run("empty when none qualify", func(t *testing.T) {
		low := []Table{{Page: 1, Source: "alpha", Confidence: 0.5, Rows: filledRows(2, 2)}}
		if got := RenderTables(low); got != "" {
			t.Errorf("RenderTables() = %q, want empty", got)
		}
	})

	t.Run("renders qualifying tables", func(t *testing.T) {
		tables := []Table{
			{Page: 1, Source: "alpha", Confidence: 0.95, Rows: [][]string{{"POLICY", "NUMBER"}, {"GL", "GL-123456"}}},
			{Page: 2, Source: "beta", Confidence: 0.9, Rows: filledRows(20, 2)},
			{Page: 3, Source: "alpha", Confidence: 0.8, Rows: filledRows(3, 2)},
			{Page: 4, Source: "beta", Confidence: 0.7, Rows: filledRows(3, 2)},
		}
		got := RenderTables(tables)
		if !strings.Contains(got, "EXTRACTED TABLES (High Confidence):") {
			t.Fatalf("missing header in %q", got)
		}
		if !strings.Contains(got, "POLICY | NUMBER") {
			t.Errorf("missing pipe-joined row in %q", got)
		}
		if !strings.Contains(got, "Table 1 (Page 1, alpha, confidence: 0.95):") {
			t.Errorf("missing table heading in %q", got)
		}
		if strings.Contains(got, "Page 4") {
			t.Errorf("fourth table rendered: %q", got)
		}
		// 20-row table capped at 10 rendered rows, plus 3 from the page-3 table.
		if n := strings.Count(got, "x | x"); n != 13 {
			t.Errorf("rendered %d filler rows, want 13", n)
		}
	})
}
