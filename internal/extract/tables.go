package extract

import (
	"fmt"
	"sort"
	"strings"
)

const (
	tableScoreFloor   = 0.6
	maxRenderedTables = 3
	maxRenderedRows   = 10
)

// TableConfidence scores a cell matrix by fill density and row count:
// 0.7*fill_ratio + 0.3*min(1, rows/5). An all-empty matrix scores zero.
func TableConfidence(rows [][]string) float64 {
	var total, filled int
	for _, row := range rows {
		for _, cell := range row {
			total++
			if strings.TrimSpace(cell) != "" {
				filled++
			}
		}
	}
	if total == 0 || filled == 0 {
		return 0
	}
	fill := float64(filled) / float64(total)
	size := float64(len(rows)) / 5
	if size > 1 {
		size = 1
	}
	return 0.7*fill + 0.3*size
}

// ScoreTables drops tables with fewer than two rows or no content at all,
// assigns each survivor its confidence, and orders them best first.
func ScoreTables(tables []Table) []Table {
	kept := make([]Table, 0, len(tables))
	for _, t := range tables {
		if !usable(t.Rows) {
			continue
		}
		t.Confidence = TableConfidence(t.Rows)
		kept = append(kept, t)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Confidence > kept[j].Confidence })
	return kept
}

func usable(rows [][]string) bool {
	if len(rows) < 2 {
		return false
	}
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return true
			}
		}
	}
	return false
}

// RenderTables formats the top-ranked tables scoring above 0.6 (at most
// three, ten rows each) as pipe-delimited rows for the inference prompt.
// Returns "" when no table qualifies.
func RenderTables(tables []Table) string {
	var b strings.Builder
	for i, t := range tables {
		if i == maxRenderedTables {
			break
		}
		if t.Confidence <= tableScoreFloor {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("\n\nEXTRACTED TABLES (High Confidence):\n")
		}
		fmt.Fprintf(&b, "\nTable %d (Page %d, %s, confidence: %.2f):\n", i+1, t.Page, t.Source, t.Confidence)
		for r, row := range t.Rows {
			if r == maxRenderedRows {
				break
			}
			if len(row) == 0 {
				continue
			}
			b.WriteString(strings.Join(row, " | "))
			b.WriteString("\n")
		}
	}
	return b.String()
}
