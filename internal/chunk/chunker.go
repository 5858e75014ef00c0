// Package chunk reduces oversized document text to a character budget while
// keeping the sections a certificate reader actually cares about.
package chunk

import (
	"regexp"
	"sort"
	"strings"
)

const (
	windowBefore = 100
	windowAfter  = 200
	mergeGap     = 50
	partialMin   = 100
	separator    = " ... "

	// fallback truncation backs off to a sentence boundary only when one
	// sits in the final 30% of the cut.
	boundaryFraction = 0.7
)

// priorityPatterns mark the sections that must survive truncation: policy
// identity, coverage dates, and limit amounts.
var priorityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)certificate\s+number[:\s]+\w+`),
	regexp.MustCompile(`(?i)policy\s+number[:\s]+[\w\-]+`),
	regexp.MustCompile(`(?i)effective\s+date[:\s]+\d+`),
	regexp.MustCompile(`(?i)expiration\s+date[:\s]+\d+`),
	regexp.MustCompile(`(?i)general\s+aggregate[:\s]+[$\d,]+`),
	regexp.MustCompile(`(?i)each\s+occurrence[:\s]+[$\d,]+`),
	regexp.MustCompile(`(?i)workers\s+compensation`),
	regexp.MustCompile(`(?i)liability\s+limits?`),
	regexp.MustCompile(`(?i)certificate\s+holder`),
}

type window struct {
	start, end int
}

// Optimize returns text reduced to at most budget characters. Text that
// already fits is returned unchanged. Otherwise context windows around
// priority-pattern matches are stitched together in document order; with no
// match anywhere the front of the text is kept instead. Deterministic for a
// given text and budget.
func Optimize(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	if budget <= 0 {
		return ""
	}

	windows := mergeWindows(matchWindows(text))
	if len(windows) == 0 {
		return truncateAtSentence(text, budget)
	}

	var b strings.Builder
	for _, w := range windows {
		section := text[w.start:w.end]
		sep := 0
		if b.Len() > 0 {
			sep = len(separator)
		}
		if b.Len()+sep+len(section) <= budget {
			if sep > 0 {
				b.WriteString(separator)
			}
			b.WriteString(section)
			continue
		}
		if remaining := budget - b.Len() - sep; remaining >= partialMin {
			if sep > 0 {
				b.WriteString(separator)
			}
			b.WriteString(section[:remaining])
		}
		break
	}
	return b.String()
}

// matchWindows collects a context window around every priority-pattern match,
// ordered by start offset.
func matchWindows(text string) []window {
	var ws []window
	for _, re := range priorityPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			start := loc[0] - windowBefore
			if start < 0 {
				start = 0
			}
			end := loc[1] + windowAfter
			if end > len(text) {
				end = len(text)
			}
			ws = append(ws, window{start: start, end: end})
		}
	}
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].start != ws[j].start {
			return ws[i].start < ws[j].start
		}
		return ws[i].end < ws[j].end
	})
	return ws
}

// mergeWindows folds together windows whose gap is at most mergeGap.
func mergeWindows(ws []window) []window {
	if len(ws) == 0 {
		return nil
	}
	merged := []window{ws[0]}
	for _, w := range ws[1:] {
		last := &merged[len(merged)-1]
		if w.start <= last.end+mergeGap {
			if w.end > last.end {
				last.end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// truncateAtSentence cuts text at the budget, backing off to the last period
// when it falls in the final 30% of the cut.
func truncateAtSentence(text string, budget int) string {
	truncated := text[:budget]
	if i := strings.LastIndexByte(truncated, '.'); float64(i) > boundaryFraction*float64(budget) {
		return truncated[:i+1]
	}
	return truncated
}
