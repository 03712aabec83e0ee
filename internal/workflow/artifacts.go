package workflow

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultMaxTokens is the token budget applied to artifact summaries when
// the caller passes a non-positive budget.
const DefaultMaxTokens = 50

// charsPerToken is tuned for mixed-language academic text; plain English
// averages closer to 4 chars per token.
const charsPerToken = 3.5

// Reference is a single bibliography entry tracked during research.
type Reference struct {
	Author string
	Year   int
}

// Artifacts is the sparse record of session-specific facts accumulated as
// the writing session progresses. Every field is optional.
type Artifacts struct {
	TopicSummary      string
	ResearchQuestion  string
	References        []Reference
	Keywords          []string
	Outline           string
	CompletedSections []string
	WordCount         int
	TargetWordCount   int
}

// IsEmpty reports whether no artifact has been recorded yet.
func (a Artifacts) IsEmpty() bool {
	return a.TopicSummary == "" &&
		a.ResearchQuestion == "" &&
		len(a.References) == 0 &&
		len(a.Keywords) == 0 &&
		a.Outline == "" &&
		len(a.CompletedSections) == 0 &&
		a.WordCount == 0 &&
		a.TargetWordCount == 0
}

// EstimateTokens returns a rough token count for s: ceil(len/3.5).
func EstimateTokens(s string) int {
	return int(math.Ceil(float64(len(s)) / charsPerToken))
}

// FormatArtifacts compresses artifacts into a single summary line within a
// soft token budget (guaranteed to ±10 tokens, not exact). Each clause is
// emitted only when its data is present; clauses are joined with "; " and
// prefixed "Artifacts: ".
func FormatArtifacts(a Artifacts, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if a.IsEmpty() {
		return "Artifacts: None yet"
	}

	var clauses []string

	if a.TopicSummary != "" {
		clauses = append(clauses, "Topic: "+truncateChars(a.TopicSummary, 60))
	}
	if a.ResearchQuestion != "" {
		clauses = append(clauses, "RQ: "+truncateChars(a.ResearchQuestion, 60))
	}
	if len(a.References) > 0 {
		clauses = append(clauses, formatReferences(a.References))
	}
	if len(a.Keywords) > 0 {
		clauses = append(clauses, formatKeywords(a.Keywords))
	}
	if a.Outline != "" {
		clauses = append(clauses, formatOutline(a.Outline))
	}
	if len(a.CompletedSections) > 0 {
		clauses = append(clauses, "Completed: "+strings.Join(a.CompletedSections, ", "))
	}
	if a.WordCount > 0 || a.TargetWordCount > 0 {
		clauses = append(clauses, formatWordCount(a.WordCount, a.TargetWordCount))
	}

	out := "Artifacts: " + strings.Join(clauses, "; ")

	// Soft budget: allow a +10 token overshoot, then hard-truncate.
	limit := maxTokens + 10
	if EstimateTokens(out) > limit {
		maxChars := int(float64(limit) * charsPerToken)
		out = truncateChars(out, maxChars)
	}
	return out
}

// truncateChars caps s at max characters, reserving three for an ellipsis.
func truncateChars(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatReferences(refs []Reference) string {
	if len(refs) <= 2 {
		parts := make([]string, len(refs))
		for i, r := range refs {
			parts[i] = fmt.Sprintf("%s %d", r.Author, r.Year)
		}
		return "Sources: " + strings.Join(parts, ", ")
	}

	recent := make([]Reference, len(refs))
	copy(recent, refs)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Year > recent[j].Year
	})
	return fmt.Sprintf("Sources: %d (latest: %s %d, %s %d)",
		len(refs),
		recent[0].Author, recent[0].Year,
		recent[1].Author, recent[1].Year,
	)
}

func formatKeywords(keywords []string) string {
	if len(keywords) <= 5 {
		return "Keywords: " + strings.Join(keywords, ", ")
	}
	return fmt.Sprintf("Keywords: %s (+%d more)",
		strings.Join(keywords[:5], ", "), len(keywords)-5)
}

func formatOutline(outline string) string {
	sections := countOutlineSections(outline)
	if sections == 0 {
		return "Outline: Ready"
	}
	return fmt.Sprintf("Outline: %d sections", sections)
}

// countOutlineSections counts "##" markdown heading markers, one per line.
func countOutlineSections(outline string) int {
	count := 0
	for _, line := range strings.Split(outline, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "##") {
			count++
		}
	}
	return count
}

func formatWordCount(current, target int) string {
	if target > 0 {
		percent := int(math.Round(float64(current) / float64(target) * 100))
		return fmt.Sprintf("Words: %d/%d (%d%%)", current, target, percent)
	}
	return fmt.Sprintf("Words: %d", current)
}
