package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatArtifacts_Empty(t *testing.T) {
	assert.Equal(t, "Artifacts: None yet", FormatArtifacts(Artifacts{}, 50))
}

func TestFormatArtifacts_TopicVerbatimWhenShort(t *testing.T) {
	out := FormatArtifacts(Artifacts{TopicSummary: "Machine translation quality"}, 50)
	assert.Equal(t, "Artifacts: Topic: Machine translation quality", out)
}

func TestFormatArtifacts_TopicTruncatedAt60(t *testing.T) {
	long := strings.Repeat("a", 75)
	out := FormatArtifacts(Artifacts{TopicSummary: long}, 50)
	assert.Equal(t, "Artifacts: Topic: "+strings.Repeat("a", 57)+"...", out)
}

func TestFormatArtifacts_ResearchQuestion(t *testing.T) {
	out := FormatArtifacts(Artifacts{ResearchQuestion: "How does X affect Y?"}, 50)
	assert.Equal(t, "Artifacts: RQ: How does X affect Y?", out)
}

func TestFormatArtifacts_ReferencesFewListedAll(t *testing.T) {
	refs := []Reference{{Author: "Smith", Year: 2021}, {Author: "Lee", Year: 2023}}
	out := FormatArtifacts(Artifacts{References: refs}, 50)
	assert.Equal(t, "Artifacts: Sources: Smith 2021, Lee 2023", out)
}

func TestFormatArtifacts_ReferencesManyShowsLatestTwo(t *testing.T) {
	refs := []Reference{
		{Author: "Smith", Year: 2021},
		{Author: "Lee", Year: 2023},
		{Author: "Chen", Year: 2024},
		{Author: "Okafor", Year: 2019},
	}
	out := FormatArtifacts(Artifacts{References: refs}, 50)
	assert.Equal(t, "Artifacts: Sources: 4 (latest: Chen 2024, Lee 2023)", out)
}

func TestFormatArtifacts_KeywordsOverflow(t *testing.T) {
	// Worked example from the summarizer contract.
	a := Artifacts{Keywords: []string{"a", "b", "c", "d", "e", "f"}}
	out := FormatArtifacts(a, 50)
	assert.Equal(t, "Artifacts: Keywords: a, b, c, d, e (+1 more)", out)
}

func TestFormatArtifacts_KeywordsFewListedAll(t *testing.T) {
	out := FormatArtifacts(Artifacts{Keywords: []string{"nlp", "bert"}}, 50)
	assert.Equal(t, "Artifacts: Keywords: nlp, bert", out)
}

func TestFormatArtifacts_OutlineSectionCount(t *testing.T) {
	outline := "# Title\n## Intro\n## Methods\n## Results\n"
	out := FormatArtifacts(Artifacts{Outline: outline}, 50)
	assert.Equal(t, "Artifacts: Outline: 3 sections", out)
}

func TestFormatArtifacts_OutlineWithoutMarkersIsReady(t *testing.T) {
	out := FormatArtifacts(Artifacts{Outline: "freeform outline notes"}, 50)
	assert.Equal(t, "Artifacts: Outline: Ready", out)
}

func TestFormatArtifacts_CompletedSections(t *testing.T) {
	a := Artifacts{CompletedSections: []string{"Intro", "Methods"}}
	out := FormatArtifacts(a, 50)
	assert.Equal(t, "Artifacts: Completed: Intro, Methods", out)
}

func TestFormatArtifacts_WordCountWithTarget(t *testing.T) {
	out := FormatArtifacts(Artifacts{WordCount: 1200, TargetWordCount: 5000}, 50)
	assert.Equal(t, "Artifacts: Words: 1200/5000 (24%)", out)
}

func TestFormatArtifacts_WordCountWithoutTarget(t *testing.T) {
	out := FormatArtifacts(Artifacts{WordCount: 800}, 50)
	assert.Equal(t, "Artifacts: Words: 800", out)
}

func TestFormatArtifacts_ClausesJoined(t *testing.T) {
	a := Artifacts{
		TopicSummary: "Topic A",
		Keywords:     []string{"k1"},
	}
	out := FormatArtifacts(a, 50)
	assert.Equal(t, "Artifacts: Topic: Topic A; Keywords: k1", out)
}

func TestFormatArtifacts_TokenBudget(t *testing.T) {
	// A fully loaded record must stay within the soft budget of 60 tokens.
	a := Artifacts{
		TopicSummary:     strings.Repeat("topic ", 30),
		ResearchQuestion: strings.Repeat("question ", 30),
		References: []Reference{
			{Author: "Averylongauthorname", Year: 2020},
			{Author: "Anotherlongauthorname", Year: 2021},
			{Author: "Thirdlongauthorname", Year: 2022},
		},
		Keywords:          []string{"kw1", "kw2", "kw3", "kw4", "kw5", "kw6", "kw7"},
		Outline:           "## A\n## B\n## C\n## D",
		CompletedSections: []string{"Introduction", "Literature Review", "Methodology"},
		WordCount:         4200,
		TargetWordCount:   8000,
	}
	out := FormatArtifacts(a, 50)
	assert.LessOrEqual(t, EstimateTokens(out), 60)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("ab"))
	assert.Equal(t, 2, EstimateTokens("abcdefg")) // ceil(7/3.5)
	assert.Equal(t, 10, EstimateTokens(strings.Repeat("x", 35)))
}

func TestArtifactsIsEmpty(t *testing.T) {
	assert.True(t, Artifacts{}.IsEmpty())
	assert.False(t, Artifacts{WordCount: 1}.IsEmpty())
	assert.False(t, Artifacts{Keywords: []string{"k"}}.IsEmpty())
}
