package workflow

import "strings"

// Phase identifies one stage of the writing workflow.
type Phase string

// The eleven workflow phases, in order. The set and its order are fixed at
// compile time; PhaseDelivered is terminal and has no outgoing transitions.
const (
	PhaseExploring       Phase = "exploring"
	PhaseTopicLocked     Phase = "topic_locked"
	PhaseResearching     Phase = "researching"
	PhaseFoundationReady Phase = "foundation_ready"
	PhaseOutlining       Phase = "outlining"
	PhaseOutlineLocked   Phase = "outline_locked"
	PhaseDrafting        Phase = "drafting"
	PhaseDraftingLocked  Phase = "drafting_locked"
	PhaseIntegrating     Phase = "integrating"
	PhasePolishing       Phase = "polishing"
	PhaseDelivered       Phase = "delivered"
)

// PhaseSequence is the canonical phase order used for index comparisons.
var PhaseSequence = []Phase{
	PhaseExploring,
	PhaseTopicLocked,
	PhaseResearching,
	PhaseFoundationReady,
	PhaseOutlining,
	PhaseOutlineLocked,
	PhaseDrafting,
	PhaseDraftingLocked,
	PhaseIntegrating,
	PhasePolishing,
	PhaseDelivered,
}

// Definition describes a single phase. Definitions double as the reference
// corpus for semantic detection: their descriptions are chunked, embedded
// and indexed as phase_definition chunks.
type Definition struct {
	ID          Phase
	Label       string
	Description string
	// Progress is the fraction of the overall workflow completed when the
	// session is in this phase, non-decreasing along PhaseSequence.
	Progress float64
}

var definitions = map[Phase]Definition{
	PhaseExploring: {
		ID:    PhaseExploring,
		Label: "Exploring Topic",
		Description: "The session is exploring candidate topics. The assistant asks " +
			"clarifying questions, surfaces possible angles and research gaps, and " +
			"weighs scope and feasibility before anything is committed. No topic " +
			"has been chosen yet.",
		Progress: 0.0,
	},
	PhaseTopicLocked: {
		ID:    PhaseTopicLocked,
		Label: "Topic Locked",
		Description: "A topic and working research question have been agreed and " +
			"locked. The assistant confirms the chosen direction, restates the " +
			"research question, and prepares to gather supporting literature.",
		Progress: 0.1,
	},
	PhaseResearching: {
		ID:    PhaseResearching,
		Label: "Researching",
		Description: "The session is gathering sources and evidence. The assistant " +
			"discusses papers, authors and findings, evaluates source quality and " +
			"relevance, and builds the reference list for the paper.",
		Progress: 0.2,
	},
	PhaseFoundationReady: {
		ID:    PhaseFoundationReady,
		Label: "Foundation Ready",
		Description: "Enough sources have been collected to ground the paper. The " +
			"assistant summarizes the theoretical foundation, key references and " +
			"keywords, and signals readiness to structure the argument.",
		Progress: 0.3,
	},
	PhaseOutlining: {
		ID:    PhaseOutlining,
		Label: "Outlining",
		Description: "The session is structuring the paper. The assistant proposes " +
			"sections and subsections, orders the argument, and iterates on the " +
			"outline with the author.",
		Progress: 0.4,
	},
	PhaseOutlineLocked: {
		ID:    PhaseOutlineLocked,
		Label: "Outline Locked",
		Description: "The outline has been approved and frozen. The assistant " +
			"confirms the section structure and target lengths and prepares to " +
			"draft the first section.",
		Progress: 0.5,
	},
	PhaseDrafting: {
		ID:    PhaseDrafting,
		Label: "Drafting",
		Description: "The session is writing body text section by section. The " +
			"assistant produces prose for individual sections, cites collected " +
			"sources inline, and tracks word counts against targets.",
		Progress: 0.6,
	},
	PhaseDraftingLocked: {
		ID:    PhaseDraftingLocked,
		Label: "Draft Complete",
		Description: "All planned sections have a complete first draft. The " +
			"assistant confirms every section is written and shifts attention " +
			"from producing text to assembling the full manuscript.",
		Progress: 0.75,
	},
	PhaseIntegrating: {
		ID:    PhaseIntegrating,
		Label: "Integrating",
		Description: "The session is merging sections into one coherent manuscript. " +
			"The assistant smooths transitions between sections, reconciles " +
			"terminology, and checks citations and the reference list for " +
			"consistency.",
		Progress: 0.85,
	},
	PhasePolishing: {
		ID:    PhasePolishing,
		Label: "Polishing",
		Description: "The manuscript is complete and under final revision. The " +
			"assistant fixes grammar and style, tightens wording, verifies " +
			"formatting requirements, and performs the last quality pass.",
		Progress: 0.95,
	},
	PhaseDelivered: {
		ID:    PhaseDelivered,
		Label: "Delivered",
		Description: "The finished paper has been handed over. The workflow is " +
			"closed; any further activity belongs to a new session.",
		Progress: 1.0,
	},
}

// Lookup returns the definition for id. It is total: unknown ids resolve to
// the exploring definition so context generation can never fail.
func Lookup(id Phase) Definition {
	if def, ok := definitions[id]; ok {
		return def
	}
	return definitions[PhaseExploring]
}

// SequenceIndex returns the position of id in PhaseSequence, or -1 when id
// is not a valid phase.
func SequenceIndex(id Phase) int {
	for i, p := range PhaseSequence {
		if p == id {
			return i
		}
	}
	return -1
}

// IsValid reports whether id is one of the eleven phases.
func IsValid(id Phase) bool {
	return SequenceIndex(id) >= 0
}

// NormalizePhase coerces legacy or foreign phase representations into a
// Phase. Strings are matched case-insensitively against the sequence;
// numeric values are treated as legacy sequence indexes and clamped into
// [0, 10]. Anything else yields fallback (or PhaseExploring when fallback
// itself is invalid). It never panics.
func NormalizePhase(value any, fallback Phase) Phase {
	if !IsValid(fallback) {
		fallback = PhaseExploring
	}

	switch v := value.(type) {
	case Phase:
		if IsValid(v) {
			return v
		}
	case string:
		candidate := Phase(strings.ToLower(strings.TrimSpace(v)))
		if IsValid(candidate) {
			return candidate
		}
	case int:
		return PhaseSequence[clampIndex(v)]
	case int64:
		return PhaseSequence[clampIndex(int(v))]
	case float64:
		return PhaseSequence[clampIndex(int(v))]
	}
	return fallback
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(PhaseSequence) {
		return len(PhaseSequence) - 1
	}
	return i
}
