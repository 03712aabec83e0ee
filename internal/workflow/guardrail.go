package workflow

// MinTransitionConfidence is the similarity score below which a detected
// phase is not trusted and the session stays where it is.
const MinTransitionConfidence = 0.70

// maxForwardJump is the largest index delta committed as-is; anything
// farther advances by a single step instead.
const maxForwardJump = 2

// ResolveTransition decides which phase to actually commit given the
// session's current phase, the raw detected phase and the classifier's
// confidence. It is pure, deterministic and total.
//
// The guards run in order, first match wins:
//
//  1. delivered is terminal, nothing moves a delivered session
//  2. a weak signal (confidence < 0.70) keeps the current phase
//  3. an unknown current or detected id keeps the current phase
//  4. backward movement keeps the current phase
//  5. a jump farther than two steps ahead advances exactly one step
//
// Otherwise the detected phase is committed as-is. Adjacent phase
// descriptions overlap stylistically and embeddings misfire on that
// overlap; the guards bound a bad classification to "stay put" or
// "advance one step".
func ResolveTransition(current, detected Phase, confidence float64) Phase {
	if current == PhaseDelivered {
		return PhaseDelivered
	}
	if confidence < MinTransitionConfidence {
		return current
	}

	currentIdx := SequenceIndex(current)
	detectedIdx := SequenceIndex(detected)
	if currentIdx < 0 || detectedIdx < 0 {
		return current
	}

	if detectedIdx < currentIdx {
		return current
	}
	if detectedIdx > currentIdx+maxForwardJump {
		return PhaseSequence[currentIdx+1]
	}
	return detected
}
