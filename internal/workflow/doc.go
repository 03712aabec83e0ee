// Package workflow implements the phase engine for long-running writing
// sessions.
//
// The engine tracks a session through eleven ordered phases, from topic
// exploration to delivery. After each assistant turn the Detector classifies
// the response text against embedded phase descriptions and runs the result
// through a transition guardrail that blocks illogical jumps. Before each
// model call the Builder renders a compact, token-budgeted context block
// ("permanent RAG": only current state is injected, never history), backed
// by a short-lived cache keyed on phase, artifact fingerprint and a
// 30-second time bucket.
//
// The engine owns no session state. Callers feed the committed phase back
// in on the next detection; detection calls for a single session must be
// serialized, calls across sessions are independent.
package workflow
