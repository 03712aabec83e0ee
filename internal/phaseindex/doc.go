// Package phaseindex stores and searches the phase reference corpus.
//
// Each phase definition from the workflow registry is split into chunks,
// embedded, and indexed with a phase tag. The Detector queries the index
// with a response embedding and receives the nearest phase-tagged chunks.
//
// Two backends are provided: an embedded chromem-go store (default, zero
// external services) and a Qdrant collection for deployments that already
// run one.
package phaseindex
